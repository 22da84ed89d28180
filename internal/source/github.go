package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/go-github/v62/github"

	"contribledger.app/api-server/core/config"
)

// Page ceiling per (repository, kind). Very active repositories can hold
// years of history; reconciliation is re-run periodically, so capping one
// pass bounds cost without losing recent activity.
const defaultMaxPages = 10

const defaultPageSize = 100

type gitHubSource struct {
	client   *github.Client
	pageSize int
	maxPages int
}

// NewGitHubSource builds a Source backed by the GitHub REST API.
func NewGitHubSource(cfg config.GitHubConfig) (Source, error) {
	client := github.NewClient(nil)
	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise base URL: %w", err)
		}
	}
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return &gitHubSource{
		client:   client,
		pageSize: pageSize,
		maxPages: maxPages,
	}, nil
}

func (s *gitHubSource) ListRepositories(ctx context.Context, username string) ([]RepoRef, error) {
	opts := &github.RepositoryListByUserOptions{
		ListOptions: github.ListOptions{PerPage: s.pageSize},
	}

	var repos []RepoRef
	for page := 0; page < s.maxPages; page++ {
		pageRepos, resp, err := s.client.Repositories.ListByUser(ctx, username, opts)
		if err != nil {
			// Listing failures are never repository-scoped: a broken
			// credential here would silently drop every repository.
			return nil, fmt.Errorf("%w: listing repositories for %s: %v", ErrUnavailable, username, err)
		}

		for _, r := range pageRepos {
			repos = append(repos, RepoRef{
				Owner:    r.GetOwner().GetLogin(),
				Name:     r.GetName(),
				FullName: r.GetFullName(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return repos, nil
}

func (s *gitHubSource) ListEvents(ctx context.Context, repo RepoRef, kind EventKind) ([]RawEvent, error) {
	switch kind {
	case EventKindCommit:
		return s.listCommits(ctx, repo)
	case EventKindPullRequest:
		return s.listPullRequests(ctx, repo)
	case EventKindIssue:
		return s.listIssues(ctx, repo)
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
}

func (s *gitHubSource) listCommits(ctx context.Context, repo RepoRef) ([]RawEvent, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: s.pageSize},
	}

	var events []RawEvent
	for page := 0; page < s.maxPages; page++ {
		commits, resp, err := s.client.Repositories.ListCommits(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, classifyRepoError(repo, err)
		}

		for _, c := range commits {
			events = append(events, RawEvent{
				Kind:         EventKindCommit,
				RepoFullName: repo.FullName,
				ExternalID:   c.GetSHA(),
				AuthorLogin:  c.GetAuthor().GetLogin(),
				Title:        c.GetCommit().GetMessage(),
				Timestamp:    c.GetCommit().GetAuthor().GetDate().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return events, nil
}

func (s *gitHubSource) listPullRequests(ctx context.Context, repo RepoRef) ([]RawEvent, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: s.pageSize},
	}

	var events []RawEvent
	for page := 0; page < s.maxPages; page++ {
		prs, resp, err := s.client.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, classifyRepoError(repo, err)
		}

		for _, pr := range prs {
			event := RawEvent{
				Kind:         EventKindPullRequest,
				RepoFullName: repo.FullName,
				ExternalID:   strconv.Itoa(pr.GetNumber()),
				AuthorLogin:  pr.GetUser().GetLogin(),
				Title:        pr.GetTitle(),
				State:        pr.GetState(),
				Timestamp:    pr.GetUpdatedAt().Time,
			}
			if pr.MergedAt != nil {
				merged := pr.MergedAt.Time
				event.MergedAt = &merged
			}
			events = append(events, event)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return events, nil
}

func (s *gitHubSource) listIssues(ctx context.Context, repo RepoRef) ([]RawEvent, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: s.pageSize},
	}

	var events []RawEvent
	for page := 0; page < s.maxPages; page++ {
		issues, resp, err := s.client.Issues.ListByRepo(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, classifyRepoError(repo, err)
		}

		for _, issue := range issues {
			events = append(events, RawEvent{
				Kind:                EventKindIssue,
				RepoFullName:        repo.FullName,
				ExternalID:          strconv.Itoa(issue.GetNumber()),
				AuthorLogin:         issue.GetUser().GetLogin(),
				Title:               issue.GetTitle(),
				State:               issue.GetState(),
				Timestamp:           issue.GetUpdatedAt().Time,
				IsPullRequestShadow: issue.IsPullRequest(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return events, nil
}

// classifyRepoError separates repository-scoped failures from fatal ones.
// Forbidden, missing, and empty repositories are expected in any sufficiently
// large account and must not take down the run; auth and transport breakage
// must, or the root cause is silently hidden behind a wall of skips.
func classifyRepoError(repo RepoRef, err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusForbidden:
			return &SkipRepoError{Repo: repo.FullName, Reason: "forbidden"}
		case http.StatusNotFound:
			return &SkipRepoError{Repo: repo.FullName, Reason: "not_found"}
		case http.StatusConflict:
			// GitHub answers 409 for commit listings on empty repositories.
			return &SkipRepoError{Repo: repo.FullName, Reason: "empty"}
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: authentication rejected: %v", ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%w: fetching events for %s: %v", ErrUnavailable, repo.FullName, err)
}
