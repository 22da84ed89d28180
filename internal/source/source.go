package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable marks failures of the event source itself: broken
// credentials or transport. Errors wrapping it abort the whole
// reconciliation run; everything else is scoped to one repository.
var ErrUnavailable = errors.New("event source unavailable")

// SkipRepoError reports a repository-scoped failure that the reconciliation
// driver records and moves past: the repository is empty, gone, or not
// accessible to the current credential.
type SkipRepoError struct {
	Repo   string
	Reason string
}

func (e *SkipRepoError) Error() string {
	return fmt.Sprintf("skipping repository %s: %s", e.Repo, e.Reason)
}

// EventKind selects which activity stream ListEvents fetches.
type EventKind string

const (
	EventKindCommit      EventKind = "commit"
	EventKindPullRequest EventKind = "pull_request"
	EventKindIssue       EventKind = "issue"
)

// RepoRef identifies one repository reachable by the current credential.
// Owner doubles as the attribution fallback for events without an author.
type RepoRef struct {
	Owner    string
	Name     string
	FullName string
}

// RawEvent is one upstream activity record before normalization. It lives
// only for the duration of a reconciliation pass.
type RawEvent struct {
	Timestamp    time.Time
	MergedAt     *time.Time
	Kind         EventKind
	RepoFullName string
	ExternalID   string
	AuthorLogin  string
	Title        string
	State        string
	// Issues that the source also reports as pull requests. Excluded
	// before normalization to avoid double-counting the PR event.
	IsPullRequestShadow bool
}

// Source is the capability the reconciliation driver consumes: enumerate
// repositories and fetch their raw activity, with failures classified as
// either repository-scoped (*SkipRepoError) or fatal (ErrUnavailable).
type Source interface {
	ListRepositories(ctx context.Context, username string) ([]RepoRef, error)
	ListEvents(ctx context.Context, repo RepoRef, kind EventKind) ([]RawEvent, error)
}
