package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"contribledger.app/api-server/common/id"
	"contribledger.app/api-server/internal/model"
	"contribledger.app/api-server/internal/service"
	"contribledger.app/api-server/internal/source"
	"contribledger.app/api-server/internal/store"
)

func repoRef(owner, name string) source.RepoRef {
	return source.RepoRef{Owner: owner, Name: name, FullName: owner + "/" + name}
}

func commitEvent(repo source.RepoRef, sha string) source.RawEvent {
	return source.RawEvent{
		Kind:         source.EventKindCommit,
		RepoFullName: repo.FullName,
		ExternalID:   sha,
		AuthorLogin:  repo.Owner,
		Title:        "commit " + sha,
		Timestamp:    time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

var _ = Describe("ReconcileService", func() {
	var (
		ctx      context.Context
		src      *mockSource
		ledger   *mockContributionStore
		mu       sync.Mutex
		upserted []model.ContributionRecord
		svc      service.ReconcileService
	)

	BeforeEach(func() {
		ctx = context.Background()
		src = &mockSource{}
		ledger = &mockContributionStore{}
		upserted = nil

		ledger.upsertFn = func(_ context.Context, rec *model.ContributionRecord) (store.WriteOutcome, error) {
			mu.Lock()
			defer mu.Unlock()
			upserted = append(upserted, *rec)
			return store.WriteOutcomeWritten, nil
		}

		Expect(id.Init(1)).To(Succeed())
		svc = service.NewReconcileService(src, ledger, 2)
	})

	It("ingests every event of every repository", func() {
		repoA := repoRef("octocat", "alpha")
		repoB := repoRef("octocat", "beta")

		src.listRepositoriesFn = func(_ context.Context, username string) ([]source.RepoRef, error) {
			Expect(username).To(Equal("octocat"))
			return []source.RepoRef{repoA, repoB}, nil
		}
		src.listEventsFn = func(_ context.Context, repo source.RepoRef, kind source.EventKind) ([]source.RawEvent, error) {
			if kind != source.EventKindCommit {
				return nil, nil
			}
			return []source.RawEvent{
				commitEvent(repo, repo.Name+"-1"),
				commitEvent(repo, repo.Name+"-2"),
				commitEvent(repo, repo.Name+"-3"),
			}, nil
		}

		result, err := svc.Run(ctx, "octocat")

		Expect(err).NotTo(HaveOccurred())
		Expect(result.RepositoriesScanned).To(Equal(2))
		Expect(result.RecordsIngested).To(Equal(6))
		Expect(result.RecordsFailed).To(BeZero())
		Expect(result.Skipped).To(BeEmpty())
		Expect(result.Outcomes).To(HaveLen(6))
		Expect(upserted).To(HaveLen(6))
	})

	It("isolates a skipped repository from the rest of the run", func() {
		repos := []source.RepoRef{
			repoRef("octocat", "alpha"),
			repoRef("octocat", "broken"),
			repoRef("octocat", "gamma"),
		}

		src.listRepositoriesFn = func(_ context.Context, _ string) ([]source.RepoRef, error) {
			return repos, nil
		}
		src.listEventsFn = func(_ context.Context, repo source.RepoRef, kind source.EventKind) ([]source.RawEvent, error) {
			if repo.Name == "broken" {
				return nil, &source.SkipRepoError{Repo: repo.FullName, Reason: "forbidden"}
			}
			if kind != source.EventKindCommit {
				return nil, nil
			}
			return []source.RawEvent{commitEvent(repo, repo.Name+"-1")}, nil
		}

		result, err := svc.Run(ctx, "octocat")

		Expect(err).NotTo(HaveOccurred())
		Expect(result.RepositoriesScanned).To(Equal(2))
		Expect(result.Skipped).To(ConsistOf(service.SkippedRepo{
			Repo:   "octocat/broken",
			Reason: "forbidden",
		}))
		Expect(result.RecordsIngested).To(Equal(2))
	})

	It("keeps records written before a mid-repository skip", func() {
		repo := repoRef("octocat", "alpha")

		src.listRepositoriesFn = func(_ context.Context, _ string) ([]source.RepoRef, error) {
			return []source.RepoRef{repo}, nil
		}
		src.listEventsFn = func(_ context.Context, repo source.RepoRef, kind source.EventKind) ([]source.RawEvent, error) {
			switch kind {
			case source.EventKindCommit:
				return []source.RawEvent{commitEvent(repo, "abc")}, nil
			default:
				// Access revoked between the commit fetch and the
				// pull request fetch.
				return nil, &source.SkipRepoError{Repo: repo.FullName, Reason: "forbidden"}
			}
		}

		result, err := svc.Run(ctx, "octocat")

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Outcomes).To(HaveLen(1))
		Expect(result.RecordsIngested).To(Equal(1))
		Expect(result.Skipped).To(HaveLen(1))
		Expect(result.RepositoriesScanned).To(BeZero())
	})

	It("counts duplicates as ingested so replays converge", func() {
		repo := repoRef("octocat", "alpha")

		src.listRepositoriesFn = func(_ context.Context, _ string) ([]source.RepoRef, error) {
			return []source.RepoRef{repo}, nil
		}
		src.listEventsFn = func(_ context.Context, repo source.RepoRef, kind source.EventKind) ([]source.RawEvent, error) {
			if kind != source.EventKindCommit {
				return nil, nil
			}
			return []source.RawEvent{commitEvent(repo, "abc")}, nil
		}
		ledger.upsertFn = func(_ context.Context, _ *model.ContributionRecord) (store.WriteOutcome, error) {
			return store.WriteOutcomeDuplicate, nil
		}

		result, err := svc.Run(ctx, "octocat")

		Expect(err).NotTo(HaveOccurred())
		Expect(result.RecordsIngested).To(Equal(1))
		Expect(result.RecordsFailed).To(BeZero())
	})

	It("records write failures without failing the run", func() {
		repo := repoRef("octocat", "alpha")

		src.listRepositoriesFn = func(_ context.Context, _ string) ([]source.RepoRef, error) {
			return []source.RepoRef{repo}, nil
		}
		src.listEventsFn = func(_ context.Context, repo source.RepoRef, kind source.EventKind) ([]source.RawEvent, error) {
			if kind != source.EventKindCommit {
				return nil, nil
			}
			return []source.RawEvent{
				commitEvent(repo, "good"),
				commitEvent(repo, "bad"),
			}, nil
		}
		ledger.upsertFn = func(_ context.Context, rec *model.ContributionRecord) (store.WriteOutcome, error) {
			if rec.ExternalID == "bad" {
				return "", errors.New("connection reset")
			}
			return store.WriteOutcomeWritten, nil
		}

		result, err := svc.Run(ctx, "octocat")

		Expect(err).NotTo(HaveOccurred())
		Expect(result.RecordsIngested).To(Equal(1))
		Expect(result.RecordsFailed).To(Equal(1))
		Expect(result.Outcomes).To(HaveLen(1))
	})

	It("drops events that fail normalization", func() {
		repo := repoRef("octocat", "alpha")

		src.listRepositoriesFn = func(_ context.Context, _ string) ([]source.RepoRef, error) {
			return []source.RepoRef{repo}, nil
		}
		src.listEventsFn = func(_ context.Context, repo source.RepoRef, kind source.EventKind) ([]source.RawEvent, error) {
			switch kind {
			case source.EventKindCommit:
				return []source.RawEvent{
					commitEvent(repo, "good"),
					{Kind: source.EventKindCommit, RepoFullName: repo.FullName}, // no sha, no date
				}, nil
			case source.EventKindIssue:
				return []source.RawEvent{{
					Kind:                source.EventKindIssue,
					RepoFullName:        repo.FullName,
					ExternalID:          "9",
					IsPullRequestShadow: true,
					Timestamp:           time.Now(),
				}}, nil
			}
			return nil, nil
		}

		result, err := svc.Run(ctx, "octocat")

		Expect(err).NotTo(HaveOccurred())
		Expect(result.RecordsIngested).To(Equal(1))
		Expect(result.RecordsFailed).To(BeZero())
	})

	It("aborts the whole run when the source becomes unavailable", func() {
		repos := []source.RepoRef{
			repoRef("octocat", "alpha"),
			repoRef("octocat", "beta"),
		}

		src.listRepositoriesFn = func(_ context.Context, _ string) ([]source.RepoRef, error) {
			return repos, nil
		}
		src.listEventsFn = func(_ context.Context, repo source.RepoRef, _ source.EventKind) ([]source.RawEvent, error) {
			if repo.Name == "beta" {
				return nil, fmt.Errorf("%w: authentication rejected", source.ErrUnavailable)
			}
			return nil, nil
		}

		result, err := svc.Run(ctx, "octocat")

		Expect(err).To(MatchError(source.ErrUnavailable))
		Expect(result).To(BeNil())
	})

	It("stops writing when the run context is cancelled mid-repository", func() {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		repo := repoRef("octocat", "alpha")

		src.listRepositoriesFn = func(_ context.Context, _ string) ([]source.RepoRef, error) {
			return []source.RepoRef{repo}, nil
		}
		src.listEventsFn = func(_ context.Context, repo source.RepoRef, kind source.EventKind) ([]source.RawEvent, error) {
			if kind != source.EventKindCommit {
				return nil, nil
			}
			events := make([]source.RawEvent, 10)
			for i := range events {
				events[i] = commitEvent(repo, fmt.Sprintf("sha-%d", i))
			}
			return events, nil
		}

		var writes int
		ledger.upsertFn = func(_ context.Context, _ *model.ContributionRecord) (store.WriteOutcome, error) {
			mu.Lock()
			defer mu.Unlock()
			writes++
			if writes == 2 {
				// The in-flight write completes; nothing after it starts.
				cancel()
			}
			return store.WriteOutcomeWritten, nil
		}

		result, err := svc.Run(runCtx, "octocat")

		Expect(err).To(MatchError(context.Canceled))
		Expect(result).To(BeNil())
		Expect(writes).To(Equal(2))
	})

	It("reports the root-cause failure when cancellation fans out", func() {
		repos := []source.RepoRef{
			repoRef("octocat", "alpha"),
			repoRef("octocat", "beta"),
		}

		src.listRepositoriesFn = func(_ context.Context, _ string) ([]source.RepoRef, error) {
			return repos, nil
		}
		src.listEventsFn = func(ctx context.Context, repo source.RepoRef, _ source.EventKind) ([]source.RawEvent, error) {
			if repo.Name == "beta" {
				return nil, fmt.Errorf("%w: authentication rejected", source.ErrUnavailable)
			}
			// The other repository only fails once the run is torn down.
			<-ctx.Done()
			return nil, fmt.Errorf("listing commits: %w", ctx.Err())
		}

		_, err := svc.Run(ctx, "octocat")

		Expect(err).To(MatchError(source.ErrUnavailable))
	})

	It("reconciles two healthy repositories end to end", func() {
		repos := []source.RepoRef{
			repoRef("octocat", "alpha"),
			repoRef("octocat", "beta"),
		}

		src.listRepositoriesFn = func(_ context.Context, _ string) ([]source.RepoRef, error) {
			return repos, nil
		}
		src.listEventsFn = func(_ context.Context, repo source.RepoRef, kind source.EventKind) ([]source.RawEvent, error) {
			switch kind {
			case source.EventKindCommit:
				return []source.RawEvent{
					commitEvent(repo, repo.Name+"-1"),
					commitEvent(repo, repo.Name+"-2"),
					{Kind: source.EventKindCommit, RepoFullName: repo.FullName}, // malformed
				}, nil
			case source.EventKindPullRequest:
				merged := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
				return []source.RawEvent{{
					Kind:         source.EventKindPullRequest,
					RepoFullName: repo.FullName,
					ExternalID:   "1",
					AuthorLogin:  repo.Owner,
					State:        "closed",
					MergedAt:     &merged,
					Timestamp:    merged,
				}}, nil
			}
			return nil, nil
		}

		result, err := svc.Run(ctx, "octocat")

		Expect(err).NotTo(HaveOccurred())
		Expect(result.RecordsIngested).To(Equal(6))
		Expect(result.RepositoriesScanned).To(Equal(2))
		Expect(result.Skipped).To(BeEmpty())
		Expect(result.RecordsFailed).To(BeZero())
		Expect(result.Outcomes).To(HaveLen(6))
	})

	It("fails fast when repository enumeration fails", func() {
		src.listRepositoriesFn = func(_ context.Context, _ string) ([]source.RepoRef, error) {
			return nil, fmt.Errorf("%w: dial tcp: connection refused", source.ErrUnavailable)
		}

		result, err := svc.Run(ctx, "octocat")

		Expect(err).To(MatchError(source.ErrUnavailable))
		Expect(result).To(BeNil())
	})

	It("returns empty collections rather than nil for an idle account", func() {
		src.listRepositoriesFn = func(_ context.Context, _ string) ([]source.RepoRef, error) {
			return []source.RepoRef{}, nil
		}

		result, err := svc.Run(ctx, "octocat")

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Outcomes).NotTo(BeNil())
		Expect(result.Outcomes).To(BeEmpty())
		Expect(result.Skipped).NotTo(BeNil())
		Expect(result.Skipped).To(BeEmpty())
	})

	It("contains a panic in one repository as a skip", func() {
		repos := []source.RepoRef{
			repoRef("octocat", "alpha"),
			repoRef("octocat", "haunted"),
		}

		src.listRepositoriesFn = func(_ context.Context, _ string) ([]source.RepoRef, error) {
			return repos, nil
		}
		src.listEventsFn = func(_ context.Context, repo source.RepoRef, kind source.EventKind) ([]source.RawEvent, error) {
			if repo.Name == "haunted" {
				panic("unexpected nil")
			}
			if kind != source.EventKindCommit {
				return nil, nil
			}
			return []source.RawEvent{commitEvent(repo, "abc")}, nil
		}

		result, err := svc.Run(ctx, "octocat")

		Expect(err).NotTo(HaveOccurred())
		Expect(result.RecordsIngested).To(Equal(1))
		Expect(result.Skipped).To(HaveLen(1))
		Expect(result.Skipped[0].Repo).To(Equal("octocat/haunted"))
		Expect(result.Skipped[0].Reason).To(ContainSubstring("panic"))
	})
})
