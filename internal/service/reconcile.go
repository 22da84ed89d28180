package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"contribledger.app/api-server/common/id"
	"contribledger.app/api-server/common/logger"
	"contribledger.app/api-server/internal/ingest"
	"contribledger.app/api-server/internal/model"
	"contribledger.app/api-server/internal/source"
	"contribledger.app/api-server/internal/store"
)

// ReconcileService runs one end-to-end reconciliation pass: enumerate
// repositories, fetch and normalize their activity, and commit it to the
// ledger. One repository's failure never fails the run; only a source-level
// failure (broken credential, transport) does.
type ReconcileService interface {
	Run(ctx context.Context, username string) (*RunResult, error)
}

type SkippedRepo struct {
	Repo   string `json:"repo"`
	Reason string `json:"reason"`
}

// RunResult summarizes one reconciliation pass. It is reported upward and
// discarded; the ledger rows are the only durable output.
type RunResult struct {
	Outcomes            []model.ContributionRecord
	Skipped             []SkippedRepo
	RepositoriesScanned int
	RecordsIngested     int
	RecordsFailed       int
}

type reconcileService struct {
	source      source.Source
	ledger      store.ContributionStore
	concurrency int
}

func NewReconcileService(src source.Source, ledger store.ContributionStore, concurrency int) ReconcileService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &reconcileService{
		source:      src,
		ledger:      ledger,
		concurrency: concurrency,
	}
}

// repoOutcome is the result of processing exactly one repository. Exactly
// one of skip and fatal may be set; records accumulated before a mid-repo
// skip are kept, since they are already in the ledger.
type repoOutcome struct {
	skip     *SkippedRepo
	fatal    error
	records  []model.ContributionRecord
	ingested int
	failed   int
}

var eventKinds = []source.EventKind{
	source.EventKindCommit,
	source.EventKindPullRequest,
	source.EventKindIssue,
}

func (s *reconcileService) Run(ctx context.Context, username string) (*RunResult, error) {
	runID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RunID:     logger.Ptr(runID),
		Username:  logger.Ptr(username),
		Component: "ledger.reconciler",
	})

	sc := logger.StartSpan(ctx, "reconciler.run")
	defer sc.End()
	ctx = sc.Context()

	repos, err := s.source.ListRepositories(ctx, username)
	if err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("listing repositories: %w", err)
	}

	slog.InfoContext(ctx, "reconciliation started", "repos", len(repos))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]repoOutcome, len(repos))
	var wg sync.WaitGroup

	// Bound concurrent repository work to stay inside the source API's
	// rate-limit budget. Within one repository everything is sequential,
	// which keeps failure isolation simple.
	sem := make(chan struct{}, s.concurrency)

	for i, repo := range repos {
		wg.Add(1)
		go func(idx int, repo source.RepoRef) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if runCtx.Err() != nil {
				return
			}

			outcomes[idx] = s.processRepoSafe(runCtx, repo)
			if outcomes[idx].fatal != nil {
				// A fatal source failure poisons every remaining
				// repository; stop the run instead of burying it
				// under skips.
				cancel()
			}
		}(i, repo)
	}

	wg.Wait()

	result := &RunResult{
		Outcomes: make([]model.ContributionRecord, 0),
		Skipped:  make([]SkippedRepo, 0),
	}

	var fatal error
	for _, out := range outcomes {
		if out.fatal != nil {
			// Once one repository fails fatally the rest die of context
			// cancellation; report the root cause, not a casualty.
			if fatal == nil || (isCancellation(fatal) && !isCancellation(out.fatal)) {
				fatal = out.fatal
			}
		}
		if out.skip != nil {
			result.Skipped = append(result.Skipped, *out.skip)
		} else if out.fatal == nil {
			result.RepositoriesScanned++
		}
		result.Outcomes = append(result.Outcomes, out.records...)
		result.RecordsIngested += out.ingested
		result.RecordsFailed += out.failed
	}

	if fatal != nil {
		sc.RecordError(fatal)
		return nil, fatal
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconciliation cancelled: %w", err)
	}

	slog.InfoContext(ctx, "reconciliation finished",
		"repos_scanned", result.RepositoriesScanned,
		"repos_skipped", len(result.Skipped),
		"records_ingested", result.RecordsIngested,
		"records_failed", result.RecordsFailed,
	)

	return result, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *reconcileService) processRepoSafe(ctx context.Context, repo source.RepoRef) (out repoOutcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered while processing repository",
				"panic", r,
				"repo", repo.FullName,
			)
			out.skip = &SkippedRepo{Repo: repo.FullName, Reason: fmt.Sprintf("panic: %v", r)}
			out.fatal = nil
		}
	}()
	return s.processRepo(ctx, repo)
}

func (s *reconcileService) processRepo(ctx context.Context, repo source.RepoRef) repoOutcome {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Repo: logger.Ptr(repo.FullName)})

	sc := logger.StartSpan(ctx, "reconciler.process_repo")
	defer sc.End()
	ctx = sc.Context()

	var out repoOutcome

	for _, kind := range eventKinds {
		if ctx.Err() != nil {
			return out
		}

		events, err := s.source.ListEvents(ctx, repo, kind)
		if err != nil {
			var skipErr *source.SkipRepoError
			if errors.As(err, &skipErr) {
				slog.WarnContext(ctx, "repository skipped", "reason", skipErr.Reason)
				out.skip = &SkippedRepo{Repo: repo.FullName, Reason: skipErr.Reason}
				return out
			}
			sc.RecordError(err)
			out.fatal = err
			return out
		}

		for _, event := range events {
			if ctx.Err() != nil {
				return out
			}

			rec, ok := ingest.Normalize(event, repo.Owner)
			if !ok {
				slog.DebugContext(ctx, "event skipped during normalization",
					"kind", event.Kind,
					"external_id", event.ExternalID,
				)
				continue
			}

			if _, err := s.ledger.Upsert(ctx, rec); err != nil {
				// Soft failure: one record must not take down the rest
				// of the repository, let alone the run.
				slog.WarnContext(ctx, "contribution write failed",
					"error", err,
					"kind", rec.Kind,
					"external_id", rec.ExternalID,
				)
				out.failed++
				continue
			}

			out.ingested++
			out.records = append(out.records, *rec)
		}
	}

	return out
}
