package store

import (
	"context"

	"contribledger.app/api-server/internal/model"
)

// WriteOutcome reports what an upsert did. Duplicate is not an error: the
// ledger is idempotent under replays of the same event stream, and the
// uniqueness constraint is enforced by the database so concurrent writers
// need no in-process coordination.
type WriteOutcome string

const (
	WriteOutcomeWritten   WriteOutcome = "written"
	WriteOutcomeDuplicate WriteOutcome = "duplicate"
)

type ContributionStore interface {
	Upsert(ctx context.Context, rec *model.ContributionRecord) (WriteOutcome, error)
	ListByOccurredAtDesc(ctx context.Context) ([]model.ContributionRecord, error)
	ListByUser(ctx context.Context, canonicalUser string) ([]model.ContributionRecord, error)
}
