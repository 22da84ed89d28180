package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"contribledger.app/api-server/common/id"
	"contribledger.app/api-server/core/db/sqlc"
	"contribledger.app/api-server/internal/model"
)

type contributionStore struct {
	queries *sqlc.Queries
}

func newContributionStore(queries *sqlc.Queries) ContributionStore {
	return &contributionStore{queries: queries}
}

func (s *contributionStore) Upsert(ctx context.Context, rec *model.ContributionRecord) (WriteOutcome, error) {
	if rec.ID == 0 {
		rec.ID = id.New()
	}

	row, err := s.queries.UpsertContribution(ctx, sqlc.UpsertContributionParams{
		ID:            rec.ID,
		CanonicalUser: rec.CanonicalUser,
		Repo:          rec.Repo,
		Kind:          string(rec.Kind),
		ExternalID:    rec.ExternalID,
		Status:        rec.Status,
		Message:       rec.Message,
		OccurredAt:    pgtype.Timestamptz{Time: rec.OccurredAt, Valid: true},
	})
	if err != nil {
		// ON CONFLICT DO NOTHING returns no row when the event key already
		// exists; the record is in the ledger either way. The generated ID
		// was never committed, so don't let the caller see it.
		if errors.Is(err, pgx.ErrNoRows) {
			rec.ID = 0
			return WriteOutcomeDuplicate, nil
		}
		return "", err
	}

	*rec = *toContributionModel(row)
	return WriteOutcomeWritten, nil
}

func (s *contributionStore) ListByOccurredAtDesc(ctx context.Context) ([]model.ContributionRecord, error) {
	rows, err := s.queries.ListContributionsByOccurredAt(ctx)
	if err != nil {
		return nil, err
	}
	return toContributionModels(rows), nil
}

func (s *contributionStore) ListByUser(ctx context.Context, canonicalUser string) ([]model.ContributionRecord, error) {
	rows, err := s.queries.ListContributionsByUser(ctx, canonicalUser)
	if err != nil {
		return nil, err
	}
	return toContributionModels(rows), nil
}

func toContributionModel(row sqlc.Contribution) *model.ContributionRecord {
	return &model.ContributionRecord{
		ID:            row.ID,
		CanonicalUser: row.CanonicalUser,
		Repo:          row.Repo,
		Kind:          model.ContributionKind(row.Kind),
		ExternalID:    row.ExternalID,
		Status:        row.Status,
		Message:       row.Message,
		OccurredAt:    row.OccurredAt.Time,
		CreatedAt:     row.CreatedAt.Time,
	}
}

func toContributionModels(rows []sqlc.Contribution) []model.ContributionRecord {
	result := make([]model.ContributionRecord, len(rows))
	for i, row := range rows {
		result[i] = *toContributionModel(row)
	}
	return result
}
