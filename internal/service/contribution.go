package service

import (
	"context"
	"fmt"

	"contribledger.app/api-server/internal/model"
	"contribledger.app/api-server/internal/store"
)

// ContributionService is the read side of the ledger.
type ContributionService interface {
	// List returns persisted contributions ordered by occurrence time,
	// newest first. An empty username returns the whole ledger.
	List(ctx context.Context, username string) ([]model.ContributionRecord, error)
}

type contributionService struct {
	ledger store.ContributionStore
}

func NewContributionService(ledger store.ContributionStore) ContributionService {
	return &contributionService{ledger: ledger}
}

func (s *contributionService) List(ctx context.Context, username string) ([]model.ContributionRecord, error) {
	var (
		records []model.ContributionRecord
		err     error
	)
	if username == "" {
		records, err = s.ledger.ListByOccurredAtDesc(ctx)
	} else {
		records, err = s.ledger.ListByUser(ctx, username)
	}
	if err != nil {
		return nil, fmt.Errorf("listing contributions: %w", err)
	}
	return records, nil
}
