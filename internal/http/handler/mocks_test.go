package handler_test

import (
	"context"

	"contribledger.app/api-server/internal/model"
	"contribledger.app/api-server/internal/service"
)

type mockReconcileService struct {
	runFn func(ctx context.Context, username string) (*service.RunResult, error)
}

func (m *mockReconcileService) Run(ctx context.Context, username string) (*service.RunResult, error) {
	if m.runFn != nil {
		return m.runFn(ctx, username)
	}
	return &service.RunResult{
		Outcomes: []model.ContributionRecord{},
		Skipped:  []service.SkippedRepo{},
	}, nil
}

type mockContributionService struct {
	listFn func(ctx context.Context, username string) ([]model.ContributionRecord, error)
}

func (m *mockContributionService) List(ctx context.Context, username string) ([]model.ContributionRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, username)
	}
	return nil, nil
}
