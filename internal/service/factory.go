package service

import (
	"contribledger.app/api-server/core/config"
	"contribledger.app/api-server/internal/source"
	"contribledger.app/api-server/internal/store"
)

type Services struct {
	stores    *store.Stores
	source    source.Source
	ingestCfg config.IngestConfig
}

func NewServices(stores *store.Stores, src source.Source, ingestCfg config.IngestConfig) *Services {
	return &Services{
		stores:    stores,
		source:    src,
		ingestCfg: ingestCfg,
	}
}

func (s *Services) Reconcile() ReconcileService {
	return NewReconcileService(s.source, s.stores.Contributions(), s.ingestCfg.Concurrency)
}

func (s *Services) Contributions() ContributionService {
	return NewContributionService(s.stores.Contributions())
}
