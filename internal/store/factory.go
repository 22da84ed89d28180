package store

import (
	"contribledger.app/api-server/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Contributions() ContributionStore {
	return newContributionStore(s.queries)
}
