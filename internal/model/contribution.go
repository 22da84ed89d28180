package model

import "time"

// ContributionKind is the kind of upstream activity a contribution was derived from.
type ContributionKind string

const (
	KindCommit      ContributionKind = "commit"
	KindPullRequest ContributionKind = "pull_request"
	KindIssue       ContributionKind = "issue"
)

// Contribution statuses. Commits carry no status.
const (
	StatusMerged = "merged"
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// ContributionRecord is one ledger entry: a single normalized contribution
// attributed to a canonical user. Rows are immutable once written and
// deduplicated by (repo, kind, external_id).
type ContributionRecord struct {
	OccurredAt    time.Time        `json:"occurred_at"`
	CreatedAt     time.Time        `json:"created_at"`
	CanonicalUser string           `json:"canonical_user"`
	Repo          string           `json:"repo"`
	Kind          ContributionKind `json:"kind"`
	ExternalID    string           `json:"external_id"`
	Status        string           `json:"status,omitempty"`
	Message       string           `json:"message,omitempty"`
	ID            int64            `json:"id"`
}
