package dto

import "contribledger.app/api-server/internal/service"

type SkippedRepoResponse struct {
	Repo   string `json:"repo"`
	Reason string `json:"reason"`
}

type ReconcileResponse struct {
	User                string                 `json:"user"`
	TotalRepos          int                    `json:"total_repos"`
	TotalOutcomes       int                    `json:"total_outcomes"`
	Outcomes            []ContributionResponse `json:"outcomes"`
	RepositoriesSkipped []SkippedRepoResponse  `json:"repositories_skipped"`
	RecordsFailed       int                    `json:"records_failed"`
}

func ToReconcileResponse(user string, result *service.RunResult) ReconcileResponse {
	skipped := make([]SkippedRepoResponse, len(result.Skipped))
	for i, s := range result.Skipped {
		skipped[i] = SkippedRepoResponse{Repo: s.Repo, Reason: s.Reason}
	}
	return ReconcileResponse{
		User: user,
		// Every enumerated repository counts, skipped ones included; the
		// skipped list carries the breakdown.
		TotalRepos:          result.RepositoriesScanned + len(result.Skipped),
		TotalOutcomes:       len(result.Outcomes),
		Outcomes:            ToContributionResponses(result.Outcomes),
		RepositoriesSkipped: skipped,
		RecordsFailed:       result.RecordsFailed,
	}
}
