package dto

import (
	"time"

	"contribledger.app/api-server/internal/model"
)

type ContributionResponse struct {
	ID            int64     `json:"id,string"`
	CanonicalUser string    `json:"canonical_user"`
	Repo          string    `json:"repo"`
	Kind          string    `json:"kind"`
	ExternalID    string    `json:"external_id"`
	Status        string    `json:"status,omitempty"`
	Message       string    `json:"message,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func ToContributionResponse(rec model.ContributionRecord) ContributionResponse {
	return ContributionResponse{
		ID:            rec.ID,
		CanonicalUser: rec.CanonicalUser,
		Repo:          rec.Repo,
		Kind:          string(rec.Kind),
		ExternalID:    rec.ExternalID,
		Status:        rec.Status,
		Message:       rec.Message,
		OccurredAt:    rec.OccurredAt,
	}
}

func ToContributionResponses(records []model.ContributionRecord) []ContributionResponse {
	out := make([]ContributionResponse, len(records))
	for i, rec := range records {
		out[i] = ToContributionResponse(rec)
	}
	return out
}

type ListContributionsResponse struct {
	Outcomes []ContributionResponse `json:"outcomes"`
}
