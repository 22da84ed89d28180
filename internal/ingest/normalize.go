package ingest

import (
	"contribledger.app/api-server/internal/model"
	"contribledger.app/api-server/internal/source"
)

// Normalize converts one raw event into a ledger record. The second return
// is false when the event must be skipped: commits lacking the metadata
// needed to deduplicate or attribute them, and issues that shadow a pull
// request the source already reports separately.
func Normalize(event source.RawEvent, repoOwner string) (*model.ContributionRecord, bool) {
	switch event.Kind {
	case source.EventKindCommit:
		if event.ExternalID == "" || event.Timestamp.IsZero() {
			return nil, false
		}
		return &model.ContributionRecord{
			CanonicalUser: ResolveAuthor(event.AuthorLogin, repoOwner),
			Repo:          event.RepoFullName,
			Kind:          model.KindCommit,
			ExternalID:    event.ExternalID,
			Message:       event.Title,
			OccurredAt:    event.Timestamp,
		}, true

	case source.EventKindPullRequest:
		status := event.State
		if event.MergedAt != nil {
			status = model.StatusMerged
		}
		return &model.ContributionRecord{
			CanonicalUser: ResolveAuthor(event.AuthorLogin, repoOwner),
			Repo:          event.RepoFullName,
			Kind:          model.KindPullRequest,
			ExternalID:    event.ExternalID,
			Status:        status,
			Message:       event.Title,
			OccurredAt:    event.Timestamp,
		}, true

	case source.EventKindIssue:
		if event.IsPullRequestShadow {
			return nil, false
		}
		return &model.ContributionRecord{
			CanonicalUser: ResolveAuthor(event.AuthorLogin, repoOwner),
			Repo:          event.RepoFullName,
			Kind:          model.KindIssue,
			ExternalID:    event.ExternalID,
			Status:        event.State,
			Message:       event.Title,
			OccurredAt:    event.Timestamp,
		}, true
	}

	return nil, false
}
