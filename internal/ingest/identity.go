package ingest

// ResolveAuthor maps a raw event's author to a canonical contributor
// identity. Events without an explicit author are attributed to the
// repository owner rather than dropped: a deterministic approximation that
// keeps every ingested event attributable.
func ResolveAuthor(login, repoOwner string) string {
	if login != "" {
		return login
	}
	return repoOwner
}
