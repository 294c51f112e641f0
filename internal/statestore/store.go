// Package statestore persists small pieces of UI state (search filters, slip
// lookups, draft forms) under distinct keys. All operations are best-effort:
// a failed read or write is logged and swallowed, never surfaced to the page.
// Writes are last-writer-wins; each page owns its key namespace exclusively.
package statestore

import "context"

// Well-known key namespaces.
const (
	KeySearchFilters = "portal:search:filters"
	KeySlipLookup    = "portal:slip:lookup"
	KeyResumePath    = "portal:nav:resume"

	draftPrefix = "portal:draft:"
	shellPrefix = "portal:shell:"
)

// DraftKey returns the key for a draft registration form.
func DraftKey(id string) string {
	return draftPrefix + id
}

// ShellKey returns the key for one app-shell cache entry.
func ShellKey(version, path string) string {
	return shellPrefix + version + ":" + path
}

// ShellVersionPrefix returns the key prefix covering one cache version.
func ShellVersionPrefix(version string) string {
	return shellPrefix + version + ":"
}

// ShellPrefix is the key prefix covering all cache versions.
const ShellPrefix = shellPrefix

// KV is a best-effort key-value store for UI state. Get reports whether a
// value was found and decoded; Put and Delete fail silently.
type KV interface {
	Get(ctx context.Context, key string, v interface{}) bool
	Put(ctx context.Context, key string, v interface{})
	Delete(ctx context.Context, key string)

	// Keys lists stored keys with the given prefix, best-effort.
	Keys(ctx context.Context, prefix string) []string
}
