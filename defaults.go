package scrycache

import "time"

const (
	// DefaultResponseTTL bounds how long a cached URL response is served
	// without refetching. Every lookup path uses this single window.
	DefaultResponseTTL = 24 * time.Hour

	// DefaultRefreshPeriod is how long the whole local dataset stays valid
	// before construction triggers a bulk refresh.
	DefaultRefreshPeriod = 12 * 7 * 24 * time.Hour

	// DefaultDatasetType names the bulk export used to (re)build the store.
	DefaultDatasetType = "default_cards"

	// DefaultBaseURL is the upstream API root.
	DefaultBaseURL = "https://api.scryfall.com"

	// DefaultApplication namespaces the on-disk cache directory.
	DefaultApplication = "scrycache"
)

const (
	dbFileName  = "scrycache.sqlite3"
	artCacheDir = "art_cache"
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
