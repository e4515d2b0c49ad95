// Package scrycache is a persistent read-through cache for Scryfall card
// data. Lookups by Scryfall ID, exact name, or MTGO ID are answered from a
// local store first and fall back to the API, with a one-day URL response
// cache on the fallback path. The whole local dataset is replaced from a
// bulk export once it ages past the refresh period (twelve weeks by
// default).
//
// Components:
//   - store.Store: persistence for cards, URL responses and refresh
//     metadata (SQLite by default).
//   - transport.Transport: paced HTTP client, one request per 100ms shared
//     across lookups, manifest and dataset fetches.
//   - hotcache.Cache: optional in-process layer for hot by-ID reads.
//   - codec.Codec: on-disk payload encoding (JSON by default).
//
// Lookup policy per key space:
//
//	id   -> point lookup; a miss falls back to /cards/{id} and writes back
//	name -> exactly one local match wins; otherwise /cards/named?exact=
//	mtgo -> exactly one local match wins; otherwise /cards/mtgo/{id}
//
// Name and MTGO ID are not unique upstream (reprints), so only a single
// local match is trusted. When two or more local matches already exist the
// remote answer is returned without being written back, so an ambiguous
// local state never grows.
//
// Remote failures on the lookup paths are soft: Resolve reports not-found
// and the caller proceeds with local data. Failures during bulk refresh are
// fatal, since a cache that cannot resync is in an unknown state.
package scrycache
