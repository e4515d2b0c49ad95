// Package store defines the persistence contract for scrycache.
//
// The store owns three record kinds: card records (permanent until the next
// bulk refresh), URL response cache entries (overwritten per fetch), and a
// single metadata row tracking the last bulk refresh. Implementations must
// run every mutating or multi-step operation inside one transaction that
// commits or rolls back atomically, and must never hold a transaction open
// across a network call.
package store

import (
	"context"
)

// CardRecord is one persisted card plus its index keys. Payload holds the
// codec-encoded upstream document; the store treats it as opaque bytes.
type CardRecord struct {
	ID      string // primary key, immutable once created
	Name    string // secondary index, not unique
	MTGOID  *int64 // secondary index, not unique; nil when upstream omits it
	Payload []byte
}

// Metadata is the singleton bookkeeping row for the whole store.
type Metadata struct {
	LastRefresh   int64 // unix seconds of the last successful bulk refresh
	SchemaVersion string
}

// URLEntry is one cached URL response. At most one entry exists per URL;
// a refetch replaces it wholesale.
type URLEntry struct {
	URL       string // primary key
	FetchedAt int64  // unix seconds
	Payload   []byte
}

// Store is the persistence surface consumed by the cache.
type Store interface {
	// GetCard returns the card with the given ID, or ok=false when absent.
	GetCard(ctx context.Context, id string) (CardRecord, bool, error)
	// FindCardsByName scans the name index. Name is not unique.
	FindCardsByName(ctx context.Context, name string) ([]CardRecord, error)
	// FindCardsByMTGOID scans the MTGO ID index. The ID is not unique.
	FindCardsByMTGOID(ctx context.Context, id int64) ([]CardRecord, error)
	// InsertCard persists one new card record (resolver write-back path).
	InsertCard(ctx context.Context, rec CardRecord) error
	// ClearCards deletes every card record.
	ClearCards(ctx context.Context) error
	// ReplaceAllCards atomically swaps the whole card dataset: within a
	// single transaction it clears existing cards, inserts every record
	// produced by next (which signals exhaustion with io.EOF), and stamps
	// the metadata row with refreshedAt. A concurrent reader observes
	// either the old dataset or the new one, never an empty store.
	ReplaceAllCards(ctx context.Context, refreshedAt int64, next func() (CardRecord, error)) error

	// Metadata returns the singleton metadata row, creating it with
	// LastRefresh=0 when absent so a fresh store forces a bulk refresh.
	Metadata(ctx context.Context) (Metadata, error)
	// SetLastRefresh updates the bulk refresh timestamp.
	SetLastRefresh(ctx context.Context, ts int64) error

	// GetURLEntry returns the cached response for url, or ok=false.
	GetURLEntry(ctx context.Context, url string) (URLEntry, bool, error)
	// PutURLEntry inserts or overwrites the cached response for entry.URL.
	PutURLEntry(ctx context.Context, entry URLEntry) error

	// Close releases resources.
	Close() error
}
