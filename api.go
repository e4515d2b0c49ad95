package scrycache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/scrycache/codec"
	"github.com/unkn0wn-root/scrycache/hotcache"
	sclog "github.com/unkn0wn-root/scrycache/log"
	"github.com/unkn0wn-root/scrycache/store"
	"github.com/unkn0wn-root/scrycache/transport"
)

// Fields and Logger alias the log package so configuring Options does not
// need a second import.
type (
	Fields = sclog.Fields
	Logger = sclog.Logger
)

// Cache is the public lookup surface.
type Cache interface {
	// Resolve answers one lookup by exactly one key space. It returns
	// (nil, false, nil) when neither the local store nor the remote
	// endpoint produced the card - callers must treat "not found" and
	// "transport unreachable" identically.
	Resolve(ctx context.Context, sel Selector) (*Card, bool, error)

	// ImagePath returns the local file path for one art format of card,
	// downloading the image on first use.
	ImagePath(ctx context.Context, card *Card, format string) (string, error)

	// Refresh forces a whole-corpus resynchronization from the configured
	// bulk dataset. Errors are fatal, never swallowed.
	Refresh(ctx context.Context) error

	// Dir returns the directory holding the store file and downloaded
	// art. Other libraries may store data alongside.
	Dir() string

	// Close releases the store and the hot cache.
	Close(ctx context.Context) error
}

// Options tune the cache. Every field is optional: zero values select a
// SQLite store under the user cache directory, a paced HTTP transport, JSON
// payload encoding, and no hot cache.
type Options struct {
	// Application namespaces the on-disk cache directory.
	// Default "scrycache".
	Application string
	// Version further namespaces the directory; empty means unversioned.
	Version string
	// Dir overrides directory resolution entirely.
	Dir string

	Store     store.Store           // nil => SQLite under Dir
	Transport transport.Transport   // nil => paced HTTP client
	HotCache  hotcache.Cache        // nil => disabled
	Codec     codec.Codec[Document] // nil => codec.JSON

	Logger Logger // nil => logging disabled
	Hooks  Hooks  // nil => NopHooks

	RefreshPeriod time.Duration // 0 => 12 weeks
	ResponseTTL   time.Duration // 0 => 24h
	DatasetType   string        // "" => "default_cards"
	BaseURL       string        // "" => https://api.scryfall.com

	// DisableAutoRefresh skips the staleness check at construction time.
	// Lookups still work against whatever the store holds; call Refresh
	// explicitly when needed.
	DisableAutoRefresh bool

	// Now overrides the clock. Tests use this to pin TTL boundaries.
	Now func() time.Time
}

// New constructs a cache. When the local dataset is stale (or the store is
// fresh, whose metadata starts at zero), a bulk refresh runs before New
// returns; its failure aborts construction.
func New(ctx context.Context, opts Options) (Cache, error) {
	return newCache(ctx, opts)
}
