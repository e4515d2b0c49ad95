package scrycache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/unkn0wn-root/scrycache/codec"
	"github.com/unkn0wn-root/scrycache/hotcache"
	sclog "github.com/unkn0wn-root/scrycache/log"
	"github.com/unkn0wn-root/scrycache/store"
	"github.com/unkn0wn-root/scrycache/store/sqlite"
	"github.com/unkn0wn-root/scrycache/transport"
)

type cache struct {
	dir   string
	store store.Store
	tr    transport.Transport
	hot   hotcache.Cache
	codec codec.Codec[Document]
	log   sclog.Logger
	hooks Hooks

	refreshPeriod time.Duration
	responseTTL   time.Duration
	datasetType   string
	baseURL       string
	now           func() time.Time
}

func newCache(ctx context.Context, opts Options) (*cache, error) {
	c := &cache{
		hot:           opts.HotCache,
		refreshPeriod: coalesce(opts.RefreshPeriod, DefaultRefreshPeriod),
		responseTTL:   coalesce(opts.ResponseTTL, DefaultResponseTTL),
		datasetType:   coalesce(opts.DatasetType, DefaultDatasetType),
		baseURL:       strings.TrimRight(coalesce(opts.BaseURL, DefaultBaseURL), "/"),
	}

	c.log = opts.Logger
	if c.log == nil {
		c.log = sclog.Nop{}
	}
	c.hooks = opts.Hooks
	if c.hooks == nil {
		c.hooks = NopHooks{}
	}
	c.codec = opts.Codec
	if c.codec == nil {
		c.codec = codec.JSON[Document]{}
	}
	c.now = opts.Now
	if c.now == nil {
		c.now = time.Now
	}

	dir, err := resolveDir(opts)
	if err != nil {
		return nil, err
	}
	c.dir = dir
	c.log.Debug("cache directory resolved", Fields{"dir": dir})

	if opts.Store != nil {
		c.store = opts.Store
	} else {
		s, err := sqlite.Open(filepath.Join(dir, dbFileName), sqlite.Options{Logger: c.log})
		if err != nil {
			return nil, err
		}
		c.store = s
	}

	if opts.Transport != nil {
		c.tr = opts.Transport
	} else {
		c.tr = transport.New(transport.Config{})
	}

	if !opts.DisableAutoRefresh {
		meta, err := c.store.Metadata(ctx)
		if err != nil {
			_ = c.store.Close()
			return nil, err
		}
		if c.refreshDue(meta) {
			c.log.Debug("local dataset is stale; refreshing",
				Fields{"last_refresh": meta.LastRefresh, "period": c.refreshPeriod})
			if err := c.Refresh(ctx); err != nil {
				_ = c.store.Close()
				return nil, err
			}
		}
	}
	return c, nil
}

// resolveDir picks the writable directory for the store file and downloaded
// art: an explicit Dir wins; otherwise the user cache directory namespaced
// by application (and version, when set).
func resolveDir(opts Options) (string, error) {
	dir := opts.Dir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("scrycache: resolve user cache dir: %w", err)
		}
		dir = filepath.Join(base, coalesce(opts.Application, DefaultApplication))
		if opts.Version != "" {
			dir = filepath.Join(dir, opts.Version)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("scrycache: create cache dir: %w", err)
	}
	return dir, nil
}

func (c *cache) refreshDue(meta store.Metadata) bool {
	return c.now().Unix() > meta.LastRefresh+int64(c.refreshPeriod/time.Second)
}

func (c *cache) Dir() string { return c.dir }

func (c *cache) Close(ctx context.Context) error {
	if c.hot != nil {
		_ = c.hot.Close(ctx)
	}
	return c.store.Close()
}
