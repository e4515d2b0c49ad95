package bigcache

import (
	"context"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/scrycache/hotcache"
)

// Cache backs the hot layer with allegro/bigcache. BigCache has no per-entry
// TTL; the LifeWindow configured here bounds every entry's lifetime and the
// ttl argument to Set is ignored.
type Cache struct {
	c *bc.BigCache
}

var _ hotcache.Cache = (*Cache)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Cache, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

func (p *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if err == bc.ErrEntryNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Cache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	return p.c.Set(key, value)
}

func (p *Cache) Del(_ context.Context, key string) error {
	err := p.c.Delete(key)
	if err == bc.ErrEntryNotFound {
		return nil
	}
	return err
}

func (p *Cache) Reset(_ context.Context) error {
	return p.c.Reset()
}

func (p *Cache) Close(_ context.Context) error {
	return p.c.Close()
}
