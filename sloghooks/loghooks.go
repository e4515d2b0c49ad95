// Package sloghooks is a ready-made scrycache.Hooks that logs events via
// log/slog. Hit and miss events can be sampled to avoid floods on busy
// lookup paths.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/scrycache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery   uint64
	FetchEvery uint64
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr   atomic.Uint64
	fetchCtr atomic.Uint64
}

var _ scrycache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) LocalHit(sel scrycache.Selector) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("scrycache.local_hit", "selector", sel.String())
}

func (h *Hooks) LocalMiss(sel scrycache.Selector) {
	if h.l == nil {
		return
	}
	h.l.Debug("scrycache.local_miss", "selector", sel.String())
}

func (h *Hooks) URLCacheHit(url string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("scrycache.url_cache_hit", "url", url)
}

func (h *Hooks) RemoteFetch(url string) {
	if h.l == nil || !sample(h.opts.FetchEvery, &h.fetchCtr) {
		return
	}
	h.l.Info("scrycache.remote_fetch", "url", url)
}

func (h *Hooks) RemoteFetchFailed(url string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("scrycache.remote_fetch_failed",
		"url", url,
		"err", err)
}

func (h *Hooks) WriteBack(id string) {
	if h.l == nil {
		return
	}
	h.l.Debug("scrycache.write_back", "id", id)
}

func (h *Hooks) RefreshStarted(dataset string) {
	if h.l == nil {
		return
	}
	h.l.Info("scrycache.refresh_started", "dataset", dataset)
}

func (h *Hooks) RefreshFinished(dataset string, cards int) {
	if h.l == nil {
		return
	}
	h.l.Info("scrycache.refresh_finished",
		"dataset", dataset,
		"cards", cards)
}
