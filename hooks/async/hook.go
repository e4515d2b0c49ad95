// Package asynchook wraps a scrycache.Hooks so events are delivered on a
// small worker pool instead of the caller's goroutine. When the queue is
// full events are dropped, never blocked on.
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/scrycache"
)

type Hooks struct {
	inner scrycache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ scrycache.Hooks = (*Hooks)(nil)

func New(inner scrycache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Events emitted after Close
// panic; stop the cache first.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) LocalHit(sel scrycache.Selector)  { h.try(func() { h.inner.LocalHit(sel) }) }
func (h *Hooks) LocalMiss(sel scrycache.Selector) { h.try(func() { h.inner.LocalMiss(sel) }) }
func (h *Hooks) URLCacheHit(url string)           { h.try(func() { h.inner.URLCacheHit(url) }) }
func (h *Hooks) RemoteFetch(url string)           { h.try(func() { h.inner.RemoteFetch(url) }) }
func (h *Hooks) RemoteFetchFailed(url string, err error) {
	h.try(func() { h.inner.RemoteFetchFailed(url, err) })
}
func (h *Hooks) WriteBack(id string)           { h.try(func() { h.inner.WriteBack(id) }) }
func (h *Hooks) RefreshStarted(dataset string) { h.try(func() { h.inner.RefreshStarted(dataset) }) }
func (h *Hooks) RefreshFinished(dataset string, cards int) {
	h.try(func() { h.inner.RefreshFinished(dataset, cards) })
}
