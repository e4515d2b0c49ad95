package scrycache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/unkn0wn-root/scrycache/store"
)

// fetchCached serves url from the persistent URL response cache while the
// stored entry is younger than the response TTL, and falls back to a live
// GET otherwise. A fresh fetch overwrites the prior entry wholesale.
//
// Failures on this path are soft: transport errors, non-2xx statuses and
// malformed bodies are logged and reported as a miss, never as an error.
// Callers cannot distinguish "not found" from "unreachable" - by design.
func (c *cache) fetchCached(ctx context.Context, url string) (Document, bool) {
	now := c.now().Unix()

	entry, ok, err := c.store.GetURLEntry(ctx, url)
	if err != nil {
		c.log.Warn("url cache read failed", Fields{"url": url, "err": err})
	} else if ok && entry.FetchedAt+int64(c.responseTTL/time.Second) > now {
		doc, err := c.codec.Decode(entry.Payload)
		if err == nil {
			c.hooks.URLCacheHit(url)
			return doc, true
		}
		// corrupt entry: treat as expired and refetch over it
		c.log.Warn("corrupt url cache entry; refetching", Fields{"url": url, "err": err})
	}

	c.hooks.RemoteFetch(url)
	body, err := c.tr.Get(ctx, url)
	if err != nil {
		c.hooks.RemoteFetchFailed(url, err)
		c.log.Warn("remote fetch failed", Fields{"url": url, "err": err})
		return nil, false
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		c.hooks.RemoteFetchFailed(url, err)
		c.log.Warn("malformed response body", Fields{"url": url, "err": err})
		return nil, false
	}

	payload, err := c.codec.Encode(doc)
	if err != nil {
		// the fetch succeeded; only persistence is skipped
		c.log.Warn("encode response for url cache failed", Fields{"url": url, "err": err})
		return doc, true
	}
	if err := c.store.PutURLEntry(ctx, store.URLEntry{URL: url, FetchedAt: now, Payload: payload}); err != nil {
		c.log.Warn("url cache write failed", Fields{"url": url, "err": err})
	}
	return doc, true
}
