package scrycache

import (
	"context"

	"github.com/unkn0wn-root/scrycache/store"
)

// Resolve answers one lookup. The write-back rules differ per key space, so
// the three paths stay separate instead of sharing one generic policy.
func (c *cache) Resolve(ctx context.Context, sel Selector) (*Card, bool, error) {
	switch sel.kind {
	case selID:
		return c.resolveByID(ctx, sel)
	case selName:
		return c.resolveByName(ctx, sel)
	case selMTGOID:
		return c.resolveByMTGOID(ctx, sel)
	default:
		return nil, false, ErrInvalidQuery
	}
}

// resolveByID trusts any local hit outright: the ID is the primary key, so
// freshness is bounded only by the bulk refresh cycle. A miss falls back to
// the single-card endpoint and writes the result back permanently.
func (c *cache) resolveByID(ctx context.Context, sel Selector) (*Card, bool, error) {
	id := sel.id

	if card, ok := c.hotGet(ctx, id); ok {
		c.hooks.LocalHit(sel)
		return card, true, nil
	}

	rec, ok, err := c.store.GetCard(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if ok {
		card, err := c.cardFromRecord(rec)
		if err != nil {
			return nil, false, err
		}
		c.hooks.LocalHit(sel)
		c.hotSet(ctx, id, rec.Payload)
		return card, true, nil
	}

	c.hooks.LocalMiss(sel)
	c.log.Debug("card not found in store", Fields{"id": id})

	doc, ok := c.fetchCached(ctx, c.cardByIDURL(id))
	if !ok {
		return nil, false, nil
	}
	card, err := newCard(doc)
	if err != nil {
		return nil, false, err
	}
	if err := c.writeBack(ctx, doc); err != nil {
		return nil, false, err
	}
	return card, true, nil
}

// resolveByName trusts the local answer only when the name index yields
// exactly one match. Zero or several matches defer to the exact-name
// endpoint; write-back happens only in the zero case so an ambiguous local
// state never gains another duplicate.
func (c *cache) resolveByName(ctx context.Context, sel Selector) (*Card, bool, error) {
	recs, err := c.store.FindCardsByName(ctx, sel.name)
	if err != nil {
		return nil, false, err
	}
	return c.resolveIndexed(ctx, sel, recs, c.cardNamedURL(sel.name))
}

// resolveByMTGOID follows the same policy as resolveByName against the MTGO
// ID index and lookup endpoint.
func (c *cache) resolveByMTGOID(ctx context.Context, sel Selector) (*Card, bool, error) {
	recs, err := c.store.FindCardsByMTGOID(ctx, sel.mtgoID)
	if err != nil {
		return nil, false, err
	}
	return c.resolveIndexed(ctx, sel, recs, c.cardMTGOURL(sel.mtgoID))
}

func (c *cache) resolveIndexed(ctx context.Context, sel Selector, recs []store.CardRecord, url string) (*Card, bool, error) {
	if len(recs) == 1 {
		card, err := c.cardFromRecord(recs[0])
		if err != nil {
			return nil, false, err
		}
		c.hooks.LocalHit(sel)
		return card, true, nil
	}

	c.hooks.LocalMiss(sel)
	c.log.Debug("index scan inconclusive; asking upstream",
		Fields{"selector": sel.String(), "local_matches": len(recs)})

	doc, ok := c.fetchCached(ctx, url)
	if !ok {
		return nil, false, nil
	}
	card, err := newCard(doc)
	if err != nil {
		return nil, false, err
	}
	if len(recs) == 0 {
		if err := c.writeBack(ctx, doc); err != nil {
			return nil, false, err
		}
	}
	return card, true, nil
}

// writeBack inserts a remotely fetched card into the permanent store. The
// record outlives the one-day URL cache window by design.
func (c *cache) writeBack(ctx context.Context, doc Document) error {
	rec, err := c.recordFromDoc(doc)
	if err != nil {
		return err
	}
	// The remote answer can name a card we already hold under a different
	// query (exact-name lookups are case-insensitive upstream but the local
	// index is not). Ids are immutable, so an existing record stands.
	if _, exists, err := c.store.GetCard(ctx, rec.ID); err != nil {
		return err
	} else if exists {
		c.hotSet(ctx, rec.ID, rec.Payload)
		return nil
	}
	if err := c.store.InsertCard(ctx, rec); err != nil {
		return err
	}
	c.hooks.WriteBack(rec.ID)
	c.log.Debug("wrote card back to store", Fields{"id": rec.ID})
	c.hotSet(ctx, rec.ID, rec.Payload)
	return nil
}

func hotKey(id string) string { return "card:" + id }

// hotGet consults the optional in-process layer. Any problem is treated as
// a miss; the store remains authoritative.
func (c *cache) hotGet(ctx context.Context, id string) (*Card, bool) {
	if c.hot == nil {
		return nil, false
	}
	b, ok, err := c.hot.Get(ctx, hotKey(id))
	if err != nil || !ok {
		return nil, false
	}
	doc, err := c.codec.Decode(b)
	if err != nil {
		_ = c.hot.Del(ctx, hotKey(id)) // self-heal corrupt entry
		return nil, false
	}
	card, err := newCard(doc)
	if err != nil {
		_ = c.hot.Del(ctx, hotKey(id))
		return nil, false
	}
	return card, true
}

func (c *cache) hotSet(ctx context.Context, id string, payload []byte) {
	if c.hot == nil {
		return
	}
	// No expiry: the store is authoritative for by-id hits, and refresh
	// resets the whole hot layer when the dataset changes.
	if err := c.hot.Set(ctx, hotKey(id), payload, 0); err != nil {
		c.log.Debug("hot cache set failed", Fields{"id": id, "err": err})
	}
}
