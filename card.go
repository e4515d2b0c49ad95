package scrycache

import (
	"encoding/json"
	"fmt"

	"github.com/unkn0wn-root/scrycache/store"
)

// Document is one card document exactly as returned by the upstream API.
// The cache stores it opaquely and never defines a wire format of its own.
type Document map[string]any

// Card is an immutable view over one resolved card document. It holds no
// reference back to the cache, so cards stay valid after Close.
type Card struct {
	id   string
	name string
	doc  Document
}

func newCard(doc Document) (*Card, error) {
	id, _ := doc["id"].(string)
	name, _ := doc["name"].(string)
	if id == "" || name == "" {
		return nil, fmt.Errorf("scrycache: card document missing id or name")
	}
	return &Card{id: id, name: name, doc: doc}, nil
}

// ID returns the card's Scryfall ID.
func (c *Card) ID() string { return c.id }

// Name returns the card's name.
func (c *Card) Name() string { return c.name }

// Doc returns the full upstream document.
func (c *Card) Doc() Document { return c.doc }

// MTGOID returns the card's MTGO ID when the document carries one.
func (c *Card) MTGOID() (int64, bool) {
	v := mtgoIDFromDoc(c.doc)
	if v == nil {
		return 0, false
	}
	return *v, true
}

func (c *Card) String() string {
	return fmt.Sprintf("%s @ %s", c.name, c.id)
}

// mtgoIDFromDoc extracts the optional mtgo_id field. encoding/json decodes
// numbers in a map as float64; json.Number shows up when callers decode
// with UseNumber; cbor and msgpack round-trip integers as uint64/int64.
func mtgoIDFromDoc(doc Document) *int64 {
	switch v := doc["mtgo_id"].(type) {
	case float64:
		n := int64(v)
		return &n
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return &n
		}
	case int64:
		n := v
		return &n
	case uint64:
		n := int64(v)
		return &n
	case int:
		n := int64(v)
		return &n
	}
	return nil
}

// recordFromDoc builds the persisted record for one card document,
// extracting the index keys and encoding the payload with the configured
// codec.
func (c *cache) recordFromDoc(doc Document) (store.CardRecord, error) {
	id, _ := doc["id"].(string)
	name, _ := doc["name"].(string)
	if id == "" || name == "" {
		return store.CardRecord{}, fmt.Errorf("scrycache: card document missing id or name")
	}
	payload, err := c.codec.Encode(doc)
	if err != nil {
		return store.CardRecord{}, fmt.Errorf("scrycache: encode card %s: %w", id, err)
	}
	return store.CardRecord{
		ID:      id,
		Name:    name,
		MTGOID:  mtgoIDFromDoc(doc),
		Payload: payload,
	}, nil
}

func (c *cache) cardFromRecord(rec store.CardRecord) (*Card, error) {
	doc, err := c.codec.Decode(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("scrycache: decode stored card %s: %w", rec.ID, err)
	}
	return newCard(doc)
}
