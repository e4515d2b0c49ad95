package scrycache

import "fmt"

type selectorKind int

const (
	selNone selectorKind = iota
	selID
	selName
	selMTGOID
)

// Selector picks exactly one key space for Resolve. Construct with ByID,
// ByName or ByMTGOID; the zero Selector is rejected with ErrInvalidQuery.
type Selector struct {
	kind   selectorKind
	id     string
	name   string
	mtgoID int64
}

// ByID selects a card by its Scryfall ID (globally unique).
func ByID(id string) Selector { return Selector{kind: selID, id: id} }

// ByName selects a card by exact name. Names are not unique upstream.
func ByName(name string) Selector { return Selector{kind: selName, name: name} }

// ByMTGOID selects a card by its MTGO ID. Not unique upstream.
func ByMTGOID(id int64) Selector { return Selector{kind: selMTGOID, mtgoID: id} }

func (s Selector) String() string {
	switch s.kind {
	case selID:
		return "id:" + s.id
	case selName:
		return "name:" + s.name
	case selMTGOID:
		return fmt.Sprintf("mtgo:%d", s.mtgoID)
	default:
		return "invalid"
	}
}
