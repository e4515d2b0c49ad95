package scrycache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery is returned by Resolve when the selector picks no
	// key space. This is a programming error at the call site, not a miss.
	ErrInvalidQuery = errors.New("scrycache: selector must choose exactly one key")

	// ErrMissingImages is returned by ImagePath when the card document
	// carries no image_uris map at all (e.g. multi-face layouts).
	ErrMissingImages = errors.New("scrycache: card has no images")
)

// ManifestEntryNotFoundError reports that the bulk manifest lists no dataset
// of the configured type. Absence is a first-class outcome of the manifest
// search, and it is fatal: without a dataset the cache cannot be built.
type ManifestEntryNotFoundError struct {
	DatasetType string
}

func (e *ManifestEntryNotFoundError) Error() string {
	return fmt.Sprintf("scrycache: bulk manifest has no dataset of type %q", e.DatasetType)
}

// UnsupportedFormatError reports that a card's image_uris map has no entry
// for the requested art format.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("scrycache: art format %q not available for this card", e.Format)
}
