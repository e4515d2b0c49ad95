package scrycache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/unkn0wn-root/scrycache/store"
)

type bulkManifest struct {
	Data []bulkDatasetEntry `json:"data"`
}

type bulkDatasetEntry struct {
	Type         string `json:"type"`
	DownloadURI  string `json:"download_uri"`
	PermalinkURI string `json:"permalink_uri"` // older manifests
}

func (e bulkDatasetEntry) uri() string {
	if e.DownloadURI != "" {
		return e.DownloadURI
	}
	return e.PermalinkURI
}

// findDatasetEntry searches the manifest for the configured dataset type.
// Absence is an explicit outcome, not a loop fallthrough.
func findDatasetEntry(m bulkManifest, datasetType string) (bulkDatasetEntry, bool) {
	for _, e := range m.Data {
		if e.Type == datasetType {
			return e, true
		}
	}
	return bulkDatasetEntry{}, false
}

// Refresh replaces every stored card with the configured bulk dataset. The
// swap runs as a single store transaction, so concurrent readers observe
// either the old dataset or the new one, never an empty store. Nothing on
// this path uses the URL response cache, and every failure is fatal: a
// cache that cannot resync is in an unknown state.
func (c *cache) Refresh(ctx context.Context) error {
	c.hooks.RefreshStarted(c.datasetType)

	body, err := c.tr.Get(ctx, c.bulkDataURL())
	if err != nil {
		return fmt.Errorf("scrycache: fetch bulk manifest: %w", err)
	}
	var manifest bulkManifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return fmt.Errorf("scrycache: parse bulk manifest: %w", err)
	}
	entry, ok := findDatasetEntry(manifest, c.datasetType)
	if !ok {
		return &ManifestEntryNotFoundError{DatasetType: c.datasetType}
	}

	stream, err := c.tr.GetStream(ctx, entry.uri())
	if err != nil {
		return fmt.Errorf("scrycache: fetch bulk dataset: %w", err)
	}
	defer stream.Close()

	// The dataset is one large JSON array; decode it element by element so
	// the whole corpus never sits in memory at once.
	dec := json.NewDecoder(stream)
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("scrycache: read bulk dataset: %w", err)
	}
	if tok != json.Delim('[') {
		return fmt.Errorf("scrycache: bulk dataset is not a JSON array (got %v)", tok)
	}

	var n int
	next := func() (store.CardRecord, error) {
		if !dec.More() {
			return store.CardRecord{}, io.EOF
		}
		var doc Document
		if err := dec.Decode(&doc); err != nil {
			return store.CardRecord{}, fmt.Errorf("scrycache: decode bulk card: %w", err)
		}
		rec, err := c.recordFromDoc(doc)
		if err != nil {
			return store.CardRecord{}, err
		}
		n++
		return rec, nil
	}

	if err := c.store.ReplaceAllCards(ctx, c.now().Unix(), next); err != nil {
		return fmt.Errorf("scrycache: replace dataset: %w", err)
	}

	if c.hot != nil {
		if err := c.hot.Reset(ctx); err != nil {
			c.log.Warn("hot cache reset failed", Fields{"err": err})
		}
	}

	c.hooks.RefreshFinished(c.datasetType, n)
	c.log.Debug("bulk refresh finished", Fields{"dataset": c.datasetType, "cards": n})
	return nil
}
