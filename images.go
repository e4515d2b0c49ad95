package scrycache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ImagePath derives the local path for one art format of card, downloading
// the image on first use. Upstream serves everything as JPG except the png
// format, so the extension follows the format, not the URI.
func (c *cache) ImagePath(ctx context.Context, card *Card, format string) (string, error) {
	if card == nil {
		return "", fmt.Errorf("scrycache: card is required")
	}
	uris, ok := card.doc["image_uris"].(map[string]any)
	if !ok {
		return "", ErrMissingImages
	}
	uri, ok := uris[format].(string)
	if !ok {
		return "", &UnsupportedFormatError{Format: format}
	}

	ext := "jpg"
	if format == "png" {
		ext = "png"
	}
	dir := filepath.Join(c.dir, artCacheDir, format)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("scrycache: create art dir: %w", err)
	}
	path := filepath.Join(dir, card.ID()+"."+ext)

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := c.download(ctx, uri, path); err != nil {
		return "", err
	}
	return path, nil
}

// download streams url into path via a temporary sibling and renames it
// into place, so an interrupted transfer never leaves a partial file at the
// final location.
func (c *cache) download(ctx context.Context, url, path string) error {
	stream, err := c.tr.GetStream(ctx, url)
	if err != nil {
		return fmt.Errorf("scrycache: download image: %w", err)
	}
	defer stream.Close()

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("scrycache: create temp file: %w", err)
	}
	if _, err := io.Copy(f, stream); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("scrycache: write image: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("scrycache: close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("scrycache: move image into place: %w", err)
	}
	c.log.Debug("downloaded image", Fields{"url": url, "path": path})
	return nil
}
