package scrycache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testCard(t *testing.T, imageURIs map[string]any) *Card {
	t.Helper()
	doc := Document{"id": "abc-1", "name": "Foo"}
	if imageURIs != nil {
		doc["image_uris"] = imageURIs
	}
	card, err := newCard(doc)
	if err != nil {
		t.Fatalf("newCard: %v", err)
	}
	return card
}

func TestImagePathMissingImages(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newFakeStore(), newFakeTransport(), nil)
	defer cc.Close(ctx)

	if _, err := cc.ImagePath(ctx, testCard(t, nil), "png"); !errors.Is(err, ErrMissingImages) {
		t.Fatalf("want ErrMissingImages, got %v", err)
	}
}

func TestImagePathUnsupportedFormat(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newFakeStore(), newFakeTransport(), nil)
	defer cc.Close(ctx)

	card := testCard(t, map[string]any{"png": "https://img.invalid/abc.png"})

	_, err := cc.ImagePath(ctx, card, "art_crop")
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("want UnsupportedFormatError, got %v", err)
	}
	if unsupported.Format != "art_crop" {
		t.Fatalf("error format: %s", unsupported.Format)
	}
}

// TestImagePathDownloadsAndCaches covers the materializer end to end: first
// call downloads into art_cache/<format>/, second call is pure filesystem.
func TestImagePathDownloadsAndCaches(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	cc := newTestCache(t, newFakeStore(), tr, nil)
	defer cc.Close(ctx)

	const uri = "https://img.invalid/abc.jpeg"
	tr.bodies[uri] = []byte("jpeg bytes")
	card := testCard(t, map[string]any{"large": uri})

	path, err := cc.ImagePath(ctx, card, "large")
	if err != nil {
		t.Fatalf("ImagePath: %v", err)
	}
	want := filepath.Join(cc.Dir(), "art_cache", "large", "abc-1.jpg")
	if path != want {
		t.Fatalf("path: want %s, got %s", want, path)
	}
	body, err := os.ReadFile(path)
	if err != nil || string(body) != "jpeg bytes" {
		t.Fatalf("image contents: %q err=%v", body, err)
	}

	if _, err := cc.ImagePath(ctx, card, "large"); err != nil {
		t.Fatalf("second ImagePath: %v", err)
	}
	if n := tr.callCount(uri); n != 1 {
		t.Fatalf("transport calls: want 1, got %d", n)
	}
}

// Everything upstream is JPG except the png format; the extension follows
// the format name, not the URI.
func TestImagePathExtensionPerFormat(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	cc := newTestCache(t, newFakeStore(), tr, nil)
	defer cc.Close(ctx)

	tr.bodies["https://img.invalid/a"] = []byte("png bytes")
	tr.bodies["https://img.invalid/b"] = []byte("jpg bytes")
	card := testCard(t, map[string]any{
		"png":    "https://img.invalid/a",
		"normal": "https://img.invalid/b",
	})

	pngPath, err := cc.ImagePath(ctx, card, "png")
	if err != nil || !strings.HasSuffix(pngPath, ".png") {
		t.Fatalf("png path: %s err=%v", pngPath, err)
	}
	jpgPath, err := cc.ImagePath(ctx, card, "normal")
	if err != nil || !strings.HasSuffix(jpgPath, ".jpg") {
		t.Fatalf("normal path: %s err=%v", jpgPath, err)
	}
}

func TestImagePathDownloadFailureLeavesNoFile(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	cc := newTestCache(t, newFakeStore(), tr, nil)
	defer cc.Close(ctx)

	const uri = "https://img.invalid/broken"
	tr.errs[uri] = errors.New("connection reset")
	card := testCard(t, map[string]any{"png": uri})

	if _, err := cc.ImagePath(ctx, card, "png"); err == nil {
		t.Fatalf("want error")
	}
	dir := filepath.Join(cc.Dir(), "art_cache", "png")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read art dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed download left files behind: %v", entries)
	}
}

func TestImagePathNilCard(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newFakeStore(), newFakeTransport(), nil)
	defer cc.Close(ctx)

	if _, err := cc.ImagePath(ctx, nil, "png"); err == nil {
		t.Fatalf("want error")
	}
}
