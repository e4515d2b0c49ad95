package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetReturnsBodyAndSetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(Config{MinInterval: time.Millisecond, UserAgent: "tester/1.0"})
	body, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("body: %s", body)
	}
	if gotUA != "tester/1.0" {
		t.Fatalf("user agent: %s", gotUA)
	}
}

func TestGetNon2xxReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Config{MinInterval: time.Millisecond})
	_, err := c.Get(context.Background(), srv.URL)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("want StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound || statusErr.URL != srv.URL {
		t.Fatalf("StatusError: %+v", statusErr)
	}
}

func TestGetStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("streamed"))
	}))
	defer srv.Close()

	c := New(Config{MinInterval: time.Millisecond})
	rc, err := c.GetStream(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetStream: %v", err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil || string(body) != "streamed" {
		t.Fatalf("stream body: %q err=%v", body, err)
	}
}

// TestPacingSpacesRequests checks the pacer enforces the minimum interval.
// The bound is deliberately loose; the point is ordering, not precision.
func TestPacingSpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	const interval = 50 * time.Millisecond
	c := New(Config{MinInterval: interval})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background(), srv.URL); err != nil {
			t.Fatalf("Get %d: %v", i, err)
		}
	}
	// Three requests need at least two full intervals of spacing.
	if elapsed := time.Since(start); elapsed < 2*interval {
		t.Fatalf("requests not paced: 3 calls in %v", elapsed)
	}
}

func TestGetHonorsContextCancellation(t *testing.T) {
	c := New(Config{MinInterval: time.Hour}) // pacer will block
	ctx, cancel := context.WithCancel(context.Background())

	// Burn the initial token so the next call waits on the pacer.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()
	if _, err := c.Get(ctx, srv.URL); err != nil {
		t.Fatalf("first Get: %v", err)
	}

	cancel()
	if _, err := c.Get(ctx, srv.URL); err == nil {
		t.Fatalf("want error after cancellation")
	}
}
