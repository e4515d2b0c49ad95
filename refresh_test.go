package scrycache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func manifestBody(datasetType, uri string) []byte {
	return []byte(fmt.Sprintf(`{"data":[
		{"type":"oracle_cards","download_uri":"https://example.invalid/oracle"},
		{"type":%q,"download_uri":%q}
	]}`, datasetType, uri))
}

const bulkURL = "https://example.invalid/bulk/default_cards.json"

func seedBulk(tr *fakeTransport, baseURL string, cards string) {
	tr.bodies[baseURL+"/bulk-data"] = manifestBody("default_cards", bulkURL)
	tr.bodies[bulkURL] = []byte(cards)
}

func TestRefreshReplacesWholeDataset(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	tr := newFakeTransport()
	st.seed(t, "old-1", "Old Card", nil)
	cc := newTestCache(t, st, tr, nil)
	defer cc.Close(ctx)

	seedBulk(tr, DefaultBaseURL, `[
		{"id":"new-1","name":"New One"},
		{"id":"new-2","name":"New Two","mtgo_id":77}
	]`)

	if err := cc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if _, found, _ := st.GetCard(ctx, "old-1"); found {
		t.Fatalf("stale card survived refresh")
	}
	if _, found, _ := st.GetCard(ctx, "new-1"); !found {
		t.Fatalf("new card missing after refresh")
	}
	recs, err := st.FindCardsByMTGOID(ctx, 77)
	if err != nil || len(recs) != 1 || recs[0].ID != "new-2" {
		t.Fatalf("mtgo index after refresh: recs=%v err=%v", recs, err)
	}

	meta, err := st.Metadata(ctx)
	if err != nil || meta.LastRefresh != testNow.Unix() {
		t.Fatalf("metadata after refresh: %+v err=%v", meta, err)
	}
}

func TestRefreshManifestEntryMissing(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	tr := newFakeTransport()
	cc := newTestCache(t, st, tr, nil)
	defer cc.Close(ctx)

	tr.bodies[DefaultBaseURL+"/bulk-data"] = manifestBody("oracle_cards", bulkURL)

	err := cc.Refresh(ctx)
	var notFound *ManifestEntryNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("want ManifestEntryNotFoundError, got %v", err)
	}
	if notFound.DatasetType != "default_cards" {
		t.Fatalf("error dataset type: %s", notFound.DatasetType)
	}
}

// TestRefreshHardFailures verifies that nothing on the refresh path degrades
// softly: a cache that cannot resync must report it.
func TestRefreshHardFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("manifest unreachable", func(t *testing.T) {
		st := newFakeStore()
		tr := newFakeTransport()
		cc := newTestCache(t, st, tr, nil)
		defer cc.Close(ctx)

		tr.errs[DefaultBaseURL+"/bulk-data"] = errors.New("connection refused")
		if err := cc.Refresh(ctx); err == nil {
			t.Fatalf("want error")
		}
	})

	t.Run("dataset not a json array", func(t *testing.T) {
		st := newFakeStore()
		tr := newFakeTransport()
		cc := newTestCache(t, st, tr, nil)
		defer cc.Close(ctx)

		seedBulk(tr, DefaultBaseURL, `{"not":"an array"}`)
		if err := cc.Refresh(ctx); err == nil {
			t.Fatalf("want error")
		}
	})

	t.Run("card missing id", func(t *testing.T) {
		st := newFakeStore()
		tr := newFakeTransport()
		st.seed(t, "old-1", "Old Card", nil)
		cc := newTestCache(t, st, tr, nil)
		defer cc.Close(ctx)

		seedBulk(tr, DefaultBaseURL, `[{"name":"No ID"}]`)
		if err := cc.Refresh(ctx); err == nil {
			t.Fatalf("want error")
		}
		// The swap is atomic, so the failed refresh left the old data alone.
		if _, found, _ := st.GetCard(ctx, "old-1"); !found {
			t.Fatalf("failed refresh must not clear the store")
		}
	})
}

func TestRefreshResetsHotCache(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	tr := newFakeTransport()
	hot := newFakeHot()
	cc := newTestCache(t, st, tr, func(o *Options) { o.HotCache = hot })
	defer cc.Close(ctx)

	hot.m["card:stale"] = []byte(`{"id":"stale","name":"Stale"}`)
	seedBulk(tr, DefaultBaseURL, `[{"id":"new-1","name":"New One"}]`)

	if err := cc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if hot.resets != 1 {
		t.Fatalf("hot cache resets: want 1, got %d", hot.resets)
	}
	if _, ok, _ := hot.Get(ctx, "card:stale"); ok {
		t.Fatalf("stale hot entry survived refresh")
	}
}

func TestRefreshFiresLifecycleHooks(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	tr := newFakeTransport()

	rec := &refreshRecorder{}
	cc := newTestCache(t, st, tr, func(o *Options) { o.Hooks = rec })
	defer cc.Close(ctx)

	seedBulk(tr, DefaultBaseURL, `[{"id":"a","name":"A"},{"id":"b","name":"B"}]`)
	if err := cc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if len(rec.started) != 1 || rec.started[0] != "default_cards" {
		t.Fatalf("RefreshStarted events: %v", rec.started)
	}
	if len(rec.finishedCards) != 1 || rec.finishedCards[0] != 2 {
		t.Fatalf("RefreshFinished events: %v", rec.finishedCards)
	}
}

type refreshRecorder struct {
	NopHooks
	started       []string
	finishedCards []int
}

func (r *refreshRecorder) RefreshStarted(dataset string) {
	r.started = append(r.started, dataset)
}

func (r *refreshRecorder) RefreshFinished(_ string, cards int) {
	r.finishedCards = append(r.finishedCards, cards)
}

// ==============================
// Auto refresh at construction
// ==============================

func TestNewRefreshesFreshStore(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	tr := newFakeTransport()
	seedBulk(tr, DefaultBaseURL, `[{"id":"a","name":"A"}]`)

	cc, err := New(ctx, Options{
		Dir:       t.TempDir(),
		Store:     st,
		Transport: tr,
		Now:       func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cc.Close(ctx)

	if _, found, _ := st.GetCard(ctx, "a"); !found {
		t.Fatalf("fresh store was not populated at construction")
	}
}

func TestNewSkipsRefreshWhenRecent(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	tr := newFakeTransport()
	if err := st.SetLastRefresh(ctx, testNow.Add(-time.Hour).Unix()); err != nil {
		t.Fatalf("SetLastRefresh: %v", err)
	}

	cc, err := New(ctx, Options{
		Dir:       t.TempDir(),
		Store:     st,
		Transport: tr,
		Now:       func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cc.Close(ctx)

	if n := tr.totalCalls(); n != 0 {
		t.Fatalf("recent store must not refresh, got %d transport calls", n)
	}
}

func TestNewRefreshesAfterPeriodElapsed(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	tr := newFakeTransport()
	period := 12 * 7 * 24 * time.Hour
	if err := st.SetLastRefresh(ctx, testNow.Add(-period-time.Second).Unix()); err != nil {
		t.Fatalf("SetLastRefresh: %v", err)
	}
	seedBulk(tr, DefaultBaseURL, `[{"id":"a","name":"A"}]`)

	cc, err := New(ctx, Options{
		Dir:       t.TempDir(),
		Store:     st,
		Transport: tr,
		Now:       func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cc.Close(ctx)

	if _, found, _ := st.GetCard(ctx, "a"); !found {
		t.Fatalf("stale store was not refreshed at construction")
	}
}

func TestNewFailsWhenInitialRefreshFails(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	tr := newFakeTransport()
	tr.errs[DefaultBaseURL+"/bulk-data"] = errors.New("connection refused")

	_, err := New(ctx, Options{
		Dir:       t.TempDir(),
		Store:     st,
		Transport: tr,
		Now:       func() time.Time { return testNow },
	})
	if err == nil {
		t.Fatalf("want error")
	}
	if !st.closed {
		t.Fatalf("store must be closed when construction fails")
	}
}

func TestFindDatasetEntryPrefersDownloadURI(t *testing.T) {
	m := bulkManifest{Data: []bulkDatasetEntry{
		{Type: "default_cards", DownloadURI: "https://a", PermalinkURI: "https://b"},
		{Type: "legacy", PermalinkURI: "https://c"},
	}}

	entry, ok := findDatasetEntry(m, "default_cards")
	if !ok || entry.uri() != "https://a" {
		t.Fatalf("entry: ok=%v uri=%s", ok, entry.uri())
	}
	entry, ok = findDatasetEntry(m, "legacy")
	if !ok || entry.uri() != "https://c" {
		t.Fatalf("permalink fallback: ok=%v uri=%s", ok, entry.uri())
	}
	if _, ok := findDatasetEntry(m, "absent"); ok {
		t.Fatalf("absent type must report ok=false")
	}
}
