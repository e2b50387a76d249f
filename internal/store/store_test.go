package store

import (
	"context"
	"math/rand"
	"path/filepath"
	"sort"
	"testing"

	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

func newMemoryStore(t *testing.T, opts Options) (*Store, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	s := New(backend, opts)
	t.Cleanup(func() { _ = s.Close() })
	return s, backend
}

func TestPutEvictsBeyondCap(t *testing.T) {
	ctx := context.Background()
	s, backend := newMemoryStore(t, Options{})
	for i := 1; i <= 11; i++ {
		if err := s.Put(ctx, tab.SnapshotRecord{ID: tab.ID(i), LastActive: int64(i * 100)}); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}
	raw, _ := backend.GetAll(ctx)
	if len(raw) != DefaultCap {
		t.Fatalf("expected %d records, got %d", DefaultCap, len(raw))
	}
	if _, ok := raw[tab.Key(1)]; ok {
		t.Fatalf("expected oldest record to be evicted")
	}
	for i := 2; i <= 11; i++ {
		if _, ok := raw[tab.Key(tab.ID(i))]; !ok {
			t.Fatalf("expected record %d to remain", i)
		}
	}
}

func TestPutReplacesExistingRecord(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t, Options{})
	if err := s.Put(ctx, tab.SnapshotRecord{ID: 5, LastActive: 1, Title: "old"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, tab.SnapshotRecord{ID: 5, LastActive: 2, Title: "new"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single record, got %d", len(all))
	}
	if all[0].Title != "new" || all[0].LastActive != 2 {
		t.Fatalf("expected replaced record, got %+v", all[0])
	}
}

func TestPutRejectsZeroID(t *testing.T) {
	s, _ := newMemoryStore(t, Options{})
	if err := s.Put(context.Background(), tab.SnapshotRecord{LastActive: 1}); err == nil {
		t.Fatalf("expected error for record without id")
	}
}

func TestMonotonicWritesDropsOlderRecord(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t, Options{MonotonicWrites: true})
	_ = s.Put(ctx, tab.SnapshotRecord{ID: 7, LastActive: 200, Title: "newer"})
	_ = s.Put(ctx, tab.SnapshotRecord{ID: 7, LastActive: 100, Title: "older"})
	rec, ok, err := s.Get(ctx, 7)
	if err != nil || !ok {
		t.Fatalf("expected record, ok=%v err=%v", ok, err)
	}
	if rec.Title != "newer" {
		t.Fatalf("expected newer record to survive, got %q", rec.Title)
	}
}

func TestLastWriterWinsByDefault(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t, Options{})
	_ = s.Put(ctx, tab.SnapshotRecord{ID: 7, LastActive: 200, Title: "newer"})
	_ = s.Put(ctx, tab.SnapshotRecord{ID: 7, LastActive: 100, Title: "older"})
	rec, _, _ := s.Get(ctx, 7)
	if rec.Title != "older" {
		t.Fatalf("expected last write to win, got %q", rec.Title)
	}
}

func TestMergedWithLivePrefersLiveMetadata(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t, Options{})
	_ = s.Put(ctx, tab.SnapshotRecord{ID: 1, LastActive: 10, Title: "stored", FaviconURL: "old.ico", Screenshot: "data:image/jpeg;base64,AA=="})
	_ = s.Put(ctx, tab.SnapshotRecord{ID: 2, LastActive: 20, Title: "orphan"})

	merged, err := s.MergedWithLive(ctx, []tab.LiveTab{
		{ID: 1, Title: "live", FaviconURL: "new.ico", URL: "https://example.com"},
		{ID: 3, Title: "uncaptured"},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(merged) != 1 {
		t.Fatalf("expected one merged candidate, got %d", len(merged))
	}
	got := merged[0]
	if got.Title != "live" || got.FaviconURL != "new.ico" || got.URL != "https://example.com" {
		t.Fatalf("expected live metadata, got %+v", got)
	}
	if got.Screenshot == "" || got.LastActive != 10 {
		t.Fatalf("expected stored screenshot and recency, got %+v", got)
	}
	if _, ok, _ := s.Get(ctx, 2); !ok {
		t.Fatalf("expected orphan record to stay stored")
	}
}

func TestMergedWithLiveKeepsStoredTitleWhenLiveBlank(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t, Options{})
	_ = s.Put(ctx, tab.SnapshotRecord{ID: 1, LastActive: 10, Title: "stored"})
	merged, _ := s.MergedWithLive(ctx, []tab.LiveTab{{ID: 1}})
	if len(merged) != 1 || merged[0].Title != "stored" {
		t.Fatalf("expected stored title fallback, got %+v", merged)
	}
}

func TestMalformedValuesAreSkipped(t *testing.T) {
	ctx := context.Background()
	s, backend := newMemoryStore(t, Options{})
	_ = backend.Set(ctx, "tab-9", []byte("{not json"))
	_ = backend.Set(ctx, "tab-8", []byte(`{"lastActive":5}`))
	_ = backend.Set(ctx, "unrelated", []byte("x"))
	_ = s.Put(ctx, tab.SnapshotRecord{ID: 1, LastActive: 1})

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 || all[0].ID != 1 {
		t.Fatalf("expected only the valid record, got %+v", all)
	}
}

func TestRecordUnderForeignKeyIsSkipped(t *testing.T) {
	ctx := context.Background()
	s, backend := newMemoryStore(t, Options{})
	if err := s.Put(ctx, tab.SnapshotRecord{ID: 7, LastActive: 10}); err != nil {
		t.Fatalf("put: %v", err)
	}
	_ = backend.Set(ctx, "tab-5", []byte(`{"id":7,"lastActive":20}`))

	merged, err := s.MergedWithLive(ctx, []tab.LiveTab{{ID: 7}, {ID: 5}})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(merged) != 1 || merged[0].ID != 7 || merged[0].LastActive != 10 {
		t.Fatalf("expected one candidate for tab 7 from its own key, got %+v", merged)
	}
	if _, ok, _ := s.Get(ctx, 5); ok {
		t.Fatalf("expected tab-5 with a foreign id to be ignored")
	}
}

func TestClearEmptiesNamespace(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemoryStore(t, Options{})
	_ = s.Put(ctx, tab.SnapshotRecord{ID: 1, LastActive: 1})
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	all, _ := s.All(ctx)
	if len(all) != 0 {
		t.Fatalf("expected empty store, got %d", len(all))
	}
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")
	backend, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s := New(backend, Options{Cap: 2})
	for i := 1; i <= 3; i++ {
		if err := s.Put(ctx, tab.SnapshotRecord{ID: tab.ID(i), LastActive: int64(i), Title: "t"}); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s = New(reopened, Options{Cap: 2})
	defer s.Close()
	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 || all[0].ID != 3 || all[1].ID != 2 {
		t.Fatalf("expected records 3,2 after reopen, got %+v", all)
	}
}

func TestRandomPutSequencesKeepNewestWithinCap(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		s, _ := newMemoryStore(t, Options{})
		latest := make(map[tab.ID]int64)
		for i := 0; i < 40; i++ {
			id := tab.ID(rng.Intn(25) + 1)
			// Unique timestamps keep the expected set unambiguous.
			stamp := int64(round*1000 + i)
			if err := s.Put(ctx, tab.SnapshotRecord{ID: id, LastActive: stamp}); err != nil {
				t.Fatalf("put: %v", err)
			}
			latest[id] = stamp

			all, err := s.All(ctx)
			if err != nil {
				t.Fatalf("all: %v", err)
			}
			if len(all) > DefaultCap {
				t.Fatalf("round %d: %d records exceed cap", round, len(all))
			}
			want := newestStamps(latest, DefaultCap)
			if len(all) != len(want) {
				t.Fatalf("round %d: expected %d records, got %d", round, len(want), len(all))
			}
			for i, rec := range all {
				if rec.LastActive != want[i] || latest[rec.ID] != rec.LastActive {
					t.Fatalf("round %d: record %d holds %d, expected %d", round, rec.ID, rec.LastActive, want[i])
				}
			}
		}
	}
}

func newestStamps(latest map[tab.ID]int64, limit int) []int64 {
	stamps := make([]int64, 0, len(latest))
	for _, v := range latest {
		stamps = append(stamps, v)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] > stamps[j] })
	if len(stamps) > limit {
		stamps = stamps[:limit]
	}
	return stamps
}
