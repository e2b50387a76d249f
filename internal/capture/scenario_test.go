package capture

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/tab-popup-switcher/internal/store"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

func TestClosedTabDropsOutOfMergeButStaysStored(t *testing.T) {
	ctx := context.Background()
	st := store.New(store.NewMemoryBackend(), store.Options{})
	g := newTestGate(t, &stubCapturer{}, &stubResizer{}, st, Options{Now: func() time.Time { return time.UnixMilli(777) }})

	g.Start(tab.LiveTab{ID: 42, URL: "https://example.com", WindowID: 1, Active: true})
	g.Wait()

	rec, ok, err := st.Get(ctx, 42)
	if err != nil || !ok {
		t.Fatalf("expected stored record, ok=%v err=%v", ok, err)
	}
	if rec.LastActive != 777 || !strings.HasPrefix(rec.Screenshot, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected record %+v", rec)
	}

	g.Forget(42)
	merged, err := st.MergedWithLive(ctx, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(merged) != 0 {
		t.Fatalf("expected closed tab excluded, got %+v", merged)
	}
	if _, ok, _ := st.Get(ctx, 42); !ok {
		t.Fatalf("expected record to remain stored")
	}
}
