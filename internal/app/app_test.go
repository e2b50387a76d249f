package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/atomicstack/tab-popup-switcher/internal/backend"
	"github.com/atomicstack/tab-popup-switcher/internal/data/dispatcher"
	"github.com/atomicstack/tab-popup-switcher/internal/state"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
	tea "github.com/charmbracelet/bubbletea"
)

func TestBaseURL(t *testing.T) {
	cases := map[string]string{
		"127.0.0.1:8765":       "http://127.0.0.1:8765",
		":9000":                "http://127.0.0.1:9000",
		"http://example.test/": "http://example.test",
		" https://host:1 ":     "https://host:1",
	}
	for in, want := range cases {
		if got := BaseURL(in); got != want {
			t.Fatalf("BaseURL(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestOpenStoreMemory(t *testing.T) {
	ctx := context.Background()
	st, err := OpenStore(ctx, Config{StorePath: ":memory:", RecencyCap: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()
	_ = st.Put(ctx, tab.SnapshotRecord{ID: 1, LastActive: 1})
	_ = st.Put(ctx, tab.SnapshotRecord{ID: 2, LastActive: 2})
	all, err := st.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 || all[0].ID != 2 {
		t.Fatalf("expected only tab 2 kept, got %#v", all)
	}
}

func TestOpenStoreResetClearsSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")
	st, err := OpenStore(ctx, Config{StorePath: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Put(ctx, tab.SnapshotRecord{ID: 9, LastActive: 5}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	kept, err := OpenStore(ctx, Config{StorePath: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, ok, _ := kept.Get(ctx, 9); !ok {
		t.Fatalf("expected record to survive reopen")
	}
	kept.Close()

	reset, err := OpenStore(ctx, Config{StorePath: path, ResetStore: true})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	defer reset.Close()
	if _, ok, _ := reset.Get(ctx, 9); ok {
		t.Fatalf("expected record cleared by reset")
	}
}

type recordingCapturer struct {
	started   []tab.ID
	forgotten []tab.ID
}

func (r *recordingCapturer) Start(t tab.LiveTab) { r.started = append(r.started, t.ID) }
func (r *recordingCapturer) Forget(id tab.ID)    { r.forgotten = append(r.forgotten, id) }

func TestPumpRoutesEventsUntilClosed(t *testing.T) {
	tabs := state.NewTabStore()
	capt := &recordingCapturer{}
	ch := make(chan backend.Event, 4)
	ch <- backend.Event{Kind: backend.KindSnapshot, Tabs: []tab.LiveTab{{ID: 1, Active: true}}}
	ch <- backend.Event{Kind: backend.KindActivated, Tab: tab.LiveTab{ID: 1, Active: true}}
	ch <- backend.Event{Err: errors.New("poll failed")}
	ch <- backend.Event{Kind: backend.KindClosed, Tab: tab.LiveTab{ID: 2}}
	close(ch)

	Pump(ch, dispatcher.New(tabs, capt))

	if got := tabs.Tabs(); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected tab store updated, got %#v", got)
	}
	if len(capt.started) != 1 || capt.started[0] != 1 {
		t.Fatalf("expected capture of tab 1, got %v", capt.started)
	}
	if len(capt.forgotten) != 1 || capt.forgotten[0] != 2 {
		t.Fatalf("expected tab 2 forgotten, got %v", capt.forgotten)
	}
}

func TestRunOverlayTreatsKilledAsSuccess(t *testing.T) {
	orig := runProgram
	t.Cleanup(func() { runProgram = orig })

	var seen tea.Model
	runProgram = func(model tea.Model) error {
		seen = model
		return tea.ErrProgramKilled
	}
	if err := runOverlay(Config{Addr: "127.0.0.1:1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if seen == nil {
		t.Fatalf("expected program to run")
	}

	runProgram = func(tea.Model) error { return errors.New("tty") }
	if err := runOverlay(Config{Addr: "127.0.0.1:1"}); err == nil || err.Error() != "tty" {
		t.Fatalf("expected tty error, got %v", err)
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	if err := Run(Config{Mode: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestCaptureOptionsMapsZeroRetriesToDisabled(t *testing.T) {
	if got := captureOptions(Config{MaxRetries: 0}).MaxRetries; got >= 0 {
		t.Fatalf("expected retries disabled, got %d", got)
	}
	if got := captureOptions(Config{MaxRetries: 2}).MaxRetries; got != 2 {
		t.Fatalf("expected 2 retries, got %d", got)
	}
}
