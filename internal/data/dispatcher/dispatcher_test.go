package dispatcher

import (
	"errors"
	"testing"

	"github.com/atomicstack/tab-popup-switcher/internal/backend"
	"github.com/atomicstack/tab-popup-switcher/internal/state"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

type recordingCapturer struct {
	started   []tab.ID
	forgotten []tab.ID
}

func (r *recordingCapturer) Start(t tab.LiveTab) { r.started = append(r.started, t.ID) }
func (r *recordingCapturer) Forget(id tab.ID)    { r.forgotten = append(r.forgotten, id) }

func TestHandleSnapshotUpdatesStore(t *testing.T) {
	tabs := state.NewTabStore()
	d := New(tabs, &recordingCapturer{})
	res := d.Handle(backend.Event{Kind: backend.KindSnapshot, Tabs: []tab.LiveTab{{ID: 1, Active: true}}})
	if !res.TabsUpdated {
		t.Fatalf("expected tabs updated")
	}
	if active, ok := tabs.Active(); !ok || active.ID != 1 {
		t.Fatalf("expected active tab 1, got %+v", active)
	}
}

func TestHandleActivationStartsCapture(t *testing.T) {
	capt := &recordingCapturer{}
	d := New(state.NewTabStore(), capt)
	d.Handle(backend.Event{Kind: backend.KindActivated, Tab: tab.LiveTab{ID: 4}})
	d.Handle(backend.Event{Kind: backend.KindUpdated, Tab: tab.LiveTab{ID: 5}})
	if len(capt.started) != 2 || capt.started[0] != 4 || capt.started[1] != 5 {
		t.Fatalf("expected captures for 4 and 5, got %v", capt.started)
	}
}

func TestHandleNavigationDependsOnActivity(t *testing.T) {
	capt := &recordingCapturer{}
	d := New(state.NewTabStore(), capt)
	d.Handle(backend.Event{Kind: backend.KindNavigated, Tab: tab.LiveTab{ID: 1, Active: true}})
	d.Handle(backend.Event{Kind: backend.KindNavigated, Tab: tab.LiveTab{ID: 2}})
	if len(capt.started) != 1 || capt.started[0] != 1 {
		t.Fatalf("expected active navigation to recapture, got %v", capt.started)
	}
	if len(capt.forgotten) != 1 || capt.forgotten[0] != 2 {
		t.Fatalf("expected background navigation to cancel, got %v", capt.forgotten)
	}
}

func TestHandleCloseForgets(t *testing.T) {
	capt := &recordingCapturer{}
	d := New(state.NewTabStore(), capt)
	res := d.Handle(backend.Event{Kind: backend.KindClosed, Tab: tab.LiveTab{ID: 9}})
	if !res.CaptureForgotten || len(capt.forgotten) != 1 {
		t.Fatalf("expected close to forget tab 9")
	}
}

func TestHandleErrorIsIgnored(t *testing.T) {
	capt := &recordingCapturer{}
	res := New(state.NewTabStore(), capt).Handle(backend.Event{Kind: backend.KindActivated, Err: errors.New("boom")})
	if res.CaptureStarted || len(capt.started) != 0 {
		t.Fatalf("expected errored event to be dropped")
	}
}
