package ui

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/atomicstack/tab-popup-switcher/internal/router"
	"github.com/atomicstack/tab-popup-switcher/internal/switcher"
	"github.com/atomicstack/tab-popup-switcher/internal/switcher/overlay"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
	tea "github.com/charmbracelet/bubbletea"
)

type fakeTransport struct {
	mu          sync.Mutex
	data        router.TabData
	loadErr     error
	activateErr error
	activated   []tab.ID
	closed      bool
}

func (f *fakeTransport) Request(_ context.Context, msgType string, payload interface{}) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch msgType {
	case router.TypeRequestTabData:
		if f.loadErr != nil {
			return nil, f.loadErr
		}
		return json.Marshal(f.data)
	case router.TypeActivateTab:
		req, ok := payload.(router.ActivateTab)
		if !ok {
			return nil, errors.New("unexpected payload")
		}
		f.activated = append(f.activated, req.ID)
		return nil, f.activateErr
	}
	return nil, router.ErrUnknownType
}

func (f *fakeTransport) Next(ctx context.Context) (router.Envelope, error) {
	<-ctx.Done()
	return router.Envelope{}, ctx.Err()
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) activations() []tab.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tab.ID(nil), f.activated...)
}

func sampleData(shortcut string) router.TabData {
	return router.TabData{
		Type:     router.TypeTabData,
		Shortcut: shortcut,
		TabData: []tab.Candidate{
			{ID: 1, LastActive: 300, Title: "Inbox", URL: "https://mail.example.com/"},
			{ID: 2, LastActive: 200, Title: "Docs", URL: "https://docs.example.com/guide"},
			{ID: 3, LastActive: 100, Title: "News", URL: "https://www.news.example.org/"},
		},
	}
}

func openModel(t *testing.T, data router.TabData) (*Harness, *fakeTransport) {
	t.Helper()
	transport := &fakeTransport{data: data}
	h := NewHarness(NewModel(Options{Transport: transport, Width: 60, Height: 20}))
	h.Init()
	if !h.Model().Controller().IsOpen() {
		t.Fatalf("expected controller open after load")
	}
	return h, transport
}

func TestInitLoadsCandidatesAndSelectsSecond(t *testing.T) {
	h, _ := openModel(t, sampleData(""))
	m := h.Model()
	if m.loading {
		t.Fatalf("expected loading to finish")
	}
	if got := m.Controller().Cursor(); got != 1 {
		t.Fatalf("expected cursor 1, got %d", got)
	}
	selected, ok := m.Controller().Selected()
	if !ok || selected.ID != 2 {
		t.Fatalf("expected tab 2 selected, got %#v (%v)", selected, ok)
	}
}

func TestInitWithEmptyDataShowsInfo(t *testing.T) {
	h, _ := openModel(t, router.TabData{Type: router.TypeTabData, TabData: []tab.Candidate{}})
	if got := h.Model().infoMsg; got != "No tabs to show" {
		t.Fatalf("expected empty info, got %q", got)
	}
}

func TestInitLoadErrorIsShown(t *testing.T) {
	transport := &fakeTransport{loadErr: errors.New("boom")}
	h := NewHarness(NewModel(Options{Transport: transport}))
	h.Init()
	m := h.Model()
	if m.Controller().IsOpen() {
		t.Fatalf("expected controller closed on load error")
	}
	if m.errMsg != "boom" {
		t.Fatalf("expected error message, got %q", m.errMsg)
	}
}

func TestLoadMountsControllerOnHost(t *testing.T) {
	host := &overlay.Host{}
	previous := switcher.NewController(switcher.FilterSubstring, switcher.KeyRules{})
	previous.Open(sampleData("").TabData, "")
	host.Mount(previous)

	transport := &fakeTransport{data: sampleData("")}
	h := NewHarness(NewModel(Options{Transport: transport, Host: host}))
	h.Init()
	if host.Current() != h.Model().Controller() {
		t.Fatalf("expected new controller mounted")
	}
	if previous.IsOpen() {
		t.Fatalf("expected previous controller disposed")
	}
}

func TestQuitDisposesAndClosesTransport(t *testing.T) {
	host := &overlay.Host{}
	transport := &fakeTransport{data: sampleData("")}
	h := NewHarness(NewModel(Options{Transport: transport, Host: host}))
	h.Init()
	h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	if !h.Quit() {
		t.Fatalf("expected quit on escape")
	}
	if host.Current() != nil {
		t.Fatalf("expected host cleared, got %#v", host.Current())
	}
	if !transport.closed {
		t.Fatalf("expected transport closed")
	}
	if h.Model().Controller().IsOpen() {
		t.Fatalf("expected controller closed")
	}
}

func TestHandlerForPointerMessages(t *testing.T) {
	m := NewModel(Options{})
	if m.handlerFor(&tea.WindowSizeMsg{}) == nil {
		t.Fatalf("expected handler for pointer message")
	}
	if m.handlerFor(struct{}{}) != nil {
		t.Fatalf("expected no handler for unknown message")
	}
}

func TestPushMessagesMoveSelection(t *testing.T) {
	h, transport := openModel(t, sampleData(""))
	h.Send(pushMsg{env: router.Envelope{Type: router.TypeSelectNext}})
	if got := h.Model().Controller().Cursor(); got != 2 {
		t.Fatalf("expected cursor 2 after select_next, got %d", got)
	}
	h.Send(pushMsg{env: router.Envelope{Type: router.TypeAdvanceSelection}})
	if got := h.Model().Controller().Cursor(); got != 0 {
		t.Fatalf("expected cursor to wrap to 0, got %d", got)
	}
	h.Send(pushMsg{env: router.Envelope{Type: router.TypeSelectPrev}})
	if got := h.Model().Controller().Cursor(); got != 2 {
		t.Fatalf("expected cursor 2 after select_prev, got %d", got)
	}
	h.Send(pushMsg{env: router.Envelope{Type: router.TypeCommit}})
	if !h.Quit() {
		t.Fatalf("expected quit after commit push")
	}
	if got := transport.activations(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("expected activation of tab 3, got %v", got)
	}
}

func TestActivationErrorIsReportedAndQuits(t *testing.T) {
	h, transport := openModel(t, sampleData(""))
	transport.activateErr = errors.New("gone")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if !h.Quit() {
		t.Fatalf("expected quit after failed activation")
	}
	if got := h.Model().errMsg; got != "gone" {
		t.Fatalf("expected error recorded, got %q", got)
	}
}

func TestHintAppearsOnlyForLatestTimer(t *testing.T) {
	h, _ := openModel(t, sampleData(""))
	m := h.Model()
	stale := m.hintSeq
	h.Send(tea.KeyMsg{Type: tea.KeyRight})
	h.Send(hintMsg{seq: stale})
	if m.showHint {
		t.Fatalf("expected stale hint ignored")
	}
	h.Send(hintMsg{seq: m.hintSeq})
	if !m.showHint {
		t.Fatalf("expected hint shown")
	}
	h.Send(tea.KeyMsg{Type: tea.KeyLeft})
	if m.showHint {
		t.Fatalf("expected navigation to hide hint")
	}
}
