package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultHarnessTimeout = 50 * time.Millisecond

// Harness drives the UI model programmatically for integration tests.
// Commands that have not produced a message within Timeout (blink and hint
// timers, idle long-polls) are abandoned.
type Harness struct {
	model   *Model
	Timeout time.Duration
	quit    bool
}

// NewHarness creates a harness for the provided model.
func NewHarness(model *Model) *Harness {
	return &Harness{model: model, Timeout: defaultHarnessTimeout}
}

// Send routes a message through the model and executes any returned commands.
func (h *Harness) Send(msg tea.Msg) {
	if h.model == nil {
		return
	}
	h.apply(msg)
}

func (h *Harness) apply(msg tea.Msg) {
	switch msg := msg.(type) {
	case nil:
		return
	case tea.QuitMsg:
		h.quit = true
		return
	case tea.BatchMsg:
		for _, cmd := range msg {
			h.processCmd(cmd)
		}
		return
	}
	mdl, cmd := h.model.Update(msg)
	if updated, ok := mdl.(*Model); ok {
		h.model = updated
	}
	h.processCmd(cmd)
}

func (h *Harness) processCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()
	select {
	case msg := <-result:
		h.apply(msg)
	case <-time.After(h.Timeout):
	}
}

// Init runs the model's Init commands.
func (h *Harness) Init() {
	h.processCmd(h.model.Init())
}

// Quit reports whether the model asked the program to exit.
func (h *Harness) Quit() bool {
	return h.quit
}

// View returns the current view string.
func (h *Harness) View() string {
	if h.model == nil {
		return ""
	}
	return h.model.View()
}

// Model exposes the underlying model.
func (h *Harness) Model() *Model {
	return h.model
}
