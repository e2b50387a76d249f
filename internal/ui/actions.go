package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/atomicstack/tab-popup-switcher/internal/logging"
	"github.com/atomicstack/tab-popup-switcher/internal/router"
	"github.com/atomicstack/tab-popup-switcher/internal/switcher"
	"github.com/atomicstack/tab-popup-switcher/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

const activationHintDelay = 2 * time.Second

type hintMsg struct {
	seq int
}

// commit finalises the selection and asks the coordinator to activate it.
func (m *Model) commit() tea.Cmd {
	return m.applyEffect(m.ctrl.Commit())
}

func (m *Model) applyEffect(effect switcher.Effect) tea.Cmd {
	if !effect.Activate || m.transport == nil {
		return m.quit()
	}
	m.activating = true
	id := effect.TabID
	return m.bus.Execute(m.ctx, command.Request{
		ID:    router.TypeActivateTab,
		Label: fmt.Sprintf("tab %d", id),
		Run: func(ctx context.Context) error {
			return router.Activate(ctx, m.transport, id)
		},
	})
}

func (m *Model) handleActionResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(command.Result)
	if !ok {
		return nil
	}
	m.activating = false
	if result.Err != nil {
		logging.Error(result.Err)
		m.errMsg = result.Err.Error()
	}
	return m.quit()
}

// scheduleHint restarts the idle timer that reveals the activation hint.
func (m *Model) scheduleHint() tea.Cmd {
	m.hintSeq++
	m.showHint = false
	seq := m.hintSeq
	return tea.Tick(activationHintDelay, func(time.Time) tea.Msg {
		return hintMsg{seq: seq}
	})
}

func (m *Model) handleHintMsg(msg tea.Msg) tea.Cmd {
	hint, ok := msg.(hintMsg)
	if !ok {
		return nil
	}
	if hint.seq == m.hintSeq && m.ctrl.IsOpen() {
		m.showHint = true
	}
	return nil
}
