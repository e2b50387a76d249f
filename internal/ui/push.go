package ui

import (
	"context"
	"errors"

	"github.com/atomicstack/tab-popup-switcher/internal/logging"
	"github.com/atomicstack/tab-popup-switcher/internal/router"
	tea "github.com/charmbracelet/bubbletea"
)

type tabDataMsg struct {
	data router.TabData
	err  error
}

type pushMsg struct {
	env router.Envelope
}

type pushDoneMsg struct {
	err error
}

func loadTabDataCmd(ctx context.Context, t router.Transport) tea.Cmd {
	return func() tea.Msg {
		data, err := router.RequestTabData(ctx, t)
		if err != nil {
			logging.Error(err)
		}
		return tabDataMsg{data: data, err: err}
	}
}

func waitForPush(ctx context.Context, t router.Transport) tea.Cmd {
	return func() tea.Msg {
		env, err := t.Next(ctx)
		if err != nil {
			return pushDoneMsg{err: err}
		}
		return pushMsg{env: env}
	}
}

func (m *Model) handleTabDataMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(tabDataMsg)
	if !ok {
		return nil
	}
	m.loading = false
	if loaded.err != nil {
		m.errMsg = loaded.err.Error()
		return nil
	}
	m.shortcut = loaded.data.Shortcut
	m.ctrl.Open(loaded.data.TabData, loaded.data.Shortcut)
	m.dispose = m.host.Mount(m.ctrl)
	if len(loaded.data.TabData) == 0 {
		m.infoMsg = "No tabs to show"
	}
	cmds := []tea.Cmd{m.scheduleHint()}
	if m.transport != nil && !m.pushing {
		m.pushing = true
		cmds = append(cmds, waitForPush(m.ctx, m.transport))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handlePushMsg(msg tea.Msg) tea.Cmd {
	push, ok := msg.(pushMsg)
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	switch push.env.Type {
	case router.TypeSelectNext, router.TypeAdvanceSelection:
		m.ctrl.Advance(1)
		cmd = m.scheduleHint()
	case router.TypeSelectPrev:
		m.ctrl.Advance(-1)
		cmd = m.scheduleHint()
	case router.TypeCommit:
		return m.commit()
	case router.TypeKeyRelease:
		var release router.KeyRelease
		if err := push.env.Decode(&release); err != nil {
			logging.Error(err)
			break
		}
		cmd = m.handleKeyReleaseMsg(KeyReleaseMsg{Key: release.Key})
	}
	if !m.ctrl.IsOpen() {
		return cmd
	}
	return tea.Batch(cmd, waitForPush(m.ctx, m.transport))
}

func (m *Model) handlePushDoneMsg(msg tea.Msg) tea.Cmd {
	done, ok := msg.(pushDoneMsg)
	if !ok {
		return nil
	}
	m.pushing = false
	if done.err != nil && !errors.Is(done.err, context.Canceled) {
		logging.Error(done.err)
	}
	return nil
}
