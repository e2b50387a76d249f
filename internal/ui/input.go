package ui

import (
	"unicode"

	"github.com/atomicstack/tab-popup-switcher/internal/switcher"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyReleaseMsg reports that a key was let go. Terminals do not report key
// releases, so the host's keyboard hook posts them to the release command
// and they arrive here as key_release pushes.
type KeyReleaseMsg struct {
	Key string
}

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "ctrl+c":
		m.ctrl.Cancel()
		return m.quit()
	case "esc":
		m.ctrl.KeyDown(switcher.KeyEscape)
		return m.quit()
	}
	if !m.ctrl.IsOpen() || m.activating {
		return nil
	}
	switch key.String() {
	case "right", "tab", "down", "ctrl+n":
		m.ctrl.KeyDown(switcher.KeyArrowRight)
		return m.scheduleHint()
	case "left", "shift+tab", "up", "ctrl+p":
		m.ctrl.KeyDown(switcher.KeyArrowLeft)
		return m.scheduleHint()
	case "enter":
		effect, _ := m.ctrl.KeyDown(switcher.KeyEnter)
		return m.applyEffect(effect)
	}
	if m.handleTextInput(key) {
		m.filterCursorDirty = true
		m.infoMsg = ""
		m.errMsg = ""
		return m.scheduleHint()
	}
	return nil
}

func (m *Model) handleKeyReleaseMsg(msg tea.Msg) tea.Cmd {
	release, ok := msg.(KeyReleaseMsg)
	if !ok || m.activating {
		return nil
	}
	if effect, done := m.ctrl.KeyUp(release.Key); done {
		return m.applyEffect(effect)
	}
	return nil
}

func (m *Model) handleBlurMsg(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(tea.BlurMsg); !ok {
		return nil
	}
	if m.activating {
		return nil
	}
	m.ctrl.Hidden()
	return m.quit()
}

func (m *Model) handleTextInput(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "ctrl+u":
		if m.ctrl.Query() == "" {
			return false
		}
		m.ctrl.Filter("")
		return true
	case "ctrl+w":
		return m.ctrl.DeleteQueryWord()
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		return m.ctrl.DeleteQueryRune()
	case tea.KeySpace:
		return m.ctrl.AppendQuery(" ")
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return false
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return false
			}
		}
		return m.ctrl.AppendQuery(string(msg.Runes))
	}
	return false
}

func (m *Model) filterPrompt() string {
	prompt := "» "
	if styles.FilterPrompt != nil {
		prompt = styles.FilterPrompt.Render(prompt)
	}
	if styles.Cursor != nil {
		m.filterCursor.Style = styles.Cursor.Copy()
	}
	text := m.ctrl.Query()
	if text == "" {
		placeholder := []rune("(type to search)")
		if styles.FilterPlaceholder != nil {
			m.filterCursor.TextStyle = styles.FilterPlaceholder.Copy()
		}
		caret := m.renderFilterCursor(string(placeholder[0]))
		rest := string(placeholder[1:])
		if styles.FilterPlaceholder != nil {
			rest = styles.FilterPlaceholder.Render(rest)
		}
		return prompt + caret + rest
	}
	if styles.Filter != nil {
		m.filterCursor.TextStyle = styles.Filter.Copy()
		text = styles.Filter.Render(text)
	}
	return prompt + text + m.renderFilterCursor(" ")
}

func (m *Model) renderFilterCursor(char string) string {
	if char == "" {
		char = " "
	}
	m.filterCursor.SetChar(char)

	base := m.filterCursor.TextStyle.Copy()
	base = base.Inline(true)

	if m.filterCursor.Blink {
		return base.Render(char)
	}

	if styles.Cursor != nil {
		cursorStyle := styles.Cursor.Copy().Inline(true)
		base = base.Inherit(cursorStyle).Blink(false)
		return base.Render(char)
	}

	return base.Reverse(true).Render(char)
}
