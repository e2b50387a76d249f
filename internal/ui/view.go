package ui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/atomicstack/tab-popup-switcher/internal/format/table"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	thumbPanelMinWidth = 36  // minimum cols for the thumbnail panel; below this no split
	thumbPanelFraction = 0.4 // fraction of total width given to the thumbnail panel
	bottomBarRows      = 2   // status line + filter prompt
	footerText         = "←/→ move  enter activate  type to filter  esc close"
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.contentLines(m.listWidth())
	panelH := m.height - bottomBarRows
	if m.height <= 0 {
		panelH = len(content)
	}
	if panelH < 1 {
		panelH = 1
	}
	content = limitHeight(content, panelH, m.listWidth())
	top := renderLines(applyWidth(content, m.listWidth()))
	if panelW := m.thumbPanelWidth(); panelW > 0 {
		top = lipgloss.JoinHorizontal(lipgloss.Top, padColumn(top, m.listWidth(), panelH), m.renderThumbnailPanel(panelW, panelH))
	}

	var status styledLine
	if m.errMsg != "" {
		status = styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	}
	bottom := applyWidth([]styledLine{status, {text: m.filterPrompt()}}, m.width)
	return top + "\n" + renderLines(bottom)
}

func (m *Model) contentLines(width int) []styledLine {
	lines := make([]styledLine, 0, 16)
	lines = append(lines, styledLine{text: m.header(), style: styles.Header})
	switch {
	case m.loading:
		lines = append(lines, styledLine{text: "Loading tabs…", style: styles.Loading})
	case m.ctrl.IsOpen():
		lines = append(lines, m.itemLines(width)...)
	}
	if m.showHint {
		if hint := m.hintText(); hint != "" {
			lines = append(lines, styledLine{})
			lines = append(lines, styledLine{text: " " + hint + " ", style: styles.Hint})
		}
	}
	if m.infoMsg != "" {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: m.infoMsg, style: styles.Info})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: footerText, style: styles.Footer})
	}
	return lines
}

func (m *Model) header() string {
	if !m.ctrl.IsOpen() {
		return "Switch tab"
	}
	total := len(m.ctrl.Candidates())
	if m.ctrl.Query() == "" {
		return fmt.Sprintf("Switch tab (%d)", total)
	}
	return fmt.Sprintf("Switch tab (%d/%d)", len(m.ctrl.Items()), total)
}

func (m *Model) itemLines(width int) []styledLine {
	items := m.ctrl.Items()
	if len(items) == 0 {
		if q := m.ctrl.Query(); q != "" {
			return []styledLine{{text: fmt.Sprintf("No matches for %q", q), style: styles.Info}}
		}
		return nil
	}
	start, end := visibleRange(len(items), m.ctrl.Cursor(), m.maxVisibleItems())
	rows := make([][]string, 0, end-start)
	for _, item := range items[start:end] {
		rows = append(rows, []string{item.DisplayTitle(), hostOf(item.URL)})
	}
	formatted := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft})
	lines := make([]styledLine, 0, len(formatted))
	for i, text := range formatted {
		lines = append(lines, m.buildItemLine(text, start+i, width))
	}
	return lines
}

// buildItemLine constructs a single styledLine for a candidate row, padded to
// width so the selected row's background spans the column.
func (m *Model) buildItemLine(label string, idx, width int) styledLine {
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	if idx == m.ctrl.Cursor() {
		lineStyle = styles.SelectedItem
		indicatorStyle = styles.SelectedItemIndicator
	}
	text := "▌ " + label
	if width > 0 {
		text = table.Fit(text, width)
		if pad := width - ansi.StringWidth(text); pad > 0 {
			text += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          text,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1,
	}
}

func (m *Model) hintText() string {
	if !m.ctrl.IsOpen() || len(m.ctrl.Items()) == 0 {
		return ""
	}
	if key := hotkeyLetter(m.shortcut); key != "" {
		return fmt.Sprintf("Enter or %s to select", strings.ToUpper(key))
	}
	return "Enter to activate"
}

// hotkeyLetter returns the final key of a shortcut when it is a single
// character.
func hotkeyLetter(shortcut string) string {
	if shortcut == "" {
		return ""
	}
	var last string
	if strings.Contains(shortcut, "+") {
		parts := strings.Split(shortcut, "+")
		last = parts[len(parts)-1]
	} else {
		runes := []rune(shortcut)
		last = string(runes[len(runes)-1])
	}
	if len([]rune(last)) != 1 {
		return ""
	}
	return strings.ToLower(last)
}

func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func (m *Model) selectedCandidate() (tab.Candidate, bool) {
	if !m.ctrl.IsOpen() {
		return tab.Candidate{}, false
	}
	return m.ctrl.Selected()
}

// thumbPanelWidth returns the width of the right-hand thumbnail panel, or 0
// when the terminal is too narrow to split.
func (m *Model) thumbPanelWidth() int {
	if m.width <= 0 || m.loading {
		return 0
	}
	w := int(float64(m.width) * thumbPanelFraction)
	if w < thumbPanelMinWidth {
		return 0
	}
	return w
}

func (m *Model) listWidth() int {
	return m.width - m.thumbPanelWidth()
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	return nil
}

func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := bottomBarRows + 1 // header
	if m.showHint {
		used += 2
	}
	if m.infoMsg != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

// visibleRange returns the window of rows that keeps cursor on screen.
func visibleRange(total, cursor, max int) (int, int) {
	if max <= 0 || total <= max {
		return 0, total
	}
	start := 0
	if cursor >= max {
		start = cursor - max + 1
	}
	if start+max > total {
		start = total - max
	}
	return start, start + max
}

// padColumn pads or truncates every row of block to exactly width cells and
// height rows so JoinHorizontal keeps the panel flush.
func padColumn(block string, width, height int) string {
	rows := strings.Split(block, "\n")
	for len(rows) < height {
		rows = append(rows, "")
	}
	for i, row := range rows {
		w := lipgloss.Width(row)
		if w > width {
			rows[i] = ansi.Truncate(row, width, "…")
		} else if w < width {
			rows[i] = row + strings.Repeat(" ", width-w)
		}
	}
	return strings.Join(rows, "\n")
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: table.Fit("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: table.Fit("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		line.text = table.Fit(line.text, width)
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}
