package ui

import (
	"strings"

	"github.com/atomicstack/tab-popup-switcher/internal/format/table"
	"github.com/atomicstack/tab-popup-switcher/internal/imaging"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

type thumbKey struct {
	id   tab.ID
	cols int
	rows int
}

var renderThumbnailFn = imaging.RenderDataURL

// thumbnail returns the half-block rendering of a candidate's screenshot,
// caching it per size.
func (m *Model) thumbnail(c tab.Candidate, cols, rows int) string {
	if c.Screenshot == "" || cols <= 0 || rows <= 0 {
		return ""
	}
	key := thumbKey{id: c.ID, cols: cols, rows: rows}
	if cached, ok := m.thumbs[key]; ok {
		return cached
	}
	rendered := renderThumbnailFn(c.Screenshot, cols, rows)
	m.thumbs[key] = rendered
	return rendered
}

// renderThumbnailPanel draws the selected tab's screenshot inside a bordered
// box of exactly width x height cells.
func (m *Model) renderThumbnailPanel(width, height int) string {
	innerW := width - 2
	innerH := height - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}
	body := make([]string, 0, innerH)
	selected, ok := m.selectedCandidate()
	if ok {
		body = append(body, table.Fit(selected.DisplayTitle(), innerW))
		if img := m.thumbnail(selected, innerW, innerH-1); img != "" {
			body = append(body, strings.Split(img, "\n")...)
		} else {
			body = append(body, emptyThumbnail(innerW))
		}
	}
	if len(body) > innerH {
		body = body[:innerH]
	}
	border := styles.ThumbnailBorder
	if border == nil {
		return padColumn(strings.Join(body, "\n"), width, height)
	}
	return border.Copy().Width(innerW).Height(innerH).Render(strings.Join(body, "\n"))
}

func emptyThumbnail(width int) string {
	text := table.Fit("(no preview yet)", width)
	if styles.ThumbnailEmpty != nil {
		return styles.ThumbnailEmpty.Render(text)
	}
	return text
}
