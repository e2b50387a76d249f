package imaging

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderHalfBlocks draws img as cols x rows terminal cells. Each cell shows
// two vertical pixels: the upper as foreground of "▀", the lower as background.
func RenderHalfBlocks(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	scaled, err := Scale(img, cols)
	if err != nil {
		return ""
	}
	b := scaled.Bounds()
	var out strings.Builder
	for row := 0; row < rows; row++ {
		y := b.Min.Y + row*2
		if y >= b.Max.Y {
			break
		}
		if row > 0 {
			out.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := hexColor(scaled, x, y)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(top))
			if y+1 < b.Max.Y {
				style = style.Background(lipgloss.Color(hexColor(scaled, x, y+1)))
			}
			out.WriteString(style.Render("▀"))
		}
	}
	return out.String()
}

// RenderDataURL decodes a screenshot data URL and renders it.
func RenderDataURL(url string, cols, rows int) string {
	raw, err := DecodeDataURL(url)
	if err != nil {
		return ""
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	return RenderHalfBlocks(img, cols, rows)
}

func hexColor(img image.Image, x, y int) string {
	r, g, b, _ := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
