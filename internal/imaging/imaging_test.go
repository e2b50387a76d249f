package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestResizePreservesAspectRatio(t *testing.T) {
	src := encodePNG(t, solid(1200, 800, color.RGBA{R: 200, A: 255}))
	out, err := NewResizer(70).Resize(src, 300)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("expected jpeg output: %v", err)
	}
	if got := img.Bounds().Dx(); got != 300 {
		t.Fatalf("expected width 300, got %d", got)
	}
	if got := img.Bounds().Dy(); got != 200 {
		t.Fatalf("expected height 200, got %d", got)
	}
}

func TestResizeRejectsGarbage(t *testing.T) {
	if _, err := NewResizer(70).Resize([]byte("nope"), 300); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := NewResizer(70).Resize(nil, 300); err != ErrEmptyImage {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
}

func TestNewResizerClampsQuality(t *testing.T) {
	if got := NewResizer(0).Quality; got != DefaultQuality {
		t.Fatalf("expected default quality, got %d", got)
	}
	if got := NewResizer(101).Quality; got != DefaultQuality {
		t.Fatalf("expected default quality, got %d", got)
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	url := EncodeDataURL([]byte{1, 2, 3})
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected prefix: %s", url)
	}
	raw, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(raw, []byte{1, 2, 3}) {
		t.Fatalf("expected payload back, got %v", raw)
	}
	if _, err := DecodeDataURL("https://example.com/x.png"); err != ErrNotDataURL {
		t.Fatalf("expected ErrNotDataURL, got %v", err)
	}
}

func TestRenderHalfBlocksRowCount(t *testing.T) {
	out := RenderHalfBlocks(solid(40, 40, color.White), 10, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(lines))
	}
	if strings.Count(lines[0], "▀") != 10 {
		t.Fatalf("expected 10 cells, got %q", lines[0])
	}
}

func TestRenderDataURLIgnoresInvalidInput(t *testing.T) {
	if out := RenderDataURL("data:image/jpeg;base64,@@", 10, 2); out != "" {
		t.Fatalf("expected empty render, got %q", out)
	}
}
