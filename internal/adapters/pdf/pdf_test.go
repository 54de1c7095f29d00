package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

const eps = 1e-9

func TestParsePageFormat(t *testing.T) {
	for _, name := range []string{"A4", "a5", " letter "} {
		if _, err := ParsePageFormat(name); err != nil {
			t.Errorf("ParsePageFormat(%q): %v", name, err)
		}
	}
	if _, err := ParsePageFormat("B5"); err == nil {
		t.Error("B5 should be rejected")
	}
}

func TestFitImage_StaysInsideMargins(t *testing.T) {
	tests := []struct {
		name       string
		page       PageFormat
		margin     float64
		imgW, imgH float64
	}{
		{"wide on A4", A4, 10, 400, 100},
		{"tall on A5", A5, 10, 100, 900},
		{"square on Letter", Letter, 12.7, 50, 50},
		{"receipt on A5", A5, 10, PixelsToMM(680), PixelsToMM(900)},
		{"tiny image scales up", A4, 10, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := FitImage(tt.page, tt.margin, tt.imgW, tt.imgH)
			if err != nil {
				t.Fatal(err)
			}
			if p.X < tt.margin-eps || p.Y < tt.margin-eps {
				t.Errorf("origin (%g,%g) inside margin %g", p.X, p.Y, tt.margin)
			}
			if p.X+p.Width > tt.page.WidthMM-tt.margin+eps || p.Y+p.Height > tt.page.HeightMM-tt.margin+eps {
				t.Errorf("image overflows page: %+v", p)
			}
			if math.Abs(p.Width/p.Height-tt.imgW/tt.imgH) > 1e-6 {
				t.Errorf("aspect ratio changed: %g vs %g", p.Width/p.Height, tt.imgW/tt.imgH)
			}
			if math.Abs(p.X-(tt.page.WidthMM-p.X-p.Width)) > eps || math.Abs(p.Y-(tt.page.HeightMM-p.Y-p.Height)) > eps {
				t.Errorf("image not centred: %+v", p)
			}
			// One axis touches the margin.
			touchW := math.Abs(p.Width-(tt.page.WidthMM-2*tt.margin)) < 1e-6
			touchH := math.Abs(p.Height-(tt.page.HeightMM-2*tt.margin)) < 1e-6
			if !touchW && !touchH {
				t.Errorf("image not scaled to fill: %+v", p)
			}
		})
	}
}

func TestFitImage_Errors(t *testing.T) {
	if _, err := FitImage(A4, 10, 0, 10); err == nil {
		t.Error("zero width should fail")
	}
	if _, err := FitImage(A4, -1, 10, 10); err == nil {
		t.Error("negative margin should fail")
	}
	if _, err := FitImage(A5, 80, 10, 10); err == nil {
		t.Error("margin wider than half the page should fail")
	}
}

func TestPixelsToMM(t *testing.T) {
	if got := PixelsToMM(96); math.Abs(got-25.4) > eps {
		t.Errorf("PixelsToMM(96) = %g", got)
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestWriter_SinglePage(t *testing.T) {
	w := NewWriter()
	out, err := w.Write(testPNG(t, 68, 90), Options{Page: A5, MarginMM: 10, Title: "Receipt ref-1", Author: "Iron Temple"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", out[:min(8, len(out))])
	}
	if !bytes.Contains(out, []byte("/Count 1")) {
		t.Error("expected a single-page document")
	}

	again, err := w.Write(testPNG(t, 68, 90), Options{Page: A5, MarginMM: 10, Title: "Receipt ref-1", Author: "Iron Temple"})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, again) {
		t.Error("same image and options should produce identical bytes")
	}
}

func TestWriter_RejectsNonPNG(t *testing.T) {
	if _, err := NewWriter().Write([]byte("not an image"), Options{Page: A4}); err == nil {
		t.Error("expected error for non-image input")
	}
}
