// Package pdf places a single raster image on a single PDF page.
package pdf

import (
	"fmt"
	"strings"
)

// PageFormat is a named portrait page size in millimetres.
type PageFormat struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

// Supported page formats.
var (
	A4     = PageFormat{Name: "A4", WidthMM: 210, HeightMM: 297}
	A5     = PageFormat{Name: "A5", WidthMM: 148, HeightMM: 210}
	Letter = PageFormat{Name: "Letter", WidthMM: 215.9, HeightMM: 279.4}
)

var formats = []PageFormat{A4, A5, Letter}

// ParsePageFormat looks a format up by name, case-insensitively.
func ParsePageFormat(name string) (PageFormat, error) {
	for _, f := range formats {
		if strings.EqualFold(strings.TrimSpace(name), f.Name) {
			return f, nil
		}
	}
	return PageFormat{}, fmt.Errorf("unknown page format %q (want A4, A5 or Letter)", name)
}

// Placement is where the image lands on the page, in millimetres.
type Placement struct {
	X, Y          float64
	Width, Height float64
	Scale         float64
}

// FitImage scales an image of imgW x imgH to fit inside the page minus margin
// on every side, preserving aspect ratio, and centres it.
// PRE: imgW > 0, imgH > 0, 2*margin < page width and height
// POST: the placement lies inside [margin, size-margin] on both axes
func FitImage(page PageFormat, margin, imgW, imgH float64) (Placement, error) {
	if imgW <= 0 || imgH <= 0 {
		return Placement{}, fmt.Errorf("image size must be positive, got %gx%g", imgW, imgH)
	}
	if margin < 0 {
		return Placement{}, fmt.Errorf("margin cannot be negative, got %g", margin)
	}
	availW := page.WidthMM - 2*margin
	availH := page.HeightMM - 2*margin
	if availW <= 0 || availH <= 0 {
		return Placement{}, fmt.Errorf("margin %gmm leaves no room on %s", margin, page.Name)
	}
	scale := min(availW/imgW, availH/imgH)
	w := imgW * scale
	h := imgH * scale
	return Placement{
		X:      (page.WidthMM - w) / 2,
		Y:      (page.HeightMM - h) / 2,
		Width:  w,
		Height: h,
		Scale:  scale,
	}, nil
}

// PixelsToMM converts CSS pixels to millimetres at 96 dpi.
func PixelsToMM(px int) float64 {
	return float64(px) * 25.4 / 96
}
