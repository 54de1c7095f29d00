package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"time"

	"github.com/go-pdf/fpdf"
)

// Options describe one output document.
type Options struct {
	Page     PageFormat
	MarginMM float64
	Title    string
	Author   string
}

// Writer turns PNG images into one-page PDFs.
type Writer struct {
	// created is stamped into every document so the same image yields the same
	// metadata on every export.
	created time.Time
}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{created: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

// Write places png as the only content of a single page.
// PRE: png is a valid PNG image
// POST: Returns PDF bytes with exactly one page
func (w *Writer) Write(png []byte, opts Options) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("read image size: %w", err)
	}
	if format != "png" {
		return nil, fmt.Errorf("expected png image, got %s", format)
	}
	place, err := FitImage(opts.Page, opts.MarginMM, PixelsToMM(cfg.Width), PixelsToMM(cfg.Height))
	if err != nil {
		return nil, err
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: opts.Page.WidthMM, Ht: opts.Page.HeightMM},
	})
	doc.SetCreationDate(w.created)
	doc.SetModificationDate(w.created)
	doc.SetCatalogSort(true)
	doc.SetCompression(true)
	doc.SetTitle(opts.Title, true)
	doc.SetAuthor(opts.Author, true)
	doc.SetCreator("gymdesk", true)
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	imgOpts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	doc.RegisterImageOptionsReader("document", imgOpts, bytes.NewReader(png))
	doc.ImageOptions("document", place.X, place.Y, place.Width, place.Height, false, imgOpts, 0, "")

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), nil
}
