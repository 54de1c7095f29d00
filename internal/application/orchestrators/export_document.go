package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymdesk/internal/adapters/pdf"
	"gymdesk/internal/application/document"
	"gymdesk/internal/application/format"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/invoice"
	"gymdesk/internal/domain/payment"
)

// Export steps, reported in ExportError.
const (
	StepRender    = "render"
	StepRasterize = "rasterize"
	StepPDF       = "pdf"
)

// ErrInProgress is returned when the session already has an export running.
var ErrInProgress = errors.New("an export is already in progress")

// ExportError wraps a failure in one export step. Export failures are transient
// from the user's point of view, so handlers offer a retry.
type ExportError struct {
	Step string
	Kind document.Kind
	Err  error
}

// Error implements error.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %s: %v", e.Kind, e.Step, e.Err)
}

// Unwrap returns the step error.
func (e *ExportError) Unwrap() error { return e.Err }

// DocumentRenderer renders a standalone document page.
type DocumentRenderer interface {
	Standalone(v document.View) ([]byte, error)
	Background() string
}

// Rasterizer captures one element of an HTML page as a PNG.
type Rasterizer interface {
	Rasterize(ctx context.Context, html []byte, rootID string, background string) ([]byte, error)
}

// PDFWriter places a PNG on a single PDF page.
type PDFWriter interface {
	Write(png []byte, opts pdf.Options) ([]byte, error)
}

// ExportDeps holds dependencies for document export.
type ExportDeps struct {
	Renderer    DocumentRenderer
	Rasterizer  Rasterizer
	PDF         PDFWriter
	Guard       *InFlight
	Formatter   format.Formatter
	Gym         document.Gym
	ReceiptPage pdf.PageFormat
	InvoicePage pdf.PageFormat
	MarginMM    float64
}

// ExportResult is a finished export.
type ExportResult struct {
	Filename string
	PDF      []byte
	View     document.View
}

// ExportReceiptInput carries input for a receipt export.
type ExportReceiptInput struct {
	SessionKey string
	Payment    payment.Payment
	User       account.User
}

// ExportInvoiceInput carries input for an invoice export.
type ExportInvoiceInput struct {
	SessionKey string
	Invoice    invoice.Invoice
	User       account.User
}

// ExecuteExportReceipt renders a payment receipt and converts it to a PDF.
// PRE: SessionKey non-empty
// POST: Returns receipt-<reference>.pdf, ErrInProgress, or *ExportError
// INVARIANT: at most one export per session runs at a time
func ExecuteExportReceipt(ctx context.Context, input ExportReceiptInput, deps ExportDeps) (ExportResult, error) {
	view := document.NewReceipt(input.Payment, input.User, deps.Gym, deps.Formatter)
	return exportView(ctx, input.SessionKey, view, deps.ReceiptPage, deps)
}

// ExecuteExportInvoice renders an invoice and converts it to a PDF.
// PRE: SessionKey non-empty
// POST: Returns invoice-<number>.pdf, ErrInProgress, or *ExportError
func ExecuteExportInvoice(ctx context.Context, input ExportInvoiceInput, deps ExportDeps) (ExportResult, error) {
	view := document.NewInvoice(input.Invoice, input.User, deps.Gym, deps.Formatter)
	return exportView(ctx, input.SessionKey, view, deps.InvoicePage, deps)
}

func exportView(ctx context.Context, sessionKey string, view document.View, page pdf.PageFormat, deps ExportDeps) (ExportResult, error) {
	if deps.Guard != nil {
		release, ok := deps.Guard.Acquire(sessionKey)
		if !ok {
			slog.Info("export_event", "event", "rejected_in_progress", "kind", view.Kind, "record_id", view.RecordID)
			return ExportResult{}, ErrInProgress
		}
		defer release()
	}
	start := time.Now()

	html, err := deps.Renderer.Standalone(view)
	if err != nil {
		return ExportResult{}, exportFailed(view, StepRender, err)
	}

	png, err := deps.Rasterizer.Rasterize(ctx, html, view.RootID, deps.Renderer.Background())
	if err != nil {
		return ExportResult{}, exportFailed(view, StepRasterize, err)
	}

	doc, err := deps.PDF.Write(png, pdf.Options{
		Page:     page,
		MarginMM: deps.MarginMM,
		Title:    view.Title + " " + view.Key,
		Author:   deps.Gym.Name,
	})
	if err != nil {
		return ExportResult{}, exportFailed(view, StepPDF, err)
	}

	slog.Info("export_event", "event", "exported", "kind", view.Kind, "record_id", view.RecordID,
		"bytes", len(doc), "duration_ms", time.Since(start).Milliseconds())
	return ExportResult{Filename: view.Filename(), PDF: doc, View: view}, nil
}

func exportFailed(view document.View, step string, err error) error {
	slog.Error("export_failed", "kind", view.Kind, "record_id", view.RecordID, "step", step, "error", err)
	return &ExportError{Step: step, Kind: view.Kind, Err: err}
}
