package web

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"gymdesk/internal/adapters/api"
	"gymdesk/internal/application/document"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/domain/invoice"
	"gymdesk/internal/domain/payment"
)

type documentPage struct {
	Title     string
	Document  template.HTML
	PDFURL    string
	EmailURL  string
	BackURL   string
	Exporting bool
}

// loadPayment takes the payment from the session's cache, or fetches it by id.
func loadPayment(w http.ResponseWriter, r *http.Request) (payment.Payment, bool) {
	rec := recordsFor(r)
	p, cached, err := rec.Payments.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		backendFailed(w, r, err, "/payments")
		return p, false
	}
	slog.Debug("document_source", "kind", document.KindReceipt, "id", p.RecordID(), "cached", cached)
	return p, true
}

// loadInvoice takes the invoice from the session's cache, or fetches it by id.
// Members only see their own invoices.
func loadInvoice(w http.ResponseWriter, r *http.Request) (invoice.Invoice, bool) {
	rec := recordsFor(r)
	inv, cached, err := rec.Invoices.Get(r.Context(), r.PathValue("id"))
	if err == nil && rec.IsMember() && inv.Member.ID != "" && inv.Member.ID != rec.User().ID {
		err = api.ErrNotFound
	}
	if err != nil {
		backendFailed(w, r, err, "/invoices")
		return inv, false
	}
	slog.Debug("document_source", "kind", document.KindInvoice, "id", inv.RecordID(), "cached", cached)
	return inv, true
}

func renderDocument(w http.ResponseWriter, r *http.Request, view document.View, base, emailURL, backURL string) {
	fragment, err := app.Documents.Fragment(view)
	if err != nil {
		internalError(w, err)
		return
	}
	rec := recordsFor(r)
	renderTemplate(w, r, "document.html", documentPage{
		Title:     view.Title + " " + view.Key,
		Document:  fragment,
		PDFURL:    base,
		EmailURL:  emailURL,
		BackURL:   backURL,
		Exporting: app.Export.Guard != nil && app.Export.Guard.Busy(rec.Session.Key),
	})
}

// handleReceiptView handles GET /payments/{id}/receipt
func handleReceiptView(w http.ResponseWriter, r *http.Request) {
	p, ok := loadPayment(w, r)
	if !ok {
		return
	}
	user := recordsFor(r).User()
	view := document.NewReceipt(p, user, app.Export.Gym, app.Export.Formatter)
	id := r.PathValue("id")
	renderDocument(w, r, view, "/payments/"+id+"/receipt.pdf", "/payments/"+id+"/receipt/email", "/payments")
}

// handleInvoiceView handles GET /invoices/{id}/view
func handleInvoiceView(w http.ResponseWriter, r *http.Request) {
	inv, ok := loadInvoice(w, r)
	if !ok {
		return
	}
	user := recordsFor(r).User()
	view := document.NewInvoice(inv, user, app.Export.Gym, app.Export.Formatter)
	id := r.PathValue("id")
	renderDocument(w, r, view, "/invoices/"+id+"/invoice.pdf", "/invoices/"+id+"/email", "/invoices")
}

// handleReceiptPDF handles GET /payments/{id}/receipt.pdf
func handleReceiptPDF(w http.ResponseWriter, r *http.Request) {
	p, ok := loadPayment(w, r)
	if !ok {
		return
	}
	rec := recordsFor(r)
	res, err := orchestrators.ExecuteExportReceipt(r.Context(), orchestrators.ExportReceiptInput{
		SessionKey: rec.Session.Key,
		Payment:    p,
		User:       rec.User(),
	}, app.Export)
	if err != nil {
		exportFailed(w, r, err, "/payments/"+r.PathValue("id")+"/receipt")
		return
	}
	writePDF(w, res)
}

// handleInvoicePDF handles GET /invoices/{id}/invoice.pdf
func handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	inv, ok := loadInvoice(w, r)
	if !ok {
		return
	}
	rec := recordsFor(r)
	res, err := orchestrators.ExecuteExportInvoice(r.Context(), orchestrators.ExportInvoiceInput{
		SessionKey: rec.Session.Key,
		Invoice:    inv,
		User:       rec.User(),
	}, app.Export)
	if err != nil {
		exportFailed(w, r, err, "/invoices/"+r.PathValue("id")+"/view")
		return
	}
	writePDF(w, res)
}

func writePDF(w http.ResponseWriter, res orchestrators.ExportResult) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PDF)))
	w.Write(res.PDF)
}

// exportFailed sends the user back to the document with an error toast. The
// toast offers the same download again.
func exportFailed(w http.ResponseWriter, r *http.Request, err error, viewURL string) {
	if errors.Is(err, orchestrators.ErrInProgress) {
		redirectWithFlash(w, r, viewURL, Flash{Kind: FlashError, Message: "An export is already running. Please wait for it to finish.", Retry: r.URL.Path})
		return
	}
	var exportErr *orchestrators.ExportError
	if errors.As(err, &exportErr) {
		redirectWithFlash(w, r, viewURL, Flash{Kind: FlashError, Message: "The PDF could not be created.", Retry: r.URL.Path})
		return
	}
	internalError(w, err)
}

func emailDeps() orchestrators.EmailDocumentDeps {
	return orchestrators.EmailDocumentDeps{
		Export:     app.Export,
		Sender:     app.Sender,
		Outbox:     app.Outbox,
		GenerateID: generateID,
		Now:        timeNow,
	}
}

// handleReceiptEmail handles POST /payments/{id}/receipt/email
func handleReceiptEmail(w http.ResponseWriter, r *http.Request) {
	p, ok := loadPayment(w, r)
	if !ok {
		return
	}
	rec := recordsFor(r)
	res, err := orchestrators.ExecuteEmailReceipt(r.Context(), orchestrators.EmailReceiptInput{
		SessionKey: rec.Session.Key,
		Payment:    p,
		User:       rec.User(),
	}, emailDeps())
	emailDone(w, r, res, err, "/payments/"+r.PathValue("id")+"/receipt")
}

// handleInvoiceEmail handles POST /invoices/{id}/email
func handleInvoiceEmail(w http.ResponseWriter, r *http.Request) {
	inv, ok := loadInvoice(w, r)
	if !ok {
		return
	}
	rec := recordsFor(r)
	res, err := orchestrators.ExecuteEmailInvoice(r.Context(), orchestrators.EmailInvoiceInput{
		SessionKey: rec.Session.Key,
		Invoice:    inv,
		User:       rec.User(),
	}, emailDeps())
	emailDone(w, r, res, err, "/invoices/"+r.PathValue("id")+"/view")
}

func emailDone(w http.ResponseWriter, r *http.Request, res orchestrators.EmailResult, err error, viewURL string) {
	switch {
	case errors.Is(err, orchestrators.ErrNoEmail):
		redirectWithFlash(w, r, viewURL, Flash{Kind: FlashError, Message: err.Error()})
	case errors.Is(err, orchestrators.ErrInProgress):
		redirectWithFlash(w, r, viewURL, Flash{Kind: FlashError, Message: "An export is already running. Please wait for it to finish."})
	case err != nil:
		slog.Error("document_email_failed", "path", r.URL.Path, "error", err.Error())
		redirectWithFlash(w, r, viewURL, Flash{Kind: FlashError, Message: "The email could not be sent. Please try again."})
	case res.Queued:
		redirectWithFlash(w, r, viewURL, Flash{Kind: FlashSuccess, Message: "Email delivery is delayed. We'll keep trying and send " + res.Filename + " shortly."})
	default:
		redirectWithFlash(w, r, viewURL, Flash{Kind: FlashSuccess, Message: "Sent " + res.Filename + " to your email."})
	}
}
