// Package document builds the receipt and invoice views that are shown on screen
// and rasterized for PDF export. Every row is always present so a document kind
// always has the same shape; absent values read "N/A".
package document

import (
	"regexp"
	"strings"

	"gymdesk/internal/application/format"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/invoice"
	"gymdesk/internal/domain/payment"
)

// Kind names a document type.
type Kind string

// Document kinds.
const (
	KindReceipt Kind = "receipt"
	KindInvoice Kind = "invoice"
)

// Capture root ids. The rasterizer looks these up; they must not change.
const (
	ReceiptRootID = "receipt-document"
	InvoiceRootID = "invoice-document"
)

// WidthPx is the fixed capture width of every document.
const WidthPx = 680

// DefaultBackground is used when no background is configured.
const DefaultBackground = "#ffffff"

// Gym is the business identity printed in the document header.
type Gym struct {
	Name    string
	Address string
	Email   string
	Phone   string
}

// Row is one label/value line in the details block.
type Row struct {
	Label string
	Value string
}

// Party is the bill-to block.
type Party struct {
	Name  string
	Email string
	Phone string
}

// LineItem is one invoice line.
type LineItem struct {
	Description string
	Amount      string
}

// View is everything a document template needs. It holds display strings only.
type View struct {
	Kind        Kind
	RootID      string
	RecordID    string
	Title       string
	Key         string
	Status      string
	StatusClass string
	Gym         Gym
	Rows        []Row
	BillTo      Party
	Items       []LineItem
	Total       string
	Notes       string
}

// NewReceipt builds the receipt for a payment. user is the signed-in profile.
// PRE: f has a display location
// POST: Rows always holds the same labels in the same order
func NewReceipt(p payment.Payment, user account.User, gym Gym, f format.Formatter) View {
	md := p.Metadata
	return View{
		Kind:        KindReceipt,
		RootID:      ReceiptRootID,
		RecordID:    p.ID.String(),
		Title:       "Payment Receipt",
		Key:         orNA(p.Reference),
		Status:      orNA(p.Status),
		StatusClass: statusClass(p.Status),
		Gym:         gymOrNA(gym),
		Rows: []Row{
			{Label: "Reference", Value: orNA(p.Reference)},
			{Label: "Status", Value: orNA(p.Status)},
			{Label: "Paid at", Value: f.OptionalDateTime(p.PaidAt)},
			{Label: "Payment type", Value: paymentTypeLabel(md.PaymentType)},
			{Label: "Invoice", Value: orNA(md.Invoice)},
			{Label: "Booking", Value: orNA(md.Booking)},
			{Label: "Subscription", Value: orNA(md.Subscription)},
		},
		BillTo: partyFor(user),
		Items: []LineItem{
			{Description: receiptDescription(md), Amount: f.Amount(p.AmountCents, p.Currency)},
		},
		Total: f.Amount(p.AmountCents, p.Currency),
	}
}

// NewInvoice builds the invoice document. The bill-to block uses the invoice's
// member when the backend expanded it, and the signed-in user otherwise.
func NewInvoice(inv invoice.Invoice, user account.User, gym Gym, f format.Formatter) View {
	billTo := partyFor(user)
	if inv.Member.Name != "" || inv.Member.Email != "" {
		billTo = Party{Name: orNA(inv.Member.Name), Email: orNA(inv.Member.Email), Phone: billTo.Phone}
		if inv.Member.ID.String() != user.ID.String() {
			billTo.Phone = format.Placeholder
		}
	}
	total := f.Amount(inv.TotalCents, inv.Currency)
	return View{
		Kind:        KindInvoice,
		RootID:      InvoiceRootID,
		RecordID:    inv.ID.String(),
		Title:       "Invoice",
		Key:         orNA(inv.Number),
		Status:      orNA(inv.Status),
		StatusClass: statusClass(inv.Status),
		Gym:         gymOrNA(gym),
		Rows: []Row{
			{Label: "Invoice number", Value: orNA(inv.Number)},
			{Label: "Status", Value: orNA(inv.Status)},
			{Label: "Issue date", Value: f.CalendarDate(inv.IssueDate.Time)},
			{Label: "Due date", Value: f.CalendarDate(inv.DueDate.Time)},
			{Label: "Payment type", Value: paymentTypeLabel(inv.Metadata.PaymentType)},
		},
		BillTo: billTo,
		Items: []LineItem{
			{Description: inv.LineItemDescription(), Amount: total},
		},
		Total: total,
		Notes: orNA(inv.Notes),
	}
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename is the download name: receipt-<reference>.pdf or invoice-<number>.pdf.
// Characters outside [A-Za-z0-9._-] become "-". A missing key falls back to the
// record id.
func (v View) Filename() string {
	key := v.Key
	if key == format.Placeholder || strings.TrimSpace(key) == "" {
		key = v.RecordID
	}
	key = strings.Trim(unsafeFilename.ReplaceAllString(key, "-"), "-.")
	if key == "" {
		key = "document"
	}
	return string(v.Kind) + "-" + key + ".pdf"
}

// Value returns the value of the row with label, or "" when absent.
func (v View) Value(label string) string {
	for _, r := range v.Rows {
		if r.Label == label {
			return r.Value
		}
	}
	return ""
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return format.Placeholder
	}
	return s
}

func gymOrNA(g Gym) Gym {
	return Gym{Name: orNA(g.Name), Address: orNA(g.Address), Email: orNA(g.Email), Phone: orNA(g.Phone)}
}

func partyFor(u account.User) Party {
	return Party{Name: orNA(u.Name), Email: orNA(u.Email), Phone: orNA(u.Phone)}
}

func paymentTypeLabel(t string) string {
	switch t {
	case payment.TypeBooking:
		return "Class booking"
	case payment.TypeSubscription:
		return "Membership subscription"
	}
	return orNA(t)
}

func receiptDescription(md payment.Metadata) string {
	switch {
	case md.PaymentType == payment.TypeSubscription && md.Subscription != "":
		return "Membership subscription #" + md.Subscription
	case md.PaymentType == payment.TypeBooking && md.Booking != "":
		return "Class booking #" + md.Booking
	}
	return "Gym services"
}

// statusClass maps a status onto one of the CSS badge classes.
func statusClass(status string) string {
	switch strings.ToUpper(status) {
	case payment.StatusPaid:
		return "ok"
	case payment.StatusPending, invoice.StatusDraft:
		return "warn"
	case payment.StatusFailed, payment.StatusCancelled, payment.StatusRefunded:
		return "bad"
	}
	return "muted"
}
