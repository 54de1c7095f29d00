package document

import (
	"strings"
	"testing"
	"time"

	"gymdesk/internal/application/format"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/invoice"
	"gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/record"
)

var (
	testGym  = Gym{Name: "Iron Temple", Address: "1 Main St", Email: "desk@iron.test", Phone: "555-0100"}
	testUser = account.User{ID: "7", Name: "Sam Lee", Email: "sam@iron.test", Phone: "555-0199", Role: account.RoleMember}
	testFmt  = format.New(time.UTC, "USD")
)

func paidPayment() payment.Payment {
	paidAt := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	return payment.Payment{
		ID:          "p1",
		Reference:   "ref-abc123",
		AmountCents: 250000,
		Currency:    "USD",
		Status:      payment.StatusPaid,
		PaidAt:      &paidAt,
		Metadata:    payment.Metadata{PaymentType: payment.TypeSubscription, Subscription: "12"},
	}
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer("")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestNewReceipt_PaidPayment(t *testing.T) {
	v := NewReceipt(paidPayment(), testUser, testGym, testFmt)

	if v.Total != "$2,500.00" {
		t.Errorf("Total = %q, want $2,500.00", v.Total)
	}
	if v.Key != "ref-abc123" {
		t.Errorf("Key = %q", v.Key)
	}
	if got := v.Filename(); got != "receipt-ref-abc123.pdf" {
		t.Errorf("Filename = %q", got)
	}
	if got := v.Value("Paid at"); got != "Wed, Sep 10, 2025, 12:00 PM" {
		t.Errorf("Paid at = %q", got)
	}
	if v.Items[0].Description != "Membership subscription #12" {
		t.Errorf("line item = %q", v.Items[0].Description)
	}
	if v.BillTo.Phone != "555-0199" {
		t.Errorf("BillTo = %+v", v.BillTo)
	}

	html, err := newTestRenderer(t).Standalone(v)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`id="receipt-document"`, "$2,500.00", "ref-abc123", "width: 680px"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("receipt HTML missing %q", want)
		}
	}
}

func TestNewReceipt_MissingFieldsKeepShape(t *testing.T) {
	full := NewReceipt(paidPayment(), testUser, testGym, testFmt)
	empty := NewReceipt(payment.Payment{ID: "p9"}, account.User{}, Gym{}, testFmt)

	if len(full.Rows) != len(empty.Rows) {
		t.Fatalf("row count differs: %d vs %d", len(full.Rows), len(empty.Rows))
	}
	for i := range full.Rows {
		if full.Rows[i].Label != empty.Rows[i].Label {
			t.Errorf("row %d label %q vs %q", i, full.Rows[i].Label, empty.Rows[i].Label)
		}
		if empty.Rows[i].Value != format.Placeholder {
			t.Errorf("row %q = %q, want N/A", empty.Rows[i].Label, empty.Rows[i].Value)
		}
	}
	if empty.BillTo.Name != "N/A" || empty.Gym.Name != "N/A" {
		t.Errorf("missing profile should read N/A: %+v %+v", empty.BillTo, empty.Gym)
	}
	if got := empty.Filename(); got != "receipt-p9.pdf" {
		t.Errorf("Filename fallback = %q", got)
	}
}

func TestNewInvoice(t *testing.T) {
	inv := invoice.Invoice{
		ID:         "i1",
		Number:     "INV/2025 001",
		Member:     record.Ref{ID: "7", Name: "Sam Lee", Email: "sam@iron.test"},
		IssueDate:  record.NewDate(2025, time.September, 1),
		DueDate:    record.NewDate(2025, time.September, 15),
		TotalCents: 4500,
		Currency:   "USD",
		Status:     invoice.StatusPending,
		Metadata:   invoice.Metadata{PaymentType: payment.TypeBooking, BookingID: "88"},
	}
	v := NewInvoice(inv, testUser, testGym, testFmt)

	if v.Value("Issue date") != "Sep 1, 2025" || v.Value("Due date") != "Sep 15, 2025" {
		t.Errorf("dates = %q / %q", v.Value("Issue date"), v.Value("Due date"))
	}
	if v.Items[0].Description != "Class booking #88" || v.Total != "$45.00" {
		t.Errorf("items = %+v total = %q", v.Items, v.Total)
	}
	if v.Notes != "N/A" {
		t.Errorf("Notes = %q", v.Notes)
	}
	if v.BillTo.Phone != "555-0199" {
		t.Errorf("own invoice should carry the user's phone, got %q", v.BillTo.Phone)
	}
	if got := v.Filename(); got != "invoice-INV-2025-001.pdf" {
		t.Errorf("Filename = %q", got)
	}

	other := inv
	other.Member = record.Ref{ID: "99", Name: "Kim", Email: "kim@iron.test"}
	if v := NewInvoice(other, testUser, testGym, testFmt); v.BillTo.Name != "Kim" || v.BillTo.Phone != "N/A" {
		t.Errorf("staff view of another member's invoice: %+v", v.BillTo)
	}

	html, err := newTestRenderer(t).Standalone(v)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), `id="invoice-document"`) || !strings.Contains(string(html), "Notes") {
		t.Error("invoice HTML missing root id or notes block")
	}
}

func TestRenderer_Deterministic(t *testing.T) {
	r := newTestRenderer(t)
	v := NewReceipt(paidPayment(), testUser, testGym, testFmt)
	a, _ := r.Standalone(v)
	b, _ := r.Standalone(v)
	if string(a) != string(b) {
		t.Error("rendering the same record twice must produce identical HTML")
	}
}

func TestRenderer_FragmentHasNoControls(t *testing.T) {
	frag, err := newTestRenderer(t).Fragment(NewReceipt(paidPayment(), testUser, testGym, testFmt))
	if err != nil {
		t.Fatal(err)
	}
	for _, bad := range []string{"<button", "<form", "<a ", "vw", "vh"} {
		if strings.Contains(string(frag), bad) {
			t.Errorf("capture root must not contain %q", bad)
		}
	}
}

func TestNewRenderer_RejectsBadBackground(t *testing.T) {
	for _, bg := range []string{"white", "#12", "red;}", "#ffffffff"} {
		if _, err := NewRenderer(bg); err == nil {
			t.Errorf("NewRenderer(%q) should fail", bg)
		}
	}
	r, err := NewRenderer("#fafafa")
	if err != nil || r.Background() != "#fafafa" {
		t.Errorf("valid colour rejected: %v", err)
	}
}

func TestFilename_Sanitises(t *testing.T) {
	cases := map[string]string{
		"ref-abc123":  "receipt-ref-abc123.pdf",
		"../../etc":   "receipt-etc.pdf",
		"a b/c":       "receipt-a-b-c.pdf",
		"  ":          "receipt-p1.pdf",
		"ref.2025_01": "receipt-ref.2025_01.pdf",
	}
	for key, want := range cases {
		p := paidPayment()
		p.Reference = key
		if got := NewReceipt(p, testUser, testGym, testFmt).Filename(); got != want {
			t.Errorf("Filename(%q) = %q, want %q", key, got, want)
		}
	}
}
