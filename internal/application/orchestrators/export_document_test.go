package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymdesk/internal/application/document"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/invoice"
	"gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/record"
)

func testUser() account.User {
	return account.User{ID: "u1", Name: "Ada Member", Email: "ada@example.com", Phone: "555-0101", Role: account.RoleMember}
}

func testPayment() payment.Payment {
	paid := time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)
	return payment.Payment{
		ID:          "p1",
		Reference:   "ref-abc123",
		AmountCents: 250000,
		Currency:    "USD",
		Status:      payment.StatusPaid,
		PaidAt:      &paid,
		Metadata:    payment.Metadata{PaymentType: payment.TypeSubscription, Subscription: "sub-9"},
	}
}

func testInvoice() invoice.Invoice {
	return invoice.Invoice{
		ID:         "i1",
		Number:     "INV-0042",
		Member:     record.Ref{ID: "u1", Name: "Ada Member"},
		IssueDate:  record.NewDate(2025, time.March, 1),
		DueDate:    record.NewDate(2025, time.March, 15),
		TotalCents: 4999,
		Currency:   "USD",
		Status:     invoice.StatusPending,
	}
}

func TestExportReceipt_ProducesNamedPDF(t *testing.T) {
	deps, _, ras, w := newExportDeps()

	res, err := ExecuteExportReceipt(context.Background(), ExportReceiptInput{
		SessionKey: "sess", Payment: testPayment(), User: testUser(),
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteExportReceipt: %v", err)
	}
	if res.Filename != "receipt-ref-abc123.pdf" {
		t.Errorf("filename = %q", res.Filename)
	}
	if string(res.PDF) != "%PDF-fake" {
		t.Errorf("pdf = %q", res.PDF)
	}
	if len(ras.rootIDs) != 1 || ras.rootIDs[0] != document.ReceiptRootID {
		t.Errorf("rasterized roots = %v", ras.rootIDs)
	}
	if len(w.opts) != 1 || w.opts[0].Page.Name != "A5" {
		t.Fatalf("pdf options = %+v", w.opts)
	}
	if w.opts[0].Author != "Iron Temple" {
		t.Errorf("author = %q", w.opts[0].Author)
	}
	if deps.Guard.Busy("sess") {
		t.Error("guard not released after export")
	}
}

func TestExportInvoice_UsesInvoicePage(t *testing.T) {
	deps, _, ras, w := newExportDeps()

	res, err := ExecuteExportInvoice(context.Background(), ExportInvoiceInput{
		SessionKey: "sess", Invoice: testInvoice(), User: testUser(),
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteExportInvoice: %v", err)
	}
	if res.Filename != "invoice-INV-0042.pdf" {
		t.Errorf("filename = %q", res.Filename)
	}
	if ras.rootIDs[0] != document.InvoiceRootID {
		t.Errorf("root = %q", ras.rootIDs[0])
	}
	if w.opts[0].Page.Name != "A4" {
		t.Errorf("page = %q", w.opts[0].Page.Name)
	}
}

func TestExport_StepFailuresAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		setup func(*fakeRenderer, *fakeRasterizer, *fakePDF)
		step  string
	}{
		{"render", func(r *fakeRenderer, _ *fakeRasterizer, _ *fakePDF) { r.err = boom }, StepRender},
		{"rasterize", func(_ *fakeRenderer, r *fakeRasterizer, _ *fakePDF) { r.err = boom }, StepRasterize},
		{"pdf", func(_ *fakeRenderer, _ *fakeRasterizer, w *fakePDF) { w.err = boom }, StepPDF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, r, ras, w := newExportDeps()
			tt.setup(r, ras, w)

			_, err := ExecuteExportReceipt(context.Background(), ExportReceiptInput{
				SessionKey: "sess", Payment: testPayment(), User: testUser(),
			}, deps)
			var exportErr *ExportError
			if !errors.As(err, &exportErr) {
				t.Fatalf("error = %v, want *ExportError", err)
			}
			if exportErr.Step != tt.step {
				t.Errorf("step = %q, want %q", exportErr.Step, tt.step)
			}
			if !errors.Is(err, boom) {
				t.Error("cause not unwrapped")
			}
			if deps.Guard.Busy("sess") {
				t.Error("guard not released after failure")
			}
		})
	}
}

func TestExport_RetryAfterFailureSucceeds(t *testing.T) {
	deps, _, ras, _ := newExportDeps()
	ras.err = errors.New("browser crashed")
	in := ExportReceiptInput{SessionKey: "sess", Payment: testPayment(), User: testUser()}

	if _, err := ExecuteExportReceipt(context.Background(), in, deps); err == nil {
		t.Fatal("expected failure")
	}
	ras.err = nil
	if _, err := ExecuteExportReceipt(context.Background(), in, deps); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestExport_ConcurrentExportRejected(t *testing.T) {
	deps, _, ras, _ := newExportDeps()
	block := make(chan struct{})
	ras.block = block
	in := ExportReceiptInput{SessionKey: "sess", Payment: testPayment(), User: testUser()}

	done := make(chan error, 1)
	go func() {
		_, err := ExecuteExportReceipt(context.Background(), in, deps)
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !deps.Guard.Busy("sess") {
		if time.Now().After(deadline) {
			t.Fatal("first export never started")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := ExecuteExportReceipt(context.Background(), in, deps)
	if !errors.Is(err, ErrInProgress) {
		t.Errorf("second export error = %v, want ErrInProgress", err)
	}

	// A different session is not blocked.
	other := in
	other.SessionKey = "other"
	ras.mu.Lock()
	ras.block = nil
	ras.mu.Unlock()
	if _, err := ExecuteExportReceipt(context.Background(), other, deps); err != nil {
		t.Errorf("other session export: %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Errorf("first export: %v", err)
	}
}
