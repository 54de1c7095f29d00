package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	domainOutbox "gymdesk/internal/domain/outbox"
)

func newEmailDeps() (EmailDocumentDeps, *fakeSender, *fakeOutboxStore) {
	export, _, _, _ := newExportDeps()
	sender := &fakeSender{}
	store := newFakeOutboxStore()
	return EmailDocumentDeps{
		Export:     export,
		Sender:     sender,
		Outbox:     store,
		GenerateID: func() string { return "entry-1" },
		Now:        func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) },
	}, sender, store
}

func TestEmailReceipt_SendsPDFAttachment(t *testing.T) {
	deps, sender, store := newEmailDeps()

	res, err := ExecuteEmailReceipt(context.Background(), EmailReceiptInput{
		SessionKey: "sess", Payment: testPayment(), User: testUser(),
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteEmailReceipt: %v", err)
	}
	if res.Queued || res.MessageID != "msg-1" {
		t.Errorf("result = %+v", res)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	req := sender.sent[0]
	if len(req.To) != 1 || req.To[0] != "ada@example.com" {
		t.Errorf("to = %v", req.To)
	}
	if !strings.Contains(req.Subject, "ref-abc123") {
		t.Errorf("subject = %q", req.Subject)
	}
	if !strings.Contains(req.HTML, "<strong>ref-abc123</strong>") {
		t.Errorf("body not rendered from markdown: %q", req.HTML)
	}
	if len(req.Attachments) != 1 || req.Attachments[0].Filename != "receipt-ref-abc123.pdf" ||
		req.Attachments[0].ContentType != "application/pdf" {
		t.Errorf("attachments = %+v", req.Attachments)
	}
	if len(store.entries) != 0 {
		t.Error("successful send should not touch the outbox")
	}
}

func TestEmailInvoice_NoEmail(t *testing.T) {
	deps, sender, _ := newEmailDeps()
	user := testUser()
	user.Email = ""

	_, err := ExecuteEmailInvoice(context.Background(), EmailInvoiceInput{
		SessionKey: "sess", Invoice: testInvoice(), User: user,
	}, deps)
	if !errors.Is(err, ErrNoEmail) {
		t.Errorf("error = %v, want ErrNoEmail", err)
	}
	if len(sender.sent) != 0 {
		t.Error("nothing should be sent")
	}
}

func TestEmailInvoice_SendFailureQueues(t *testing.T) {
	deps, sender, store := newEmailDeps()
	sender.err = errors.New("provider down")

	res, err := ExecuteEmailInvoice(context.Background(), EmailInvoiceInput{
		SessionKey: "sess", Invoice: testInvoice(), User: testUser(),
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteEmailInvoice: %v", err)
	}
	if !res.Queued {
		t.Error("result should report the email as queued")
	}
	entry, ok := store.entries["entry-1"]
	if !ok {
		t.Fatal("outbox entry not saved")
	}
	if entry.ActionType != domainOutbox.ActionTypeInvoiceEmail {
		t.Errorf("action = %q", entry.ActionType)
	}
	if entry.Status != domainOutbox.StatusRetrying || entry.Attempts != 1 {
		t.Errorf("status = %q attempts = %d", entry.Status, entry.Attempts)
	}
	if entry.Recipient != "ada@example.com" || entry.ErrorMessage != "provider down" {
		t.Errorf("entry = %+v", entry)
	}

	var payload domainOutbox.DocumentEmailPayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.UserEmail != "ada@example.com" || !strings.Contains(string(payload.Record), "INV-0042") {
		t.Errorf("payload = %+v", payload)
	}
}

func TestEmailReceipt_QueueFailureReported(t *testing.T) {
	deps, sender, store := newEmailDeps()
	sender.err = errors.New("provider down")
	store.saveErr = errors.New("disk full")

	_, err := ExecuteEmailReceipt(context.Background(), EmailReceiptInput{
		SessionKey: "sess", Payment: testPayment(), User: testUser(),
	}, deps)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error = %v", err)
	}
}

func TestEmailReceipt_ExportFailureNotQueued(t *testing.T) {
	deps, _, store := newEmailDeps()
	deps.Export.Rasterizer = &fakeRasterizer{err: errors.New("no browser")}

	_, err := ExecuteEmailReceipt(context.Background(), EmailReceiptInput{
		SessionKey: "sess", Payment: testPayment(), User: testUser(),
	}, deps)
	var exportErr *ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("error = %v, want *ExportError", err)
	}
	if len(store.entries) != 0 {
		t.Error("export failures should not be queued")
	}
}
