package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	domainOutbox "gymdesk/internal/domain/outbox"
)

type stubExecutor struct {
	err      error
	payloads []string
}

// Execute records the payload.
// PRE: none
// POST: Returns "ext-1" or the configured error
func (s *stubExecutor) Execute(_ context.Context, payload string) (string, error) {
	s.payloads = append(s.payloads, payload)
	if s.err != nil {
		return "", s.err
	}
	return "ext-1", nil
}

func pendingEntry(id string, created time.Time) domainOutbox.Entry {
	return domainOutbox.Entry{
		ID:          id,
		ActionType:  domainOutbox.ActionTypeReceiptEmail,
		Payload:     `{}`,
		Status:      domainOutbox.StatusPending,
		MaxAttempts: 3,
		CreatedAt:   created,
	}
}

func TestOutboxProcessor_ProcessPendingSuccess(t *testing.T) {
	store := newFakeOutboxStore()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	store.entries["e1"] = pendingEntry("e1", now.Add(-time.Hour))
	exec := &stubExecutor{}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{domainOutbox.ActionTypeReceiptEmail: exec})
	p.now = func() time.Time { return now }

	if err := p.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	got := store.entries["e1"]
	if got.Status != domainOutbox.StatusDone || got.ExternalID != "ext-1" || got.Attempts != 1 {
		t.Errorf("entry = %+v", got)
	}
}

func TestOutboxProcessor_BackoffSkipsRecentAttempt(t *testing.T) {
	store := newFakeOutboxStore()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	e := pendingEntry("e1", now.Add(-time.Hour))
	e.Status = domainOutbox.StatusRetrying
	e.Attempts = 1
	e.LastAttemptedAt = now.Add(-10 * time.Second)
	store.entries["e1"] = e
	exec := &stubExecutor{}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{domainOutbox.ActionTypeReceiptEmail: exec})
	p.now = func() time.Time { return now }

	if err := p.ProcessPending(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(exec.payloads) != 0 {
		t.Error("entry retried before its backoff elapsed")
	}

	p.now = func() time.Time { return now.Add(2 * time.Minute) }
	if err := p.ProcessPending(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(exec.payloads) != 1 {
		t.Error("entry not retried after backoff")
	}
}

func TestOutboxProcessor_FailsAfterMaxAttempts(t *testing.T) {
	store := newFakeOutboxStore()
	store.entries["e1"] = pendingEntry("e1", time.Now())
	exec := &stubExecutor{err: errors.New("still down")}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{domainOutbox.ActionTypeReceiptEmail: exec})

	for i := 0; i < 3; i++ {
		if err := p.ProcessSingle(context.Background(), "e1"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	got := store.entries["e1"]
	if got.Status != domainOutbox.StatusFailed || got.ErrorMessage != "still down" {
		t.Errorf("entry = %+v", got)
	}
	if err := p.ProcessSingle(context.Background(), "e1"); err == nil {
		t.Error("terminal entry should not be retried")
	}
}

func TestOutboxProcessor_UnknownActionRecorded(t *testing.T) {
	store := newFakeOutboxStore()
	e := pendingEntry("e1", time.Now())
	e.ActionType = "fax"
	store.entries["e1"] = e
	p := NewOutboxProcessor(store, nil)

	if err := p.ProcessPending(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := store.entries["e1"]
	if got.Attempts != 1 || got.ErrorMessage == "" {
		t.Errorf("entry = %+v", got)
	}
}

func TestOutboxProcessor_AbandonAndSweep(t *testing.T) {
	store := newFakeOutboxStore()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	store.entries["old"] = pendingEntry("old", now.AddDate(0, 0, -40))
	store.entries["new"] = pendingEntry("new", now)
	p := NewOutboxProcessor(store, nil)
	p.now = func() time.Time { return now }

	if err := p.AbandonEntry(context.Background(), "old"); err != nil {
		t.Fatal(err)
	}
	if store.entries["old"].Status != domainOutbox.StatusAbandoned {
		t.Fatal("entry not abandoned")
	}
	if err := p.Sweep(context.Background(), 30*24*time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.entries["old"]; ok {
		t.Error("old abandoned entry not swept")
	}
	if _, ok := store.entries["new"]; !ok {
		t.Error("pending entry swept")
	}
}

func TestDocumentEmailExecutor_ReplaysStoredRecord(t *testing.T) {
	deps, sender, store := newEmailDeps()
	sender.err = errors.New("provider down")
	if _, err := ExecuteEmailReceipt(context.Background(), EmailReceiptInput{
		SessionKey: "sess", Payment: testPayment(), User: testUser(),
	}, deps); err != nil {
		t.Fatal(err)
	}
	entry := store.entries["entry-1"]

	sender.err = nil
	exec := &DocumentEmailExecutor{Kind: domainOutbox.ActionTypeReceiptEmail, Export: deps.Export, Sender: sender}
	id, err := exec.Execute(context.Background(), entry.Payload)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if id != "msg-1" {
		t.Errorf("message id = %q", id)
	}
	if len(sender.sent) != 1 || sender.sent[0].Attachments[0].Filename != "receipt-ref-abc123.pdf" {
		t.Errorf("sent = %+v", sender.sent)
	}
}

func TestDocumentEmailExecutor_BadPayload(t *testing.T) {
	deps, sender, _ := newEmailDeps()
	exec := &DocumentEmailExecutor{Kind: domainOutbox.ActionTypeInvoiceEmail, Export: deps.Export, Sender: sender}
	if _, err := exec.Execute(context.Background(), "not json"); err == nil {
		t.Error("expected error for malformed payload")
	}
	raw, _ := json.Marshal(domainOutbox.DocumentEmailPayload{Record: json.RawMessage(`[1,2]`), UserEmail: "a@b.c"})
	if _, err := exec.Execute(context.Background(), string(raw)); err == nil {
		t.Error("expected error for a record that is not an invoice")
	}
}

func TestStartBackgroundWorker_StopsOnCancel(t *testing.T) {
	store := newFakeOutboxStore()
	p := NewOutboxProcessor(store, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := StartBackgroundWorker(ctx, p, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
