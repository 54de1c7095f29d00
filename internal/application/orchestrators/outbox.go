package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "gymdesk/internal/adapters/email"
	outboxStore "gymdesk/internal/adapters/storage/outbox"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/invoice"
	domain "gymdesk/internal/domain/outbox"
	"gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/record"
)

// ActionExecutor executes a specific type of deferred action.
type ActionExecutor interface {
	// Execute runs the action with the given payload.
	// Returns the provider's id for the delivery and any error.
	Execute(ctx context.Context, payload string) (string, error)
}

// OutboxProcessor retries deliveries that failed when first attempted.
type OutboxProcessor struct {
	store     outboxStore.Store
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store outboxStore.Store, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 10,
		now:       time.Now,
	}
}

// ProcessPending processes pending outbox entries whose backoff has elapsed.
// PRE: Context is valid
// POST: Due entries attempted once; results saved
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("list pending outbox entries: %w", err)
	}

	for _, entry := range entries {
		if err := p.processEntry(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
	}
	return nil
}

// processEntry processes a single outbox entry.
func (p *OutboxProcessor) processEntry(ctx context.Context, entry domain.Entry) error {
	if !entry.LastAttemptedAt.IsZero() {
		delay := entry.NextRetryDelay(p.baseDelay, p.maxDelay)
		if p.now().Sub(entry.LastAttemptedAt) < delay {
			return nil
		}
	}
	return p.attempt(ctx, entry)
}

func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) error {
	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkAttempt()
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		return p.store.Save(ctx, entry)
	}

	entry.MarkAttempt()
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	return p.store.Save(ctx, entry)
}

// ProcessSingle retries one entry immediately (admin action), ignoring backoff.
// PRE: entryID is non-empty
// POST: Entry attempted once and saved
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.IsTerminal() {
		return fmt.Errorf("entry %s is in terminal state and cannot be retried", entryID)
	}
	return p.attempt(ctx, entry)
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	entry.MarkAbandoned()
	return p.store.Save(ctx, entry)
}

// Sweep removes finished entries older than retention.
func (p *OutboxProcessor) Sweep(ctx context.Context, retention time.Duration) error {
	n, err := p.store.DeleteFinishedBefore(ctx, p.now().Add(-retention))
	if err != nil {
		return fmt.Errorf("sweep outbox: %w", err)
	}
	if n > 0 {
		slog.Info("outbox_swept", "removed", n)
	}
	return nil
}

// --- Document Email Executor ---

// DocumentEmailExecutor re-renders a stored payment or invoice and sends it again.
// The stored record is used as-is so a retry needs no backend session.
type DocumentEmailExecutor struct {
	Kind   string // domain.ActionTypeReceiptEmail or domain.ActionTypeInvoiceEmail
	Export ExportDeps
	Sender emailAdapter.Sender
}

// Execute decodes the payload, exports the document and sends it.
// PRE: payload is valid JSON matching domain.DocumentEmailPayload
// POST: email sent, returns the provider message id
// INVARIANT: outbox entry status managed by caller
func (e *DocumentEmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p domain.DocumentEmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	user := account.User{ID: record.ID(p.UserID), Name: p.UserName, Email: p.UserEmail, Phone: p.UserPhone}
	// Retries get their own guard key so they never collide with a live session.
	key := "outbox:" + p.UserID

	var res ExportResult
	var err error
	switch e.Kind {
	case domain.ActionTypeReceiptEmail:
		var pay payment.Payment
		if err := json.Unmarshal(p.Record, &pay); err != nil {
			return "", fmt.Errorf("unmarshal payment: %w", err)
		}
		res, err = ExecuteExportReceipt(ctx, ExportReceiptInput{SessionKey: key, Payment: pay, User: user}, e.Export)
	case domain.ActionTypeInvoiceEmail:
		var inv invoice.Invoice
		if err := json.Unmarshal(p.Record, &inv); err != nil {
			return "", fmt.Errorf("unmarshal invoice: %w", err)
		}
		res, err = ExecuteExportInvoice(ctx, ExportInvoiceInput{SessionKey: key, Invoice: inv, User: user}, e.Export)
	default:
		return "", fmt.Errorf("unsupported document kind %q", e.Kind)
	}
	if err != nil {
		return "", err
	}

	req, err := documentEmail(user, res, e.Export.Gym)
	if err != nil {
		return "", err
	}
	sent, err := e.Sender.Send(ctx, req)
	if err != nil {
		return "", err
	}
	return sent.MessageID, nil
}

// --- Background Worker ---

// StartBackgroundWorker periodically processes pending outbox entries and sweeps
// finished ones until ctx is cancelled.
// PRE: interval > 0
// POST: Returns a channel closed once the worker has exited
func StartBackgroundWorker(ctx context.Context, processor *OutboxProcessor, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
				if err := processor.ProcessPending(runCtx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err.Error())
				}
				if err := processor.Sweep(runCtx, 30*24*time.Hour); err != nil {
					slog.Error("outbox_background_sweep_failed", "error", err.Error())
				}
				cancel()
			case <-ctx.Done():
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
	return done
}
