package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"

	emailAdapter "gymdesk/internal/adapters/email"
	"gymdesk/internal/application/document"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/invoice"
	domainOutbox "gymdesk/internal/domain/outbox"
	"gymdesk/internal/domain/payment"
)

// ErrNoEmail is returned when the signed-in user has no address to send to.
var ErrNoEmail = errors.New("your profile has no email address")

// OutboxSaver is the outbox store subset used to queue failed sends.
type OutboxSaver interface {
	Save(ctx context.Context, e domainOutbox.Entry) error
}

// EmailDocumentDeps holds dependencies for emailing a document.
type EmailDocumentDeps struct {
	Export     ExportDeps
	Sender     emailAdapter.Sender
	Outbox     OutboxSaver
	GenerateID func() string
	Now        func() time.Time
}

// EmailReceiptInput carries input for emailing a receipt.
type EmailReceiptInput struct {
	SessionKey string
	Payment    payment.Payment
	User       account.User
}

// EmailInvoiceInput carries input for emailing an invoice.
type EmailInvoiceInput struct {
	SessionKey string
	Invoice    invoice.Invoice
	User       account.User
}

// EmailResult reports what happened to the email.
type EmailResult struct {
	Filename string
	// Queued is true when the send failed and the email was left for the outbox worker.
	Queued    bool
	MessageID string
}

// ExecuteEmailReceipt exports a receipt and mails it to the user as a PDF attachment.
// PRE: User.Email non-empty
// POST: Email sent, or queued in the outbox when the provider fails
func ExecuteEmailReceipt(ctx context.Context, input EmailReceiptInput, deps EmailDocumentDeps) (EmailResult, error) {
	if input.User.Email == "" {
		return EmailResult{}, ErrNoEmail
	}
	res, err := ExecuteExportReceipt(ctx, ExportReceiptInput(input), deps.Export)
	if err != nil {
		return EmailResult{}, err
	}
	return sendDocument(ctx, domainOutbox.ActionTypeReceiptEmail, input.Payment, input.User, res, deps)
}

// ExecuteEmailInvoice exports an invoice and mails it to the user.
// PRE: User.Email non-empty
// POST: Email sent, or queued in the outbox when the provider fails
func ExecuteEmailInvoice(ctx context.Context, input EmailInvoiceInput, deps EmailDocumentDeps) (EmailResult, error) {
	if input.User.Email == "" {
		return EmailResult{}, ErrNoEmail
	}
	res, err := ExecuteExportInvoice(ctx, ExportInvoiceInput(input), deps.Export)
	if err != nil {
		return EmailResult{}, err
	}
	return sendDocument(ctx, domainOutbox.ActionTypeInvoiceEmail, input.Invoice, input.User, res, deps)
}

func sendDocument(ctx context.Context, action string, rec any, user account.User, res ExportResult, deps EmailDocumentDeps) (EmailResult, error) {
	req, err := documentEmail(user, res, deps.Export.Gym)
	if err != nil {
		return EmailResult{}, err
	}
	sent, sendErr := deps.Sender.Send(ctx, req)
	if sendErr == nil {
		slog.Info("email_event", "event", "document_sent", "action", action, "to", user.Email, "message_id", sent.MessageID)
		return EmailResult{Filename: res.Filename, MessageID: sent.MessageID}, nil
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return EmailResult{}, fmt.Errorf("encode outbox record: %w", err)
	}
	payload, err := json.Marshal(domainOutbox.DocumentEmailPayload{
		Record:    raw,
		UserID:    user.ID.String(),
		UserName:  user.Name,
		UserEmail: user.Email,
		UserPhone: user.Phone,
	})
	if err != nil {
		return EmailResult{}, fmt.Errorf("encode outbox payload: %w", err)
	}
	entry := domainOutbox.Entry{
		ID:         deps.GenerateID(),
		ActionType: action,
		Payload:    string(payload),
		Recipient:  user.Email,
		Status:     domainOutbox.StatusPending,
		CreatedAt:  deps.Now(),
	}
	if err := entry.Validate(); err != nil {
		return EmailResult{}, err
	}
	// The send just made counts as the first attempt.
	entry.MarkAttempt()
	entry.MarkFailed(sendErr)
	if err := deps.Outbox.Save(ctx, entry); err != nil {
		return EmailResult{}, fmt.Errorf("send failed (%v) and could not be queued: %w", sendErr, err)
	}
	slog.Warn("email_event", "event", "document_queued", "action", action, "to", user.Email, "entry_id", entry.ID, "error", sendErr)
	return EmailResult{Filename: res.Filename, Queued: true}, nil
}

// documentEmail composes the message. The body is markdown converted with goldmark.
func documentEmail(user account.User, res ExportResult, gym document.Gym) (emailAdapter.SendRequest, error) {
	v := res.View
	body := fmt.Sprintf("Hi %s,\n\nPlease find your %s **%s** attached.\n\n- Status: %s\n- Total: %s\n\nThank you,\n\n%s\n",
		user.DisplayName(), v.Kind, v.Key, v.Status, v.Total, gym.Name)
	var html bytes.Buffer
	if err := goldmark.Convert([]byte(body), &html); err != nil {
		return emailAdapter.SendRequest{}, fmt.Errorf("render email body: %w", err)
	}
	return emailAdapter.SendRequest{
		To:      []string{user.Email},
		Subject: fmt.Sprintf("%s %s from %s", v.Title, v.Key, gym.Name),
		HTML:    html.String(),
		Attachments: []emailAdapter.Attachment{{
			Filename:    res.Filename,
			ContentType: "application/pdf",
			Content:     res.PDF,
		}},
	}, nil
}
