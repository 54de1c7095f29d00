package email

import (
	"context"
	"errors"
	"time"
)

// ErrNoRecipient is returned when a request has no To address.
var ErrNoRecipient = errors.New("email needs at least one recipient")

// Attachment is a file sent with an email.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To          []string // Recipient email addresses
	From        string   // Sender address, e.g. "Iron Temple <desk@irontemple.test>"
	Subject     string
	HTML        string // HTML body
	ReplyTo     string
	Attachments []Attachment
}

// Validate checks the fields every provider needs.
func (r SendRequest) Validate() error {
	if len(r.To) == 0 || r.To[0] == "" {
		return ErrNoRecipient
	}
	if r.Subject == "" {
		return errors.New("email subject cannot be empty")
	}
	return nil
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
