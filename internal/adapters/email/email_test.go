package email

import (
	"context"
	"errors"
	"testing"
)

func TestSendRequest_Validate(t *testing.T) {
	if err := (SendRequest{Subject: "x"}).Validate(); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("expected ErrNoRecipient, got %v", err)
	}
	if err := (SendRequest{To: []string{"a@b.c"}}).Validate(); err == nil {
		t.Error("empty subject should fail")
	}
	if err := (SendRequest{To: []string{"a@b.c"}, Subject: "x"}).Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

func TestNoopSender_RecordsRequests(t *testing.T) {
	s := NewNoopSender()
	req := SendRequest{
		To:          []string{"sam@gym.test"},
		Subject:     "Your receipt",
		Attachments: []Attachment{{Filename: "receipt-ref-1.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}},
	}
	res, err := s.Send(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.MessageID == "" {
		t.Error("MessageID should be set")
	}
	sent := s.Sent()
	if len(sent) != 1 || sent[0].Attachments[0].Filename != "receipt-ref-1.pdf" {
		t.Errorf("Sent = %+v", sent)
	}
}

func TestBuildParams_Defaults(t *testing.T) {
	p := buildParams(SendRequest{
		To:          []string{"sam@gym.test"},
		Subject:     "Receipt",
		Attachments: []Attachment{{Filename: "r.pdf", ContentType: "application/pdf", Content: []byte{1}}},
	}, "Gym <desk@gym.test>", "help@gym.test")

	if p.From != "Gym <desk@gym.test>" || p.ReplyTo != "help@gym.test" {
		t.Errorf("defaults not applied: from=%q reply_to=%q", p.From, p.ReplyTo)
	}
	if len(p.Attachments) != 1 || p.Attachments[0].Filename != "r.pdf" {
		t.Errorf("attachments = %+v", p.Attachments)
	}

	p = buildParams(SendRequest{From: "me@x.test", ReplyTo: "r@x.test"}, "Gym <desk@gym.test>", "help@gym.test")
	if p.From != "me@x.test" || p.ReplyTo != "r@x.test" {
		t.Errorf("explicit values overridden: %+v", p)
	}
}
