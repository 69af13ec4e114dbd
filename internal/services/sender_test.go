package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/anthibo/custom-whatsapp-connector/internal/models"
	"github.com/anthibo/custom-whatsapp-connector/pkg/metrics"
	"github.com/anthibo/custom-whatsapp-connector/pkg/retry"
)

type fakeWhatsApp struct {
	sent     []*models.WhatsAppMessage
	phoneIDs []string
	failures int
}

func (f *fakeWhatsApp) SendMessage(ctx context.Context, phoneNumberID string, msg interface{}) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("rate limited")
	}
	f.sent = append(f.sent, msg.(*models.WhatsAppMessage))
	f.phoneIDs = append(f.phoneIDs, phoneNumberID)
	return nil
}

func newTestSender(whatsapp *fakeWhatsApp) *Sender {
	return NewSender(whatsapp, metrics.New(), slog.Default(), retry.Config{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	})
}

func TestSenderSendText(t *testing.T) {
	whatsapp := &fakeWhatsApp{}
	s := newTestSender(whatsapp)

	msg := &models.PlatformMessage{Text: "hello"}
	if err := s.Send(context.Background(), msg, "15551230001", "pn-1"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(whatsapp.sent) != 1 {
		t.Fatalf("sent = %+v", whatsapp.sent)
	}
	if whatsapp.sent[0].Text.Body != "hello" || whatsapp.sent[0].To != "15551230001" {
		t.Errorf("payload = %+v", whatsapp.sent[0])
	}
	if whatsapp.phoneIDs[0] != "pn-1" {
		t.Errorf("phone id = %q", whatsapp.phoneIDs[0])
	}
}

func TestSenderDropsUnsupportedAttachment(t *testing.T) {
	whatsapp := &fakeWhatsApp{}
	s := newTestSender(whatsapp)

	msg := &models.PlatformMessage{
		Text:     "file",
		Metadata: &models.Metadata{Type: "archive/zip", Src: "https://x/a.zip"},
	}
	if err := s.Send(context.Background(), msg, "15551230001", "pn-1"); err != nil {
		t.Fatalf("unsupported attachments must be dropped, not failed: %v", err)
	}
	if len(whatsapp.sent) != 0 {
		t.Errorf("nothing should have been sent")
	}
}

func TestSenderRetries(t *testing.T) {
	whatsapp := &fakeWhatsApp{failures: 2}
	s := newTestSender(whatsapp)

	if err := s.Send(context.Background(), &models.PlatformMessage{Text: "x"}, "15551230001", "pn-1"); err != nil {
		t.Fatalf("Send should succeed after retries: %v", err)
	}
	if len(whatsapp.sent) != 1 {
		t.Errorf("sent = %+v", whatsapp.sent)
	}
}

func TestSenderSendTemplateFanOut(t *testing.T) {
	whatsapp := &fakeWhatsApp{}
	s := newTestSender(whatsapp)

	tpl := &models.TemplateSpec{Name: "promo", Language: "en"}
	recipients := []models.TemplateRecipient{
		{PhoneNumber: "15551230001", BodyParams: []models.TemplateParam{{Type: "text", Text: "Alice"}}},
		{PhoneNumber: "15551230002", BodyParams: []models.TemplateParam{{Type: "text", Text: "Bob"}}},
	}

	if err := s.SendTemplate(context.Background(), tpl, recipients, "pn-1"); err != nil {
		t.Fatalf("SendTemplate: %v", err)
	}

	if len(whatsapp.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(whatsapp.sent))
	}
	for i, want := range []string{"15551230001", "15551230002"} {
		if whatsapp.sent[i].To != want {
			t.Errorf("message %d to = %q, want %q", i, whatsapp.sent[i].To, want)
		}
		if whatsapp.sent[i].Template == nil || whatsapp.sent[i].Template.Name != "promo" {
			t.Errorf("message %d template = %+v", i, whatsapp.sent[i].Template)
		}
	}
}
