package consumer

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/anthibo/custom-whatsapp-connector/internal/models"
	"github.com/anthibo/custom-whatsapp-connector/internal/services"
	"github.com/anthibo/custom-whatsapp-connector/pkg/metrics"
	"github.com/anthibo/custom-whatsapp-connector/pkg/retry"
	"github.com/streadway/amqp"
)

type fakeAcknowledger struct {
	acks    int
	nacks   int
	rejects int
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error { f.acks++; return nil }
func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacks++
	return nil
}
func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error { f.rejects++; return nil }

type fakeWhatsAppSender struct {
	sent []*models.WhatsAppMessage
}

func (f *fakeWhatsAppSender) SendMessage(ctx context.Context, phoneNumberID string, msg interface{}) error {
	f.sent = append(f.sent, msg.(*models.WhatsAppMessage))
	return nil
}

func newTestOutboundConsumer(whatsapp *fakeWhatsAppSender) *OutboundConsumer {
	sender := services.NewSender(whatsapp, metrics.New(), slog.Default(), retry.Config{
		MaxAttempts:    1,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	})
	return NewOutboundConsumer(nil, sender, slog.Default(), 3)
}

func outboundDelivery(ack *fakeAcknowledger, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, Body: []byte(body)}
}

func TestOutboundHandleDeliveryMessage(t *testing.T) {
	whatsapp := &fakeWhatsAppSender{}
	c := newTestOutboundConsumer(whatsapp)
	ack := &fakeAcknowledger{}

	body := `{"phone_number_id":"pn-1","recipient":"15551230001","message":{"text":"hello"}}`
	if err := c.handleDelivery(context.Background(), outboundDelivery(ack, body)); err != nil {
		t.Fatalf("handleDelivery: %v", err)
	}

	if ack.acks != 1 || ack.rejects != 0 {
		t.Errorf("acks = %d, rejects = %d, want 1 ack", ack.acks, ack.rejects)
	}
	if len(whatsapp.sent) != 1 || whatsapp.sent[0].To != "15551230001" {
		t.Errorf("sent = %+v", whatsapp.sent)
	}
}

func TestOutboundHandleDeliveryTemplate(t *testing.T) {
	whatsapp := &fakeWhatsAppSender{}
	c := newTestOutboundConsumer(whatsapp)
	ack := &fakeAcknowledger{}

	body := `{
		"phone_number_id": "pn-1",
		"template": {"name": "promo", "language": "en"},
		"recipients": [{"phone_number": "15551230001"}, {"phone_number": "15551230002"}]
	}`
	if err := c.handleDelivery(context.Background(), outboundDelivery(ack, body)); err != nil {
		t.Fatalf("handleDelivery: %v", err)
	}

	if len(whatsapp.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(whatsapp.sent))
	}
	if whatsapp.sent[0].Template == nil || whatsapp.sent[0].Template.Name != "promo" {
		t.Errorf("payload = %+v", whatsapp.sent[0])
	}
}

// Valid JSON with neither a message nor a template must be rejected outright,
// not handed to the sender.
func TestOutboundHandleDeliveryEmptyEnvelope(t *testing.T) {
	whatsapp := &fakeWhatsAppSender{}
	c := newTestOutboundConsumer(whatsapp)
	ack := &fakeAcknowledger{}

	err := c.handleDelivery(context.Background(), outboundDelivery(ack, `{"phone_number_id":"pn-1"}`))
	if err == nil {
		t.Fatal("expected error for empty envelope")
	}

	if ack.rejects != 1 || ack.acks != 0 || ack.nacks != 0 {
		t.Errorf("acks = %d, nacks = %d, rejects = %d, want a single reject", ack.acks, ack.nacks, ack.rejects)
	}
	if len(whatsapp.sent) != 0 {
		t.Errorf("nothing should have been sent, got %+v", whatsapp.sent)
	}
}

func TestOutboundHandleDeliveryMalformedBody(t *testing.T) {
	whatsapp := &fakeWhatsAppSender{}
	c := newTestOutboundConsumer(whatsapp)
	ack := &fakeAcknowledger{}

	if err := c.handleDelivery(context.Background(), outboundDelivery(ack, "not json")); err == nil {
		t.Fatal("expected error for malformed body")
	}
	if ack.rejects != 1 {
		t.Errorf("rejects = %d, want 1", ack.rejects)
	}
}
