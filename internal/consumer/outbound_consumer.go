package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/anthibo/custom-whatsapp-connector/internal/models"
	"github.com/anthibo/custom-whatsapp-connector/internal/services"
	"github.com/streadway/amqp"
)

var errEmptyEnvelope = errors.New("consumer: outbound envelope carries no message or template")

// OutboundEnvelope is one outbound send request queued by the chat platform:
// either a single platform message for a recipient, or a template fan-out.
type OutboundEnvelope struct {
	PhoneNumberID string                     `json:"phone_number_id"`
	Recipient     string                     `json:"recipient,omitempty"`
	Message       *models.PlatformMessage    `json:"message,omitempty"`
	Template      *models.TemplateSpec       `json:"template,omitempty"`
	Recipients    []models.TemplateRecipient `json:"recipients,omitempty"`
}

// OutboundConsumer drains outbound send requests off the queue and hands
// them to the sender.
type OutboundConsumer struct {
	base          *BaseConsumer
	sender        *services.Sender
	logger        *slog.Logger
	maxDeliveries int
}

func NewOutboundConsumer(base *BaseConsumer, sender *services.Sender, logger *slog.Logger, maxDeliveries int) *OutboundConsumer {
	if maxDeliveries <= 0 {
		maxDeliveries = 5
	}
	return &OutboundConsumer{
		base:          base,
		sender:        sender,
		logger:        logger,
		maxDeliveries: maxDeliveries,
	}
}

func (c *OutboundConsumer) Start(ctx context.Context) error {
	return c.base.Start(ctx, c.handleDelivery)
}

func (c *OutboundConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) error {
	var envelope OutboundEnvelope
	if err := json.Unmarshal(msg.Body, &envelope); err != nil {
		c.logger.Error("failed to unmarshal outbound envelope", slog.Any("error", err))
		_ = msg.Reject(false)
		return err
	}
	if envelope.Message == nil && envelope.Template == nil {
		c.logger.Error("outbound envelope carries no message or template",
			slog.String("phone_number_id", envelope.PhoneNumberID))
		_ = msg.Reject(false)
		return errEmptyEnvelope
	}

	err := c.dispatch(ctx, &envelope)
	if err != nil {
		requeue := deliveryAttempts(&msg) < c.maxDeliveries
		if requeue {
			c.logger.Warn("outbound send failed, message requeued", slog.Any("error", err))
		} else {
			c.logger.Error("outbound send failed, message dead-lettered", slog.Any("error", err))
		}
		_ = msg.Nack(false, requeue)
		return err
	}

	return msg.Ack(false)
}

func (c *OutboundConsumer) dispatch(ctx context.Context, envelope *OutboundEnvelope) error {
	if envelope.Template != nil {
		return c.sender.SendTemplate(ctx, envelope.Template, envelope.Recipients, envelope.PhoneNumberID)
	}
	return c.sender.Send(ctx, envelope.Message, envelope.Recipient, envelope.PhoneNumberID)
}
