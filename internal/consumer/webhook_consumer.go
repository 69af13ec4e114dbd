package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/anthibo/custom-whatsapp-connector/internal/models"
	"github.com/anthibo/custom-whatsapp-connector/internal/services"
	"github.com/streadway/amqp"
)

// WebhookConsumer drains WhatsApp webhook deliveries off the queue and hands
// them to the processor.
type WebhookConsumer struct {
	base          *BaseConsumer
	processor     *services.Processor
	logger        *slog.Logger
	maxDeliveries int
}

func NewWebhookConsumer(base *BaseConsumer, processor *services.Processor, logger *slog.Logger, maxDeliveries int) *WebhookConsumer {
	if maxDeliveries <= 0 {
		maxDeliveries = 5
	}
	return &WebhookConsumer{
		base:          base,
		processor:     processor,
		logger:        logger,
		maxDeliveries: maxDeliveries,
	}
}

func (c *WebhookConsumer) Start(ctx context.Context) error {
	return c.base.Start(ctx, c.handleDelivery)
}

func (c *WebhookConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) error {
	var payload models.WebhookPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.logger.Error("failed to unmarshal webhook payload", slog.Any("error", err))
		_ = msg.Reject(false)
		return err
	}

	if err := c.processor.Process(ctx, &payload); err != nil {
		requeue := c.shouldRetry(&msg)
		if requeue {
			c.logger.Warn("processing failed, message requeued", slog.Any("error", err))
		} else {
			c.logger.Error("processing failed, message dead-lettered", slog.Any("error", err))
		}
		_ = msg.Nack(false, requeue)
		return err
	}

	return msg.Ack(false)
}

func (c *WebhookConsumer) shouldRetry(msg *amqp.Delivery) bool {
	return deliveryAttempts(msg) < c.maxDeliveries
}

// deliveryAttempts reads the broker's x-death accounting to decide how many
// times this delivery already failed.
func deliveryAttempts(msg *amqp.Delivery) int {
	if msg.Headers == nil {
		if msg.Redelivered {
			return 1
		}
		return 0
	}
	if raw, ok := msg.Headers["x-death"]; ok {
		if deaths, ok := raw.([]interface{}); ok && len(deaths) > 0 {
			if table, ok := deaths[0].(amqp.Table); ok {
				if count, ok := table["count"].(int64); ok {
					return int(count)
				}
			}
		}
	}
	if msg.Redelivered {
		return 1
	}
	return 0
}
