package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anthibo/custom-whatsapp-connector/internal/models"
	"github.com/anthibo/custom-whatsapp-connector/internal/translator"
	"github.com/anthibo/custom-whatsapp-connector/pkg/metrics"
	"github.com/anthibo/custom-whatsapp-connector/pkg/retry"
)

// WhatsAppSender posts Cloud API payloads to a business phone number.
type WhatsAppSender interface {
	SendMessage(ctx context.Context, phoneNumberID string, msg interface{}) error
}

// Sender renders outbound platform messages and pushes them to WhatsApp.
type Sender struct {
	whatsapp WhatsAppSender
	metrics  *metrics.Metrics
	logger   *slog.Logger
	retryCfg retry.Config
}

func NewSender(whatsapp WhatsAppSender, metrics *metrics.Metrics, logger *slog.Logger, retryCfg retry.Config) *Sender {
	return &Sender{
		whatsapp: whatsapp,
		metrics:  metrics,
		logger:   logger,
		retryCfg: retryCfg,
	}
}

// Send translates a platform message and delivers it to the recipient.
// Unsupported attachments are dropped, not failed.
func (s *Sender) Send(ctx context.Context, msg *models.PlatformMessage, recipient, phoneNumberID string) error {
	payload, err := translator.ToWhatsApp(msg, recipient)
	if err != nil {
		if errors.Is(err, translator.ErrUnsupportedType) {
			s.logger.Warn("dropping unsupported outbound message",
				slog.String("type", msg.Type),
				slog.String("to", recipient))
			return nil
		}
		s.metrics.IncFailed()
		return err
	}
	s.metrics.IncTranslated()
	return s.deliver(ctx, phoneNumberID, payload)
}

// SendTemplate builds and delivers a proactive template message for each
// recipient, reporting per-recipient failures without aborting the batch.
func (s *Sender) SendTemplate(ctx context.Context, tpl *models.TemplateSpec, recipients []models.TemplateRecipient, phoneNumberID string) error {
	var failed int
	for i := range recipients {
		payload := translator.BuildTemplate(tpl, &recipients[i])
		if err := s.deliver(ctx, phoneNumberID, payload); err != nil {
			s.logger.Error("template send failed",
				slog.String("template", tpl.Name),
				slog.String("to", recipients[i].PhoneNumber),
				slog.Any("error", err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("template %s: %d of %d sends failed", tpl.Name, failed, len(recipients))
	}
	return nil
}

func (s *Sender) deliver(ctx context.Context, phoneNumberID string, payload *models.WhatsAppMessage) error {
	err := retry.Do(ctx, s.retryCfg, func() error {
		if err := s.whatsapp.SendMessage(ctx, phoneNumberID, payload); err != nil {
			s.metrics.IncRetried()
			return err
		}
		return nil
	})
	if err != nil {
		s.metrics.IncFailed()
		return err
	}
	s.metrics.IncDispatched()
	return nil
}
