package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthibo/custom-whatsapp-connector/internal/models"
	"github.com/anthibo/custom-whatsapp-connector/internal/translator"
	"github.com/anthibo/custom-whatsapp-connector/pkg/metrics"
	"github.com/anthibo/custom-whatsapp-connector/pkg/retry"
)

// testCodePrefix marks an inbound text as a bot test trigger; the full body
// is the test code.
const testCodePrefix = "#wa"

// MediaStore resolves inbound media ids to publicly reachable URLs.
type MediaStore interface {
	DownloadMedia(ctx context.Context, mediaID string) (string, error)
	UploadMedia(ctx context.Context, path, mimeCategory string) (string, error)
}

// ChatSender forwards a translated message to the chat platform.
type ChatSender interface {
	Send(ctx context.Context, msg *models.PlatformMessage, meta *models.ChannelMeta) (*models.DispatchResponse, error)
}

// TestBroker runs a bot test for an inbound payload carrying a test code.
type TestBroker interface {
	StartBotConversation(ctx context.Context, payload *models.WebhookPayload, code string) (*models.DispatchResponse, error)
}

// Processor orchestrates one inbound webhook event: route to the bot test
// broker or translate and dispatch to the chat platform.
type Processor struct {
	media    MediaStore
	chat     ChatSender
	broker   TestBroker
	metrics  *metrics.Metrics
	logger   *slog.Logger
	retryCfg retry.Config
}

func NewProcessor(
	media MediaStore,
	chat ChatSender,
	broker TestBroker,
	metrics *metrics.Metrics,
	logger *slog.Logger,
	retryCfg retry.Config,
) *Processor {
	return &Processor{
		media:    media,
		chat:     chat,
		broker:   broker,
		metrics:  metrics,
		logger:   logger,
		retryCfg: retryCfg,
	}
}

// Process handles a single webhook delivery. Payloads without messages
// (delivery status updates) are acknowledged without work. Unsupported
// message types are dropped, not failed.
func (p *Processor) Process(ctx context.Context, payload *models.WebhookPayload) error {
	p.metrics.IncConsumed()

	msg, contact, phoneNumberID, ok := extractEvent(payload)
	if !ok {
		return nil
	}

	if code, isTest := testCode(msg); isTest {
		p.logger.Info("routing inbound message to bot test", slog.String("code", code))
		if _, err := p.broker.StartBotConversation(ctx, payload, code); err != nil {
			p.metrics.IncFailed()
			return fmt.Errorf("bot test run: %w", err)
		}
		p.metrics.IncDispatched()
		return nil
	}

	mediaURL, err := p.resolveMedia(ctx, msg)
	if err != nil {
		p.metrics.IncFailed()
		return fmt.Errorf("media resolution: %w", err)
	}

	platformMsg, err := translator.ToPlatform(msg, contact.Profile.Name, mediaURL)
	if err != nil {
		if errors.Is(err, translator.ErrUnsupportedType) {
			p.logger.Warn("dropping unsupported inbound message", slog.String("type", msg.Type))
			return nil
		}
		p.metrics.IncFailed()
		return err
	}
	p.metrics.IncTranslated()

	meta := &models.ChannelMeta{
		Channel: models.ChannelName,
		WhatsApp: models.WhatsAppMeta{
			PhoneNumberID: phoneNumberID,
			From:          msg.From,
			Firstname:     contact.Profile.Name,
			Lastname:      " ",
		},
	}

	sendErr := retry.Do(ctx, p.retryCfg, func() error {
		_, err := p.chat.Send(ctx, platformMsg, meta)
		if err != nil {
			p.logger.Warn("chat dispatch failed", slog.Any("error", err), slog.String("from", msg.From))
			p.metrics.IncRetried()
		}
		return err
	})
	if sendErr != nil {
		p.metrics.IncFailed()
		return sendErr
	}

	p.metrics.IncDispatched()
	return nil
}

// resolveMedia downloads an inbound media binary and republishes it on the
// platform's file service, returning the public URL. Non-media messages
// resolve to empty.
func (p *Processor) resolveMedia(ctx context.Context, msg *models.InboundMessage) (string, error) {
	var mediaID, category string
	switch {
	case msg.Type == "image" && msg.Image != nil:
		mediaID, category = msg.Image.ID, "images"
	case msg.Type == "video" && msg.Video != nil:
		mediaID, category = msg.Video.ID, "files"
	case msg.Type == "document" && msg.Document != nil:
		mediaID, category = msg.Document.ID, "files"
	case msg.Type == "audio" && msg.Audio != nil:
		mediaID, category = msg.Audio.ID, "files"
	default:
		return "", nil
	}

	path, err := p.media.DownloadMedia(ctx, mediaID)
	if err != nil {
		return "", err
	}
	return p.media.UploadMedia(ctx, path, category)
}

func testCode(msg *models.InboundMessage) (string, bool) {
	if msg.Type != "text" || msg.Text == nil {
		return "", false
	}
	body := strings.TrimSpace(msg.Text.Body)
	if !strings.HasPrefix(body, testCodePrefix) {
		return "", false
	}
	return body, true
}

func extractEvent(payload *models.WebhookPayload) (*models.InboundMessage, *models.Contact, string, bool) {
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return nil, nil, "", false
	}
	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 || len(value.Contacts) == 0 {
		return nil, nil, "", false
	}
	return &value.Messages[0], &value.Contacts[0], value.Metadata.PhoneNumberID, true
}
