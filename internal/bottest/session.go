// Package bottest brokers operator-initiated bot test conversations: it binds
// an inbound WhatsApp message to the bot under test and dispatches it to the
// chat platform with a bot override.
package bottest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anthibo/custom-whatsapp-connector/internal/models"
	"github.com/anthibo/custom-whatsapp-connector/internal/translator"
)

const (
	// sessionKeyPrefix namespaces bot test records in the session store.
	sessionKeyPrefix = "bottest:"
	// settingsKeyPrefix namespaces channel settings in the KV store.
	settingsKeyPrefix = "whatsapp-"
	// codePrefixLen is the length of the trigger prefix on an inbound test
	// code; the remainder is the session key suffix.
	codePrefixLen = 3
	// startCommand replaces the inbound text on every test run, so the bot
	// always sees a fresh conversation start.
	startCommand = "/start"
)

var (
	ErrSessionNotFound  = errors.New("bottest: no active test session found")
	ErrSettingsNotFound = errors.New("bottest: no channel settings found")
	ErrNoBotSelected    = errors.New("bottest: no bot selected for test")
)

// SessionStore reads serialized test records by key. Implementations return
// an empty value and nil error when the key is absent or expired.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
}

// SettingsStore reads channel settings blobs by key, empty when absent.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
}

// ChatDispatcher sends a platform message and binds the given bot to the
// resulting conversation.
type ChatDispatcher interface {
	SendAndAddBot(ctx context.Context, msg *models.PlatformMessage, meta *models.ChannelMeta, botID string) (*models.DispatchResponse, error)
}

// Broker runs one bot test per inbound invocation. Each run is a fixed
// sequence: session lookup, settings lookup, translate, dispatch; no state is
// shared between runs.
type Broker struct {
	projectID  string
	sessions   SessionStore
	settings   SettingsStore
	dispatcher ChatDispatcher
	logger     *slog.Logger
}

func NewBroker(projectID string, sessions SessionStore, settings SettingsStore, dispatcher ChatDispatcher, logger *slog.Logger) *Broker {
	return &Broker{
		projectID:  projectID,
		sessions:   sessions,
		settings:   settings,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// StartBotConversation runs a test for an inbound webhook payload carrying a
// test code. The code's trigger prefix is stripped before the session lookup.
func (b *Broker) StartBotConversation(ctx context.Context, payload *models.WebhookPayload, code string) (*models.DispatchResponse, error) {
	msg, contact, phoneNumberID, err := extractWebhook(payload)
	if err != nil {
		return nil, err
	}

	suffix := code
	if len(code) > codePrefixLen {
		suffix = code[codePrefixLen:]
	}

	raw, err := b.sessions.Get(ctx, sessionKeyPrefix+suffix)
	if err != nil {
		return nil, fmt.Errorf("bottest: session store read: %w", err)
	}
	if raw == "" {
		return nil, ErrSessionNotFound
	}

	record, err := decodeRecord(raw)
	if err != nil {
		return nil, err
	}

	meta := &models.ChannelMeta{
		Channel: models.ChannelName,
		WhatsApp: models.WhatsAppMeta{
			PhoneNumberID: phoneNumberID,
			From:          msg.From,
			Firstname:     contact.Profile.Name,
			Lastname:      " ",
		},
	}

	if err := b.checkSettings(ctx); err != nil {
		return nil, err
	}

	platformMsg, err := b.translateStart(msg, contact.Profile.Name)
	if err != nil {
		return nil, err
	}

	if record.BotID == "" {
		return nil, ErrNoBotSelected
	}

	b.logger.Info("dispatching bot test",
		slog.String("bot_id", record.BotID),
		slog.String("from", msg.From))
	return b.dispatcher.SendAndAddBot(ctx, platformMsg, meta, record.BotID)
}

// StartBotConversationCMP runs a test initiated from the company management
// platform, which names the bot directly and skips the session lookup.
func (b *Broker) StartBotConversationCMP(ctx context.Context, payload *models.CMPTestPayload, botID string) (*models.DispatchResponse, error) {
	if payload.Message == nil {
		return nil, fmt.Errorf("bottest: payload carries no message")
	}

	meta := &models.ChannelMeta{
		Channel: models.ChannelName,
		WhatsApp: models.WhatsAppMeta{
			PhoneNumberID: payload.ReceiverAddress,
			From:          payload.Message.From,
			Firstname:     payload.Contact.Name,
			Lastname:      " ",
		},
	}

	if err := b.checkSettings(ctx); err != nil {
		return nil, err
	}

	platformMsg, err := b.translateStart(payload.Message, payload.Contact.Name)
	if err != nil {
		return nil, err
	}

	if botID == "" {
		return nil, ErrNoBotSelected
	}

	b.logger.Info("dispatching bot test",
		slog.String("bot_id", botID),
		slog.String("from", payload.Message.From))
	return b.dispatcher.SendAndAddBot(ctx, platformMsg, meta, botID)
}

func (b *Broker) checkSettings(ctx context.Context) error {
	settings, err := b.settings.Get(ctx, settingsKeyPrefix+b.projectID)
	if err != nil {
		return fmt.Errorf("bottest: settings read: %w", err)
	}
	if settings == "" {
		return ErrSettingsNotFound
	}
	return nil
}

// translateStart forces the inbound text body to the start command and
// translates the message. Every test run is a synthetic "/start" regardless
// of what the user actually typed.
func (b *Broker) translateStart(msg *models.InboundMessage, senderName string) (*models.PlatformMessage, error) {
	if msg.Text == nil {
		msg.Text = &models.TextPayload{}
		msg.Type = "text"
	}
	msg.Text.Body = startCommand
	return translator.ToPlatform(msg, senderName, "")
}

// decodeRecord parses the session store's serialized value. The store deals
// in opaque text; the JSON boundary lives here.
func decodeRecord(raw string) (*models.BotTestRecord, error) {
	var record models.BotTestRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("bottest: malformed test record: %w", err)
	}
	return &record, nil
}

func extractWebhook(payload *models.WebhookPayload) (*models.InboundMessage, *models.Contact, string, error) {
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return nil, nil, "", fmt.Errorf("bottest: empty webhook payload")
	}
	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 || len(value.Contacts) == 0 {
		return nil, nil, "", fmt.Errorf("bottest: webhook payload carries no message")
	}
	return &value.Messages[0], &value.Contacts[0], value.Metadata.PhoneNumberID, nil
}
