package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/anthibo/custom-whatsapp-connector/internal/models"
)

// ChatClient posts translated messages to the chat platform API.
type ChatClient struct {
	baseURL   string
	projectID string
	token     string
	client    *http.Client
	logger    *slog.Logger
}

func NewChatClient(baseURL, projectID, token string, timeout time.Duration, logger *slog.Logger) *ChatClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ChatClient{
		baseURL:   baseURL,
		projectID: projectID,
		token:     token,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type dispatchRequest struct {
	Message *models.PlatformMessage `json:"message"`
	Meta    *models.ChannelMeta     `json:"message_info"`
	BotID   string                  `json:"bot_id,omitempty"`
}

// Send forwards a translated inbound message to the platform.
func (c *ChatClient) Send(ctx context.Context, msg *models.PlatformMessage, meta *models.ChannelMeta) (*models.DispatchResponse, error) {
	path := fmt.Sprintf("%s/v1/projects/%s/messages", c.baseURL, url.PathEscape(c.projectID))
	return c.post(ctx, path, &dispatchRequest{Message: msg, Meta: meta})
}

// SendAndAddBot forwards a message and binds the given bot to the resulting
// conversation, used by the bot test flow.
func (c *ChatClient) SendAndAddBot(ctx context.Context, msg *models.PlatformMessage, meta *models.ChannelMeta, botID string) (*models.DispatchResponse, error) {
	path := fmt.Sprintf("%s/v1/projects/%s/messages/bot", c.baseURL, url.PathEscape(c.projectID))
	return c.post(ctx, path, &dispatchRequest{Message: msg, Meta: meta, BotID: botID})
}

func (c *ChatClient) post(ctx context.Context, path string, payload *dispatchRequest) (*models.DispatchResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("chat platform returned %d", resp.StatusCode)
	}

	var out models.DispatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	c.logger.Debug("message dispatched", slog.String("request_id", out.RequestID))
	return &out, nil
}
