// Package transport holds the HTTP clients for the two external APIs the
// connector talks to: the WhatsApp Graph API and the chat platform.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// WhatsAppClient sends messages and moves media through the Graph API.
type WhatsAppClient struct {
	graphURL    string
	token       string
	baseFileURL string
	client      *http.Client
	logger      *slog.Logger
}

func NewWhatsAppClient(graphURL, token, baseFileURL string, timeout time.Duration, logger *slog.Logger) *WhatsAppClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if !strings.HasSuffix(graphURL, "/") {
		graphURL += "/"
	}
	return &WhatsAppClient{
		graphURL:    graphURL,
		token:       token,
		baseFileURL: baseFileURL,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SendMessage posts a Cloud API payload to the business phone number.
func (c *WhatsAppClient) SendMessage(ctx context.Context, phoneNumberID string, msg interface{}) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	url := c.graphURL + phoneNumberID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("whatsapp: send returned %d: %s", resp.StatusCode, detail)
	}

	c.logger.Debug("whatsapp message sent", slog.String("phone_number_id", phoneNumberID))
	return nil
}

type mediaMetadata struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
	ID       string `json:"id"`
}

// DownloadMedia resolves a media id to its download URL and streams the
// binary into a temp file, returning the local path.
func (c *WhatsAppClient) DownloadMedia(ctx context.Context, mediaID string) (string, error) {
	meta, err := c.mediaMetadata(ctx, mediaID)
	if err != nil {
		return "", err
	}

	extension := meta.MimeType
	if idx := strings.LastIndex(extension, "/"); idx != -1 {
		extension = extension[idx+1:]
	}
	if idx := strings.Index(extension, ";"); idx != -1 {
		extension = extension[:idx]
	}
	if extension == "ogg" {
		extension = "mp3"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("whatsapp: media download returned %d", resp.StatusCode)
	}

	name := "media-" + strconv.FormatInt(time.Now().Unix(), 36) + "." + extension
	path := filepath.Join(os.TempDir(), name)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return "", err
	}

	c.logger.Debug("media downloaded", slog.String("media_id", mediaID), slog.String("path", path))
	return path, nil
}

func (c *WhatsAppClient) mediaMetadata(ctx context.Context, mediaID string) (*mediaMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.graphURL+mediaID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("whatsapp: media lookup returned %d", resp.StatusCode)
	}

	var meta mediaMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// UploadMedia pushes a local file to the platform's public file service and
// returns the public URL the Cloud API can fetch it from. mimeCategory is
// "images" or "files".
func (c *WhatsAppClient) UploadMedia(ctx context.Context, path, mimeCategory string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	url := c.baseFileURL + "/" + mimeCategory + "/public/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("whatsapp: media upload returned %d", resp.StatusCode)
	}

	var uploaded struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", err
	}

	if mimeCategory == "images" {
		return c.baseFileURL + "/images/?path=" + uploaded.Filename, nil
	}
	return c.baseFileURL + "/files/download?path=" + uploaded.Filename, nil
}
