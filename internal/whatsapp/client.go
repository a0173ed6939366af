// Package whatsapp is the outbound client for the GOWA-style messaging gateway.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"corralon_backend/internal/conversation"
	"corralon_backend/platform/apperr"
	"corralon_backend/platform/config"
	"corralon_backend/platform/logger"
)

// maxMediaBytes caps downloaded voice notes and photos.
const maxMediaBytes = 16 << 20

type Client struct {
	baseURL  string
	apiKey   string
	deviceID string
	http     *http.Client
	log      *logger.Logger
}

type messageRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type buttonsRequest struct {
	Phone   string                `json:"phone"`
	Message string                `json:"message"`
	Buttons []conversation.Button `json:"buttons"`
}

type listSection struct {
	Title string             `json:"title"`
	Rows  []conversation.Row `json:"rows"`
}

type listRequest struct {
	Phone      string        `json:"phone"`
	Message    string        `json:"message"`
	ButtonText string        `json:"button_text"`
	Sections   []listSection `json:"sections"`
}

func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if cfg.GetWhatsAppURL() == "" {
		return nil
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.GetWhatsAppURL(), "/"),
		apiKey:   cfg.GetWhatsAppKey(),
		deviceID: cfg.GetWhatsAppDeviceID(),
		http:     &http.Client{Timeout: 20 * time.Second},
		log:      log,
	}
}

// SendText delivers a plain message.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	if c == nil {
		return nil
	}
	return c.postJSON(ctx, "/send/message", to, messageRequest{Phone: to, Message: text})
}

// SendButtons delivers a message with up to three reply buttons.
func (c *Client) SendButtons(ctx context.Context, to, text string, buttons []conversation.Button) error {
	if c == nil {
		return nil
	}
	if len(buttons) > conversation.MaxButtons {
		buttons = buttons[:conversation.MaxButtons]
	}
	return c.postJSON(ctx, "/send/buttons", to, buttonsRequest{Phone: to, Message: text, Buttons: buttons})
}

// SendList delivers a list prompt with up to ten rows.
func (c *Client) SendList(ctx context.Context, to string, list conversation.SendList) error {
	if c == nil {
		return nil
	}
	rows := list.Rows
	if len(rows) > conversation.MaxListRows {
		rows = rows[:conversation.MaxListRows]
	}
	return c.postJSON(ctx, "/send/list", to, listRequest{
		Phone:      to,
		Message:    list.Text,
		ButtonText: list.ButtonLabel,
		Sections:   []listSection{{Title: list.Section, Rows: rows}},
	})
}

// SendFile uploads a document with an optional caption.
func (c *Client) SendFile(ctx context.Context, to, filename string, content []byte, caption string) error {
	if c == nil {
		return nil
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("phone", to)
	if caption != "" {
		_ = w.WriteField("caption", caption)
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("build whatsapp file payload: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("build whatsapp file payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("build whatsapp file payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send/file", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := c.do(req); err != nil {
		return err
	}
	c.log.Info("whatsapp file sent", "phone", to, "file", filename)
	return nil
}

// FetchMedia downloads an inbound attachment referenced by the webhook.
func (c *Client) FetchMedia(ctx context.Context, ref string) ([]byte, string, error) {
	if c == nil {
		return nil, "", apperr.Collaborator("gateway", fmt.Errorf("whatsapp client not configured"))
	}

	url := ref
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		url = c.baseURL + "/" + strings.TrimLeft(ref, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", apperr.Collaborator("gateway", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", apperr.Collaborator("gateway", fmt.Errorf("media download returned %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
	if err != nil {
		return nil, "", apperr.Collaborator("gateway", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) postJSON(ctx context.Context, path, to string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.do(req); err != nil {
		return err
	}

	c.log.Debug("whatsapp sent via gowa", "phone", to, "path", path)
	return nil
}

func (c *Client) do(req *http.Request) error {
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Collaborator("gateway", fmt.Errorf("whatsapp request failed: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperr.Collaborator("gateway", fmt.Errorf("whatsapp service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", formatAuthHeader(c.apiKey))
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}
}

func formatAuthHeader(apiKey string) string {
	if strings.HasPrefix(strings.ToLower(apiKey), "basic ") {
		return apiKey
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(apiKey))
	return "Basic " + encoded
}
