// Package telegram implements the external messaging channel over the
// Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultAPIBaseURL = "https://api.telegram.org"
	requestTimeout    = 10 * time.Second
)

// Sender delivers messages to Telegram chats via the Bot API sendMessage
// method. It is safe for concurrent use by multiple delivery workers.
type Sender struct {
	token   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewSender creates a Sender for the given bot token. baseURL overrides the
// Bot API endpoint; pass "" for the production API.
func NewSender(token, baseURL string, logger *slog.Logger) *Sender {
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	return &Sender{
		token:   token,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger.With("component", "telegram_sender"),
	}
}

// sendMessageRequest is the Bot API sendMessage request body.
type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Send delivers the message text to the chat. Network failures, non-2xx
// responses, and API-level rejections all surface as errors so the worker
// pool can record the failed attempt.
func (s *Sender) Send(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sendMessage request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("unexpected telegram response (status %d): %w", resp.StatusCode, err)
	}

	if !apiResp.OK {
		return fmt.Errorf(
			"telegram rejected message (status %d, code %d): %s",
			resp.StatusCode,
			apiResp.ErrorCode,
			apiResp.Description,
		)
	}

	s.logger.Debug("telegram message sent", "chat_id", chatID)
	return nil
}
