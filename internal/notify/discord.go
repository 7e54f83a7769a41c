// Package notify delivers report embeds to a Discord-compatible webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"finsum/internal/report"
)

const (
	defaultUsername  = "Daily Finance Bot"
	defaultAvatarURL = "https://cdn-icons-png.flaticon.com/512/2738/2738055.png"
)

type WebhookClient struct {
	webhookURL string
	username   string
	avatarURL  string
	httpClient *http.Client
}

func NewWebhookClient(webhookURL string) *WebhookClient {
	return &WebhookClient{
		webhookURL: webhookURL,
		username:   defaultUsername,
		avatarURL:  defaultAvatarURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	Embeds    []report.Embed `json:"embeds"`
	Username  string         `json:"username"`
	AvatarURL string         `json:"avatar_url"`
}

// SendEmbed posts one embed to the webhook. Discord answers 204 No Content
// on success; any other status is a delivery failure the caller recovers
// from by falling back to the text report.
func (c *WebhookClient) SendEmbed(ctx context.Context, embed report.Embed) error {
	body, err := json.Marshal(webhookPayload{
		Embeds:    []report.Embed{embed},
		Username:  c.username,
		AvatarURL: c.avatarURL,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
