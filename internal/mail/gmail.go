package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	goption "google.golang.org/api/option"
)

// Client wraps the Gmail API for a single user's mailbox.
type Client struct {
	svc *gmail.Service
}

// NewClient builds a Gmail client from stored OAuth tokens. The access token
// is marked expired so the token source refreshes it on first use.
func NewClient(ctx context.Context, clientID, clientSecret, accessToken, refreshToken string) (*Client, error) {
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.MailGoogleComScope},
	}
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}

	svc, err := gmail.NewService(ctx, goption.WithTokenSource(cfg.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ListBankMessages returns the IDs of messages from any of the senders
// received after since.
func (c *Client) ListBankMessages(ctx context.Context, senders []string, since time.Time) ([]string, error) {
	froms := make([]string, 0, len(senders))
	for _, s := range senders {
		froms = append(froms, "from:"+s)
	}
	query := fmt.Sprintf("after:%d (%s)", since.Unix(), strings.Join(froms, " OR "))

	res, err := c.svc.Users.Messages.List("me").Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	ids := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// FetchMessage returns the subject header and decoded HTML body of a message.
func (c *Client) FetchMessage(ctx context.Context, id string) (subject, body string, err error) {
	msg, err := c.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("get message %s: %w", id, err)
	}

	for _, h := range msg.Payload.Headers {
		if h.Name == "Subject" {
			subject = h.Value
			break
		}
	}
	return subject, extractBody(msg.Payload), nil
}

// DeleteMessage permanently removes an ingested message from the mailbox.
func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	if err := c.svc.Users.Messages.Delete("me", id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete message %s: %w", id, err)
	}
	return nil
}

// extractBody prefers the text/html part; a flat message falls back to the
// top-level body.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	for _, part := range payload.Parts {
		if part.MimeType == "text/html" && part.Body != nil && part.Body.Data != "" {
			return decodeBody(part.Body.Data)
		}
	}
	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}
	return ""
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(decoded)
}
