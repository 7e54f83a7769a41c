package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finsum/internal/report"
)

func TestSendEmbed(t *testing.T) {
	embed := report.Embed{
		Title:  "📊 Daily Financial Summary - June 17, 2025",
		Color:  0x00ff00,
		Fields: []report.EmbedField{{Name: "💰 Today's Activity", Value: "Net: Rs. 3,000.00"}},
	}

	t.Run("204 is success", func(t *testing.T) {
		var got webhookPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		client := NewWebhookClient(srv.URL)
		if err := client.SendEmbed(context.Background(), embed); err != nil {
			t.Fatalf("SendEmbed: %v", err)
		}

		if len(got.Embeds) != 1 || got.Embeds[0].Title != embed.Title {
			t.Errorf("payload embeds = %+v", got.Embeds)
		}
		if got.Username == "" {
			t.Error("payload username is empty")
		}
	})

	t.Run("non-204 is a delivery failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message": "invalid webhook token"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewWebhookClient(srv.URL)
		err := client.SendEmbed(context.Background(), embed)
		if err == nil {
			t.Fatal("expected error for 401 response")
		}
		if !strings.Contains(err.Error(), "401") {
			t.Errorf("error %v does not mention status", err)
		}
	})

	t.Run("200 is still a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := NewWebhookClient(srv.URL)
		if err := client.SendEmbed(context.Background(), embed); err == nil {
			t.Fatal("expected error: only 204 counts as success")
		}
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		client := NewWebhookClient("http://127.0.0.1:1/webhook")
		if err := client.SendEmbed(context.Background(), embed); err == nil {
			t.Fatal("expected transport error")
		}
	})
}
