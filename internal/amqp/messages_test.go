package amqp

import (
	"testing"
	"time"

	"finsum/internal/core"

	"github.com/shopspring/decimal"
)

func TestTransactionIngestedMessage(t *testing.T) {
	tx := core.Transaction{
		Type:        core.Expense,
		Amount:      decimal.RequireFromString("1532.50"),
		Category:    "bank",
		Description: "POS purchase",
		Date:        time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC),
	}

	msg := NewTransactionIngestedMessage(7, 42, tx)
	if msg.UserID != 7 || msg.TransactionID != 42 {
		t.Fatalf("ids = %d/%d", msg.UserID, msg.TransactionID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := TransactionIngestedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Type != core.Expense || got.Category != "bank" {
		t.Errorf("round trip = %+v", got)
	}
	if !got.Amount.Equal(tx.Amount) {
		t.Errorf("amount = %s, want %s", got.Amount, tx.Amount)
	}
}

func TestTransactionIngestedMessageFromJSON_Malformed(t *testing.T) {
	if _, err := TransactionIngestedMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
