package amqp

import (
	"encoding/json"
	"time"

	"finsum/internal/core"

	"github.com/shopspring/decimal"
)

// TransactionIngestedMessage announces a transaction extracted from a bank
// notification email and already persisted. Consumers notify, they do not
// re-insert.
type TransactionIngestedMessage struct {
	UserID        int64                `json:"user_id"`
	TransactionID int64                `json:"transaction_id"`
	Type          core.TransactionType `json:"type"`
	Amount        decimal.Decimal      `json:"amount"`
	Category      string               `json:"category"`
	Description   string               `json:"description"`
	Timestamp     time.Time            `json:"timestamp"`
}

// NewTransactionIngestedMessage creates an ingest event for a stored transaction.
func NewTransactionIngestedMessage(userID, transactionID int64, tx core.Transaction) *TransactionIngestedMessage {
	return &TransactionIngestedMessage{
		UserID:        userID,
		TransactionID: transactionID,
		Type:          tx.Type,
		Amount:        tx.Amount,
		Category:      tx.Category,
		Description:   tx.Description,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionIngestedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionIngestedMessageFromJSON creates a message from JSON bytes
func TransactionIngestedMessageFromJSON(data []byte) (*TransactionIngestedMessage, error) {
	var msg TransactionIngestedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
