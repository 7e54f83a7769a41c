// Package mail reads bank notification emails over the Gmail API and
// extracts transactions from them. Extraction is best effort: a message
// that does not match the known patterns is skipped, never an error.
package mail

import (
	"regexp"
	"strings"
	"time"

	"finsum/internal/core"
)

const bankCategory = "bank"

var (
	amountPattern      = regexp.MustCompile(`PKR\s*([\d,]+\.?\d*)`)
	datePattern        = regexp.MustCompile(`Transaction Date\s*:\s*([0-9A-Za-z-]+)`)
	beneficiaryPattern = regexp.MustCompile(`Beneficiary.*?:\s*(.+?)<`)
)

// ParseBankEmail extracts a transaction from a bank notification. The body
// is the message's HTML part, fallbackDate is used when the mail carries no
// transaction date. ok is false when no amount is present.
func ParseBankEmail(body, subject string, fallbackDate time.Time) (core.Transaction, bool) {
	amountMatch := amountPattern.FindStringSubmatch(body)
	if amountMatch == nil {
		return core.Transaction{}, false
	}
	amount, err := core.ParseAmount(amountMatch[1])
	if err != nil {
		return core.Transaction{}, false
	}

	txType := core.Expense
	if strings.Contains(strings.ToLower(body), "received") ||
		strings.Contains(strings.ToLower(subject), "credit") {
		txType = core.Income
	}

	date := core.DateOnly(fallbackDate)
	if m := datePattern.FindStringSubmatch(body); m != nil {
		if parsed, err := time.ParseInLocation("2-Jan-2006", m[1], time.UTC); err == nil {
			date = parsed
		}
	}

	description := subject
	if m := beneficiaryPattern.FindStringSubmatch(body); m != nil {
		description = strings.TrimSpace(m[1])
	}

	return core.Transaction{
		Type:        txType,
		Amount:      amount,
		Category:    bankCategory,
		Description: description,
		Date:        date,
	}, true
}
