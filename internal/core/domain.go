package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	InvoiceSent    InvoiceStatus = "sent"
	InvoiceOverdue InvoiceStatus = "overdue"

	PaymentActive   PaymentStatus = "active"
	PaymentInactive PaymentStatus = "inactive"

	PeriodMonthly = "monthly"
)

type (
	TransactionType string
	InvoiceStatus   string
	PaymentStatus   string

	User struct {
		ID    int64
		Email string
		Name  string
	}

	Transaction struct {
		ID          int64
		Type        TransactionType
		Amount      decimal.Decimal
		Category    string
		Description string
		Date        time.Time
	}

	Budget struct {
		ID       int64
		Category string
		Period   string
		Amount   decimal.Decimal
	}

	RecurringPayment struct {
		ID              int64
		Name            string
		Category        string
		Amount          decimal.Decimal
		Frequency       string
		NextPaymentDate time.Time
		Status          PaymentStatus
	}

	StockHolding struct {
		ID            int64
		Symbol        string
		TotalInvested decimal.Decimal
	}

	FundHolding struct {
		ID            int64
		Name          string
		TotalInvested decimal.Decimal
		CurrentValue  decimal.Decimal
	}

	Invoice struct {
		ID          int64
		Type        TransactionType
		Status      InvoiceStatus
		TotalAmount decimal.Decimal
	}

	// TrackedStock is a listed symbol whose price the price worker refreshes.
	TrackedStock struct {
		ID     int64
		Symbol string
	}
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrMalformedRow  = errors.New("malformed row")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidAmount = errors.New("invalid amount")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// MonthStart returns the first day of t's month at midnight UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DateOnly truncates t to midnight UTC so date comparisons ignore clock time.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns whole days from a to b, both truncated to dates.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
