// Package core defines the financial entities shared by every pipeline stage.
//
// This file contains money formatting and parsing helpers. Amounts are
// decimal.Decimal everywhere; floats only appear at the rendering edge.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount as "Rs. 1,234.56" with thousands grouping.
// Negative amounts keep the sign after the currency marker: "Rs. -1,234.56".
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString("Rs. ")
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}

// ParseAmount parses a store or scraped amount such as "1,234.56" or
// "Rs. 1,234.56" into a decimal. Returns ErrInvalidAmount on garbage input.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
