package report

import (
	"fmt"
	"strings"
	"time"

	"finsum/internal/core"
)

// Discord embed colors, selected by the sign of today's net.
const (
	colorPositive = 0x00ff00
	colorNegative = 0xff0000

	// Discord caps embed field values; list sections keep at most 3 entries.
	maxListEntries = 3
)

type (
	// Embed is the structured notification payload shape.
	Embed struct {
		Title       string       `json:"title"`
		Description string       `json:"description"`
		Color       int          `json:"color"`
		Fields      []EmbedField `json:"fields"`
		Footer      EmbedFooter  `json:"footer"`
		Timestamp   string       `json:"timestamp"`
	}

	EmbedField struct {
		Name   string `json:"name"`
		Value  string `json:"value"`
		Inline bool   `json:"inline"`
	}

	EmbedFooter struct {
		Text string `json:"text"`
	}
)

// BuildEmbed condenses the summary into a bounded set of named fields.
// Sections with no content are omitted entirely, never rendered empty.
func BuildEmbed(s Summary, generatedAt time.Time) Embed {
	color := colorPositive
	if s.Today.Net.IsNegative() {
		color = colorNegative
	}

	e := Embed{
		Title:       fmt.Sprintf("📊 Daily Financial Summary - %s", s.Date.Format("January 02, 2006")),
		Description: fmt.Sprintf("**👤 %s**\n📧 %s", s.User.Name, s.User.Email),
		Color:       color,
		Footer:      EmbedFooter{Text: fmt.Sprintf("Generated at %s", generatedAt.Format("3:04 PM"))},
		Timestamp:   generatedAt.Format(time.RFC3339),
	}

	e.Fields = append(e.Fields, EmbedField{
		Name: "💰 Today's Activity",
		Value: fmt.Sprintf("✅ Income: **%s**\n❌ Expenses: **%s**\n📈 Net: **%s**\n📝 Transactions: %d",
			core.FormatAmount(s.Today.Income), core.FormatAmount(s.Today.Expense),
			core.FormatAmount(s.Today.Net), s.Today.Count),
	})

	e.Fields = append(e.Fields, EmbedField{
		Name: fmt.Sprintf("📅 This Month (%s)", s.Date.Format("January 2006")),
		Value: fmt.Sprintf("✅ Income: **%s**\n❌ Expenses: **%s**\n📈 Net: **%s**",
			core.FormatAmount(s.Month.Income), core.FormatAmount(s.Month.Expense),
			core.FormatAmount(s.Month.Net)),
	})

	if value := budgetAlerts(s); value != "" {
		e.Fields = append(e.Fields, EmbedField{Name: "🎯 Budget Alerts", Value: value})
	}

	if len(s.Upcoming) > 0 {
		var entries []string
		for _, p := range capPayments(s.Upcoming) {
			entries = append(entries, fmt.Sprintf("%s\n• %s: %s",
				embedUrgencyLabel(p), p.Name, core.FormatAmount(p.Amount)))
		}
		e.Fields = append(e.Fields, EmbedField{
			Name:  "🔔 Upcoming Payments (Next 2 Days)",
			Value: strings.Join(entries, "\n\n"),
		})
	}

	e.Fields = append(e.Fields, EmbedField{
		Name: "💼 Investment Portfolio",
		Value: fmt.Sprintf("💵 Cash: **%s**\n📈 Stocks: %d holdings - %s\n🏦 Mutual Funds: %d funds - %s\n💎 **Total Value: %s**",
			core.FormatAmount(s.Portfolio.CashBalance),
			s.Portfolio.StockCount, core.FormatAmount(s.Portfolio.StockInvested),
			s.Portfolio.FundCount, core.FormatAmount(s.Portfolio.FundCurrentValue),
			core.FormatAmount(s.Portfolio.TotalValue)),
	})

	if s.Invoices.OverdueIncome.IsPositive() || s.Invoices.PendingIncome.IsPositive() {
		var lines []string
		if s.Invoices.OverdueIncome.IsPositive() {
			lines = append(lines, fmt.Sprintf("🚨 **Overdue**: %s (%d invoices)",
				core.FormatAmount(s.Invoices.OverdueIncome), s.Invoices.OverdueCount))
		}
		if s.Invoices.PendingIncome.IsPositive() {
			lines = append(lines, fmt.Sprintf("💰 Pending: %s", core.FormatAmount(s.Invoices.PendingIncome)))
		}
		e.Fields = append(e.Fields, EmbedField{Name: "🧾 Invoices", Value: strings.Join(lines, "\n")})
	}

	if rate, ok := SavingsRate(s.Month); ok {
		emoji, msg := "🚨", "Spending exceeds income!"
		switch {
		case rate.GreaterThanOrEqual(twenty):
			emoji, msg = "✅", "Excellent savings!"
		case rate.GreaterThanOrEqual(ten):
			emoji, msg = "⚠️", "Good, but can improve"
		case !rate.IsNegative():
			emoji, msg = "⚠️", "Low savings rate"
		}
		value := fmt.Sprintf("%s Savings Rate: **%s%%**\n%s", emoji, rate.StringFixed(1), msg)
		if compliance, ok := BudgetCompliance(s.Budgets); ok {
			value += fmt.Sprintf("\n🎯 Budget Compliance: **%s%%**", compliance.StringFixed(1))
		}
		e.Fields = append(e.Fields, EmbedField{Name: "🏥 Financial Health", Value: value})
	}

	return e
}

// budgetAlerts condenses over-budget and warning entries, capped per group.
// Returns "" when every budget is good so the field is omitted.
func budgetAlerts(s Summary) string {
	var lines []string

	if over := capBudgets(s.ByStatus(StatusOverBudget)); len(over) > 0 {
		lines = append(lines, "🚨 **OVER BUDGET:**")
		for _, b := range over {
			lines = append(lines, fmt.Sprintf("• %s: %s / %s",
				b.Category, core.FormatAmount(b.Spent), core.FormatAmount(b.Budget)))
		}
	}

	if warning := capBudgets(s.ByStatus(StatusWarning)); len(warning) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "⚠️ **WARNING:**")
		for _, b := range warning {
			lines = append(lines, fmt.Sprintf("• %s: %s / %s",
				b.Category, core.FormatAmount(b.Spent), core.FormatAmount(b.Budget)))
		}
	}

	return strings.Join(lines, "\n")
}

func capBudgets(in []BudgetStatus) []BudgetStatus {
	if len(in) > maxListEntries {
		return in[:maxListEntries]
	}
	return in
}

func capPayments(in []UpcomingPayment) []UpcomingPayment {
	if len(in) > maxListEntries {
		return in[:maxListEntries]
	}
	return in
}

func embedUrgencyLabel(p UpcomingPayment) string {
	switch p.Urgency {
	case DueToday:
		return "⚠️ **DUE TODAY**"
	case DueTomorrow:
		return "⏰ **Due Tomorrow**"
	default:
		return fmt.Sprintf("📅 Due in %d days", p.DaysUntil)
	}
}
