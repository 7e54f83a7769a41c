package report

import (
	"fmt"
	"strings"
	"time"

	"finsum/internal/core"
)

var (
	headerRule  = strings.Repeat("=", 70)
	sectionRule = strings.Repeat("─", 70)
)

// RenderText renders the full multi-section plain-text report. It is total
// over any valid summary: empty collections simply omit their sections.
func RenderText(s Summary, generatedAt time.Time) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("%s", headerRule)
	line("📊 DAILY FINANCIAL SUMMARY - %s", s.Date.Format("January 02, 2006"))
	line("%s", headerRule)
	line("")
	line("👤 User: %s", s.User.Name)
	line("📧 Email: %s", s.User.Email)
	line("")

	// Today's activity
	line("%s", sectionRule)
	line("💰 TODAY'S ACTIVITY")
	line("%s", sectionRule)
	line("  ✅ Income:    %s", core.FormatAmount(s.Today.Income))
	line("  ❌ Expenses:  %s", core.FormatAmount(s.Today.Expense))
	line("  📈 Net:       %s", core.FormatAmount(s.Today.Net))
	line("  📝 Transactions: %d", s.Today.Count)

	if len(s.Today.ExpenseByCategory) > 0 {
		line("")
		line("  Expenses by Category:")
		for _, c := range SortedCategories(s.Today.ExpenseByCategory) {
			line("    • %s: %s", c.Category, core.FormatAmount(c.Amount))
		}
	}
	if len(s.Today.IncomeByCategory) > 0 {
		line("")
		line("  Income by Category:")
		for _, c := range SortedCategories(s.Today.IncomeByCategory) {
			line("    • %s: %s", c.Category, core.FormatAmount(c.Amount))
		}
	}

	// Month summary
	line("")
	line("%s", sectionRule)
	line("📅 THIS MONTH (%s)", s.Date.Format("January 2006"))
	line("%s", sectionRule)
	line("  ✅ Total Income:    %s", core.FormatAmount(s.Month.Income))
	line("  ❌ Total Expenses:  %s", core.FormatAmount(s.Month.Expense))
	line("  📈 Net:             %s", core.FormatAmount(s.Month.Net))
	line("  📝 Transactions:    %d", s.Month.Count)

	// Budget status, split into over / warning / good groups
	if len(s.Budgets) > 0 {
		line("")
		line("%s", sectionRule)
		line("🎯 BUDGET STATUS")
		line("%s", sectionRule)

		if over := s.ByStatus(StatusOverBudget); len(over) > 0 {
			line("  🚨 OVER BUDGET ALERT! 🚨")
			for _, bs := range over {
				line("    • %s: %s / %s", bs.Category, core.FormatAmount(bs.Spent), core.FormatAmount(bs.Budget))
				line("      Over by: %s (%s%%)", core.FormatAmount(bs.Remaining.Abs()), bs.Percentage.StringFixed(1))
			}
		}
		if warning := s.ByStatus(StatusWarning); len(warning) > 0 {
			line("")
			line("  ⚠️  WARNING - High Usage:")
			for _, bs := range warning {
				line("    • %s: %s / %s", bs.Category, core.FormatAmount(bs.Spent), core.FormatAmount(bs.Budget))
				line("      Remaining: %s (%s%% left)", core.FormatAmount(bs.Remaining), hundred.Sub(bs.Percentage).StringFixed(1))
			}
		}
		if good := s.ByStatus(StatusGood); len(good) > 0 {
			line("")
			line("  ✅ On Track:")
			for _, bs := range good {
				line("    • %s: %s / %s (%s%%)", bs.Category, core.FormatAmount(bs.Spent), core.FormatAmount(bs.Budget), bs.Percentage.StringFixed(1))
			}
		}
	}

	// Upcoming recurring payments
	if len(s.Upcoming) > 0 {
		line("")
		line("%s", sectionRule)
		line("🔔 UPCOMING RECURRING PAYMENTS (Next 2 Days)")
		line("%s", sectionRule)
		for _, p := range s.Upcoming {
			line("  %s", urgencyLabel(p))
			line("    • %s (%s)", p.Name, p.Category)
			line("    • Amount: %s", core.FormatAmount(p.Amount))
			line("    • Frequency: %s", capitalize(p.Frequency))
			line("    • Due: %s", p.NextPaymentDate.Format("January 02, 2006"))
			line("")
		}
	}

	// Portfolio
	line("")
	line("%s", sectionRule)
	line("💼 INVESTMENT PORTFOLIO")
	line("%s", sectionRule)
	line("  💵 Cash Balance: %s", core.FormatAmount(s.Portfolio.CashBalance))
	line("")
	line("  📈 Stocks:")
	line("    • Holdings: %d stocks", s.Portfolio.StockCount)
	line("    • Total Invested: %s", core.FormatAmount(s.Portfolio.StockInvested))
	line("")
	line("  🏦 Mutual Funds:")
	line("    • Holdings: %d funds", s.Portfolio.FundCount)
	line("    • Total Invested: %s", core.FormatAmount(s.Portfolio.FundInvested))
	line("    • Current Value: %s", core.FormatAmount(s.Portfolio.FundCurrentValue))
	profitIndicator := "📈"
	if s.Portfolio.FundProfitLoss.IsNegative() {
		profitIndicator = "📉"
	}
	line("    • Profit/Loss: %s %s", profitIndicator, core.FormatAmount(s.Portfolio.FundProfitLoss))
	line("")
	line("  💎 Total Portfolio Value: %s", core.FormatAmount(s.Portfolio.TotalValue))

	// Invoices
	if s.Invoices.Total > 0 {
		line("")
		line("%s", sectionRule)
		line("🧾 INVOICES")
		line("%s", sectionRule)
		line("  📊 Total Invoices: %d", s.Invoices.Total)
		if s.Invoices.PendingIncome.IsPositive() {
			line("  💰 Pending Income: %s", core.FormatAmount(s.Invoices.PendingIncome))
		}
		if s.Invoices.OverdueIncome.IsPositive() {
			line("  🚨 OVERDUE Income: %s (%d invoices)", core.FormatAmount(s.Invoices.OverdueIncome), s.Invoices.OverdueCount)
		}
		if s.Invoices.PendingExpenses.IsPositive() {
			line("  💸 Pending Expenses: %s", core.FormatAmount(s.Invoices.PendingExpenses))
		}
	}

	// Financial health
	line("")
	line("%s", sectionRule)
	line("🏥 FINANCIAL HEALTH")
	line("%s", sectionRule)

	if rate, ok := SavingsRate(s.Month); ok {
		line("  📊 Savings Rate: %s%%", rate.StringFixed(1))
		switch {
		case rate.GreaterThanOrEqual(twenty):
			line("     ✅ Excellent! You're saving well.")
		case rate.GreaterThanOrEqual(ten):
			line("     ⚠️  Good, but try to save more.")
		case !rate.IsNegative():
			line("     ⚠️  Low savings rate. Consider reducing expenses.")
		default:
			line("     🚨 WARNING: Spending more than earning!")
		}
	}

	if compliance, ok := BudgetCompliance(s.Budgets); ok {
		line("  🎯 Budget Compliance: %s%%", compliance.StringFixed(1))
		switch {
		case compliance.Equal(hundred):
			line("     ✅ Perfect! All budgets on track.")
		case compliance.GreaterThanOrEqual(warningThreshold):
			line("     ✅ Good budget management.")
		default:
			line("     ⚠️  Need better budget control.")
		}
	}

	line("")
	line("%s", headerRule)
	line("Generated: %s", generatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(headerRule)

	return b.String()
}

func urgencyLabel(p UpcomingPayment) string {
	switch p.Urgency {
	case DueToday:
		return "⚠️  DUE TODAY!"
	case DueTomorrow:
		return "⏰ Due Tomorrow"
	default:
		return fmt.Sprintf("📅 Due in %d days", p.DaysUntil)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
