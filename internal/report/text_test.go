package report

import (
	"strings"
	"testing"
	"time"

	"finsum/internal/core"

	"github.com/shopspring/decimal"
)

// scenarioSummary builds the derived bundle for a fully populated day:
// today income 5000 / expenses 2000 (food 1200, transport 800), month income
// 50000 / expenses 30000, one food budget 20000 with 18000 spent, one payment
// due tomorrow, two stocks worth 10000, one fund 5000 -> 6000, cash 2000 and
// a single pending income invoice.
func scenarioSummary() Summary {
	today := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)

	todayTxs := []core.Transaction{
		{Type: core.Income, Amount: dec("5000"), Category: "salary", Date: today},
		{Type: core.Expense, Amount: dec("1200"), Category: "food", Date: today},
		{Type: core.Expense, Amount: dec("800"), Category: "transport", Date: today},
	}
	monthTxs := []core.Transaction{
		{Type: core.Income, Amount: dec("50000"), Category: "salary", Date: today},
		{Type: core.Expense, Amount: dec("30000"), Category: "food", Date: today},
	}

	budgets := BudgetStatuses(
		[]core.Budget{{Category: "food", Period: core.PeriodMonthly, Amount: dec("20000")}},
		map[string]decimal.Decimal{"food": dec("18000")},
	)

	upcoming := DueSoon([]core.RecurringPayment{{
		Name:            "internet",
		Category:        "utilities",
		Amount:          dec("3000"),
		Frequency:       "monthly",
		NextPaymentDate: today.AddDate(0, 0, 1),
		Status:          core.PaymentActive,
	}}, today)

	portfolio := ComputePortfolio(
		[]core.StockHolding{
			{Symbol: "HBL", TotalInvested: dec("6000")},
			{Symbol: "OGDC", TotalInvested: dec("4000")},
		},
		[]core.FundHolding{{Name: "Meezan Fund", TotalInvested: dec("5000"), CurrentValue: dec("6000")}},
		dec("2000"),
	)

	invoices := ComputeInvoiceSummary([]core.Invoice{
		{Type: core.Income, Status: core.InvoiceSent, TotalAmount: dec("1000")},
	})

	return Summary{
		User:      core.User{ID: 1, Email: "ali@example.com", Name: "Ali"},
		Date:      today,
		Today:     ComputeTotals(todayTxs),
		Month:     ComputeTotals(monthTxs),
		Budgets:   budgets,
		Upcoming:  upcoming,
		Portfolio: portfolio,
		Invoices:  invoices,
	}
}

func TestRenderText_FullScenario(t *testing.T) {
	generatedAt := time.Date(2025, 6, 17, 8, 30, 0, 0, time.UTC)
	got := RenderText(scenarioSummary(), generatedAt)

	wantContains := []string{
		"DAILY FINANCIAL SUMMARY - June 17, 2025",
		"👤 User: Ali",
		"📈 Net:       Rs. 3,000.00",
		"• food: Rs. 1,200.00",
		"• transport: Rs. 800.00",
		"Total Income:    Rs. 50,000.00",
		"⚠️  WARNING - High Usage:",
		"• food: Rs. 18,000.00 / Rs. 20,000.00",
		"Remaining: Rs. 2,000.00 (10.0% left)",
		"⏰ Due Tomorrow",
		"• internet (utilities)",
		"• Frequency: Monthly",
		"💎 Total Portfolio Value: Rs. 18,000.00",
		"💰 Pending Income: Rs. 1,000.00",
		"📊 Savings Rate: 40.0%",
		"✅ Excellent! You're saving well.",
		"🎯 Budget Compliance: 100.0%",
		"✅ Perfect! All budgets on track.",
		"Generated: 2025-06-17 08:30:00",
	}
	for _, want := range wantContains {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// Warning is the only budget state; the other groups must be absent.
	if strings.Contains(got, "OVER BUDGET ALERT") {
		t.Error("unexpected over-budget section")
	}
	if strings.Contains(got, "✅ On Track:") {
		t.Error("unexpected on-track section")
	}
}

func TestRenderText_CategoriesSortedDescending(t *testing.T) {
	s := scenarioSummary()
	got := RenderText(s, time.Now())

	foodIdx := strings.Index(got, "• food: Rs. 1,200.00")
	transportIdx := strings.Index(got, "• transport: Rs. 800.00")
	if foodIdx == -1 || transportIdx == -1 || foodIdx > transportIdx {
		t.Errorf("expected food before transport, indexes %d and %d", foodIdx, transportIdx)
	}
}

func TestRenderText_MinimalSummary(t *testing.T) {
	s := Summary{
		User:      core.User{Name: "Ali", Email: "ali@example.com"},
		Date:      time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC),
		Today:     ComputeTotals(nil),
		Month:     ComputeTotals(nil),
		Portfolio: ComputePortfolio(nil, nil, decimal.Zero),
	}

	got := RenderText(s, time.Now())

	// Mandatory sections are always present.
	for _, want := range []string{"TODAY'S ACTIVITY", "THIS MONTH", "INVESTMENT PORTFOLIO", "FINANCIAL HEALTH"} {
		if !strings.Contains(got, want) {
			t.Errorf("minimal report missing %q", want)
		}
	}

	// Conditional sections are fully omitted, not rendered empty.
	for _, banned := range []string{"BUDGET STATUS", "UPCOMING RECURRING PAYMENTS", "INVOICES", "Savings Rate", "Budget Compliance", "by Category"} {
		if strings.Contains(got, banned) {
			t.Errorf("minimal report unexpectedly contains %q", banned)
		}
	}
}

func TestRenderText_SavingsRateComments(t *testing.T) {
	tests := []struct {
		name    string
		income  string
		expense string
		want    string
	}{
		{"excellent at 20", "1000", "800", "✅ Excellent!"},
		{"good at 10", "1000", "900", "⚠️  Good, but try to save more."},
		{"low at 0", "1000", "1000", "⚠️  Low savings rate."},
		{"negative", "1000", "1500", "🚨 WARNING: Spending more than earning!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scenarioSummary()
			s.Month = Totals{Income: dec(tt.income), Expense: dec(tt.expense), Net: dec(tt.income).Sub(dec(tt.expense))}
			got := RenderText(s, time.Now())
			if !strings.Contains(got, tt.want) {
				t.Errorf("report missing %q", tt.want)
			}
		})
	}
}

func TestRenderText_Idempotent(t *testing.T) {
	generatedAt := time.Date(2025, 6, 17, 8, 30, 0, 0, time.UTC)
	first := RenderText(scenarioSummary(), generatedAt)
	second := RenderText(scenarioSummary(), generatedAt)
	if first != second {
		t.Error("identical inputs produced different reports")
	}
}
