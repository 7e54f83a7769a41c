package report

import (
	"strings"
	"testing"
	"time"

	"finsum/internal/core"

	"github.com/shopspring/decimal"
)

func fieldNames(e Embed) []string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Name)
	}
	return names
}

func findField(t *testing.T, e Embed, substr string) (EmbedField, bool) {
	t.Helper()
	for _, f := range e.Fields {
		if strings.Contains(f.Name, substr) {
			return f, true
		}
	}
	return EmbedField{}, false
}

func TestBuildEmbed_FullScenario(t *testing.T) {
	generatedAt := time.Date(2025, 6, 17, 8, 30, 0, 0, time.UTC)
	e := BuildEmbed(scenarioSummary(), generatedAt)

	if e.Title != "📊 Daily Financial Summary - June 17, 2025" {
		t.Errorf("title = %q", e.Title)
	}
	if e.Color != colorPositive {
		t.Errorf("color = %#x, want green for non-negative net", e.Color)
	}
	if !strings.Contains(e.Description, "Ali") || !strings.Contains(e.Description, "ali@example.com") {
		t.Errorf("description = %q", e.Description)
	}
	if e.Timestamp != generatedAt.Format(time.RFC3339) {
		t.Errorf("timestamp = %q", e.Timestamp)
	}
	if e.Footer.Text != "Generated at 8:30 AM" {
		t.Errorf("footer = %q", e.Footer.Text)
	}

	today, ok := findField(t, e, "Today's Activity")
	if !ok {
		t.Fatalf("missing today field, have %v", fieldNames(e))
	}
	if !strings.Contains(today.Value, "Net: **Rs. 3,000.00**") {
		t.Errorf("today value = %q", today.Value)
	}

	alerts, ok := findField(t, e, "Budget Alerts")
	if !ok {
		t.Fatal("missing budget alerts field for a warning budget")
	}
	if !strings.Contains(alerts.Value, "⚠️ **WARNING:**") || strings.Contains(alerts.Value, "OVER BUDGET") {
		t.Errorf("alerts value = %q", alerts.Value)
	}

	payments, ok := findField(t, e, "Upcoming Payments")
	if !ok {
		t.Fatal("missing upcoming payments field")
	}
	if !strings.Contains(payments.Value, "**Due Tomorrow**") {
		t.Errorf("payments value = %q", payments.Value)
	}

	portfolio, ok := findField(t, e, "Investment Portfolio")
	if !ok {
		t.Fatal("missing portfolio field")
	}
	if !strings.Contains(portfolio.Value, "**Total Value: Rs. 18,000.00**") {
		t.Errorf("portfolio value = %q", portfolio.Value)
	}

	health, ok := findField(t, e, "Financial Health")
	if !ok {
		t.Fatal("missing financial health field")
	}
	if !strings.Contains(health.Value, "**40.0%**") || !strings.Contains(health.Value, "**100.0%**") {
		t.Errorf("health value = %q", health.Value)
	}
}

func TestBuildEmbed_NegativeNetIsRed(t *testing.T) {
	s := scenarioSummary()
	s.Today.Net = dec("-500")
	e := BuildEmbed(s, time.Now())
	if e.Color != colorNegative {
		t.Errorf("color = %#x, want red for negative net", e.Color)
	}
}

func TestBuildEmbed_BudgetAlertsOmittedWhenAllGood(t *testing.T) {
	s := scenarioSummary()
	s.Budgets = BudgetStatuses(
		[]core.Budget{{Category: "food", Amount: dec("20000")}},
		map[string]decimal.Decimal{"food": dec("1000")},
	)
	e := BuildEmbed(s, time.Now())
	if _, ok := findField(t, e, "Budget Alerts"); ok {
		t.Error("budget alerts field present although every budget is good")
	}
}

func TestBuildEmbed_BudgetAlertsCappedAtThree(t *testing.T) {
	var budgets []core.Budget
	spend := map[string]decimal.Decimal{}
	for _, cat := range []string{"a", "b", "c", "d", "e"} {
		budgets = append(budgets, core.Budget{Category: cat, Amount: dec("100")})
		spend[cat] = dec("200")
	}

	s := scenarioSummary()
	s.Budgets = BudgetStatuses(budgets, spend)
	e := BuildEmbed(s, time.Now())

	alerts, ok := findField(t, e, "Budget Alerts")
	if !ok {
		t.Fatal("missing budget alerts field")
	}
	if got := strings.Count(alerts.Value, "• "); got != maxListEntries {
		t.Errorf("alert entries = %d, want %d", got, maxListEntries)
	}
}

func TestBuildEmbed_PaymentsCappedAtThree(t *testing.T) {
	s := scenarioSummary()
	var payments []core.RecurringPayment
	for i := 0; i < 5; i++ {
		payments = append(payments, core.RecurringPayment{
			Name:            "sub",
			Amount:          dec("100"),
			NextPaymentDate: s.Date.AddDate(0, 0, 1),
		})
	}
	s.Upcoming = DueSoon(payments, s.Date)

	e := BuildEmbed(s, time.Now())
	field, ok := findField(t, e, "Upcoming Payments")
	if !ok {
		t.Fatal("missing upcoming payments field")
	}
	if got := strings.Count(field.Value, "• "); got != maxListEntries {
		t.Errorf("payment entries = %d, want %d", got, maxListEntries)
	}
}

func TestBuildEmbed_MinimalSummary(t *testing.T) {
	s := Summary{
		User:      core.User{Name: "Ali", Email: "ali@example.com"},
		Date:      time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC),
		Today:     ComputeTotals(nil),
		Month:     ComputeTotals(nil),
		Portfolio: ComputePortfolio(nil, nil, decimal.Zero),
	}

	e := BuildEmbed(s, time.Now())

	// Only the three unconditional fields remain.
	want := 3
	if len(e.Fields) != want {
		t.Errorf("fields = %v, want %d unconditional fields", fieldNames(e), want)
	}
	for _, banned := range []string{"Budget Alerts", "Upcoming Payments", "Invoices", "Financial Health"} {
		if _, ok := findField(t, e, banned); ok {
			t.Errorf("minimal embed unexpectedly contains %q", banned)
		}
	}
}
