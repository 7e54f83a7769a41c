// Package report derives summary metrics from retrieved snapshots and
// renders them. Everything in this package is a pure function of its inputs;
// retrieval happens upstream and the run date is fixed by the caller.
package report

import (
	"sort"
	"time"

	"finsum/internal/core"

	"github.com/shopspring/decimal"
)

const (
	StatusOverBudget BudgetStatusTag = "over_budget"
	StatusWarning    BudgetStatusTag = "warning"
	StatusGood       BudgetStatusTag = "good"

	DueToday    Urgency = "due_today"
	DueTomorrow Urgency = "due_tomorrow"
	DueInNDays  Urgency = "due_in_n_days"
)

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(80)
	twenty           = decimal.NewFromInt(20)
	ten              = decimal.NewFromInt(10)
)

type (
	BudgetStatusTag string
	Urgency         string

	// Totals aggregates one window of transactions.
	Totals struct {
		Income            decimal.Decimal
		Expense           decimal.Decimal
		Net               decimal.Decimal
		Count             int
		ExpenseByCategory map[string]decimal.Decimal
		IncomeByCategory  map[string]decimal.Decimal
	}

	// BudgetStatus is one budget's month-to-date standing.
	BudgetStatus struct {
		Category   string
		Budget     decimal.Decimal
		Spent      decimal.Decimal
		Remaining  decimal.Decimal
		Percentage decimal.Decimal
		Status     BudgetStatusTag
	}

	// UpcomingPayment annotates a due recurring payment with urgency.
	UpcomingPayment struct {
		core.RecurringPayment
		DaysUntil int
		Urgency   Urgency
	}

	// Portfolio summarises holdings and cash.
	Portfolio struct {
		StockCount       int
		StockInvested    decimal.Decimal
		FundCount        int
		FundInvested     decimal.Decimal
		FundCurrentValue decimal.Decimal
		FundProfitLoss   decimal.Decimal
		CashBalance      decimal.Decimal
		TotalValue       decimal.Decimal
	}

	// InvoiceSummary buckets invoices into pending/overdue totals.
	InvoiceSummary struct {
		Total           int
		PendingIncome   decimal.Decimal
		OverdueIncome   decimal.Decimal
		PendingExpenses decimal.Decimal
		OverdueCount    int
	}

	// CategoryAmount is a category with its aggregated amount, used once
	// breakdown maps are ordered for rendering.
	CategoryAmount struct {
		Category string
		Amount   decimal.Decimal
	}

	// Summary is the complete derived-fact bundle both renderers consume.
	Summary struct {
		User      core.User
		Date      time.Time
		Today     Totals
		Month     Totals
		Budgets   []BudgetStatus
		Upcoming  []UpcomingPayment
		Portfolio Portfolio
		Invoices  InvoiceSummary
	}
)

// ComputeTotals sums a transaction window into income/expense/net plus
// per-category breakdown maps. An empty window yields all zeros.
func ComputeTotals(txs []core.Transaction) Totals {
	t := Totals{
		Income:            decimal.Zero,
		Expense:           decimal.Zero,
		Net:               decimal.Zero,
		ExpenseByCategory: make(map[string]decimal.Decimal),
		IncomeByCategory:  make(map[string]decimal.Decimal),
	}
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
			t.IncomeByCategory[tx.Category] = t.IncomeByCategory[tx.Category].Add(tx.Amount)
		case core.Expense:
			t.Expense = t.Expense.Add(tx.Amount)
			t.ExpenseByCategory[tx.Category] = t.ExpenseByCategory[tx.Category].Add(tx.Amount)
		}
		t.Count++
	}
	t.Net = t.Income.Sub(t.Expense)
	return t
}

// BudgetStatuses classifies each budget against its month-to-date spend.
// Source order is preserved; spend is looked up by category.
func BudgetStatuses(budgets []core.Budget, spend map[string]decimal.Decimal) []BudgetStatus {
	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := spend[b.Category]
		pct := decimal.Zero
		if b.Amount.IsPositive() {
			pct = spent.Div(b.Amount).Mul(hundred)
		}

		// spent > budget wins before the percentage check, so a zero budget
		// with zero spend still classifies as good.
		status := StatusGood
		switch {
		case spent.GreaterThan(b.Amount):
			status = StatusOverBudget
		case pct.GreaterThan(warningThreshold):
			status = StatusWarning
		}

		statuses = append(statuses, BudgetStatus{
			Category:   b.Category,
			Budget:     b.Amount,
			Spent:      spent,
			Remaining:  b.Amount.Sub(spent),
			Percentage: pct,
			Status:     status,
		})
	}
	return statuses
}

// DueSoon annotates retrieval-scoped payments with days-until and urgency.
// Retrieval guarantees the window starts at today, so DaysUntil >= 0.
func DueSoon(payments []core.RecurringPayment, today time.Time) []UpcomingPayment {
	upcoming := make([]UpcomingPayment, 0, len(payments))
	for _, p := range payments {
		days := core.DaysBetween(today, p.NextPaymentDate)
		urgency := DueInNDays
		switch days {
		case 0:
			urgency = DueToday
		case 1:
			urgency = DueTomorrow
		}
		upcoming = append(upcoming, UpcomingPayment{
			RecurringPayment: p,
			DaysUntil:        days,
			Urgency:          urgency,
		})
	}
	return upcoming
}

// ComputePortfolio aggregates stock and fund holdings plus cash.
func ComputePortfolio(stocks []core.StockHolding, funds []core.FundHolding, cash decimal.Decimal) Portfolio {
	p := Portfolio{
		StockCount:       len(stocks),
		StockInvested:    decimal.Zero,
		FundCount:        len(funds),
		FundInvested:     decimal.Zero,
		FundCurrentValue: decimal.Zero,
		CashBalance:      cash,
	}
	for _, s := range stocks {
		p.StockInvested = p.StockInvested.Add(s.TotalInvested)
	}
	for _, f := range funds {
		p.FundInvested = p.FundInvested.Add(f.TotalInvested)
		p.FundCurrentValue = p.FundCurrentValue.Add(f.CurrentValue)
	}
	p.FundProfitLoss = p.FundCurrentValue.Sub(p.FundInvested)
	p.TotalValue = p.StockInvested.Add(p.FundCurrentValue).Add(p.CashBalance)
	return p
}

// ComputeInvoiceSummary buckets invoices by status and type.
func ComputeInvoiceSummary(invoices []core.Invoice) InvoiceSummary {
	s := InvoiceSummary{
		Total:           len(invoices),
		PendingIncome:   decimal.Zero,
		OverdueIncome:   decimal.Zero,
		PendingExpenses: decimal.Zero,
	}
	for _, inv := range invoices {
		switch {
		case inv.Status == core.InvoiceSent && inv.Type == core.Income:
			s.PendingIncome = s.PendingIncome.Add(inv.TotalAmount)
		case inv.Status == core.InvoiceOverdue && inv.Type == core.Income:
			s.OverdueIncome = s.OverdueIncome.Add(inv.TotalAmount)
		case inv.Status == core.InvoiceSent && inv.Type == core.Expense:
			s.PendingExpenses = s.PendingExpenses.Add(inv.TotalAmount)
		}
		if inv.Status == core.InvoiceOverdue {
			s.OverdueCount++
		}
	}
	return s
}

// SavingsRate returns (income - expense) / income as a percentage.
// ok is false when income is zero: the rate is undefined and omitted.
func SavingsRate(month Totals) (decimal.Decimal, bool) {
	if !month.Income.IsPositive() {
		return decimal.Zero, false
	}
	return month.Income.Sub(month.Expense).Div(month.Income).Mul(hundred), true
}

// BudgetCompliance returns the share of budgets not over budget as a
// percentage. Warning still counts as compliant; only over_budget does not.
// ok is false when there are no budgets.
func BudgetCompliance(statuses []BudgetStatus) (decimal.Decimal, bool) {
	if len(statuses) == 0 {
		return decimal.Zero, false
	}
	over := 0
	for _, s := range statuses {
		if s.Status == StatusOverBudget {
			over++
		}
	}
	compliant := decimal.NewFromInt(int64(len(statuses) - over))
	return compliant.Div(decimal.NewFromInt(int64(len(statuses)))).Mul(hundred), true
}

// ByStatus filters the summary's budget list to one status tag.
func (s Summary) ByStatus(tag BudgetStatusTag) []BudgetStatus {
	var out []BudgetStatus
	for _, b := range s.Budgets {
		if b.Status == tag {
			out = append(out, b)
		}
	}
	return out
}

// SortedCategories orders a breakdown map descending by amount, with the
// category name as a deterministic tie break. Ordering lives here, at the
// rendering edge; the maps themselves are unordered.
func SortedCategories(m map[string]decimal.Decimal) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for cat, amount := range m {
		out = append(out, CategoryAmount{Category: cat, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
