package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finsum/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetUserByEmail looks a user up by contact address. A missing user is
// core.ErrUserNotFound, which aborts a summary run before any other query.
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %s: %w", email, core.ErrUserNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// TransactionsOn returns all of a user's transactions dated exactly on day.
func (r *SQLiteRepository) TransactionsOn(ctx context.Context, userID int64, day time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, amount, category, description, date
		 FROM transactions WHERE user_id = ? AND date = ?`,
		userID, day.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query transactions on date: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// TransactionsBetween returns a user's transactions with date in [from, to].
func (r *SQLiteRepository) TransactionsBetween(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, amount, category, description, date
		 FROM transactions WHERE user_id = ? AND date >= ? AND date <= ?`,
		userID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query transactions between dates: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ActiveBudgets returns the user's monthly budgets.
func (r *SQLiteRepository) ActiveBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, period, budget_amount
		 FROM budgets WHERE user_id = ? AND period = ?`,
		userID, core.PeriodMonthly)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var (
			b      core.Budget
			amount string
		)
		if err := rows.Scan(&b.ID, &b.Category, &b.Period, &amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Amount, err = core.ParseAmount(amount)
		if err != nil {
			return nil, fmt.Errorf("budget %d amount %q: %w", b.ID, amount, core.ErrMalformedRow)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// CategoryExpenseTotal sums the user's expense transactions for one category
// over [from, to]. One call per budget; budget counts are small.
func (r *SQLiteRepository) CategoryExpenseTotal(ctx context.Context, userID int64, category string, from, to time.Time) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount FROM transactions
		 WHERE user_id = ? AND type = ? AND category = ? AND date >= ? AND date <= ?`,
		userID, core.Expense, category, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return decimal.Zero, fmt.Errorf("query category spend: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("scan category spend: %w", err)
		}
		d, err := core.ParseAmount(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("category %s amount %q: %w", category, amount, core.ErrMalformedRow)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

// DueRecurringPayments returns active payments with next due date in
// [from, to], ordered ascending by due date.
func (r *SQLiteRepository) DueRecurringPayments(ctx context.Context, userID int64, from, to time.Time) ([]core.RecurringPayment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, category, amount, frequency, next_payment_date, status
		 FROM recurring_payments
		 WHERE user_id = ? AND status = ? AND next_payment_date >= ? AND next_payment_date <= ?
		 ORDER BY next_payment_date`,
		userID, core.PaymentActive, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query recurring payments: %w", err)
	}
	defer rows.Close()

	var payments []core.RecurringPayment
	for rows.Next() {
		var (
			p            core.RecurringPayment
			amount, due  string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &amount, &p.Frequency, &due, &p.Status); err != nil {
			return nil, fmt.Errorf("scan recurring payment: %w", err)
		}
		p.Amount, err = core.ParseAmount(amount)
		if err != nil {
			return nil, fmt.Errorf("payment %d amount %q: %w", p.ID, amount, core.ErrMalformedRow)
		}
		p.NextPaymentDate, err = time.ParseInLocation(dateLayout, due, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("payment %d due date %q: %w", p.ID, due, core.ErrMalformedRow)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// StockHoldings returns all of a user's stock holdings.
func (r *SQLiteRepository) StockHoldings(ctx context.Context, userID int64) ([]core.StockHolding, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, symbol, total_invested FROM stocks WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}
	defer rows.Close()

	var holdings []core.StockHolding
	for rows.Next() {
		var (
			h        core.StockHolding
			invested string
		)
		if err := rows.Scan(&h.ID, &h.Symbol, &invested); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		h.TotalInvested, err = core.ParseAmount(invested)
		if err != nil {
			return nil, fmt.Errorf("stock %d invested %q: %w", h.ID, invested, core.ErrMalformedRow)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// FundHoldings returns all of a user's mutual fund holdings.
func (r *SQLiteRepository) FundHoldings(ctx context.Context, userID int64) ([]core.FundHolding, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, total_invested, current_value FROM mutual_funds WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query mutual funds: %w", err)
	}
	defer rows.Close()

	var holdings []core.FundHolding
	for rows.Next() {
		var (
			h                 core.FundHolding
			invested, current string
		)
		if err := rows.Scan(&h.ID, &h.Name, &invested, &current); err != nil {
			return nil, fmt.Errorf("scan mutual fund: %w", err)
		}
		h.TotalInvested, err = core.ParseAmount(invested)
		if err != nil {
			return nil, fmt.Errorf("fund %d invested %q: %w", h.ID, invested, core.ErrMalformedRow)
		}
		h.CurrentValue, err = core.ParseAmount(current)
		if err != nil {
			return nil, fmt.Errorf("fund %d value %q: %w", h.ID, current, core.ErrMalformedRow)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// CashBalance returns the user's cash balance; a missing row is zero.
func (r *SQLiteRepository) CashBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance string
	err := r.db.QueryRowContext(ctx,
		`SELECT balance FROM cash_account WHERE user_id = ?`, userID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("query cash balance: %w", err)
	}
	d, err := core.ParseAmount(balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cash balance %q: %w", balance, core.ErrMalformedRow)
	}
	return d, nil
}

// Invoices returns all of a user's invoices.
func (r *SQLiteRepository) Invoices(ctx context.Context, userID int64) ([]core.Invoice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, status, total_amount FROM invoices WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []core.Invoice
	for rows.Next() {
		var (
			inv   core.Invoice
			total string
		)
		if err := rows.Scan(&inv.ID, &inv.Type, &inv.Status, &total); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.TotalAmount, err = core.ParseAmount(total)
		if err != nil {
			return nil, fmt.Errorf("invoice %d amount %q: %w", inv.ID, total, core.ErrMalformedRow)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// InsertTransaction persists an ingested transaction after validating it.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, userID int64, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, fmt.Errorf("validate transaction: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, type, amount, category, description, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, tx.Type, tx.Amount.String(), tx.Category, tx.Description, tx.Date.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction insert id: %w", err)
	}
	return id, nil
}

// UsersWithMailTokens returns users that have Gmail OAuth tokens stored,
// together with their tokens.
func (r *SQLiteRepository) UsersWithMailTokens(ctx context.Context) ([]UserTokens, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, name, access_token, refresh_token
		 FROM users WHERE access_token IS NOT NULL AND refresh_token IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("query users with tokens: %w", err)
	}
	defer rows.Close()

	var users []UserTokens
	for rows.Next() {
		var ut UserTokens
		if err := rows.Scan(&ut.User.ID, &ut.User.Email, &ut.User.Name, &ut.AccessToken, &ut.RefreshToken); err != nil {
			return nil, fmt.Errorf("scan user tokens: %w", err)
		}
		users = append(users, ut)
	}
	return users, rows.Err()
}

// SaveUserTokens stores Gmail OAuth tokens for a user.
func (r *SQLiteRepository) SaveUserTokens(ctx context.Context, userID int64, accessToken, refreshToken string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET access_token = ?, refresh_token = ? WHERE id = ?`,
		accessToken, refreshToken, userID)
	if err != nil {
		return fmt.Errorf("save user tokens: %w", err)
	}
	return nil
}

// TrackedStocks returns every symbol the price worker should refresh.
func (r *SQLiteRepository) TrackedStocks(ctx context.Context) ([]core.TrackedStock, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, symbol FROM psx_stocks`)
	if err != nil {
		return nil, fmt.Errorf("query tracked stocks: %w", err)
	}
	defer rows.Close()

	var stocks []core.TrackedStock
	for rows.Next() {
		var s core.TrackedStock
		if err := rows.Scan(&s.ID, &s.Symbol); err != nil {
			return nil, fmt.Errorf("scan tracked stock: %w", err)
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

// UpdateStockPrice writes a freshly scraped closing price.
func (r *SQLiteRepository) UpdateStockPrice(ctx context.Context, id int64, price decimal.Decimal, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE psx_stocks SET current_price = ?, last_updated = ? WHERE id = ?`,
		price.String(), at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("update stock price: %w", err)
	}
	return nil
}

// UserTokens pairs a user with their stored Gmail OAuth tokens.
type UserTokens struct {
	User         core.User
	AccessToken  string
	RefreshToken string
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txs []core.Transaction
	for rows.Next() {
		var (
			tx           core.Transaction
			amount, date string
		)
		if err := rows.Scan(&tx.ID, &tx.Type, &amount, &tx.Category, &tx.Description, &date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		var err error
		tx.Amount, err = core.ParseAmount(amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %d amount %q: %w", tx.ID, amount, core.ErrMalformedRow)
		}
		tx.Date, err = time.ParseInLocation(dateLayout, date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("transaction %d date %q: %w", tx.ID, date, core.ErrMalformedRow)
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w: %w", tx.ID, core.ErrMalformedRow, err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
