package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// ErrNotFound is returned when a record does not exist or was soft-deleted.
var ErrNotFound = errors.New("record not found")

// SQLiteRepository persists transaction templates, categories and savings
// entries, and backs the override key/value store.
type SQLiteRepository struct {
	db *sql.DB
	kv *KV
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

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db: db,
		kv: NewKV(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Overrides returns the key/value override store backed by this database.
func (r *SQLiteRepository) Overrides() *KV {
	return r.kv
}

// CreateTransaction inserts a validated template and returns its ID.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Template) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(title, amount_cents, tx_date, is_expense, category_id, person,
			 recurring, recurring_interval, recurring_end_date, paid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Amount.Cents, t.Date.Format(dateLayout), boolToInt(t.IsExpense),
		nullableID(t.CategoryID), t.Person, boolToInt(t.Recurring),
		nullableString(string(t.Interval)), nullableDate(t.EndDate), boolToInt(t.Paid))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"title", t.Title,
		"amount_cents", t.Amount.Cents,
		"recurring", t.Recurring)

	return id, nil
}

// GetTransaction fetches a single active template by ID.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Template, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, amount_cents, tx_date, is_expense, category_id, person,
		       recurring, recurring_interval, recurring_end_date, paid
		FROM transactions
		WHERE id = ? AND deleted_at IS NULL`, id)

	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Template{}, ErrNotFound
	}
	if err != nil {
		return core.Template{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// ListTransactions returns every active template in creation order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Template, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount_cents, tx_date, is_expense, category_id, person,
		       recurring, recurring_interval, recurring_end_date, paid
		FROM transactions
		WHERE deleted_at IS NULL
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// UpdateTransaction overwrites an active template's editable fields.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Template) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET
			title = ?, amount_cents = ?, tx_date = ?, is_expense = ?,
			category_id = ?, person = ?, recurring = ?, recurring_interval = ?,
			recurring_end_date = ?, paid = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`,
		t.Title, t.Amount.Cents, t.Date.Format(dateLayout), boolToInt(t.IsExpense),
		nullableID(t.CategoryID), t.Person, boolToInt(t.Recurring),
		nullableString(string(t.Interval)), nullableDate(t.EndDate), boolToInt(t.Paid),
		t.ID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteTransaction marks a template deleted without losing history.
func (r *SQLiteRepository) SoftDeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction soft-deleted", "id", id)
	return nil
}

// ListCategories returns all categories ordered by name.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryNames returns an ID-to-name map for summary building.
func (r *SQLiteRepository) CategoryNames(ctx context.Context) (map[int64]string, error) {
	cats, err := r.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

// CreateCategory inserts a category and returns its ID.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return res.LastInsertId()
}

// DeleteCategory removes a category. Transactions keep their category_id;
// summaries render unknown IDs with an empty name.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateSavings inserts a savings contribution and returns its ID.
func (r *SQLiteRepository) CreateSavings(ctx context.Context, s core.SavingsEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO savings (label, amount_cents, entry_date, person)
		VALUES (?, ?, ?, ?)`,
		s.Label, s.Amount.Cents, s.Date.Format(dateLayout), s.Person)
	if err != nil {
		return 0, fmt.Errorf("insert savings entry: %w", err)
	}
	return res.LastInsertId()
}

// ListSavings returns the savings contributions recorded in a month.
func (r *SQLiteRepository) ListSavings(ctx context.Context, year, month int) ([]core.SavingsEntry, error) {
	start, end := monthBounds(year, month)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, amount_cents, entry_date, person
		FROM savings
		WHERE entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date, id`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsEntry
	for rows.Next() {
		var (
			s       core.SavingsEntry
			rawDate string
		)
		if err := rows.Scan(&s.ID, &s.Label, &s.Amount.Cents, &rawDate, &s.Person); err != nil {
			return nil, fmt.Errorf("scan savings entry: %w", err)
		}
		d, err := parseStoredDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("savings entry %d: %w", s.ID, err)
		}
		s.Date = d
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteSavings removes a savings contribution.
func (r *SQLiteRepository) DeleteSavings(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM savings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete savings entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete savings entry %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SavingsTotal returns the summed contributions for a month.
func (r *SQLiteRepository) SavingsTotal(ctx context.Context, year, month int) (core.Money, error) {
	start, end := monthBounds(year, month)
	var cents sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT SUM(amount_cents) FROM savings
		WHERE entry_date >= ? AND entry_date <= ?`, start, end).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("savings total: %w", err)
	}
	return core.Money{Cents: cents.Int64}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (core.Template, error) {
	var (
		t        core.Template
		rawDate  string
		expense  int64
		catID    sql.NullInt64
		recur    int64
		interval sql.NullString
		endDate  sql.NullString
		paid     int64
	)
	err := row.Scan(&t.ID, &t.Title, &t.Amount.Cents, &rawDate, &expense, &catID,
		&t.Person, &recur, &interval, &endDate, &paid)
	if err != nil {
		return core.Template{}, err
	}

	d, err := parseStoredDate(rawDate)
	if err != nil {
		return core.Template{}, err
	}
	t.Date = d
	t.IsExpense = expense != 0
	t.CategoryID = catID.Int64
	t.Recurring = recur != 0
	t.Interval = core.Interval(interval.String)
	t.Paid = paid != 0
	if endDate.Valid && endDate.String != "" {
		ed, err := parseStoredDate(endDate.String)
		if err != nil {
			return core.Template{}, err
		}
		t.EndDate = ed
	}
	return t, nil
}

func parseStoredDate(raw string) (core.Date, error) {
	// Dates are written as "2006-01-02" but older rows may carry a full
	// timestamp; take the date part only.
	if len(raw) > len(dateLayout) {
		raw = raw[:len(dateLayout)]
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse stored date %q: %w", raw, err)
	}
	return core.Date{Time: parsed}, nil
}

func monthBounds(year, month int) (string, string) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start.Format(dateLayout), end.Format(dateLayout)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableDate(d core.Date) any {
	if d.IsEmpty() {
		return nil
	}
	return d.Format(dateLayout)
}
