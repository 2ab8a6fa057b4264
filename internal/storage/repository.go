package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"salesview/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable transaction store. All reads evaluate a
// core.Filter; the only write path is ReplaceAll, used by ingestion runs.
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

	if err := RunMigrations(dbPath); err != nil {
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

// whereClause renders a core.Filter as SQL. The search term expands to a
// case-insensitive substring match on title or description, plus an exact
// price comparison when the term parses as a number.
func whereClause(f core.Filter) (string, []any) {
	var conds []string
	var args []any

	if f.Month != "" {
		conds = append(conds, "month = ?")
		args = append(args, f.Month)
	}
	if f.Sold != nil {
		conds = append(conds, "sold = ?")
		args = append(args, *f.Sold)
	}
	if f.Search != "" {
		or := []string{
			"lower(title) LIKE '%' || lower(?) || '%'",
			"lower(description) LIKE '%' || lower(?) || '%'",
		}
		args = append(args, f.Search, f.Search)
		if price, ok := f.SearchPrice(); ok {
			or = append(or, "price = ?")
			args = append(args, price.InexactFloat64())
		}
		conds = append(conds, "("+strings.Join(or, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListTransactions returns matching records sorted ascending by sale date.
// A limit of zero or less means no windowing.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f core.Filter, limit, offset int) ([]core.Transaction, error) {
	where, args := whereClause(f)
	query := "SELECT source_id, title, description, price, category, image_url, sold, date_of_sale, month FROM transactions" +
		where + " ORDER BY date_of_sale ASC"
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var records []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var price float64
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &price, &t.Category, &t.ImageURL, &t.Sold, &t.DateOfSale, &t.Month); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Price = decimal.NewFromFloat(price)
		records = append(records, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return records, nil
}

// CountTransactions counts records matching the filter.
func (r *SQLiteRepository) CountTransactions(ctx context.Context, f core.Filter) (int, error) {
	where, args := whereClause(f)

	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}

	return count, nil
}

// SumPrice totals the price of records matching the filter. An empty match
// set sums to zero.
func (r *SQLiteRepository) SumPrice(ctx context.Context, f core.Filter) (decimal.Decimal, error) {
	where, args := whereClause(f)

	var total float64
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(price), 0) FROM transactions"+where, args...).Scan(&total)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("sum transaction prices: %w", err)
	}

	return decimal.NewFromFloat(total), nil
}

// ReplaceAll swaps the entire record set in one transaction: readers observe
// either the old snapshot or the new one, never a partial load. A failed load
// rolls back and leaves the prior contents in place.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
		return fmt.Errorf("truncate transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO transactions (source_id, title, description, price, category, image_url, sold, date_of_sale, month) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range records {
		_, err := stmt.ExecContext(ctx, t.ID, t.Title, t.Description, t.Price.InexactFloat64(),
			t.Category, t.ImageURL, t.Sold, t.DateOfSale.UTC(), t.Month)
		if err != nil {
			return fmt.Errorf("insert transaction %d: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction store replaced", "records", len(records))
	return nil
}
