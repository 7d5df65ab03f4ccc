package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"alphawealth/internal/core"
)

// TransactionFilter narrows list queries. Zero-value fields are ignored.
type TransactionFilter struct {
	From       core.Date
	To         core.Date
	AccountID  string
	CategoryID string
	Type       core.TransactionType
	Limit      int
}

const transactionColumns = `
	t.id, t.user_id, t.account_id, COALESCE(t.category_id, ''),
	t.amount_cents, t.type, t.description, t.date,
	COALESCE(a.name, ''), COALESCE(c.name, ''), COALESCE(c.color, '')`

// CreateTransaction inserts the row and applies its balance delta to the
// owning account in the same database transaction, so a crash can never leave
// the row written without the balance moved or vice versa.
func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var categoryID any
		if t.CategoryID != "" {
			categoryID = t.CategoryID
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, user_id, account_id, category_id, amount_cents, type, description, date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.UserID, t.AccountID, categoryID, t.Amount.Cents, string(t.Type), t.Description, t.Date.String())
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return applyBalance(ctx, tx, t.UserID, t.AccountID, t.BalanceDelta())
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.String())
	return t, nil
}

// UpdateTransaction rewrites the row, reverting the old balance delta and
// applying the new one atomically. The export version is bumped so a stale
// in-flight mirror write gets discarded.
func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		old, err := getTransactionTx(ctx, tx, t.UserID, t.ID)
		if err != nil {
			return err
		}

		var categoryID any
		if t.CategoryID != "" {
			categoryID = t.CategoryID
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE transactions
			SET account_id = ?, category_id = ?, amount_cents = ?, type = ?, description = ?, date = ?,
			    export_state = 'pending', export_version = export_version + 1,
			    updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND user_id = ?`,
			t.AccountID, categoryID, t.Amount.Cents, string(t.Type), t.Description, t.Date.String(),
			t.ID, t.UserID)
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}

		if err := applyBalance(ctx, tx, t.UserID, old.AccountID, -old.BalanceDelta()); err != nil {
			return err
		}
		return applyBalance(ctx, tx, t.UserID, t.AccountID, t.BalanceDelta())
	})
}

// DeleteTransaction removes the row and reverts its balance delta atomically.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		old, err := getTransactionTx(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
		if err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		if err := requireRow(res); err != nil {
			return err
		}
		return applyBalance(ctx, tx, userID, old.AccountID, -old.BalanceDelta())
	})
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		LEFT JOIN accounts a ON a.id = t.account_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = ? AND t.user_id = ?`, id, userID)
	return scanTransaction(row)
}

// ListTransactions returns the user's transactions newest first, with account
// and category display fields joined in.
func (r *Repository) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		LEFT JOIN accounts a ON a.id = t.account_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?`
	args := []any{userID}

	if !f.From.IsZero() {
		query += " AND t.date >= ?"
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		query += " AND t.date <= ?"
		args = append(args, f.To.String())
	}
	if f.AccountID != "" {
		query += " AND t.account_id = ?"
		args = append(args, f.AccountID)
	}
	if f.CategoryID != "" {
		query += " AND t.category_id = ?"
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		query += " AND t.type = ?"
		args = append(args, string(f.Type))
	}
	query += " ORDER BY t.date DESC, t.created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// applyBalance moves an account's balance by delta inside tx. A zero delta
// still verifies the account exists and belongs to the user.
func applyBalance(ctx context.Context, tx *sql.Tx, userID, accountID string, delta int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`, delta, accountID, userID)
	if err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}
	return requireRow(res)
}

func getTransactionTx(ctx context.Context, tx *sql.Tx, userID, id string) (core.Transaction, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, user_id, account_id, COALESCE(category_id, ''), amount_cents, type, description, date
		FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	var t core.Transaction
	var typ, date string
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Amount.Cents, &typ, &t.Description, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	t.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	return t, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var typ, date string
	err := row.Scan(
		&t.ID, &t.UserID, &t.AccountID, &t.CategoryID,
		&t.Amount.Cents, &typ, &t.Description, &date,
		&t.AccountName, &t.CategoryName, &t.CategoryColor)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	t.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	return t, nil
}
