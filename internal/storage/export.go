package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"alphawealth/internal/core"
)

// PendingExport is the minimal row the mirror worker needs to pick up a
// transaction that has not reached the spreadsheet yet.
type PendingExport struct {
	ID        string
	UserID    string
	Version   int64
	CreatedAt time.Time
}

// ListPendingExports returns transactions whose latest version has not been
// mirrored, oldest first.
func (r *Repository) ListPendingExports(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, export_version, created_at
		FROM transactions
		WHERE export_state = 'pending'
		ORDER BY created_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending exports: %w", err)
	}
	defer rows.Close()

	var pending []PendingExport
	for rows.Next() {
		var p PendingExport
		if err := rows.Scan(&p.ID, &p.UserID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// GetTransactionForExport fetches a transaction by ID regardless of owner,
// with its current export version. The worker operates across users.
func (r *Repository) GetTransactionForExport(ctx context.Context, id string) (core.Transaction, int64, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`, t.export_version
		FROM transactions t
		LEFT JOIN accounts a ON a.id = t.account_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = ?`, id)

	var t core.Transaction
	var typ, date string
	var version int64
	err := row.Scan(
		&t.ID, &t.UserID, &t.AccountID, &t.CategoryID,
		&t.Amount.Cents, &typ, &t.Description, &date,
		&t.AccountName, &t.CategoryName, &t.CategoryColor,
		&version)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, 0, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, 0, fmt.Errorf("scan transaction for export: %w", err)
	}
	t.Type = core.TransactionType(typ)
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, 0, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	return t, version, nil
}

// MarkExported records that the given version reached the mirror. If the row
// was edited after the worker fetched it the versions no longer match and the
// row stays pending, so the newer content gets mirrored on the next pass.
func (r *Repository) MarkExported(ctx context.Context, id string, version int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET export_state = 'exported'
		WHERE id = ? AND export_version = ?`, id, version)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "Stale export discarded", "id", id, "version", version)
		return nil
	}
	slog.InfoContext(ctx, "Transaction marked as exported", "id", id, "version", version)
	return nil
}

// MarkExportError flags the row so operators can spot mirror failures; the
// periodic scan will retry it.
func (r *Repository) MarkExportError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET export_state = 'error'
		WHERE id = ? AND export_state = 'pending'`, id); err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with export error", "id", id)
	return nil
}

// RequeueExportErrors flips errored rows back to pending so the next scan
// retries them.
func (r *Repository) RequeueExportErrors(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET export_state = 'pending'
		WHERE export_state = 'error'`)
	if err != nil {
		return 0, fmt.Errorf("requeue export errors: %w", err)
	}
	return res.RowsAffected()
}
