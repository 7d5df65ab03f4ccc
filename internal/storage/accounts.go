package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"alphawealth/internal/core"
)

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, type, balance_cents, color)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, string(a.Type), a.Balance.Cents, a.Color)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

func (r *Repository) GetAccount(ctx context.Context, userID, id string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, balance_cents, color
		FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	return scanAccount(row)
}

func (r *Repository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, balance_cents, color
		FROM accounts WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, type = ?, color = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`,
		a.Name, string(a.Type), a.Color, a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res)
}

// DeleteAccount removes the account; its transactions go with it via the
// ON DELETE CASCADE constraint.
func (r *Repository) DeleteAccount(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (core.Account, error) {
	var a core.Account
	var typ string
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &typ, &a.Balance.Cents, &a.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	a.Type = core.AccountType(typ)
	return a, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
