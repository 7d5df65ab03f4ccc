package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"alphawealth/internal/core"
)

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO budgets (id, user_id, name, type, amount_cents, start_date, end_date, period, rollover, account_id, category_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.UserID, b.Name, string(b.Type), b.Amount.Cents,
			b.StartDate.String(), b.EndDate.String(), string(b.Period),
			boolToInt(b.Rollover), nullable(b.AccountID), nullable(b.CategoryID))
		if err != nil {
			return fmt.Errorf("insert budget: %w", err)
		}
		return insertItems(ctx, tx, b.ID, b.Items)
	})
	if err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (r *Repository) GetBudget(ctx context.Context, userID, id string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, amount_cents, start_date, end_date, period, rollover,
		       COALESCE(account_id, ''), COALESCE(category_id, '')
		FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBudget(row)
	if err != nil {
		return core.Budget{}, err
	}
	b.Items, err = r.listItems(ctx, b.ID)
	return b, err
}

func (r *Repository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, amount_cents, start_date, end_date, period, rollover,
		       COALESCE(account_id, ''), COALESCE(category_id, '')
		FROM budgets WHERE user_id = ? ORDER BY start_date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range budgets {
		budgets[i].Items, err = r.listItems(ctx, budgets[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return budgets, nil
}

// UpdateBudget rewrites the budget row and replaces its items wholesale.
func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE budgets
			SET name = ?, type = ?, amount_cents = ?, start_date = ?, end_date = ?, period = ?,
			    rollover = ?, account_id = ?, category_id = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND user_id = ?`,
			b.Name, string(b.Type), b.Amount.Cents,
			b.StartDate.String(), b.EndDate.String(), string(b.Period),
			boolToInt(b.Rollover), nullable(b.AccountID), nullable(b.CategoryID),
			b.ID, b.UserID)
		if err != nil {
			return fmt.Errorf("update budget: %w", err)
		}
		if err := requireRow(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM budget_items WHERE budget_id = ?`, b.ID); err != nil {
			return fmt.Errorf("clear budget items: %w", err)
		}
		return insertItems(ctx, tx, b.ID, b.Items)
	})
}

// DeleteBudget removes the budget; items cascade.
func (r *Repository) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

func insertItems(ctx context.Context, tx *sql.Tx, budgetID string, items []core.BudgetItem) error {
	for _, item := range items {
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO budget_items (id, budget_id, category_id, planned_cents)
			VALUES (?, ?, ?, ?)`,
			id, budgetID, nullable(item.CategoryID), item.Planned.Cents)
		if err != nil {
			return fmt.Errorf("insert budget item: %w", err)
		}
	}
	return nil
}

func (r *Repository) listItems(ctx context.Context, budgetID string) ([]core.BudgetItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, budget_id, COALESCE(category_id, ''), planned_cents
		FROM budget_items WHERE budget_id = ?`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list budget items: %w", err)
	}
	defer rows.Close()

	var items []core.BudgetItem
	for rows.Next() {
		var item core.BudgetItem
		if err := rows.Scan(&item.ID, &item.BudgetID, &item.CategoryID, &item.Planned.Cents); err != nil {
			return nil, fmt.Errorf("scan budget item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var b core.Budget
	var typ, period, start, end string
	var rollover int
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &typ, &b.Amount.Cents,
		&start, &end, &period, &rollover, &b.AccountID, &b.CategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	b.Type = core.TransactionType(typ)
	b.Period = core.BudgetPeriod(period)
	b.Rollover = rollover != 0
	if b.StartDate, err = core.ParseDate(start); err != nil {
		return core.Budget{}, fmt.Errorf("parse stored start date %q: %w", start, err)
	}
	if b.EndDate, err = core.ParseDate(end); err != nil {
		return core.Budget{}, fmt.Errorf("parse stored end date %q: %w", end, err)
	}
	return b, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
