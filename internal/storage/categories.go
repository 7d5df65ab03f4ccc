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

// defaultCategories is the starter set created for each new user.
var defaultCategories = []core.Category{
	{Name: "Salary", Type: core.CategoryIncome, Color: "#22c55e"},
	{Name: "Other Income", Type: core.CategoryIncome, Color: "#10b981"},
	{Name: "Food & Dining", Type: core.CategoryExpense, Color: "#ef4444"},
	{Name: "Groceries", Type: core.CategoryExpense, Color: "#f97316"},
	{Name: "Transportation", Type: core.CategoryExpense, Color: "#3b82f6"},
	{Name: "Housing", Type: core.CategoryExpense, Color: "#8b5cf6"},
	{Name: "Utilities", Type: core.CategoryExpense, Color: "#eab308"},
	{Name: "Entertainment", Type: core.CategoryExpense, Color: "#ec4899"},
	{Name: "Healthcare", Type: core.CategoryExpense, Color: "#14b8a6"},
	{Name: "Shopping", Type: core.CategoryExpense, Color: "#f43f5e"},
	{Name: "Other", Type: core.CategoryExpense, Color: core.DefaultCategoryColor},
}

// EnsureDefaultCategories seeds the starter categories the first time a user
// is seen. It is a no-op once the user has any category, defaults included.
func (r *Repository) EnsureDefaultCategories(ctx context.Context, userID string) error {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM categories WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range defaultCategories {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO categories (id, user_id, name, type, color, is_default)
				VALUES (?, ?, ?, ?, ?, 1)`,
				uuid.NewString(), userID, c.Name, string(c.Type), c.Color)
			if err != nil {
				return fmt.Errorf("insert default category %q: %w", c.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Default categories created",
		"user_id", userID,
		"count", len(defaultCategories))
	return nil
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, type, color, is_default)
		VALUES (?, ?, ?, ?, ?, 0)`,
		c.ID, c.UserID, c.Name, string(c.Type), c.Color)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *Repository) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, color, is_default
		FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	return scanCategory(row)
}

func (r *Repository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, color, is_default
		FROM categories WHERE user_id = ? ORDER BY type, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, type = ?, color = ?
		WHERE id = ? AND user_id = ?`,
		c.Name, string(c.Type), c.Color, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res)
}

// DeleteCategory removes a user-created category. Transactions and budget
// items that referenced it keep their rows with the reference nulled by the
// ON DELETE SET NULL constraints. Default categories cannot be deleted.
func (r *Repository) DeleteCategory(ctx context.Context, userID, id string) error {
	c, err := r.GetCategory(ctx, userID, id)
	if err != nil {
		return err
	}
	if c.IsDefault {
		return core.ErrDefaultCategory
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

func scanCategory(row rowScanner) (core.Category, error) {
	var c core.Category
	var typ string
	var isDefault int
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &typ, &c.Color, &isDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("scan category: %w", err)
	}
	c.Type = core.CategoryType(typ)
	c.IsDefault = isDefault != 0
	return c, nil
}
