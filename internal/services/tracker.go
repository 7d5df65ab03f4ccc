// Package services orchestrates writes across SQLite and the change-event
// broker. The database write always comes first; a failed publish is logged
// and absorbed so the request still succeeds on local state.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"alphawealth/internal/amqp"
	"alphawealth/internal/core"
	"alphawealth/internal/storage"
)

type changePublisher interface {
	PublishChange(ctx context.Context, ev *amqp.ChangeEvent) error
}

type Tracker struct {
	repo      *storage.Repository
	publisher changePublisher
}

func NewTracker(repo *storage.Repository, publisher changePublisher) *Tracker {
	return &Tracker{repo: repo, publisher: publisher}
}

// Repo exposes the repository for read paths; writes go through the service
// so every mutation emits its change event.
func (t *Tracker) Repo() *storage.Repository {
	return t.repo
}

func (t *Tracker) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	created, err := t.repo.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	t.publish(ctx, amqp.TableAccounts, amqp.ActionCreated, created.ID, created.UserID, 0)
	return created, nil
}

func (t *Tracker) UpdateAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := t.repo.UpdateAccount(ctx, a); err != nil {
		return err
	}
	t.publish(ctx, amqp.TableAccounts, amqp.ActionUpdated, a.ID, a.UserID, 0)
	return nil
}

func (t *Tracker) DeleteAccount(ctx context.Context, userID, id string) error {
	if err := t.repo.DeleteAccount(ctx, userID, id); err != nil {
		return err
	}
	t.publish(ctx, amqp.TableAccounts, amqp.ActionDeleted, id, userID, 0)
	return nil
}

func (t *Tracker) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := t.repo.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	t.publish(ctx, amqp.TableCategories, amqp.ActionCreated, created.ID, created.UserID, 0)
	return created, nil
}

func (t *Tracker) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := t.repo.UpdateCategory(ctx, c); err != nil {
		return err
	}
	t.publish(ctx, amqp.TableCategories, amqp.ActionUpdated, c.ID, c.UserID, 0)
	return nil
}

func (t *Tracker) DeleteCategory(ctx context.Context, userID, id string) error {
	if err := t.repo.DeleteCategory(ctx, userID, id); err != nil {
		return err
	}
	t.publish(ctx, amqp.TableCategories, amqp.ActionDeleted, id, userID, 0)
	return nil
}

func (t *Tracker) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := t.repo.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	t.publish(ctx, amqp.TableTransactions, amqp.ActionCreated, created.ID, created.UserID, 1)
	return created, nil
}

func (t *Tracker) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := t.repo.UpdateTransaction(ctx, tx); err != nil {
		return err
	}
	t.publish(ctx, amqp.TableTransactions, amqp.ActionUpdated, tx.ID, tx.UserID, 0)
	return nil
}

func (t *Tracker) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := t.repo.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	t.publish(ctx, amqp.TableTransactions, amqp.ActionDeleted, id, userID, 0)
	return nil
}

func (t *Tracker) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	created, err := t.repo.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	t.publish(ctx, amqp.TableBudgets, amqp.ActionCreated, created.ID, created.UserID, 0)
	return created, nil
}

func (t *Tracker) UpdateBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := t.repo.UpdateBudget(ctx, b); err != nil {
		return err
	}
	t.publish(ctx, amqp.TableBudgets, amqp.ActionUpdated, b.ID, b.UserID, 0)
	return nil
}

func (t *Tracker) DeleteBudget(ctx context.Context, userID, id string) error {
	if err := t.repo.DeleteBudget(ctx, userID, id); err != nil {
		return err
	}
	t.publish(ctx, amqp.TableBudgets, amqp.ActionDeleted, id, userID, 0)
	return nil
}

func (t *Tracker) publish(ctx context.Context, table, action, entityID, userID string, version int64) {
	if t.publisher == nil {
		slog.WarnContext(ctx, "Change publisher not available, skipping event",
			"table", table, "action", action)
		return
	}
	ev := amqp.NewChangeEvent(table, action, entityID, userID, version)
	if err := t.publisher.PublishChange(ctx, ev); err != nil {
		// The write already committed; the periodic export scan and client
		// refetches cover a lost event.
		slog.ErrorContext(ctx, "Failed to publish change event",
			"table", table, "action", action, "entity_id", entityID, "error", err)
	}
}
