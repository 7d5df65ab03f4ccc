package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"alphawealth/internal/amqp"
	"alphawealth/internal/core"
	"alphawealth/internal/storage"
)

type capturePublisher struct {
	events []*amqp.ChangeEvent
	err    error
}

func (p *capturePublisher) PublishChange(_ context.Context, ev *amqp.ChangeEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func newTestTracker(t *testing.T) (*Tracker, *capturePublisher) {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	pub := &capturePublisher{}
	return NewTracker(repo, pub), pub
}

func TestCreateTransactionPublishesEvent(t *testing.T) {
	tracker, pub := newTestTracker(t)
	ctx := context.Background()

	acc, err := tracker.CreateAccount(ctx, core.Account{
		UserID: "u1", Name: "Main", Type: core.AccountChecking,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	tx, err := tracker.CreateTransaction(ctx, core.Transaction{
		UserID:    "u1",
		AccountID: acc.ID,
		Amount:    core.Money{Cents: 1500},
		Type:      core.TypeExpense,
		Date:      core.NewDate(2024, 3, 1),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	last := pub.events[1]
	if last.Table != amqp.TableTransactions || last.Action != amqp.ActionCreated {
		t.Fatalf("unexpected event %+v", last)
	}
	if last.EntityID != tx.ID || last.UserID != "u1" {
		t.Fatalf("event identifiers wrong: %+v", last)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	tracker, pub := newTestTracker(t)

	_, err := tracker.CreateTransaction(context.Background(), core.Transaction{
		UserID: "u1",
		Type:   core.TypeExpense,
		Amount: core.Money{Cents: 100},
		Date:   core.NewDate(2024, 3, 1),
	})
	if !errors.Is(err, core.ErrMissingAccount) {
		t.Fatalf("expected ErrMissingAccount, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no event should be published for a rejected write")
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	tracker, pub := newTestTracker(t)
	pub.err = errors.New("broker down")

	a, err := tracker.CreateAccount(context.Background(), core.Account{
		UserID: "u1", Name: "Main", Type: core.AccountCash,
	})
	if err != nil {
		t.Fatalf("write should survive a publish failure: %v", err)
	}
	if _, err := tracker.Repo().GetAccount(context.Background(), "u1", a.ID); err != nil {
		t.Fatalf("account should be persisted: %v", err)
	}
}

func TestNilPublisherIsTolerated(t *testing.T) {
	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	tracker := NewTracker(repo, nil)

	if _, err := tracker.CreateAccount(context.Background(), core.Account{
		UserID: "u1", Name: "Main", Type: core.AccountCash,
	}); err != nil {
		t.Fatalf("create with nil publisher: %v", err)
	}
}

func TestDeleteBudgetPublishesEvent(t *testing.T) {
	tracker, pub := newTestTracker(t)
	ctx := context.Background()

	b, err := tracker.CreateBudget(ctx, core.Budget{
		UserID:    "u1",
		Name:      "March",
		Type:      core.TypeExpense,
		Amount:    core.Money{Cents: 10000},
		StartDate: core.NewDate(2024, 3, 1),
		EndDate:   core.NewDate(2024, 3, 31),
		Period:    core.PeriodMonthly,
	})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if err := tracker.DeleteBudget(ctx, "u1", b.ID); err != nil {
		t.Fatalf("delete budget: %v", err)
	}

	last := pub.events[len(pub.events)-1]
	if last.Table != amqp.TableBudgets || last.Action != amqp.ActionDeleted || last.EntityID != b.ID {
		t.Fatalf("unexpected event %+v", last)
	}
}
