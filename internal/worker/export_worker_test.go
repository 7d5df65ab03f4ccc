package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"alphawealth/internal/amqp"
	"alphawealth/internal/core"
	"alphawealth/internal/sheets/memory"
	"alphawealth/internal/storage"
)

func newTestWorker(t *testing.T) (*ExportWorker, *storage.Repository, *memory.Store) {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	store := memory.New()
	return NewExportWorker(repo, store, 10), repo, store
}

func seedTransaction(t *testing.T, repo *storage.Repository) core.Transaction {
	t.Helper()
	ctx := context.Background()
	acc, err := repo.CreateAccount(ctx, core.Account{
		UserID: "u1", Name: "Main", Type: core.AccountChecking,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID:    "u1",
		AccountID: acc.ID,
		Amount:    core.Money{Cents: 4200},
		Type:      core.TypeExpense,
		Date:      core.NewDate(2024, 3, 1),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

func TestHandleChangeEventMirrorsTransaction(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()
	tx := seedTransaction(t, repo)

	ev := amqp.NewChangeEvent(amqp.TableTransactions, amqp.ActionCreated, tx.ID, "u1", 1)
	if err := w.HandleChangeEvent(ctx, ev); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	items := store.Items()
	if len(items) != 1 || items[0].Amount.Cents != 4200 || items[0].AccountName != "Main" {
		t.Fatalf("unexpected mirrored items %+v", items)
	}
	pending, _ := repo.ListPendingExports(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("row should be marked exported")
	}
}

func TestHandleChangeEventIgnoresOtherTablesAndDeletes(t *testing.T) {
	w, _, store := newTestWorker(t)
	ctx := context.Background()

	events := []*amqp.ChangeEvent{
		amqp.NewChangeEvent(amqp.TableAccounts, amqp.ActionCreated, "a-1", "u1", 0),
		amqp.NewChangeEvent(amqp.TableTransactions, amqp.ActionDeleted, "tx-gone", "u1", 0),
	}
	for _, ev := range events {
		if err := w.HandleChangeEvent(ctx, ev); err != nil {
			t.Fatalf("event %s.%s should be acked without work: %v", ev.Table, ev.Action, err)
		}
	}
	if len(store.Items()) != 0 {
		t.Fatalf("nothing should be mirrored")
	}
}

func TestHandleChangeEventVanishedRow(t *testing.T) {
	w, _, _ := newTestWorker(t)
	ev := amqp.NewChangeEvent(amqp.TableTransactions, amqp.ActionCreated, "no-such-id", "u1", 1)
	if err := w.HandleChangeEvent(context.Background(), ev); err != nil {
		t.Fatalf("vanished row should not be an error: %v", err)
	}
}

func TestProcessPendingSweepsBacklog(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()
	seedTransaction(t, repo)
	seedTransaction(t, repo)

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if len(store.Items()) != 2 {
		t.Fatalf("expected 2 mirrored, got %d", len(store.Items()))
	}
	pending, _ := repo.ListPendingExports(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("backlog should be drained")
	}
}

func TestExportFailureMarksErrorAndRetries(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()
	tx := seedTransaction(t, repo)

	store.FailWith(errors.New("quota exceeded"))
	ev := amqp.NewChangeEvent(amqp.TableTransactions, amqp.ActionCreated, tx.ID, "u1", 1)
	if err := w.HandleChangeEvent(ctx, ev); err == nil {
		t.Fatalf("expected export failure")
	}

	// The row sits in the error state until the next sweep requeues it.
	pending, _ := repo.ListPendingExports(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("errored row should not be pending")
	}

	// The sweep itself requeues errored rows and retries them; no operator
	// intervention needed.
	store.FailWith(nil)
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(store.Items()) != 1 {
		t.Fatalf("expected mirrored row after retry")
	}
	pending, _ = repo.ListPendingExports(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("retried row should be marked exported")
	}
}

func TestExportEditedRowMirrorsLatestVersion(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()
	tx := seedTransaction(t, repo)

	// The event carries version 1 but the row was edited before the worker
	// got to it; the mirror must see the newer content and the row must not
	// stay pending.
	tx.Amount.Cents = 9900
	if err := repo.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("edit: %v", err)
	}

	ev := amqp.NewChangeEvent(amqp.TableTransactions, amqp.ActionCreated, tx.ID, "u1", 1)
	if err := w.HandleChangeEvent(ctx, ev); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	items := store.Items()
	if len(items) != 1 || items[0].Amount.Cents != 9900 {
		t.Fatalf("mirror should carry the edited amount, got %+v", items)
	}
	pending, _ := repo.ListPendingExports(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("row should be exported at its latest version")
	}
}
