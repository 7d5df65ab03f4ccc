// Package worker mirrors transactions to an external spreadsheet. It drains
// change events from the broker and periodically sweeps for rows the events
// missed.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"alphawealth/internal/amqp"
	"alphawealth/internal/sheets"
	"alphawealth/internal/storage"
)

type ExportWorker struct {
	repo      *storage.Repository
	writer    sheets.TransactionWriter
	batchSize int
}

func NewExportWorker(repo *storage.Repository, writer sheets.TransactionWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		repo:      repo,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleChangeEvent mirrors the transaction named by one change event. Events
// for other tables and deletions are acknowledged without work: deletions
// have nothing left to mirror, and the sweep covers anything else.
func (w *ExportWorker) HandleChangeEvent(ctx context.Context, ev *amqp.ChangeEvent) error {
	if ev.Table != amqp.TableTransactions || ev.Action == amqp.ActionDeleted {
		return nil
	}

	tx, version, err := w.repo.GetTransactionForExport(ctx, ev.EntityID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between the event and now; nothing to mirror.
		slog.InfoContext(ctx, "Transaction gone before export", "id", ev.EntityID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction for export: %w", err)
	}

	return w.export(ctx, tx.ID, version)
}

// ProcessPending sweeps rows whose latest version never reached the mirror.
// This is the backup path for lost events and worker downtime. Errored rows
// are flipped back to pending first, so a failed append gets retried on the
// next pass instead of parking forever.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	if err := w.requeueErrors(ctx); err != nil {
		return err
	}

	pending, err := w.repo.ListPendingExports(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, p := range pending {
		if err := w.export(ctx, p.ID, p.Version); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", p.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck drains a larger pending backlog once at boot to recover from
// downtime, then lets the periodic sweep take over.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	if err := w.requeueErrors(ctx); err != nil {
		return err
	}

	pending, err := w.repo.ListPendingExports(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending exports for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...", "count", len(pending))

	synced, failed := 0, 0
	for _, p := range pending {
		if err := w.export(ctx, p.ID, p.Version); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup", "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *ExportWorker) requeueErrors(ctx context.Context) error {
	requeued, err := w.repo.RequeueExportErrors(ctx)
	if err != nil {
		return fmt.Errorf("requeue export errors: %w", err)
	}
	if requeued > 0 {
		slog.InfoContext(ctx, "Requeued errored exports", "count", requeued)
	}
	return nil
}

// RunSweep runs ProcessPending on the given interval until ctx is cancelled.
func (w *ExportWorker) RunSweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending export sweep failed", "error", err)
			}
		}
	}
}

// export mirrors one row and marks the fetched version as exported. If the
// row changed since version was read, the mark is a no-op and the row stays
// pending for the next pass; the last completed fetch wins.
func (w *ExportWorker) export(ctx context.Context, id string, version int64) error {
	tx, current, err := w.repo.GetTransactionForExport(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	if current != version {
		// A newer edit is already queued; mirror that version instead.
		version = current
	}

	ref, err := w.writer.Append(ctx, tx)
	if err != nil {
		if markErr := w.repo.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	if err := w.repo.MarkExported(ctx, id, version); err != nil {
		// The append worked; the sweep will reconcile the state.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", id, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Transaction exported",
		"id", id,
		"version", version,
		"mirror_ref", ref,
		"amount_cents", tx.Amount.Cents)
	return nil
}
