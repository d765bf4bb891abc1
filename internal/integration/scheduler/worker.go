// Package scheduler runs the recurring materialization on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/finflow/recurring-engine/internal/application/usecase/recurring"
	"github.com/finflow/recurring-engine/internal/integration/email"
)

// Worker triggers recurring transaction materialization periodically.
type Worker struct {
	process  *recurring.ProcessRecurringUseCase
	notifier *email.SummaryNotifier
	interval time.Duration
}

// WorkerConfig holds configuration for the scheduler worker.
type WorkerConfig struct {
	Interval time.Duration
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Interval: 12 * time.Hour,
	}
}

// NewWorker creates a new scheduler worker.
func NewWorker(process *recurring.ProcessRecurringUseCase, notifier *email.SummaryNotifier, config WorkerConfig) *Worker {
	interval := config.Interval
	if interval <= 0 {
		interval = DefaultWorkerConfig().Interval
	}
	return &Worker{
		process:  process,
		notifier: notifier,
		interval: interval,
	}
}

// Start begins the worker loop. It blocks until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Recurring scheduler started", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run immediately on start, then on ticker
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Recurring scheduler shutting down")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce executes a single materialization run.
func (w *Worker) runOnce(ctx context.Context) {
	now := time.Now().UTC()

	output, err := w.process.Execute(ctx, recurring.ProcessRecurringInput{Now: now})
	if err != nil {
		slog.Error("Scheduled recurring run failed", "error", err)
		if w.notifier != nil {
			w.notifier.Notify(ctx, now, 0, err)
		}
		return
	}

	slog.Info("Scheduled recurring run completed", "processed", output.Processed)
	if w.notifier != nil && output.Processed > 0 {
		w.notifier.Notify(ctx, now, output.Processed, nil)
	}
}

// RunNow executes a materialization run immediately (useful for testing).
func (w *Worker) RunNow(ctx context.Context) {
	w.runOnce(ctx)
}
