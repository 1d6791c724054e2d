// Package queue implements the pending-jobs worker: a poll loop that
// re-reads the pending list and processes entries strictly sequentially.
// Failures are recorded per job and never retried automatically; a failed
// job stays failed until redriven.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

// Handler processes one job of a registered type.
type Handler func(ctx context.Context, job model.Job) error

// Worker drains the pending-jobs list.
type Worker struct {
	kvs      *kv.Store
	clk      clock.Clock
	handlers map[string]Handler
}

// NewWorker creates a worker over the shared store.
func NewWorker(kvs *kv.Store, clk clock.Clock) *Worker {
	return &Worker{
		kvs:      kvs,
		clk:      clk,
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to a job type. Call during startup.
func (w *Worker) Register(jobType string, h Handler) {
	w.handlers[jobType] = h
}

// DrainOnce re-reads the pending list and processes each entry in order,
// marking it done or failed individually. Returns the number of jobs
// attempted.
func (w *Worker) DrainOnce(ctx context.Context) (int, error) {
	pending, err := store.ListJobs(ctx, w.kvs, model.JobStatusPending)
	if err != nil {
		return 0, err
	}

	for i, job := range pending {
		h, ok := w.handlers[job.Type]
		if !ok {
			err := fmt.Errorf("no handler for job type %q", job.Type)
			if markErr := store.MarkJob(ctx, w.kvs, w.clk, job.ID, model.JobStatusFailed, err.Error()); markErr != nil {
				return i, markErr
			}
			continue
		}

		if err := h(ctx, job); err != nil {
			slog.Warn("job failed", "id", job.ID, "type", job.Type, "error", err)
			if markErr := store.MarkJob(ctx, w.kvs, w.clk, job.ID, model.JobStatusFailed, err.Error()); markErr != nil {
				return i, markErr
			}
			continue
		}

		if err := store.MarkJob(ctx, w.kvs, w.clk, job.ID, model.JobStatusDone, ""); err != nil {
			return i, err
		}
	}
	return len(pending), nil
}

// Run polls the queue at the given interval until the context is cancelled.
func (w *Worker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.DrainOnce(ctx); err != nil {
				slog.Error("queue drain failed", "error", err)
			}
		}
	}
}
