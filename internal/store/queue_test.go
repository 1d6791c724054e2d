package store

import (
	"context"
	"errors"
	"testing"

	"github.com/ohulko/matkarnia/internal/model"
)

func TestEnqueueAndListJobs(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	job, err := Enqueue(ctx, s, clk, "order.notify", map[string]string{"order_id": "o-1"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if job.Status != model.JobStatusPending {
		t.Errorf("expected pending status, got %q", job.Status)
	}

	pending, err := ListJobs(ctx, s, model.JobStatusPending)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != job.ID {
		t.Errorf("unexpected pending jobs: %+v", pending)
	}
}

func TestMarkJobRecordsOutcome(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	job, _ := Enqueue(ctx, s, clk, "order.notify", nil)
	if err := MarkJob(ctx, s, clk, job.ID, model.JobStatusFailed, "smtp down"); err != nil {
		t.Fatalf("MarkJob: %v", err)
	}

	failed, _ := ListJobs(ctx, s, model.JobStatusFailed)
	if len(failed) != 1 || failed[0].Error != "smtp down" {
		t.Errorf("unexpected failed jobs: %+v", failed)
	}
}

func TestRedriveJobOnlyFromFailed(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	job, _ := Enqueue(ctx, s, clk, "order.notify", nil)

	// Pending jobs cannot be redriven.
	if err := RedriveJob(ctx, s, clk, job.ID); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	MarkJob(ctx, s, clk, job.ID, model.JobStatusFailed, "boom")
	if err := RedriveJob(ctx, s, clk, job.ID); err != nil {
		t.Fatalf("RedriveJob: %v", err)
	}

	pending, _ := ListJobs(ctx, s, model.JobStatusPending)
	if len(pending) != 1 || pending[0].Error != "" {
		t.Errorf("expected job back in pending with error cleared, got %+v", pending)
	}
}

func TestRedriveJobUnknownID(t *testing.T) {
	s, clk := testStore(t)

	if err := RedriveJob(context.Background(), s, clk, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
