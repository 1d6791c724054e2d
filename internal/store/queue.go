package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
)

// Enqueue appends a pending job to the queue.
func Enqueue(ctx context.Context, s *kv.Store, clk clock.Clock, jobType string, payload any) (*model.Job, error) {
	var job *model.Job
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		j, err := EnqueueTx(tx, clk, jobType, payload)
		if err != nil {
			return err
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// EnqueueTx is Enqueue inside an existing transaction, so producers can
// publish a job atomically with the state change that caused it.
func EnqueueTx(tx *kv.Tx, clk clock.Clock, jobType string, payload any) (*model.Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding job payload: %w", err)
	}

	now := clk.Now()
	job := model.Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Payload:   raw,
		Status:    model.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var jobs []model.Job
	if err := tx.Get(keyJobs, &jobs); err != nil {
		return nil, err
	}
	jobs = append(jobs, job)
	if err := tx.Put(keyJobs, jobs); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns jobs, optionally filtered by status.
func ListJobs(ctx context.Context, s *kv.Store, status string) ([]model.Job, error) {
	var jobs []model.Job
	if err := s.Get(ctx, keyJobs, &jobs); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	if status == "" {
		return jobs, nil
	}

	var out []model.Job
	for _, j := range jobs {
		if j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}

// MarkJob records a job's outcome: done, or failed with the error text.
func MarkJob(ctx context.Context, s *kv.Store, clk clock.Clock, id, status, errText string) error {
	return s.WithTx(ctx, func(tx *kv.Tx) error {
		var jobs []model.Job
		if err := tx.Get(keyJobs, &jobs); err != nil {
			return err
		}
		for i := range jobs {
			if jobs[i].ID == id {
				jobs[i].Status = status
				jobs[i].Error = errText
				jobs[i].UpdatedAt = clk.Now()
				return tx.Put(keyJobs, jobs)
			}
		}
		return model.ErrNotFound
	})
}

// RedriveJob moves a failed job back to pending for another attempt.
func RedriveJob(ctx context.Context, s *kv.Store, clk clock.Clock, id string) error {
	return s.WithTx(ctx, func(tx *kv.Tx) error {
		var jobs []model.Job
		if err := tx.Get(keyJobs, &jobs); err != nil {
			return err
		}
		for i := range jobs {
			if jobs[i].ID == id {
				if jobs[i].Status != model.JobStatusFailed {
					return fmt.Errorf("%w: job is %s, not failed", model.ErrValidation, jobs[i].Status)
				}
				jobs[i].Status = model.JobStatusPending
				jobs[i].Error = ""
				jobs[i].UpdatedAt = clk.Now()
				return tx.Put(keyJobs, jobs)
			}
		}
		return model.ErrNotFound
	})
}
