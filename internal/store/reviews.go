package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
)

// CreateReview stores a new review in pending moderation status.
func CreateReview(ctx context.Context, s *kv.Store, clk clock.Clock, r model.Review) (*model.Review, error) {
	if r.Rating < 1 || r.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be 1..5", model.ErrValidation)
	}
	if r.BreederID == "" || r.AuthorID == "" {
		return nil, fmt.Errorf("%w: breeder and author required", model.ErrValidation)
	}

	r.ID = uuid.NewString()
	r.Status = model.ModerationPending
	r.CreatedAt = clk.Now()

	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var reviews []model.Review
		if err := tx.Get(keyReviews, &reviews); err != nil {
			return err
		}
		reviews = append(reviews, r)
		return tx.Put(keyReviews, reviews)
	})
	if err != nil {
		return nil, fmt.Errorf("creating review: %w", err)
	}
	return &r, nil
}

// ListReviews returns reviews for a breeder. Unless includePending is set,
// only approved reviews are returned.
func ListReviews(ctx context.Context, s *kv.Store, breederID string, includePending bool) ([]model.Review, error) {
	var reviews []model.Review
	if err := s.Get(ctx, keyReviews, &reviews); err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}

	var out []model.Review
	for _, r := range reviews {
		if breederID != "" && r.BreederID != breederID {
			continue
		}
		if !includePending && r.Status != model.ModerationApproved {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ModerateReview flips a review's moderation status.
func ModerateReview(ctx context.Context, s *kv.Store, id, status string) (*model.Review, error) {
	if status != model.ModerationApproved && status != model.ModerationRejected {
		return nil, fmt.Errorf("%w: unknown moderation status %q", model.ErrValidation, status)
	}

	var out *model.Review
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var reviews []model.Review
		if err := tx.Get(keyReviews, &reviews); err != nil {
			return err
		}
		for i := range reviews {
			if reviews[i].ID == id {
				reviews[i].Status = status
				cp := reviews[i]
				out = &cp
				return tx.Put(keyReviews, reviews)
			}
		}
		return model.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateQuestion stores a new listing question in pending status.
func CreateQuestion(ctx context.Context, s *kv.Store, clk clock.Clock, q model.Question) (*model.Question, error) {
	if q.ListingID == "" || q.AuthorID == "" || q.Text == "" {
		return nil, fmt.Errorf("%w: listing, author and text required", model.ErrValidation)
	}

	q.ID = uuid.NewString()
	q.Status = model.ModerationPending
	q.CreatedAt = clk.Now()

	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var questions []model.Question
		if err := tx.Get(keyQuestions, &questions); err != nil {
			return err
		}
		questions = append(questions, q)
		return tx.Put(keyQuestions, questions)
	})
	if err != nil {
		return nil, fmt.Errorf("creating question: %w", err)
	}
	return &q, nil
}

// AnswerQuestion records the seller's answer.
func AnswerQuestion(ctx context.Context, s *kv.Store, clk clock.Clock, id, answer string) (*model.Question, error) {
	if answer == "" {
		return nil, fmt.Errorf("%w: answer required", model.ErrValidation)
	}

	var out *model.Question
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var questions []model.Question
		if err := tx.Get(keyQuestions, &questions); err != nil {
			return err
		}
		for i := range questions {
			if questions[i].ID == id {
				now := clk.Now()
				questions[i].Answer = answer
				questions[i].AnsweredAt = &now
				cp := questions[i]
				out = &cp
				return tx.Put(keyQuestions, questions)
			}
		}
		return model.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListQuestions returns questions for a listing. Unless includePending is
// set, only approved questions are returned.
func ListQuestions(ctx context.Context, s *kv.Store, listingID string, includePending bool) ([]model.Question, error) {
	var questions []model.Question
	if err := s.Get(ctx, keyQuestions, &questions); err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}

	var out []model.Question
	for _, q := range questions {
		if listingID != "" && q.ListingID != listingID {
			continue
		}
		if !includePending && q.Status != model.ModerationApproved {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// ModerateQuestion flips a question's moderation status.
func ModerateQuestion(ctx context.Context, s *kv.Store, id, status string) (*model.Question, error) {
	if status != model.ModerationApproved && status != model.ModerationRejected {
		return nil, fmt.Errorf("%w: unknown moderation status %q", model.ErrValidation, status)
	}

	var out *model.Question
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var questions []model.Question
		if err := tx.Get(keyQuestions, &questions); err != nil {
			return err
		}
		for i := range questions {
			if questions[i].ID == id {
				questions[i].Status = status
				cp := questions[i]
				out = &cp
				return tx.Put(keyQuestions, questions)
			}
		}
		return model.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
