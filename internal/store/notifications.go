package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
)

// AppendNotification records a sent message in the send-history log.
func AppendNotification(ctx context.Context, s *kv.Store, clk clock.Clock, n model.Notification) (*model.Notification, error) {
	n.ID = uuid.NewString()
	n.SentAt = clk.Now()

	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var history []model.Notification
		if err := tx.Get(keyNotifications, &history); err != nil {
			return err
		}
		history = append(history, n)
		return tx.Put(keyNotifications, history)
	})
	if err != nil {
		return nil, fmt.Errorf("appending notification: %w", err)
	}
	return &n, nil
}

// ListNotifications returns the send history, optionally filtered by channel.
func ListNotifications(ctx context.Context, s *kv.Store, channel string) ([]model.Notification, error) {
	var history []model.Notification
	if err := s.Get(ctx, keyNotifications, &history); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	if channel == "" {
		return history, nil
	}

	var out []model.Notification
	for _, n := range history {
		if n.Channel == channel {
			out = append(out, n)
		}
	}
	return out, nil
}
