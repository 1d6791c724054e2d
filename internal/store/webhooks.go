package store

import (
	"context"
	"fmt"

	"github.com/ohulko/matkarnia/internal/kv"
)

// IsEventSeen reports whether a webhook event id is in the persisted
// seen-set.
func IsEventSeen(ctx context.Context, s *kv.Store, eventID string) (bool, error) {
	var ids []string
	if err := s.Get(ctx, keySeenEvents, &ids); err != nil {
		return false, fmt.Errorf("checking event seen-set: %w", err)
	}
	for _, id := range ids {
		if id == eventID {
			return true, nil
		}
	}
	return false, nil
}

// MarkEventSeen records a webhook event id in the persisted seen-set.
// Recording an already-seen id is a no-op.
func MarkEventSeen(ctx context.Context, s *kv.Store, eventID string) error {
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var ids []string
		if err := tx.Get(keySeenEvents, &ids); err != nil {
			return err
		}
		for _, id := range ids {
			if id == eventID {
				return nil
			}
		}
		ids = append(ids, eventID)
		return tx.Put(keySeenEvents, ids)
	})
	if err != nil {
		return fmt.Errorf("marking event seen: %w", err)
	}
	return nil
}
