package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
)

// AppendAudit records an action in the append-only audit log.
func AppendAudit(ctx context.Context, s *kv.Store, clk clock.Clock, actorID, action, subject, detail string) error {
	return s.WithTx(ctx, func(tx *kv.Tx) error {
		return AppendAuditTx(tx, clk, actorID, action, subject, detail)
	})
}

// AppendAuditTx is AppendAudit inside an existing transaction.
func AppendAuditTx(tx *kv.Tx, clk clock.Clock, actorID, action, subject, detail string) error {
	var entries []model.AuditEntry
	if err := tx.Get(keyAudit, &entries); err != nil {
		return err
	}
	entries = append(entries, model.AuditEntry{
		ID:      uuid.NewString(),
		ActorID: actorID,
		Action:  action,
		Subject: subject,
		Detail:  detail,
		At:      clk.Now(),
	})
	return tx.Put(keyAudit, entries)
}

// ListAudit returns the audit log, newest first.
func ListAudit(ctx context.Context, s *kv.Store) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	if err := s.Get(ctx, keyAudit, &entries); err != nil {
		return nil, fmt.Errorf("listing audit log: %w", err)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
