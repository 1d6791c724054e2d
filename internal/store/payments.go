package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
)

// AppendPayment appends a new transaction to the payment log.
func AppendPayment(ctx context.Context, s *kv.Store, clk clock.Clock, orderID string, amountUAH int64, status string) (*model.PaymentTransaction, error) {
	now := clk.Now()
	pt := model.PaymentTransaction{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		AmountUAH: amountUAH,
		Currency:  "UAH",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var log []model.PaymentTransaction
		if err := tx.Get(keyPayments, &log); err != nil {
			return err
		}
		log = append(log, pt)
		return tx.Put(keyPayments, log)
	})
	if err != nil {
		return nil, fmt.Errorf("appending payment: %w", err)
	}
	return &pt, nil
}

// SetPaymentStatus updates a transaction's lifecycle status.
func SetPaymentStatus(ctx context.Context, s *kv.Store, clk clock.Clock, id, status string) (*model.PaymentTransaction, error) {
	var out *model.PaymentTransaction
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var log []model.PaymentTransaction
		if err := tx.Get(keyPayments, &log); err != nil {
			return err
		}
		for i := range log {
			if log[i].ID == id {
				log[i].Status = status
				log[i].UpdatedAt = clk.Now()
				cp := log[i]
				out = &cp
				return tx.Put(keyPayments, log)
			}
		}
		return model.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListPayments returns the payment log, optionally filtered by order.
func ListPayments(ctx context.Context, s *kv.Store, orderID string) ([]model.PaymentTransaction, error) {
	var log []model.PaymentTransaction
	if err := s.Get(ctx, keyPayments, &log); err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	if orderID == "" {
		return log, nil
	}

	var out []model.PaymentTransaction
	for _, pt := range log {
		if pt.OrderID == orderID {
			out = append(out, pt)
		}
	}
	return out, nil
}
