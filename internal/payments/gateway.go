// Package payments implements the synchronous mock payment gateway. It
// simulates the create/capture/refund lifecycle against the append-only
// payment log; no real gateway is ever called.
package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

// ErrCaptureDeclined is returned when the injected failure switch is on.
var ErrCaptureDeclined = errors.New("payment declined")

// Gateway is the mock gateway. FailNextCapture makes the next capture
// decline, for exercising the retryable payment-failed path.
type Gateway struct {
	kvs *kv.Store
	clk clock.Clock

	mu          sync.Mutex
	failCapture bool
}

// New creates a gateway over the shared store.
func New(kvs *kv.Store, clk clock.Clock) *Gateway {
	return &Gateway{kvs: kvs, clk: clk}
}

// FailNextCapture arms or disarms the failure switch.
func (g *Gateway) FailNextCapture(fail bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failCapture = fail
}

func (g *Gateway) takeFailure() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	fail := g.failCapture
	g.failCapture = false
	return fail
}

// Create opens a payment transaction for an order.
func (g *Gateway) Create(ctx context.Context, orderID string, amountUAH int64) (*model.PaymentTransaction, error) {
	if amountUAH <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", model.ErrValidation)
	}
	return store.AppendPayment(ctx, g.kvs, g.clk, orderID, amountUAH, model.TxStatusCreated)
}

// Capture settles a created transaction. With the failure switch armed, the
// transaction is marked failed and ErrCaptureDeclined is returned.
func (g *Gateway) Capture(ctx context.Context, txID string) (*model.PaymentTransaction, error) {
	if g.takeFailure() {
		if _, err := store.SetPaymentStatus(ctx, g.kvs, g.clk, txID, model.TxStatusFailed); err != nil {
			return nil, err
		}
		return nil, ErrCaptureDeclined
	}
	return store.SetPaymentStatus(ctx, g.kvs, g.clk, txID, model.TxStatusCaptured)
}

// Refund reverses a captured transaction.
func (g *Gateway) Refund(ctx context.Context, txID string) (*model.PaymentTransaction, error) {
	pts, err := store.ListPayments(ctx, g.kvs, "")
	if err != nil {
		return nil, err
	}
	for _, pt := range pts {
		if pt.ID == txID {
			if pt.Status != model.TxStatusCaptured {
				return nil, fmt.Errorf("%w: refund of %s transaction", model.ErrInvalidTransition, pt.Status)
			}
			return store.SetPaymentStatus(ctx, g.kvs, g.clk, txID, model.TxStatusRefunded)
		}
	}
	return nil, model.ErrNotFound
}
