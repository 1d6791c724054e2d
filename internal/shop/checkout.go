// Package shop implements the order flow: checkout, payment, and the
// fulfillment orchestrator that reserves stock and issues passports.
package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/metrics"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/payments"
	"github.com/ohulko/matkarnia/internal/store"
)

// Flow wires the order pipeline together.
type Flow struct {
	kvs *kv.Store
	clk clock.Clock
	gw  *payments.Gateway
}

// NewFlow creates the order flow.
func NewFlow(kvs *kv.Store, clk clock.Clock, gw *payments.Gateway) *Flow {
	return &Flow{kvs: kvs, clk: clk, gw: gw}
}

// Checkout snapshots the buyer's cart into a draft order (prices frozen at
// draft time) and destroys the cart.
func (f *Flow) Checkout(ctx context.Context, buyerID string) (*model.Order, error) {
	cart, err := store.GetCart(ctx, f.kvs, buyerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", model.ErrValidation)
	}
	return store.CreateDraftOrder(ctx, f.kvs, f.clk, buyerID, cart.Lines)
}

// Place moves a draft order to placed.
func (f *Flow) Place(ctx context.Context, orderID string) (*model.Order, error) {
	o, err := store.PlaceOrder(ctx, f.kvs, f.clk, orderID)
	if err != nil {
		return nil, err
	}
	metrics.OrdersPlaced.Inc()
	return o, nil
}

// Pay runs the synchronous payment path for a placed order: create and
// capture a gateway transaction, then fulfill. A declined capture marks the
// payment failed and leaves the order placed for retry.
func (f *Flow) Pay(ctx context.Context, orderID, method string) (*model.Order, error) {
	order, err := store.GetOrder(ctx, f.kvs, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPlaced {
		return nil, fmt.Errorf("%w: pay on %s order", model.ErrInvalidTransition, order.Status)
	}

	pt, err := f.gw.Create(ctx, order.ID, order.SubtotalUAH)
	if err != nil {
		return nil, err
	}

	if _, err := f.gw.Capture(ctx, pt.ID); err != nil {
		metrics.PaymentsFailed.Inc()
		if _, markErr := store.MarkPaymentFailed(ctx, f.kvs, f.clk, order.ID); markErr != nil {
			return nil, markErr
		}
		return nil, err
	}
	metrics.PaymentsCaptured.Inc()

	if _, err := store.MarkOrderPaid(ctx, f.kvs, f.clk, order.ID, method); err != nil {
		return nil, err
	}

	if _, err := f.ProcessPaidOrder(ctx, order.ID); err != nil {
		return nil, err
	}
	return store.GetOrder(ctx, f.kvs, orderID)
}

// Refund reverses a captured transaction and cancels the order.
func (f *Flow) Refund(ctx context.Context, orderID string) error {
	pts, err := store.ListPayments(ctx, f.kvs, orderID)
	if err != nil {
		return err
	}
	for _, pt := range pts {
		if pt.Status == model.TxStatusCaptured {
			if _, err := f.gw.Refund(ctx, pt.ID); err != nil {
				return err
			}
			// Transferred orders keep their status: the refund only
			// reverses money, passports stay with the buyer until a
			// separate transfer.
			if _, err := store.CancelOrder(ctx, f.kvs, f.clk, orderID); err != nil && !errors.Is(err, model.ErrInvalidTransition) {
				return err
			}
			return nil
		}
	}
	return fmt.Errorf("%w: no captured payment for order", model.ErrNotFound)
}
