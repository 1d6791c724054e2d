package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
)

// CreateDraftOrder snapshots the given cart lines into a draft order. Unit
// prices are re-read from the listings inside the same transaction and
// frozen: later listing price changes never move the subtotal. The cart is
// destroyed in the same transaction.
func CreateDraftOrder(ctx context.Context, s *kv.Store, clk clock.Clock, buyerID string, lines []model.CartLine) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", model.ErrValidation)
	}

	now := clk.Now()
	order := model.Order{
		ID:      uuid.NewString(),
		BuyerID: buyerID,
		Status:  model.OrderStatusDraft,
		Payment: model.Payment{Status: model.PaymentStatusPending},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		for _, cl := range lines {
			listing, err := GetListingTx(tx, cl.ListingID)
			if err != nil {
				return fmt.Errorf("resolving listing %s: %w", cl.ListingID, err)
			}
			qty := clampQty(cl.Quantity, listing.QuantityAvailable)
			order.Lines = append(order.Lines, model.OrderLine{
				ListingID:    listing.ID,
				Quantity:     qty,
				UnitPriceUAH: listing.UnitPriceUAH,
			})
			order.SubtotalUAH += int64(qty) * listing.UnitPriceUAH
		}

		var orders []model.Order
		if err := tx.Get(keyOrders, &orders); err != nil {
			return err
		}
		orders = append(orders, order)
		if err := tx.Put(keyOrders, orders); err != nil {
			return err
		}

		return ClearCartTx(tx, buyerID)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder returns an order by ID, or ErrOrderNotFound.
func GetOrder(ctx context.Context, s *kv.Store, id string) (*model.Order, error) {
	var out *model.Order
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		o, err := GetOrderTx(tx, id)
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrderTx resolves an order inside an existing transaction.
func GetOrderTx(tx *kv.Tx, id string) (*model.Order, error) {
	var orders []model.Order
	if err := tx.Get(keyOrders, &orders); err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			cp := orders[i]
			return &cp, nil
		}
	}
	return nil, model.ErrOrderNotFound
}

// ListOrders returns orders, optionally filtered by buyer and status.
func ListOrders(ctx context.Context, s *kv.Store, buyerID, status string) ([]model.Order, error) {
	var orders []model.Order
	if err := s.Get(ctx, keyOrders, &orders); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	var out []model.Order
	for _, o := range orders {
		if buyerID != "" && o.BuyerID != buyerID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// UpdateOrderTx applies fn to the order in place inside the transaction.
func UpdateOrderTx(tx *kv.Tx, clk clock.Clock, id string, fn func(o *model.Order) error) (*model.Order, error) {
	var orders []model.Order
	if err := tx.Get(keyOrders, &orders); err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		if err := fn(&orders[i]); err != nil {
			return nil, err
		}
		orders[i].UpdatedAt = clk.Now()
		if err := tx.Put(keyOrders, orders); err != nil {
			return nil, err
		}
		cp := orders[i]
		return &cp, nil
	}
	return nil, model.ErrOrderNotFound
}

func setOrderStatus(ctx context.Context, s *kv.Store, clk clock.Clock, id, to string) (*model.Order, error) {
	var out *model.Order
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		o, err := UpdateOrderTx(tx, clk, id, func(o *model.Order) error {
			if !model.CanTransition(o.Status, to) {
				return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, o.Status, to)
			}
			o.Status = to
			return nil
		})
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PlaceOrder moves a draft order to placed.
func PlaceOrder(ctx context.Context, s *kv.Store, clk clock.Clock, id string) (*model.Order, error) {
	return setOrderStatus(ctx, s, clk, id, model.OrderStatusPlaced)
}

// MarkOrderPaid moves a placed order to paid and records the successful
// payment method.
func MarkOrderPaid(ctx context.Context, s *kv.Store, clk clock.Clock, id, method string) (*model.Order, error) {
	var out *model.Order
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		o, err := MarkOrderPaidTx(tx, clk, id, method)
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkOrderPaidTx is MarkOrderPaid inside an existing transaction.
func MarkOrderPaidTx(tx *kv.Tx, clk clock.Clock, id, method string) (*model.Order, error) {
	return UpdateOrderTx(tx, clk, id, func(o *model.Order) error {
		if !model.CanTransition(o.Status, model.OrderStatusPaid) {
			return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, o.Status, model.OrderStatusPaid)
		}
		o.Status = model.OrderStatusPaid
		o.Payment.Status = model.PaymentStatusSucceeded
		o.Payment.Method = method
		return nil
	})
}

// MarkPaymentFailed records a failed payment attempt. The order stays placed
// and the payment may be retried.
func MarkPaymentFailed(ctx context.Context, s *kv.Store, clk clock.Clock, id string) (*model.Order, error) {
	var out *model.Order
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		o, err := UpdateOrderTx(tx, clk, id, func(o *model.Order) error {
			if o.Status != model.OrderStatusPlaced {
				return fmt.Errorf("%w: payment failure on %s order", model.ErrInvalidTransition, o.Status)
			}
			o.Payment.Status = model.PaymentStatusFailed
			return nil
		})
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelOrder moves any pre-transferred order to cancelled.
func CancelOrder(ctx context.Context, s *kv.Store, clk clock.Clock, id string) (*model.Order, error) {
	return setOrderStatus(ctx, s, clk, id, model.OrderStatusCancelled)
}
