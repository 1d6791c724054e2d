package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/metrics"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

// JobTypeOrderNotify is the queue job published for each fulfilled order.
const JobTypeOrderNotify = "order.notify"

// OrderNotifyPayload is the payload of an order.notify job.
type OrderNotifyPayload struct {
	OrderID     string   `json:"order_id"`
	BuyerID     string   `json:"buyer_id"`
	PassportIDs []string `json:"passport_ids"`
}

// ProcessPaidOrder fulfills a paid order: for every line it reserves the
// ordered quantity, issues exactly that many passports owned by the buyer,
// records the passport ids on the order, moves it to transferred, and
// publishes a buyer notification job. The whole routine runs in one
// transaction, so a failed line (unknown listing, insufficient stock) aborts
// every reservation and issuance. Fulfillment is all-or-nothing.
func (f *Flow) ProcessPaidOrder(ctx context.Context, orderID string) ([]string, error) {
	var issued []string

	err := f.kvs.WithTx(ctx, func(tx *kv.Tx) error {
		order, err := store.GetOrderTx(tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusPaid {
			return fmt.Errorf("%w: fulfillment of %s order", model.ErrInvalidTransition, order.Status)
		}

		for _, line := range order.Lines {
			listing, err := store.GetListingTx(tx, line.ListingID)
			if err != nil {
				return fmt.Errorf("line %s: %w", line.ListingID, err)
			}
			if _, err := store.ReserveListingTx(tx, f.clk, listing.ID, line.Quantity); err != nil {
				return fmt.Errorf("line %s: %w", line.ListingID, err)
			}

			issuer := 0
			if b, err := store.GetBreederTx(tx, listing.BreederID); err == nil && b != nil {
				issuer = b.IssuerNumber
			} else if err != nil {
				return err
			}

			passports, err := store.IssuePassportsTx(tx, f.clk, listing, issuer, order.BuyerID, line.Quantity)
			if err != nil {
				return fmt.Errorf("issuing passports for %s: %w", line.ListingID, err)
			}
			for _, p := range passports {
				issued = append(issued, p.ID)
			}
		}

		if _, err := store.UpdateOrderTx(tx, f.clk, order.ID, func(o *model.Order) error {
			o.PassportIDs = issued
			o.Status = model.OrderStatusTransferred
			return nil
		}); err != nil {
			return err
		}

		if err := store.AppendAuditTx(tx, f.clk, "", "order.fulfilled", order.ID,
			fmt.Sprintf("%d passports issued", len(issued))); err != nil {
			return err
		}

		_, err = store.EnqueueTx(tx, f.clk, JobTypeOrderNotify, OrderNotifyPayload{
			OrderID:     order.ID,
			BuyerID:     order.BuyerID,
			PassportIDs: issued,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.PassportsIssued.Add(float64(len(issued)))
	return issued, nil
}

// FulfillmentMail formats the buyer's fulfillment message for the
// order.notify queue handler.
func FulfillmentMail(p OrderNotifyPayload) (subject, body string) {
	subject = fmt.Sprintf("Order %s fulfilled", p.OrderID)
	body = fmt.Sprintf("Your order is complete. Issued passports:\n%s",
		strings.Join(p.PassportIDs, "\n"))
	return subject, body
}
