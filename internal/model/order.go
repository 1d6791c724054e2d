package model

import "time"

// OrderLine is one listing within an order. The unit price is frozen at
// draft time and never recomputed.
type OrderLine struct {
	ListingID    string `json:"listing_id"`
	Quantity     int    `json:"quantity"`
	UnitPriceUAH int64  `json:"unit_price_uah"`
}

// Payment is the payment sub-record of an order.
type Payment struct {
	Status string `json:"status"`
	Method string `json:"method,omitempty"`
}

// Order is a buyer's purchase, created as a draft snapshot of the cart.
type Order struct {
	ID          string      `json:"id"`
	BuyerID     string      `json:"buyer_id"`
	Lines       []OrderLine `json:"lines"`
	SubtotalUAH int64       `json:"subtotal_uah"`
	Status      string      `json:"status"`
	Payment     Payment     `json:"payment"`
	PassportIDs []string    `json:"passport_ids,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Order statuses. Transitions run strictly forward
// (draft → placed → paid → transferred); cancelled is absorbing and
// reachable from any state before transferred.
const (
	OrderStatusDraft       = "draft"
	OrderStatusPlaced      = "placed"
	OrderStatusPaid        = "paid"
	OrderStatusTransferred = "transferred"
	OrderStatusCancelled   = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	switch to {
	case OrderStatusPlaced:
		return from == OrderStatusDraft
	case OrderStatusPaid:
		return from == OrderStatusPlaced
	case OrderStatusTransferred:
		return from == OrderStatusPaid
	case OrderStatusCancelled:
		return from == OrderStatusDraft || from == OrderStatusPlaced || from == OrderStatusPaid
	default:
		return false
	}
}
