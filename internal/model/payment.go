package model

import "time"

// PaymentTransaction is one gateway attempt against an order. The per-order
// log is append-only.
type PaymentTransaction struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	AmountUAH int64     `json:"amount_uah"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment transaction statuses.
const (
	TxStatusCreated  = "created"
	TxStatusCaptured = "captured"
	TxStatusRefunded = "refunded"
	TxStatusFailed   = "failed"
)
