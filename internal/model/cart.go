package model

import "time"

// CartLine is one listing in a buyer's basket. Quantity is always clamped to
// [1, MaxQuantity]; UnitPriceUAH is a display snapshot, the authoritative
// price is re-read from the listing when the order is drafted.
type CartLine struct {
	ListingID    string `json:"listing_id"`
	SellerID     string `json:"seller_id"`
	Quantity     int    `json:"quantity"`
	UnitPriceUAH int64  `json:"unit_price_uah"`
	MaxQuantity  int    `json:"max_quantity"`
}

// Cart is a buyer's basket, keyed by listing id (one line per listing).
// It is destroyed on checkout success or explicit clear.
type Cart struct {
	BuyerID   string     `json:"buyer_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TotalUAH sums quantity times unit price over current lines.
func (c *Cart) TotalUAH() int64 {
	var total int64
	for _, l := range c.Lines {
		total += int64(l.Quantity) * l.UnitPriceUAH
	}
	return total
}

// ItemCount sums line quantities (for cart badges).
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
