package model

import "time"

// Listing is a breeder's salable batch of queens: one queen line, one season,
// a fixed price and a pool of available units.
type Listing struct {
	ID                string    `json:"id"`
	BreederID         string    `json:"breeder_id"`
	LineID            string    `json:"line_id"`
	CategoryCode      string    `json:"category_code"`
	RegionCode        string    `json:"region_code"`
	Year              int       `json:"year"`
	Title             string    `json:"title"`
	UnitPriceUAH      int64     `json:"unit_price_uah"`
	QuantityTotal     int       `json:"quantity_total"`
	QuantityAvailable int       `json:"quantity_available"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Listing statuses. A listing is sold_out exactly when no units remain.
const (
	ListingStatusActive  = "active"
	ListingStatusPaused  = "paused"
	ListingStatusSoldOut = "sold_out"
)
