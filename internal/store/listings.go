package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
)

// CreateListing validates and stores a new listing.
func CreateListing(ctx context.Context, s *kv.Store, clk clock.Clock, l model.Listing) (*model.Listing, error) {
	if l.BreederID == "" || l.Title == "" {
		return nil, fmt.Errorf("%w: breeder and title required", model.ErrValidation)
	}
	if l.QuantityTotal <= 0 || l.UnitPriceUAH <= 0 {
		return nil, fmt.Errorf("%w: quantity and price must be positive", model.ErrValidation)
	}

	l.ID = uuid.NewString()
	l.QuantityAvailable = l.QuantityTotal
	if l.Status == "" {
		l.Status = model.ListingStatusActive
	}
	l.CreatedAt = clk.Now()
	l.UpdatedAt = l.CreatedAt

	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var listings []model.Listing
		if err := tx.Get(keyListings, &listings); err != nil {
			return err
		}
		listings = append(listings, l)
		return tx.Put(keyListings, listings)
	})
	if err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}
	return &l, nil
}

// GetListing returns a listing by ID.
func GetListing(ctx context.Context, s *kv.Store, id string) (*model.Listing, error) {
	var listings []model.Listing
	if err := s.Get(ctx, keyListings, &listings); err != nil {
		return nil, fmt.Errorf("getting listing: %w", err)
	}
	for i := range listings {
		if listings[i].ID == id {
			return &listings[i], nil
		}
	}
	return nil, nil
}

// ListListings returns listings, optionally filtered by breeder and status.
func ListListings(ctx context.Context, s *kv.Store, breederID, status string) ([]model.Listing, error) {
	var listings []model.Listing
	if err := s.Get(ctx, keyListings, &listings); err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}

	var out []model.Listing
	for _, l := range listings {
		if breederID != "" && l.BreederID != breederID {
			continue
		}
		if status != "" && l.Status != status {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// UpdateListing applies a seller edit to price, title, quantity or status,
// keeping 0 ≤ available ≤ total.
func UpdateListing(ctx context.Context, s *kv.Store, clk clock.Clock, id string, title string, unitPriceUAH int64, quantityTotal int, status string) (*model.Listing, error) {
	if unitPriceUAH <= 0 || quantityTotal <= 0 {
		return nil, fmt.Errorf("%w: quantity and price must be positive", model.ErrValidation)
	}
	if status != model.ListingStatusActive && status != model.ListingStatusPaused && status != model.ListingStatusSoldOut {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, status)
	}

	var updated *model.Listing
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var listings []model.Listing
		if err := tx.Get(keyListings, &listings); err != nil {
			return err
		}
		for i := range listings {
			if listings[i].ID != id {
				continue
			}
			l := &listings[i]
			sold := l.QuantityTotal - l.QuantityAvailable
			if quantityTotal < sold {
				return fmt.Errorf("%w: total %d below %d already sold", model.ErrValidation, quantityTotal, sold)
			}
			l.Title = title
			l.UnitPriceUAH = unitPriceUAH
			l.QuantityTotal = quantityTotal
			l.QuantityAvailable = quantityTotal - sold
			l.Status = status
			if l.QuantityAvailable == 0 {
				l.Status = model.ListingStatusSoldOut
			}
			l.UpdatedAt = clk.Now()
			updated = l
			return tx.Put(keyListings, listings)
		}
		return model.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReserveListing decrements availability by qty in a single
// read-modify-write, flipping the listing to sold_out when it reaches zero.
// Fails with ErrInsufficientStock if qty exceeds availability and
// ErrNotFound for an unknown id; the listing is left unmodified on failure.
func ReserveListing(ctx context.Context, s *kv.Store, clk clock.Clock, id string, qty int) (*model.Listing, error) {
	var out *model.Listing
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		l, err := ReserveListingTx(tx, clk, id, qty)
		if err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReserveListingTx is ReserveListing inside an existing transaction, so a
// multi-line fulfillment can reserve all lines atomically.
func ReserveListingTx(tx *kv.Tx, clk clock.Clock, id string, qty int) (*model.Listing, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", model.ErrValidation)
	}

	var listings []model.Listing
	if err := tx.Get(keyListings, &listings); err != nil {
		return nil, err
	}
	for i := range listings {
		if listings[i].ID != id {
			continue
		}
		l := &listings[i]
		if qty > l.QuantityAvailable {
			return nil, fmt.Errorf("%w: have %d, need %d", model.ErrInsufficientStock, l.QuantityAvailable, qty)
		}
		l.QuantityAvailable -= qty
		if l.QuantityAvailable == 0 {
			l.Status = model.ListingStatusSoldOut
		}
		l.UpdatedAt = clk.Now()
		if err := tx.Put(keyListings, listings); err != nil {
			return nil, err
		}
		out := *l
		return &out, nil
	}
	return nil, model.ErrNotFound
}

// ReleaseListing increments availability by qty, capped at the total, and
// restores active status. Fails with ErrNotFound for an unknown id.
func ReleaseListing(ctx context.Context, s *kv.Store, clk clock.Clock, id string, qty int) (*model.Listing, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", model.ErrValidation)
	}

	var out *model.Listing
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var listings []model.Listing
		if err := tx.Get(keyListings, &listings); err != nil {
			return err
		}
		for i := range listings {
			if listings[i].ID != id {
				continue
			}
			l := &listings[i]
			l.QuantityAvailable += qty
			if l.QuantityAvailable > l.QuantityTotal {
				l.QuantityAvailable = l.QuantityTotal
			}
			if l.Status == model.ListingStatusSoldOut {
				l.Status = model.ListingStatusActive
			}
			l.UpdatedAt = clk.Now()
			cp := *l
			out = &cp
			return tx.Put(keyListings, listings)
		}
		return model.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetListingTx resolves a listing inside an existing transaction.
func GetListingTx(tx *kv.Tx, id string) (*model.Listing, error) {
	var listings []model.Listing
	if err := tx.Get(keyListings, &listings); err != nil {
		return nil, err
	}
	for i := range listings {
		if listings[i].ID == id {
			cp := listings[i]
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}
