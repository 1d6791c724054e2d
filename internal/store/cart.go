package store

import (
	"context"
	"fmt"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
)

// CartHook is invoked after every committed cart mutation, so other surfaces
// (a cart badge, a metric) can refresh. Pure notify-on-write, no queue.
type CartHook func(buyerID string, itemCount int)

var cartHooks []CartHook

// RegisterCartHook adds a notify-on-write hook. Not safe for concurrent
// registration; call during startup.
func RegisterCartHook(h CartHook) {
	cartHooks = append(cartHooks, h)
}

func notifyCart(c *model.Cart) {
	for _, h := range cartHooks {
		h(c.BuyerID, c.ItemCount())
	}
}

// GetCart returns the buyer's cart (empty if none exists yet).
func GetCart(ctx context.Context, s *kv.Store, buyerID string) (*model.Cart, error) {
	var carts []model.Cart
	if err := s.Get(ctx, keyCarts, &carts); err != nil {
		return nil, fmt.Errorf("getting cart: %w", err)
	}
	for i := range carts {
		if carts[i].BuyerID == buyerID {
			return &carts[i], nil
		}
	}
	return &model.Cart{BuyerID: buyerID}, nil
}

// clampQty clamps q into [1, max]; max <= 0 means no upper bound.
func clampQty(q, max int) int {
	if q < 1 {
		q = 1
	}
	if max > 0 && q > max {
		q = max
	}
	return q
}

// mutateCart runs fn against the buyer's cart inside one transaction and
// fires the notify hooks after commit. fn returning a cart with no lines
// removes the cart entry entirely.
func mutateCart(ctx context.Context, s *kv.Store, clk clock.Clock, buyerID string, fn func(c *model.Cart) error) (*model.Cart, error) {
	var result *model.Cart
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var carts []model.Cart
		if err := tx.Get(keyCarts, &carts); err != nil {
			return err
		}

		idx := -1
		for i := range carts {
			if carts[i].BuyerID == buyerID {
				idx = i
				break
			}
		}

		cart := model.Cart{BuyerID: buyerID}
		if idx >= 0 {
			cart = carts[idx]
		}

		if err := fn(&cart); err != nil {
			return err
		}
		cart.UpdatedAt = clk.Now()

		switch {
		case len(cart.Lines) == 0 && idx >= 0:
			carts = append(carts[:idx], carts[idx+1:]...)
		case idx >= 0:
			carts[idx] = cart
		case len(cart.Lines) > 0:
			carts = append(carts, cart)
		}

		result = &cart
		return tx.Put(keyCarts, carts)
	})
	if err != nil {
		return nil, err
	}
	notifyCart(result)
	return result, nil
}

// AddToCart merges a line into the buyer's cart by listing id, clamping the
// resulting quantity to [1, max].
func AddToCart(ctx context.Context, s *kv.Store, clk clock.Clock, buyerID string, line model.CartLine) (*model.Cart, error) {
	if line.ListingID == "" {
		return nil, fmt.Errorf("%w: listing id required", model.ErrValidation)
	}
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	return mutateCart(ctx, s, clk, buyerID, func(c *model.Cart) error {
		for i := range c.Lines {
			if c.Lines[i].ListingID == line.ListingID {
				c.Lines[i].Quantity = clampQty(c.Lines[i].Quantity+line.Quantity, c.Lines[i].MaxQuantity)
				return nil
			}
		}
		line.Quantity = clampQty(line.Quantity, line.MaxQuantity)
		c.Lines = append(c.Lines, line)
		return nil
	})
}

// SetCartQty sets a line's quantity. qty <= 0 removes the line; otherwise
// the quantity is clamped to the line's maximum.
func SetCartQty(ctx context.Context, s *kv.Store, clk clock.Clock, buyerID, listingID string, qty int) (*model.Cart, error) {
	return mutateCart(ctx, s, clk, buyerID, func(c *model.Cart) error {
		for i := range c.Lines {
			if c.Lines[i].ListingID != listingID {
				continue
			}
			if qty <= 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			} else {
				c.Lines[i].Quantity = clampQty(qty, c.Lines[i].MaxQuantity)
			}
			return nil
		}
		return model.ErrNotFound
	})
}

// RemoveFromCart removes a line unconditionally.
func RemoveFromCart(ctx context.Context, s *kv.Store, clk clock.Clock, buyerID, listingID string) (*model.Cart, error) {
	return mutateCart(ctx, s, clk, buyerID, func(c *model.Cart) error {
		for i := range c.Lines {
			if c.Lines[i].ListingID == listingID {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
				return nil
			}
		}
		return nil
	})
}

// ClearCart empties the buyer's cart unconditionally.
func ClearCart(ctx context.Context, s *kv.Store, clk clock.Clock, buyerID string) error {
	_, err := mutateCart(ctx, s, clk, buyerID, func(c *model.Cart) error {
		c.Lines = nil
		return nil
	})
	return err
}

// ClearCartTx empties the buyer's cart inside an existing transaction
// (checkout success destroys the cart atomically with the draft order).
func ClearCartTx(tx *kv.Tx, buyerID string) error {
	var carts []model.Cart
	if err := tx.Get(keyCarts, &carts); err != nil {
		return err
	}
	for i := range carts {
		if carts[i].BuyerID == buyerID {
			carts = append(carts[:i], carts[i+1:]...)
			return tx.Put(keyCarts, carts)
		}
	}
	return nil
}
