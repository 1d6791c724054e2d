package store

import (
	"context"
	"testing"

	"github.com/ohulko/matkarnia/internal/model"
)

func TestAddToCartMergesByListing(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	line := model.CartLine{ListingID: "l-1", SellerID: "br-1", Quantity: 2, UnitPriceUAH: 850, MaxQuantity: 10}
	if _, err := AddToCart(ctx, s, clk, "buyer-1", line); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	cart, err := AddToCart(ctx, s, clk, "buyer-1", line)
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected merged single line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", cart.Lines[0].Quantity)
	}
	if cart.TotalUAH() != 3400 {
		t.Errorf("expected total 3400, got %d", cart.TotalUAH())
	}
}

func TestAddToCartClampsToMax(t *testing.T) {
	s, clk := testStore(t)

	cart, err := AddToCart(context.Background(), s, clk, "buyer-1", model.CartLine{
		ListingID: "l-1", Quantity: 99, UnitPriceUAH: 100, MaxQuantity: 3,
	})
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if cart.Lines[0].Quantity != 3 {
		t.Errorf("expected quantity clamped to 3, got %d", cart.Lines[0].Quantity)
	}
}

func TestSetCartQtyZeroRemovesLine(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	AddToCart(ctx, s, clk, "buyer-1", model.CartLine{ListingID: "l-1", Quantity: 2, UnitPriceUAH: 100, MaxQuantity: 5})
	AddToCart(ctx, s, clk, "buyer-1", model.CartLine{ListingID: "l-2", Quantity: 1, UnitPriceUAH: 200, MaxQuantity: 5})

	cart, err := SetCartQty(ctx, s, clk, "buyer-1", "l-1", 0)
	if err != nil {
		t.Fatalf("SetCartQty: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].ListingID != "l-2" {
		t.Errorf("expected only l-2 to remain, got %+v", cart.Lines)
	}
}

func TestSetCartQtyUnknownLine(t *testing.T) {
	s, clk := testStore(t)

	_, err := SetCartQty(context.Background(), s, clk, "buyer-1", "nope", 1)
	if err == nil {
		t.Error("expected error for unknown line")
	}
}

func TestEmptyCartEntryIsRemoved(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	AddToCart(ctx, s, clk, "buyer-1", model.CartLine{ListingID: "l-1", Quantity: 1, UnitPriceUAH: 100, MaxQuantity: 5})
	if err := ClearCart(ctx, s, clk, "buyer-1"); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}

	var carts []model.Cart
	if err := s.Get(ctx, keyCarts, &carts); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(carts) != 0 {
		t.Errorf("expected cart entry removed, got %+v", carts)
	}

	cart, err := GetCart(ctx, s, "buyer-1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Errorf("expected empty cart, got %+v", cart.Lines)
	}
}

func TestCartHookFiresAfterMutation(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	var gotBuyer string
	var gotCount int
	RegisterCartHook(func(buyerID string, itemCount int) {
		gotBuyer = buyerID
		gotCount = itemCount
	})
	t.Cleanup(func() { cartHooks = nil })

	AddToCart(ctx, s, clk, "buyer-1", model.CartLine{ListingID: "l-1", Quantity: 3, UnitPriceUAH: 100, MaxQuantity: 5})

	if gotBuyer != "buyer-1" || gotCount != 3 {
		t.Errorf("expected hook (buyer-1, 3), got (%s, %d)", gotBuyer, gotCount)
	}
}
