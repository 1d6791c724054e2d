package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/db"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/payments"
	"github.com/ohulko/matkarnia/internal/shop"
	"github.com/ohulko/matkarnia/internal/store"
)

func TestSalesSummary(t *testing.T) {
	s := kv.New(db.NewTestDB(t))
	clk := clock.NewFixed(time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC))
	flow := shop.NewFlow(s, clk, payments.New(s, clk))
	ctx := context.Background()

	breeder, err := store.CreateBreeder(ctx, s, clk, model.Breeder{
		Slug: "matky-karpaty", Name: "Pasika Karpaty", RegionCode: "21", IssuerNumber: 3,
	})
	if err != nil {
		t.Fatalf("CreateBreeder: %v", err)
	}
	listing, err := store.CreateListing(ctx, s, clk, model.Listing{
		BreederID: breeder.ID, LineID: "carpathian-77", CategoryCode: "KB",
		RegionCode: "21", Year: 2025, Title: "Carpathian queens",
		UnitPriceUAH: 500, QuantityTotal: 10,
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	// One completed order for two units.
	store.AddToCart(ctx, s, clk, "buyer-1", model.CartLine{ListingID: listing.ID, Quantity: 2, MaxQuantity: 10})
	order, _ := flow.Checkout(ctx, "buyer-1")
	flow.Place(ctx, order.ID)
	if _, err := flow.Pay(ctx, order.ID, "card"); err != nil {
		t.Fatalf("Pay: %v", err)
	}

	// A drafted order that never completed does not count.
	store.AddToCart(ctx, s, clk, "buyer-2", model.CartLine{ListingID: listing.ID, Quantity: 3, MaxQuantity: 10})
	flow.Checkout(ctx, "buyer-2")

	summary, err := Sales(ctx, s)
	if err != nil {
		t.Fatalf("Sales: %v", err)
	}
	if summary.Orders != 1 {
		t.Errorf("expected 1 completed order, got %d", summary.Orders)
	}
	if summary.UnitsSold != 2 {
		t.Errorf("expected 2 units sold, got %d", summary.UnitsSold)
	}
	if summary.RevenueUAH != 1000 {
		t.Errorf("expected revenue 1000, got %d", summary.RevenueUAH)
	}
	if summary.PassportsIssued != 2 {
		t.Errorf("expected 2 passports, got %d", summary.PassportsIssued)
	}

	if len(summary.ByBreeder) != 1 {
		t.Fatalf("expected 1 breeder row, got %d", len(summary.ByBreeder))
	}
	bs := summary.ByBreeder[0]
	if bs.BreederID != breeder.ID || bs.Name != "Pasika Karpaty" {
		t.Errorf("unexpected breeder row: %+v", bs)
	}
	if bs.Orders != 1 || bs.UnitsSold != 2 || bs.RevenueUAH != 1000 || bs.PassportsIssued != 2 {
		t.Errorf("unexpected breeder totals: %+v", bs)
	}
}

func TestSalesEmptyStore(t *testing.T) {
	s := kv.New(db.NewTestDB(t))

	summary, err := Sales(context.Background(), s)
	if err != nil {
		t.Fatalf("Sales: %v", err)
	}
	if summary.Orders != 0 || summary.RevenueUAH != 0 || len(summary.ByBreeder) != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}
