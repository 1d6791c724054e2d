package shop

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

func TestFulfillmentIsAllOrNothing(t *testing.T) {
	s, clk, _, flow := flowFixture(t)
	ctx := context.Background()

	ok := seedListing(t, s, clk, 100, 5)
	scarce, err := store.CreateListing(ctx, s, clk, model.Listing{
		BreederID: ok.BreederID, LineID: "carpathian-77", CategoryCode: "KB",
		RegionCode: "21", Year: 2025, Title: "Last queens", UnitPriceUAH: 200, QuantityTotal: 1,
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	store.AddToCart(ctx, s, clk, "buyer-1", model.CartLine{ListingID: ok.ID, Quantity: 2, MaxQuantity: 5})
	store.AddToCart(ctx, s, clk, "buyer-1", model.CartLine{ListingID: scarce.ID, Quantity: 1, MaxQuantity: 1})

	order, _ := flow.Checkout(ctx, "buyer-1")
	flow.Place(ctx, order.ID)
	if _, err := store.MarkOrderPaid(ctx, s, clk, order.ID, "card"); err != nil {
		t.Fatalf("MarkOrderPaid: %v", err)
	}

	// Another buyer takes the last scarce unit before fulfillment runs.
	if _, err := store.ReserveListing(ctx, s, clk, scarce.ID, 1); err != nil {
		t.Fatalf("ReserveListing: %v", err)
	}

	_, err = flow.ProcessPaidOrder(ctx, order.ID)
	if !errors.Is(err, model.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// The first line's successful reservation was rolled back too.
	got, _ := store.GetListing(ctx, s, ok.ID)
	if got.QuantityAvailable != 5 {
		t.Errorf("expected first listing untouched at 5, got %d", got.QuantityAvailable)
	}

	// No passports, no status change, no notify job.
	passports, _ := store.ListPassports(ctx, s, "buyer-1", "")
	if len(passports) != 0 {
		t.Errorf("expected no passports issued, got %d", len(passports))
	}
	o, _ := store.GetOrder(ctx, s, order.ID)
	if o.Status != model.OrderStatusPaid {
		t.Errorf("expected order still paid, got %q", o.Status)
	}
	jobs, _ := store.ListJobs(ctx, s, "")
	if len(jobs) != 0 {
		t.Errorf("expected no jobs, got %+v", jobs)
	}
}

func TestProcessPaidOrderRequiresPaidStatus(t *testing.T) {
	s, clk, _, flow := flowFixture(t)
	ctx := context.Background()

	l := seedListing(t, s, clk, 100, 5)
	store.AddToCart(ctx, s, clk, "buyer-1", model.CartLine{ListingID: l.ID, Quantity: 1, MaxQuantity: 5})
	order, _ := flow.Checkout(ctx, "buyer-1")

	if _, err := flow.ProcessPaidOrder(ctx, order.ID); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for draft order, got %v", err)
	}
}

func TestFulfillmentUsesBreederIssuerNumber(t *testing.T) {
	s, clk, _, flow := flowFixture(t)
	ctx := context.Background()

	l := seedListing(t, s, clk, 100, 5)
	store.AddToCart(ctx, s, clk, "buyer-1", model.CartLine{ListingID: l.ID, Quantity: 1, MaxQuantity: 5})
	order, _ := flow.Checkout(ctx, "buyer-1")
	flow.Place(ctx, order.ID)

	paid, err := flow.Pay(ctx, order.ID, "card")
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}

	// seedListing registers the breeder with issuer number 17.
	if !strings.Contains(paid.PassportIDs[0], "-0017-") {
		t.Errorf("expected issuer number 17 in passport id, got %s", paid.PassportIDs[0])
	}
}

func TestFulfillmentWritesAuditEntry(t *testing.T) {
	s, clk, _, flow := flowFixture(t)
	ctx := context.Background()

	l := seedListing(t, s, clk, 100, 5)
	store.AddToCart(ctx, s, clk, "buyer-1", model.CartLine{ListingID: l.ID, Quantity: 1, MaxQuantity: 5})
	order, _ := flow.Checkout(ctx, "buyer-1")
	flow.Place(ctx, order.ID)
	if _, err := flow.Pay(ctx, order.ID, "card"); err != nil {
		t.Fatalf("Pay: %v", err)
	}

	entries, _ := store.ListAudit(ctx, s)
	found := false
	for _, e := range entries {
		if e.Action == "order.fulfilled" && e.Subject == order.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected order.fulfilled audit entry, got %+v", entries)
	}
}

func TestFulfillmentMailListsPassports(t *testing.T) {
	subject, body := FulfillmentMail(OrderNotifyPayload{
		OrderID:     "o-1",
		BuyerID:     "buyer-1",
		PassportIDs: []string{"UA-KB-21-0017-0001-2025", "UA-KB-21-0017-0002-2025"},
	})
	if !strings.Contains(subject, "o-1") {
		t.Errorf("expected order id in subject, got %q", subject)
	}
	if !strings.Contains(body, "UA-KB-21-0017-0002-2025") {
		t.Errorf("expected passport numbers in body, got %q", body)
	}
}
