package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
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

func handlerFixture(t *testing.T, secret string) (*kv.Store, clock.Clock, *Handler) {
	t.Helper()
	s := kv.New(db.NewTestDB(t))
	clk := clock.NewFixed(time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC))
	flow := shop.NewFlow(s, clk, payments.New(s, clk))
	return s, clk, &Handler{KVS: s, Clk: clk, Flow: flow, Secret: secret}
}

// placedOrder seeds a breeder, listing, and a placed order for one unit.
func placedOrder(t *testing.T, s *kv.Store, clk clock.Clock) (*model.Order, *model.Listing) {
	t.Helper()
	ctx := context.Background()

	breeder, err := store.CreateBreeder(ctx, s, clk, model.Breeder{
		Slug: "matky-karpaty", Name: "Pasika Karpaty", RegionCode: "21", IssuerNumber: 9,
	})
	if err != nil {
		t.Fatalf("CreateBreeder: %v", err)
	}
	listing, err := store.CreateListing(ctx, s, clk, model.Listing{
		BreederID: breeder.ID, LineID: "carpathian-77", CategoryCode: "KB",
		RegionCode: "21", Year: 2025, Title: "Carpathian queens",
		UnitPriceUAH: 100, QuantityTotal: 5,
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	order, err := store.CreateDraftOrder(ctx, s, clk, "buyer-1", []model.CartLine{
		{ListingID: listing.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("CreateDraftOrder: %v", err)
	}
	if _, err := store.PlaceOrder(ctx, s, clk, order.ID); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	return order, listing
}

func post(t *testing.T, h *Handler, body []byte, sig string) response {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhooks/payment", bytes.NewReader(body))
	if sig != "" {
		req.Header.Set(SignatureHeader, sig)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func eventBody(t *testing.T, id, typ, orderID string) []byte {
	t.Helper()
	var e Event
	e.ID = id
	e.Type = typ
	e.Data.OrderID = orderID
	body, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("encoding event: %v", err)
	}
	return body
}

func TestPaymentSucceededFulfillsOrder(t *testing.T) {
	s, clk, h := handlerFixture(t, "")
	ctx := context.Background()

	order, listing := placedOrder(t, s, clk)
	resp := post(t, h, eventBody(t, "evt-1", EventPaymentSucceeded, order.ID), "")
	if !resp.OK {
		t.Fatal("expected ok:true")
	}

	got, _ := store.GetOrder(ctx, s, order.ID)
	if got.Status != model.OrderStatusTransferred {
		t.Errorf("expected transferred order, got %q", got.Status)
	}
	if len(got.PassportIDs) != 1 {
		t.Errorf("expected 1 passport, got %d", len(got.PassportIDs))
	}

	l, _ := store.GetListing(ctx, s, listing.ID)
	if l.QuantityAvailable != 4 {
		t.Errorf("expected availability 4, got %d", l.QuantityAvailable)
	}
}

func TestReplayedEventMutatesOnce(t *testing.T) {
	s, clk, h := handlerFixture(t, "")
	ctx := context.Background()

	order, listing := placedOrder(t, s, clk)
	body := eventBody(t, "evt-1", EventPaymentSucceeded, order.ID)

	first := post(t, h, body, "")
	second := post(t, h, body, "")
	if !first.OK || !second.OK {
		t.Fatalf("expected ok:true on both deliveries, got %v then %v", first.OK, second.OK)
	}

	l, _ := store.GetListing(ctx, s, listing.ID)
	if l.QuantityAvailable != 4 {
		t.Errorf("expected exactly one reservation, availability %d", l.QuantityAvailable)
	}
	passports, _ := store.ListPassports(ctx, s, "buyer-1", "")
	if len(passports) != 1 {
		t.Errorf("expected exactly one passport, got %d", len(passports))
	}
}

func TestPaymentFailedKeepsOrderPlaced(t *testing.T) {
	s, clk, h := handlerFixture(t, "")
	ctx := context.Background()

	order, _ := placedOrder(t, s, clk)
	resp := post(t, h, eventBody(t, "evt-1", EventPaymentFailed, order.ID), "")
	if !resp.OK {
		t.Fatal("expected ok:true")
	}

	got, _ := store.GetOrder(ctx, s, order.ID)
	if got.Status != model.OrderStatusPlaced {
		t.Errorf("expected order to stay placed, got %q", got.Status)
	}
	if got.Payment.Status != model.PaymentStatusFailed {
		t.Errorf("expected failed payment, got %q", got.Payment.Status)
	}
}

func TestUnknownOrderAcknowledgedAsNoop(t *testing.T) {
	s, _, h := handlerFixture(t, "")

	resp := post(t, h, eventBody(t, "evt-404", EventPaymentSucceeded, "no-such-order"), "")
	if !resp.OK {
		t.Fatal("expected ok:true for unknown order")
	}

	// Acked: a replay is deduplicated.
	seen, err := store.IsEventSeen(context.Background(), s, "evt-404")
	if err != nil {
		t.Fatalf("IsEventSeen: %v", err)
	}
	if !seen {
		t.Error("expected unknown-order event to be marked seen")
	}
}

func TestUnknownEventTypeAcknowledged(t *testing.T) {
	_, _, h := handlerFixture(t, "")

	resp := post(t, h, eventBody(t, "evt-x", "charge.updated", ""), "")
	if !resp.OK {
		t.Error("expected ok:true for unknown event type")
	}
}

func TestSignatureMismatchRejected(t *testing.T) {
	s, clk, h := handlerFixture(t, "topsecret")
	ctx := context.Background()

	order, _ := placedOrder(t, s, clk)
	body := eventBody(t, "evt-1", EventPaymentSucceeded, order.ID)

	resp := post(t, h, body, "deadbeef")
	if resp.OK {
		t.Fatal("expected ok:false for bad signature")
	}

	got, _ := store.GetOrder(ctx, s, order.ID)
	if got.Status != model.OrderStatusPlaced {
		t.Errorf("expected no mutation, got status %q", got.Status)
	}

	// With the correct signature the same event goes through.
	resp = post(t, h, body, Sign("topsecret", body))
	if !resp.OK {
		t.Fatal("expected ok:true with valid signature")
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	_, _, h := handlerFixture(t, "")

	resp := post(t, h, []byte("{not json"), "")
	if resp.OK {
		t.Error("expected ok:false for malformed body")
	}

	resp = post(t, h, []byte(`{"type":"payment_intent.succeeded"}`), "")
	if resp.OK {
		t.Error("expected ok:false for missing event id")
	}
}

func TestRetryAfterFulfillmentFailureCompletes(t *testing.T) {
	s, clk, h := handlerFixture(t, "")
	ctx := context.Background()

	order, listing := placedOrder(t, s, clk)

	// Exhaust the stock so fulfillment fails after the payment is recorded.
	if _, err := store.ReserveListing(ctx, s, clk, listing.ID, 5); err != nil {
		t.Fatalf("ReserveListing: %v", err)
	}

	body := eventBody(t, "evt-1", EventPaymentSucceeded, order.ID)
	resp := post(t, h, body, "")
	if resp.OK {
		t.Fatal("expected ok:false while out of stock")
	}

	got, _ := store.GetOrder(ctx, s, order.ID)
	if got.Status != model.OrderStatusPaid {
		t.Fatalf("expected order to stay paid, got %q", got.Status)
	}
	seen, _ := store.IsEventSeen(ctx, s, "evt-1")
	if seen {
		t.Fatal("expected failed event to stay unseen")
	}

	// Stock comes back; the gateway's retry must finish fulfillment even
	// though the order is already paid.
	if _, err := store.ReleaseListing(ctx, s, clk, listing.ID, 5); err != nil {
		t.Fatalf("ReleaseListing: %v", err)
	}
	resp = post(t, h, body, "")
	if !resp.OK {
		t.Fatal("expected ok:true on retry")
	}

	got, _ = store.GetOrder(ctx, s, order.ID)
	if got.Status != model.OrderStatusTransferred {
		t.Errorf("expected transferred order after retry, got %q", got.Status)
	}
	if len(got.PassportIDs) != 1 {
		t.Errorf("expected 1 passport, got %d", len(got.PassportIDs))
	}
}

func TestFailedDispatchIsRetryable(t *testing.T) {
	s, clk, h := handlerFixture(t, "")
	ctx := context.Background()

	// A draft order cannot be marked paid, so dispatch fails.
	breeder, _ := store.CreateBreeder(ctx, s, clk, model.Breeder{
		Slug: "matky-karpaty", Name: "Pasika Karpaty", RegionCode: "21", IssuerNumber: 9,
	})
	listing, _ := store.CreateListing(ctx, s, clk, model.Listing{
		BreederID: breeder.ID, Title: "Queens", CategoryCode: "KB", RegionCode: "21",
		Year: 2025, UnitPriceUAH: 100, QuantityTotal: 5,
	})
	order, _ := store.CreateDraftOrder(ctx, s, clk, "buyer-1", []model.CartLine{
		{ListingID: listing.ID, Quantity: 1},
	})

	body := eventBody(t, "evt-1", EventPaymentSucceeded, order.ID)
	resp := post(t, h, body, "")
	if resp.OK {
		t.Fatal("expected ok:false for failed dispatch")
	}

	// The event was not acked, so the gateway's retry can succeed later.
	seen, _ := store.IsEventSeen(ctx, s, "evt-1")
	if seen {
		t.Error("expected failed event to stay unseen")
	}

	store.PlaceOrder(ctx, s, clk, order.ID)
	resp = post(t, h, body, "")
	if !resp.OK {
		t.Error("expected retry to succeed after order placed")
	}
}
