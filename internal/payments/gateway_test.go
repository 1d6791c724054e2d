package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/db"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

func gatewayFixture(t *testing.T) (*kv.Store, *Gateway) {
	t.Helper()
	s := kv.New(db.NewTestDB(t))
	clk := clock.NewFixed(time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC))
	return s, New(s, clk)
}

func TestCreateAndCapture(t *testing.T) {
	s, g := gatewayFixture(t)
	ctx := context.Background()

	pt, err := g.Create(ctx, "order-1", 1700)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if pt.Status != model.TxStatusCreated {
		t.Errorf("expected created status, got %q", pt.Status)
	}

	captured, err := g.Capture(ctx, pt.ID)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if captured.Status != model.TxStatusCaptured {
		t.Errorf("expected captured status, got %q", captured.Status)
	}

	log, _ := store.ListPayments(ctx, s, "order-1")
	if len(log) != 1 {
		t.Errorf("expected 1 transaction for order, got %d", len(log))
	}
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	_, g := gatewayFixture(t)

	if _, err := g.Create(context.Background(), "order-1", 0); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestFailNextCaptureDeclinesOnce(t *testing.T) {
	s, g := gatewayFixture(t)
	ctx := context.Background()

	pt, _ := g.Create(ctx, "order-1", 1700)
	g.FailNextCapture(true)

	if _, err := g.Capture(ctx, pt.ID); !errors.Is(err, ErrCaptureDeclined) {
		t.Fatalf("expected ErrCaptureDeclined, got %v", err)
	}

	log, _ := store.ListPayments(ctx, s, "order-1")
	if log[0].Status != model.TxStatusFailed {
		t.Errorf("expected failed transaction, got %q", log[0].Status)
	}

	// The switch is one-shot; a fresh transaction captures fine.
	pt2, _ := g.Create(ctx, "order-1", 1700)
	if _, err := g.Capture(ctx, pt2.ID); err != nil {
		t.Errorf("expected second capture to succeed, got %v", err)
	}
}

func TestRefundRequiresCapturedTransaction(t *testing.T) {
	_, g := gatewayFixture(t)
	ctx := context.Background()

	pt, _ := g.Create(ctx, "order-1", 1700)

	if _, err := g.Refund(ctx, pt.ID); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for refund of created tx, got %v", err)
	}

	g.Capture(ctx, pt.ID)
	refunded, err := g.Refund(ctx, pt.ID)
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if refunded.Status != model.TxStatusRefunded {
		t.Errorf("expected refunded status, got %q", refunded.Status)
	}
}

func TestRefundUnknownTransaction(t *testing.T) {
	_, g := gatewayFixture(t)

	if _, err := g.Refund(context.Background(), "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
