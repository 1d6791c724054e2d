package store

import (
	"context"
	"testing"
)

func TestEventSeenSet(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	seen, err := IsEventSeen(ctx, s, "evt-1")
	if err != nil {
		t.Fatalf("IsEventSeen: %v", err)
	}
	if seen {
		t.Error("expected fresh event unseen")
	}

	if err := MarkEventSeen(ctx, s, "evt-1"); err != nil {
		t.Fatalf("MarkEventSeen: %v", err)
	}

	seen, _ = IsEventSeen(ctx, s, "evt-1")
	if !seen {
		t.Error("expected event seen after marking")
	}

	// Marking twice is a no-op.
	if err := MarkEventSeen(ctx, s, "evt-1"); err != nil {
		t.Fatalf("MarkEventSeen repeat: %v", err)
	}
}
