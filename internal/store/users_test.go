package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ohulko/matkarnia/internal/model"
)

func TestCreateUserUniqueUsername(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, s, clk, "olena", "olena@example.com", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Role != model.RoleUser {
		t.Errorf("expected user role, got %q", u.Role)
	}

	if _, err := CreateUser(ctx, s, clk, "olena", "other@example.com", "hash", model.RoleUser); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected duplicate username rejected, got %v", err)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	s, clk := testStore(t)

	_, err := CreateUser(context.Background(), s, clk, "olena", "", "hash", "superuser")
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	created, _ := CreateUser(ctx, s, clk, "olena", "olena@example.com", "hash", model.RoleUser)

	got, err := GetUserByUsername(ctx, s, "olena")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Errorf("unexpected user: %+v", got)
	}

	missing, _ := GetUserByUsername(ctx, s, "nobody")
	if missing != nil {
		t.Errorf("expected nil for missing user, got %+v", missing)
	}
}

func TestUpdateUserLinksBreeder(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	created, _ := CreateUser(ctx, s, clk, "olena", "", "hash", model.RoleUser)

	got, err := UpdateUser(ctx, s, created.ID, func(u *model.User) error {
		u.BreederID = "br-1"
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if got.BreederID != "br-1" {
		t.Errorf("expected breeder link, got %q", got.BreederID)
	}
}

func TestUserPublicStripsPasswordHash(t *testing.T) {
	u := model.User{Username: "olena", PasswordHash: "hash"}
	if u.Public().PasswordHash != "" {
		t.Error("expected password hash stripped")
	}
}

func TestJWTSecretIsStable(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, s)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if first == "" {
		t.Fatal("expected generated secret")
	}

	second, _ := GetJWTSecret(ctx, s)
	if second != first {
		t.Error("expected secret to persist across calls")
	}
}

func TestTokenRevocation(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	exp := time.Now().Add(time.Hour)
	if err := RevokeToken(ctx, s, "jti-1", exp); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	revoked, err := IsTokenRevoked(ctx, s, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected jti-1 revoked")
	}

	other, _ := IsTokenRevoked(ctx, s, "jti-2")
	if other {
		t.Error("expected jti-2 not revoked")
	}
}

func TestRevokeTokenPrunesExpired(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	RevokeToken(ctx, s, "old", time.Now().Add(-time.Hour))
	RevokeToken(ctx, s, "new", time.Now().Add(time.Hour))

	stale, _ := IsTokenRevoked(ctx, s, "old")
	if stale {
		t.Error("expected expired revocation pruned")
	}
	fresh, _ := IsTokenRevoked(ctx, s, "new")
	if !fresh {
		t.Error("expected fresh revocation kept")
	}
}
