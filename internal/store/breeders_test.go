package store

import (
	"context"
	"errors"
	"testing"

	"github.com/ohulko/matkarnia/internal/model"
)

func testBreeder(t *testing.T) model.Breeder {
	t.Helper()
	return model.Breeder{
		Slug:         "matky-karpaty",
		Name:         "Pasika Karpaty",
		RegionCode:   "21",
		IssuerNumber: 17,
		About:        "Carpathian queen breeding since 2008.",
	}
}

func TestCreateAndGetBreeder(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	b, err := CreateBreeder(ctx, s, clk, testBreeder(t))
	if err != nil {
		t.Fatalf("CreateBreeder: %v", err)
	}

	got, err := GetBreeder(ctx, s, b.ID)
	if err != nil {
		t.Fatalf("GetBreeder: %v", err)
	}
	if got == nil || got.Name != "Pasika Karpaty" {
		t.Errorf("unexpected breeder: %+v", got)
	}

	bySlug, err := GetBreederBySlug(ctx, s, "matky-karpaty")
	if err != nil {
		t.Fatalf("GetBreederBySlug: %v", err)
	}
	if bySlug == nil || bySlug.ID != b.ID {
		t.Errorf("unexpected breeder by slug: %+v", bySlug)
	}
}

func TestCreateBreederSlugValidation(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	for _, slug := range []string{"", "ab", "Bad Slug", "-starts-with-dash", "ends-with-dash-"} {
		b := testBreeder(t)
		b.Slug = slug
		if _, err := CreateBreeder(ctx, s, clk, b); !errors.Is(err, model.ErrValidation) {
			t.Errorf("slug %q: expected validation error, got %v", slug, err)
		}
	}
}

func TestCreateBreederSlugUniqueness(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	if _, err := CreateBreeder(ctx, s, clk, testBreeder(t)); err != nil {
		t.Fatalf("CreateBreeder: %v", err)
	}
	if _, err := CreateBreeder(ctx, s, clk, testBreeder(t)); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected duplicate slug rejected, got %v", err)
	}
}

func TestCreateBreederRequiresIssuerNumber(t *testing.T) {
	s, clk := testStore(t)

	b := testBreeder(t)
	b.IssuerNumber = 0
	if _, err := CreateBreeder(context.Background(), s, clk, b); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdateBreeder(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	b, _ := CreateBreeder(ctx, s, clk, testBreeder(t))

	got, err := UpdateBreeder(ctx, s, clk, b.ID, "Pasika Karpaty", "Updated")
	if err != nil {
		t.Fatalf("UpdateBreeder: %v", err)
	}
	if got.About != "Updated" {
		t.Errorf("expected updated about, got %q", got.About)
	}
}

func TestSetBreederPhoto(t *testing.T) {
	s, clk := testStore(t)
	ctx := context.Background()

	b, _ := CreateBreeder(ctx, s, clk, testBreeder(t))

	if err := SetBreederPhoto(ctx, s, clk, b.ID, []byte{0xff, 0xd8}, "image/jpeg"); err != nil {
		t.Fatalf("SetBreederPhoto: %v", err)
	}

	got, _ := GetBreeder(ctx, s, b.ID)
	if len(got.Photo) != 2 || got.PhotoMIME != "image/jpeg" {
		t.Errorf("unexpected photo: %d bytes, mime %q", len(got.Photo), got.PhotoMIME)
	}
}
