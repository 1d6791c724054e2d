package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
)

// CreateBreeder validates and stores a new breeder profile. Slug format and
// uniqueness are checked before any mutation.
func CreateBreeder(ctx context.Context, s *kv.Store, clk clock.Clock, b model.Breeder) (*model.Breeder, error) {
	if !model.ValidSlug(b.Slug) {
		return nil, fmt.Errorf("%w: malformed slug %q", model.ErrValidation, b.Slug)
	}
	if b.Name == "" || b.RegionCode == "" || b.IssuerNumber <= 0 {
		return nil, fmt.Errorf("%w: name, region and issuer number required", model.ErrValidation)
	}

	b.ID = uuid.NewString()
	b.CreatedAt = clk.Now()
	b.UpdatedAt = b.CreatedAt

	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var breeders []model.Breeder
		if err := tx.Get(keyBreeders, &breeders); err != nil {
			return err
		}
		for _, existing := range breeders {
			if existing.Slug == b.Slug {
				return fmt.Errorf("%w: slug %q already taken", model.ErrValidation, b.Slug)
			}
		}
		breeders = append(breeders, b)
		return tx.Put(keyBreeders, breeders)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBreeder returns a breeder by ID.
func GetBreeder(ctx context.Context, s *kv.Store, id string) (*model.Breeder, error) {
	var breeders []model.Breeder
	if err := s.Get(ctx, keyBreeders, &breeders); err != nil {
		return nil, fmt.Errorf("getting breeder: %w", err)
	}
	for i := range breeders {
		if breeders[i].ID == id {
			return &breeders[i], nil
		}
	}
	return nil, nil
}

// GetBreederTx resolves a breeder inside an existing transaction. Returns
// (nil, nil) when no profile exists.
func GetBreederTx(tx *kv.Tx, id string) (*model.Breeder, error) {
	var breeders []model.Breeder
	if err := tx.Get(keyBreeders, &breeders); err != nil {
		return nil, err
	}
	for i := range breeders {
		if breeders[i].ID == id {
			cp := breeders[i]
			return &cp, nil
		}
	}
	return nil, nil
}

// GetBreederBySlug returns a breeder by profile slug.
func GetBreederBySlug(ctx context.Context, s *kv.Store, slug string) (*model.Breeder, error) {
	var breeders []model.Breeder
	if err := s.Get(ctx, keyBreeders, &breeders); err != nil {
		return nil, fmt.Errorf("getting breeder: %w", err)
	}
	for i := range breeders {
		if breeders[i].Slug == slug {
			return &breeders[i], nil
		}
	}
	return nil, nil
}

// ListBreeders returns all breeder profiles.
func ListBreeders(ctx context.Context, s *kv.Store) ([]model.Breeder, error) {
	var breeders []model.Breeder
	if err := s.Get(ctx, keyBreeders, &breeders); err != nil {
		return nil, fmt.Errorf("listing breeders: %w", err)
	}
	return breeders, nil
}

// UpdateBreeder updates profile fields (not the slug or issuer number).
func UpdateBreeder(ctx context.Context, s *kv.Store, clk clock.Clock, id, name, about string) (*model.Breeder, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name required", model.ErrValidation)
	}

	var out *model.Breeder
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var breeders []model.Breeder
		if err := tx.Get(keyBreeders, &breeders); err != nil {
			return err
		}
		for i := range breeders {
			if breeders[i].ID == id {
				breeders[i].Name = name
				breeders[i].About = about
				breeders[i].UpdatedAt = clk.Now()
				cp := breeders[i]
				out = &cp
				return tx.Put(keyBreeders, breeders)
			}
		}
		return model.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetBreederPhoto stores a processed profile photo.
func SetBreederPhoto(ctx context.Context, s *kv.Store, clk clock.Clock, id string, photo []byte, mime string) error {
	return s.WithTx(ctx, func(tx *kv.Tx) error {
		var breeders []model.Breeder
		if err := tx.Get(keyBreeders, &breeders); err != nil {
			return err
		}
		for i := range breeders {
			if breeders[i].ID == id {
				breeders[i].Photo = photo
				breeders[i].PhotoMIME = mime
				breeders[i].UpdatedAt = clk.Now()
				return tx.Put(keyBreeders, breeders)
			}
		}
		return model.ErrNotFound
	})
}
