package store

import (
	"context"
	"fmt"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
)

// IssuePassportsTx issues count new passports for a listing's
// (category, region, issuer, year) tuple, owned by ownerID. Sequence numbers
// continue from the highest observed sequence for the tuple plus one, so
// they are strictly increasing and never reused even after deletion.
func IssuePassportsTx(tx *kv.Tx, clk clock.Clock, listing *model.Listing, issuerNumber int, ownerID string, count int) ([]model.Passport, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", model.ErrValidation)
	}

	var passports []model.Passport
	if err := tx.Get(keyPassports, &passports); err != nil {
		return nil, err
	}

	// Scan for the highest sequence already issued for this tuple.
	maxSeq := 0
	for _, p := range passports {
		if p.CategoryCode == listing.CategoryCode &&
			p.RegionCode == listing.RegionCode &&
			p.IssuerNumber == issuerNumber &&
			p.Year == listing.Year &&
			p.Sequence > maxSeq {
			maxSeq = p.Sequence
		}
	}

	now := clk.Now()
	issued := make([]model.Passport, 0, count)
	for i := 1; i <= count; i++ {
		p := model.Passport{
			LineID:       listing.LineID,
			CategoryCode: listing.CategoryCode,
			RegionCode:   listing.RegionCode,
			IssuerNumber: issuerNumber,
			Sequence:     maxSeq + i,
			Year:         listing.Year,
			OwnerID:      ownerID,
			BreederID:    listing.BreederID,
			Status:       model.PassportStatusIssued,
			IssuedAt:     now,
		}
		p.ID = p.Number()
		issued = append(issued, p)
	}

	passports = append(passports, issued...)
	if err := tx.Put(keyPassports, passports); err != nil {
		return nil, err
	}
	return issued, nil
}

// GetPassport returns a passport by its number.
func GetPassport(ctx context.Context, s *kv.Store, id string) (*model.Passport, error) {
	var passports []model.Passport
	if err := s.Get(ctx, keyPassports, &passports); err != nil {
		return nil, fmt.Errorf("getting passport: %w", err)
	}
	for i := range passports {
		if passports[i].ID == id {
			return &passports[i], nil
		}
	}
	return nil, nil
}

// ListPassports returns passports, optionally filtered by owner or breeder.
func ListPassports(ctx context.Context, s *kv.Store, ownerID, breederID string) ([]model.Passport, error) {
	var passports []model.Passport
	if err := s.Get(ctx, keyPassports, &passports); err != nil {
		return nil, fmt.Errorf("listing passports: %w", err)
	}

	var out []model.Passport
	for _, p := range passports {
		if ownerID != "" && p.OwnerID != ownerID {
			continue
		}
		if breederID != "" && p.BreederID != breederID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// TransferPassport moves ownership to newOwnerID. The passport keeps its
// number; only the owner and status change.
func TransferPassport(ctx context.Context, s *kv.Store, id, newOwnerID string) (*model.Passport, error) {
	var out *model.Passport
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var passports []model.Passport
		if err := tx.Get(keyPassports, &passports); err != nil {
			return err
		}
		for i := range passports {
			if passports[i].ID == id {
				passports[i].OwnerID = newOwnerID
				passports[i].Status = model.PassportStatusTransferred
				cp := passports[i]
				out = &cp
				return tx.Put(keyPassports, passports)
			}
		}
		return model.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
