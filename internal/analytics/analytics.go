// Package analytics computes sales summaries from the domain stores.
package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/store"
)

// BreederSales is one breeder's slice of the summary.
type BreederSales struct {
	BreederID       string `json:"breeder_id"`
	Name            string `json:"name,omitempty"`
	Orders          int    `json:"orders"`
	UnitsSold       int    `json:"units_sold"`
	RevenueUAH      int64  `json:"revenue_uah"`
	PassportsIssued int    `json:"passports_issued"`
}

// Summary aggregates completed sales across the marketplace.
type Summary struct {
	Orders          int            `json:"orders"`
	UnitsSold       int            `json:"units_sold"`
	RevenueUAH      int64          `json:"revenue_uah"`
	PassportsIssued int            `json:"passports_issued"`
	ByBreeder       []BreederSales `json:"by_breeder"`
}

// Sales builds the marketplace summary over paid and transferred orders.
func Sales(ctx context.Context, s *kv.Store) (*Summary, error) {
	orders, err := store.ListOrders(ctx, s, "", "")
	if err != nil {
		return nil, fmt.Errorf("loading orders: %w", err)
	}
	listings, err := store.ListListings(ctx, s, "", "")
	if err != nil {
		return nil, fmt.Errorf("loading listings: %w", err)
	}
	breeders, err := store.ListBreeders(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("loading breeders: %w", err)
	}
	passports, err := store.ListPassports(ctx, s, "", "")
	if err != nil {
		return nil, fmt.Errorf("loading passports: %w", err)
	}

	listingBreeder := make(map[string]string, len(listings))
	for _, l := range listings {
		listingBreeder[l.ID] = l.BreederID
	}
	breederName := make(map[string]string, len(breeders))
	for _, b := range breeders {
		breederName[b.ID] = b.Name
	}

	summary := &Summary{}
	perBreeder := make(map[string]*BreederSales)
	sales := func(breederID string) *BreederSales {
		bs, ok := perBreeder[breederID]
		if !ok {
			bs = &BreederSales{BreederID: breederID, Name: breederName[breederID]}
			perBreeder[breederID] = bs
		}
		return bs
	}

	for _, o := range orders {
		if o.Status != model.OrderStatusPaid && o.Status != model.OrderStatusTransferred {
			continue
		}
		summary.Orders++
		summary.RevenueUAH += o.SubtotalUAH

		counted := make(map[string]bool)
		for _, line := range o.Lines {
			breederID := listingBreeder[line.ListingID]
			bs := sales(breederID)
			if !counted[breederID] {
				bs.Orders++
				counted[breederID] = true
			}
			bs.UnitsSold += line.Quantity
			bs.RevenueUAH += int64(line.Quantity) * line.UnitPriceUAH
			summary.UnitsSold += line.Quantity
		}
	}

	summary.PassportsIssued = len(passports)
	for _, p := range passports {
		sales(p.BreederID).PassportsIssued++
	}

	for _, bs := range perBreeder {
		summary.ByBreeder = append(summary.ByBreeder, *bs)
	}
	sort.Slice(summary.ByBreeder, func(i, j int) bool {
		return summary.ByBreeder[i].BreederID < summary.ByBreeder[j].BreederID
	})
	return summary, nil
}
