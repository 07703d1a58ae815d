package core

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// ResolvePrice returns the price in effect on asOf: the entry with the latest
// date not after asOf, the highest id among entries sharing that date.
// A product with no such entry costs 0.
func ResolvePrice(prices []Price, asOf time.Time) int64 {
	asOf = Day(asOf)
	var best *Price
	for i := range prices {
		p := &prices[i]
		d := Day(p.Date)
		if d.After(asOf) {
			continue
		}
		if best == nil || priceLess(*best, *p) {
			best = p
		}
	}
	if best == nil {
		return 0
	}
	return best.Price
}

// CurrentPrice returns the latest entry of the history regardless of date, or 0.
func CurrentPrice(prices []Price) int64 {
	if len(prices) == 0 {
		return 0
	}
	best := prices[0]
	for _, p := range prices[1:] {
		if priceLess(best, p) {
			best = p
		}
	}
	return best.Price
}

// SortPrices orders a history by date, then id.
func SortPrices(prices []Price) {
	sort.Slice(prices, func(i, j int) bool { return priceLess(prices[i], prices[j]) })
}

func priceLess(a, b Price) bool {
	da, db := Day(a.Date), Day(b.Date)
	if !da.Equal(db) {
		return da.Before(db)
	}
	return a.ID < b.ID
}

// PriceResolver looks up price histories through an EntityReader.
type PriceResolver struct {
	reader EntityReader
}

func NewPriceResolver(reader EntityReader) *PriceResolver {
	return &PriceResolver{reader: reader}
}

// PriceAt returns the price of productID in effect on asOf.
func (r *PriceResolver) PriceAt(ctx context.Context, productID int, asOf time.Time) (int64, error) {
	prices, err := r.reader.Prices(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to load prices of product %d: %w", productID, err)
	}
	return ResolvePrice(prices, asOf), nil
}
