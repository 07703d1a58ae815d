package core_test

import (
	"context"
	"testing"
	"time"

	"bookkeeping/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrice(t *testing.T) {
	history := []core.Price{
		{ID: 1, Price: 100, Date: date("2024-01-01")},
		{ID: 2, Price: 150, Date: date("2024-03-01")},
		{ID: 4, Price: 170, Date: date("2024-05-01")},
		{ID: 3, Price: 160, Date: date("2024-05-01")},
	}

	tests := []struct {
		name   string
		prices []core.Price
		asOf   time.Time
		want   int64
	}{
		{"empty history", nil, date("2024-02-01"), 0},
		{"before first entry", history, date("2023-12-31"), 0},
		{"on first entry", history, date("2024-01-01"), 100},
		{"between entries", history, date("2024-02-15"), 100},
		{"on later entry", history, date("2024-03-01"), 150},
		{"same date ties go to highest id", history, date("2024-05-01"), 170},
		{"after last entry", history, date("2030-01-01"), 170},
		{"time of day ignored", history, date("2024-03-01").Add(23 * time.Hour), 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.ResolvePrice(tt.prices, tt.asOf))
		})
	}
}

func TestCurrentPrice(t *testing.T) {
	assert.Equal(t, int64(0), core.CurrentPrice(nil))
	assert.Equal(t, int64(90), core.CurrentPrice([]core.Price{
		{ID: 5, Price: 90, Date: date("2030-01-01")},
		{ID: 1, Price: 10, Date: date("2024-01-01")},
	}))
}

func TestSortPrices(t *testing.T) {
	prices := []core.Price{
		{ID: 3, Date: date("2024-02-01")},
		{ID: 2, Date: date("2024-01-01")},
		{ID: 1, Date: date("2024-02-01")},
	}
	core.SortPrices(prices)
	assert.Equal(t, []int{2, 1, 3}, []int{prices[0].ID, prices[1].ID, prices[2].ID})
}

func TestPriceResolver_PriceAt(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	milk := b.product(t, "Milk", 40, date("2024-01-10"))

	_, err := b.catalog.AddPrice(ctx, milk.ID, 45, ptr(date("2024-02-10")))
	require.NoError(t, err)

	resolver := core.NewPriceResolver(b.store)
	for asOf, want := range map[string]int64{
		"2024-01-09": 0,
		"2024-01-10": 40,
		"2024-02-09": 40,
		"2024-02-10": 45,
	} {
		got, err := resolver.PriceAt(ctx, milk.ID, date(asOf))
		require.NoError(t, err)
		assert.Equal(t, want, got, "price as of %s", asOf)
	}
}
