package core_test

import (
	"context"
	"testing"

	"bookkeeping/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_ProductsAndPrices(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()

	cheese, err := b.catalog.CreateProductType(ctx, "Cheese")
	require.NoError(t, err)
	gouda, err := b.catalog.CreateProduct(ctx, cheese.ID, "Gouda", ptr(int64(300)))
	require.NoError(t, err)
	assert.Equal(t, "Cheese Gouda", gouda.DisplayName())
	assert.Equal(t, int64(300), gouda.CurrentPrice)

	plain, err := b.catalog.CreateProduct(ctx, cheese.ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Cheese", plain.DisplayName())

	// Same price again is not a new entry; a different one replaces today's.
	_, err = b.catalog.UpdateProduct(ctx, gouda.ID, "Gouda", ptr(int64(300)))
	require.NoError(t, err)
	_, err = b.catalog.UpdateProduct(ctx, gouda.ID, "Old Gouda", ptr(int64(320)))
	require.NoError(t, err)
	history, err := b.catalog.PriceHistory(ctx, gouda.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(320), history[0].Price)

	_, err = b.catalog.AddPrice(ctx, gouda.ID, 280, ptr(daysAgo(7)))
	require.NoError(t, err)
	history, err = b.catalog.PriceHistory(ctx, gouda.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(280), history[0].Price)

	price, err := b.catalog.PriceAt(ctx, gouda.ID, daysAgo(1))
	require.NoError(t, err)
	assert.Equal(t, int64(280), price)

	types, err := b.catalog.ListProductTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)
	require.Len(t, types[0].Products, 2)
	assert.Equal(t, "Old Gouda", types[0].Products[0].Name)
	assert.Equal(t, int64(320), types[0].Products[0].CurrentPrice)
	assert.Equal(t, int64(0), types[0].Products[1].CurrentPrice)
}

func TestCatalogService_SetPriceTodayUpserts(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	milk := b.product(t, "Milk", 40, daysAgo(3))

	first, err := b.catalog.SetPriceToday(ctx, milk.ID, 45)
	require.NoError(t, err)
	second, err := b.catalog.SetPriceToday(ctx, milk.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	history, err := b.catalog.PriceHistory(ctx, milk.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestCatalogService_Validation(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()

	_, err := b.catalog.CreateProductType(ctx, "")
	assert.True(t, core.IsInvalid(err))
	_, err = b.catalog.CreateProduct(ctx, 404, "x", nil)
	assert.True(t, core.IsNotFound(err))

	milk := b.product(t, "Milk", 40, daysAgo(3))
	_, err = b.catalog.AddPrice(ctx, milk.ID, -1, nil)
	assert.True(t, core.IsInvalid(err))
	_, err = b.catalog.PriceAt(ctx, 404, core.Today())
	assert.True(t, core.IsNotFound(err))
	_, err = b.catalog.CreateProductType(ctx, "Milk")
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
}

func TestCatalogService_DeleteTypeCascades(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	anna := b.customer(t, "Anna")
	milk := b.product(t, "Milk", 40, daysAgo(3))
	o := b.confirmedOrder(t, anna.ID, milk.ID, 2, daysAgo(1))

	require.NoError(t, b.catalog.DeleteProductType(ctx, milk.ProductTypeID))

	_, err := b.catalog.GetProduct(ctx, milk.ID)
	assert.True(t, core.IsNotFound(err))
	cost, err := b.orders.OrderCost(ctx, o.ID, core.Confirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cost)
}
