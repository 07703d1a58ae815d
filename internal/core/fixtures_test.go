package core_test

import (
	"context"
	"testing"
	"time"

	"bookkeeping/internal/core"
	"bookkeeping/internal/store/memory"

	"github.com/stretchr/testify/require"
)

// books bundles a fresh memory store with every service built on it.
type books struct {
	store     *memory.Store
	customers core.CustomerService
	catalog   core.CatalogService
	orders    core.OrderService
	ledger    *core.Ledger
	costs     *core.CostCalculator
}

func newBooks(t *testing.T) *books {
	t.Helper()
	s := memory.New()
	return &books{
		store:     s,
		customers: core.NewCustomerService(s),
		catalog:   core.NewCatalogService(s),
		orders:    core.NewOrderService(s),
		ledger:    core.NewLedger(s),
		costs:     core.NewCostCalculator(s),
	}
}

func daysAgo(n int) time.Time {
	return core.Today().AddDate(0, 0, -n)
}

func date(s string) time.Time {
	d, err := core.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ptr[T any](v T) *T { return &v }

func (b *books) customer(t *testing.T, name string) *core.Customer {
	t.Helper()
	c, err := b.customers.CreateCustomer(context.Background(), name)
	require.NoError(t, err)
	return c
}

// product creates a product under a fresh type with one price dated priceDate.
func (b *books) product(t *testing.T, typeName string, price int64, priceDate time.Time) *core.Product {
	t.Helper()
	ctx := context.Background()
	pt, err := b.catalog.CreateProductType(ctx, typeName)
	require.NoError(t, err)
	p, err := b.catalog.CreateProduct(ctx, pt.ID, "", nil)
	require.NoError(t, err)
	_, err = b.catalog.AddPrice(ctx, p.ID, price, &priceDate)
	require.NoError(t, err)
	return p
}

func (b *books) debit(t *testing.T, customerID int, amount int64, on time.Time) *core.Debit {
	t.Helper()
	d, err := b.customers.AddDebit(context.Background(), customerID, amount, &on)
	require.NoError(t, err)
	return d
}

// confirmedOrder creates an order dated on for one customer and confirms qty of product.
func (b *books) confirmedOrder(t *testing.T, customerID, productID int, qty int64, on time.Time) *core.Order {
	t.Helper()
	ctx := context.Background()
	sheet := []core.CustomerQuantities{{CustomerID: customerID, Quantities: map[int]int64{productID: qty}}}
	o, err := b.orders.CreateOrder(ctx, on, sheet)
	require.NoError(t, err)
	_, err = b.orders.ConfirmOrder(ctx, o.ID, sheet)
	require.NoError(t, err)
	return o
}
