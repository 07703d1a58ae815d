package core_test

import (
	"context"
	"testing"
	"time"

	"bookkeeping/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, b *books, orderID, customerID int) map[int]core.ProductOrder {
	t.Helper()
	ctx := context.Background()
	cos, err := b.store.CustomerOrdersByOrder(ctx, orderID)
	require.NoError(t, err)
	for _, co := range cos {
		if co.CustomerID != customerID {
			continue
		}
		pos, err := b.store.ProductOrders(ctx, co.ID)
		require.NoError(t, err)
		out := make(map[int]core.ProductOrder, len(pos))
		for _, po := range pos {
			out[po.ProductID] = po
		}
		return out
	}
	t.Fatalf("customer %d has no part in order %d", customerID, orderID)
	return nil
}

func TestOrderService_SheetSave(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	anna := b.customer(t, "Anna")
	milk := b.product(t, "Milk", 40, daysAgo(10))
	bread := b.product(t, "Bread", 30, daysAgo(10))

	o, err := b.orders.CreateOrder(ctx, daysAgo(1), []core.CustomerQuantities{
		{CustomerID: anna.ID, Quantities: map[int]int64{milk.ID: 2, bread.ID: 0}},
	})
	require.NoError(t, err)

	got := lines(t, b, o.ID, anna.ID)
	require.Len(t, got, 1, "zero quantities create no lines")
	assert.Equal(t, int64(2), got[milk.ID].Amount)
	assert.Nil(t, got[milk.ID].ConfirmedAmount)

	// Clearing an existing line keeps it with an explicit zero.
	_, err = b.orders.UpdateOrder(ctx, o.ID, daysAgo(1), []core.CustomerQuantities{
		{CustomerID: anna.ID, Quantities: map[int]int64{bread.ID: 4}},
	})
	require.NoError(t, err)
	got = lines(t, b, o.ID, anna.ID)
	require.Len(t, got, 2)
	assert.Equal(t, int64(0), got[milk.ID].Amount)
	assert.Equal(t, int64(4), got[bread.ID].Amount)

	// Confirmation writes only the confirmed field and leaves requested amounts alone.
	_, err = b.orders.ConfirmOrder(ctx, o.ID, []core.CustomerQuantities{
		{CustomerID: anna.ID, Quantities: map[int]int64{bread.ID: 3, milk.ID: 1}},
	})
	require.NoError(t, err)
	got = lines(t, b, o.ID, anna.ID)
	require.NotNil(t, got[bread.ID].ConfirmedAmount)
	assert.Equal(t, int64(3), *got[bread.ID].ConfirmedAmount)
	assert.Equal(t, int64(4), got[bread.ID].Amount)
	require.NotNil(t, got[milk.ID].ConfirmedAmount)
	assert.Equal(t, int64(1), *got[milk.ID].ConfirmedAmount)

	requested, err := b.orders.OrderCost(ctx, o.ID, core.Requested)
	require.NoError(t, err)
	confirmed, err := b.orders.OrderCost(ctx, o.ID, core.Confirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(4*30), requested)
	assert.Equal(t, int64(3*30+1*40), confirmed)
}

func TestOrderService_ConfirmCreatesLinesWithZeroRequest(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	anna := b.customer(t, "Anna")
	milk := b.product(t, "Milk", 40, daysAgo(10))

	o, err := b.orders.CreateOrder(ctx, daysAgo(1), nil)
	require.NoError(t, err)
	_, err = b.orders.ConfirmOrder(ctx, o.ID, []core.CustomerQuantities{
		{CustomerID: anna.ID, Quantities: map[int]int64{milk.ID: 5}},
	})
	require.NoError(t, err)

	got := lines(t, b, o.ID, anna.ID)
	assert.Equal(t, int64(0), got[milk.ID].Amount)
	assert.Equal(t, int64(5), *got[milk.ID].ConfirmedAmount)
}

func TestOrderService_RejectsBadSheetsAtomically(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	anna := b.customer(t, "Anna")
	milk := b.product(t, "Milk", 40, daysAgo(10))

	_, err := b.orders.CreateOrder(ctx, daysAgo(1), []core.CustomerQuantities{
		{CustomerID: anna.ID, Quantities: map[int]int64{milk.ID: 1}},
		{CustomerID: 999, Quantities: map[int]int64{milk.ID: 1}},
	})
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))

	_, err = b.orders.CreateOrder(ctx, daysAgo(1), []core.CustomerQuantities{
		{CustomerID: anna.ID, Quantities: map[int]int64{12345: 1}},
	})
	assert.True(t, core.IsNotFound(err))

	_, err = b.orders.CreateOrder(ctx, daysAgo(1), []core.CustomerQuantities{
		{CustomerID: anna.ID}, {CustomerID: anna.ID},
	})
	assert.True(t, core.IsInvalid(err))

	_, err = b.orders.CreateOrder(ctx, daysAgo(1), []core.CustomerQuantities{
		{CustomerID: anna.ID, Quantities: map[int]int64{milk.ID: core.MaxQuantity + 1}},
	})
	assert.True(t, core.IsInvalid(err))

	_, err = b.orders.CreateOrder(ctx, time.Time{}, []core.CustomerQuantities{
		{CustomerID: anna.ID, Quantities: map[int]int64{milk.ID: 1}},
	})
	assert.True(t, core.IsInvalid(err), "date is required")

	orders, err := b.orders.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders, "failed saves leave nothing behind")
}

func TestOrderService_LargestSheetDoesNotOverflow(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	anna := b.customer(t, "Anna")
	cream := b.product(t, "Cream", core.MaxAmount, daysAgo(10))

	o := b.confirmedOrder(t, anna.ID, cream.ID, core.MaxQuantity, daysAgo(1))
	cost, err := b.orders.OrderCost(ctx, o.ID, core.Confirmed)
	require.NoError(t, err)
	assert.Equal(t, core.MaxQuantity*core.MaxAmount, cost)

	balance, err := b.ledger.Balance(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, -core.MaxQuantity*core.MaxAmount, balance)
}

func TestOrderService_CostsUseOrderDate(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	anna := b.customer(t, "Anna")
	milk := b.product(t, "Milk", 40, daysAgo(10))
	_, err := b.catalog.AddPrice(ctx, milk.ID, 60, ptr(daysAgo(3)))
	require.NoError(t, err)

	old := b.confirmedOrder(t, anna.ID, milk.ID, 1, daysAgo(5))
	recent := b.confirmedOrder(t, anna.ID, milk.ID, 1, daysAgo(1))

	oldCost, err := b.orders.OrderCost(ctx, old.ID, core.Confirmed)
	require.NoError(t, err)
	recentCost, err := b.orders.OrderCost(ctx, recent.ID, core.Confirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(40), oldCost)
	assert.Equal(t, int64(60), recentCost)

	// Moving the order moves its pricing date.
	_, err = b.orders.UpdateOrder(ctx, old.ID, daysAgo(2), nil)
	require.NoError(t, err)
	oldCost, err = b.orders.OrderCost(ctx, old.ID, core.Confirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(60), oldCost)
}

func TestOrderService_ConfirmedEqualsRequestedWhenFullyConfirmed(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	anna := b.customer(t, "Anna")
	ben := b.customer(t, "Ben")
	milk := b.product(t, "Milk", 40, daysAgo(10))
	bread := b.product(t, "Bread", 25, daysAgo(10))

	sheets := []core.CustomerQuantities{
		{CustomerID: anna.ID, Quantities: map[int]int64{milk.ID: 2, bread.ID: 1}},
		{CustomerID: ben.ID, Quantities: map[int]int64{bread.ID: 7}},
	}
	o, err := b.orders.CreateOrder(ctx, daysAgo(1), sheets)
	require.NoError(t, err)
	_, err = b.orders.ConfirmOrder(ctx, o.ID, sheets)
	require.NoError(t, err)

	requested, err := b.orders.OrderCost(ctx, o.ID, core.Requested)
	require.NoError(t, err)
	confirmed, err := b.orders.OrderCost(ctx, o.ID, core.Confirmed)
	require.NoError(t, err)
	assert.Equal(t, requested, confirmed)
	assert.Equal(t, int64(2*40+1*25+7*25), confirmed)
}

func TestOrderService_LatestAndList(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()

	_, err := b.orders.LatestOrder(ctx)
	assert.True(t, core.IsNotFound(err))

	first, err := b.orders.CreateOrder(ctx, daysAgo(1), nil)
	require.NoError(t, err)
	second, err := b.orders.CreateOrder(ctx, daysAgo(1), nil)
	require.NoError(t, err)
	_, err = b.orders.CreateOrder(ctx, daysAgo(4), nil)
	require.NoError(t, err)

	latest, err := b.orders.LatestOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	list, err := b.orders.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestOrderService_OrderSheet(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	ben := b.customer(t, "Ben")
	anna := b.customer(t, "Anna")
	milk := b.product(t, "Milk", 40, daysAgo(10))
	bread := b.product(t, "Bread", 30, daysAgo(10))

	o, err := b.orders.CreateOrder(ctx, daysAgo(1), []core.CustomerQuantities{
		{CustomerID: ben.ID, Quantities: map[int]int64{milk.ID: 1, bread.ID: 2}},
		{CustomerID: anna.ID, Quantities: map[int]int64{bread.ID: 3}},
	})
	require.NoError(t, err)
	_, err = b.orders.ConfirmOrder(ctx, o.ID, []core.CustomerQuantities{
		{CustomerID: ben.ID, Quantities: map[int]int64{milk.ID: 1}},
	})
	require.NoError(t, err)

	sheet, err := b.orders.OrderSheet(ctx, o.ID, core.Requested)
	require.NoError(t, err)
	assert.Equal(t, []string{"Milk", "Bread"}, sheet.Headers())
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Anna", sheet.Rows[0].CustomerName)
	assert.Equal(t, []int64{0, 3}, sheet.Rows[0].Quantities)
	assert.Equal(t, []int64{1, 2}, sheet.Rows[1].Quantities)
	assert.Equal(t, []int64{1, 5}, sheet.Totals)
	assert.Equal(t, int64(90), sheet.Rows[0].RequestedCost)
	assert.Equal(t, int64(0), sheet.Rows[0].ConfirmedCost)
	assert.Equal(t, int64(40), sheet.Rows[1].ConfirmedCost)
	assert.Equal(t, int64(40+60+90), sheet.RequestedCost)
	assert.Equal(t, int64(40), sheet.ConfirmedCost)

	confirmed, err := b.orders.OrderSheet(ctx, o.ID, core.Confirmed)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 0}, confirmed.Totals)
}

func TestOrderService_DeleteCascades(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	anna := b.customer(t, "Anna")
	milk := b.product(t, "Milk", 40, daysAgo(10))
	o := b.confirmedOrder(t, anna.ID, milk.ID, 1, daysAgo(1))

	require.NoError(t, b.orders.DeleteOrder(ctx, o.ID))
	cos, err := b.store.CustomerOrdersByCustomer(ctx, anna.ID)
	require.NoError(t, err)
	assert.Empty(t, cos)

	balance, err := b.ledger.Balance(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}
