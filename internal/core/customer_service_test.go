package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bookkeeping/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerService_CreateValidation(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"blank", "   ", core.ErrInvalidInput},
		{"too long", strings.Repeat("x", 21), core.ErrInvalidInput},
		{"twenty runes", strings.Repeat("é", 20), nil},
		{"trimmed", "  Anna  ", nil},
		{"duplicate after trim", "Anna", core.ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := b.customers.CreateCustomer(ctx, tt.input)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.input), c.Name)
		})
	}
}

func TestCustomerService_ListAndRename(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	b.customer(t, "Cleo")
	ben := b.customer(t, "Ben")

	_, err := b.customers.RenameCustomer(ctx, ben.ID, "Abe")
	require.NoError(t, err)

	list, err := b.customers.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Abe", list[0].Name)
	assert.Equal(t, "Cleo", list[1].Name)

	_, err = b.customers.RenameCustomer(ctx, ben.ID, "Cleo")
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
	_, err = b.customers.RenameCustomer(ctx, 404, "Zed")
	assert.True(t, core.IsNotFound(err))
}

func TestCustomerService_Debits(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	anna := b.customer(t, "Anna")

	today, err := b.customers.AddDebit(ctx, anna.ID, 50, nil)
	require.NoError(t, err)
	assert.Equal(t, core.Today(), today.Date)
	older := b.debit(t, anna.ID, 20, daysAgo(2))

	all, err := b.customers.Debits(ctx, anna.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, older.ID, all[0].ID)

	onDay, err := b.customers.Debits(ctx, anna.ID, ptr(daysAgo(2)))
	require.NoError(t, err)
	require.Len(t, onDay, 1)
	assert.Equal(t, int64(20), onDay[0].Amount)

	updated, err := b.customers.UpdateDebit(ctx, older.ID, 25, daysAgo(3))
	require.NoError(t, err)
	assert.Equal(t, daysAgo(3), updated.Date)

	require.NoError(t, b.customers.DeleteDebit(ctx, today.ID))
	_, err = b.customers.GetDebit(ctx, today.ID)
	assert.True(t, core.IsNotFound(err))

	balance, err := b.ledger.Balance(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(25), balance)

	_, err = b.customers.AddDebit(ctx, 404, 1, nil)
	assert.True(t, core.IsNotFound(err))
}

func TestCustomerService_DeleteCascades(t *testing.T) {
	b := newBooks(t)
	ctx := context.Background()
	anna := b.customer(t, "Anna")
	milk := b.product(t, "Milk", 40, daysAgo(10))
	b.debit(t, anna.ID, 10, daysAgo(1))
	o := b.confirmedOrder(t, anna.ID, milk.ID, 1, daysAgo(1))

	require.NoError(t, b.customers.DeleteCustomer(ctx, anna.ID))

	debits, err := b.store.DebitsByCustomer(ctx, anna.ID)
	require.NoError(t, err)
	assert.Empty(t, debits)
	cost, err := b.orders.OrderCost(ctx, o.ID, core.Confirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cost)
}
