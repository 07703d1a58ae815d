package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bookkeeping/internal/core"
	"bookkeeping/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_InTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.CreateCustomer(ctx, &core.Customer{Name: "Anna"}))

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx core.Store) error {
		if err := tx.CreateCustomer(ctx, &core.Customer{Name: "Ben"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	customers, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 1)

	err = s.InTx(ctx, func(tx core.Store) error {
		return tx.CreateCustomer(ctx, &core.Customer{Name: "Ben"})
	})
	require.NoError(t, err)
	customers, err = s.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 2)
}

func TestStore_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	c := &core.Customer{Name: "Anna"}
	require.NoError(t, s.CreateCustomer(ctx, c))
	o := &core.Order{}
	require.NoError(t, s.CreateOrder(ctx, o))
	pt := &core.ProductType{Name: "Milk"}
	require.NoError(t, s.CreateProductType(ctx, pt))
	p := &core.Product{ProductTypeID: pt.ID}
	require.NoError(t, s.CreateProduct(ctx, p))
	co, err := s.EnsureCustomerOrder(ctx, o.ID, c.ID)
	require.NoError(t, err)

	qty := int64(3)
	po := &core.ProductOrder{CustomerOrderID: co.ID, ProductID: p.ID, ConfirmedAmount: &qty}
	require.NoError(t, s.CreateProductOrder(ctx, po))
	qty = 99

	pos, err := s.ProductOrders(ctx, co.ID)
	require.NoError(t, err)
	require.Len(t, pos, 1)
	assert.Equal(t, int64(3), *pos[0].ConfirmedAmount)

	*pos[0].ConfirmedAmount = 7
	pos, err = s.ProductOrders(ctx, co.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), *pos[0].ConfirmedAmount)

	again, err := s.EnsureCustomerOrder(ctx, o.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, co.ID, again.ID)

	err = s.CreateProductOrder(ctx, &core.ProductOrder{CustomerOrderID: co.ID, ProductID: p.ID})
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
}

func TestStore_UpsertPrice(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	pt := &core.ProductType{Name: "Milk"}
	require.NoError(t, s.CreateProductType(ctx, pt))
	p := &core.Product{ProductTypeID: pt.ID}
	require.NoError(t, s.CreateProduct(ctx, p))

	day := core.Today()
	require.NoError(t, s.CreatePrice(ctx, &core.Price{ProductID: p.ID, Price: 1, Date: day}))
	second := &core.Price{ProductID: p.ID, Price: 2, Date: day}
	require.NoError(t, s.CreatePrice(ctx, second))

	up := &core.Price{ProductID: p.ID, Price: 3, Date: day}
	require.NoError(t, s.UpsertPrice(ctx, up))
	assert.Equal(t, second.ID, up.ID, "updates the highest id of the day")

	prices, err := s.Prices(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, prices, 2)
	assert.Equal(t, int64(3), core.CurrentPrice(prices))
}

func TestStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	c := &core.Customer{Name: "Anna"}
	require.NoError(t, s.CreateCustomer(ctx, c))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.InTx(ctx, func(tx core.Store) error {
				return tx.CreateDebit(ctx, &core.Debit{CustomerID: c.ID, Amount: 1, Date: core.Today()})
			})
		}()
	}
	wg.Wait()

	debits, err := s.DebitsByCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, debits, 50)
}

func TestStore_InTxKeepsOutsideWrites(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	c := &core.Customer{Name: "Anna"}
	require.NoError(t, s.CreateCustomer(ctx, c))

	var outside, inside core.Debit
	err := s.InTx(ctx, func(tx core.Store) error {
		outside = core.Debit{CustomerID: c.ID, Amount: 10, Date: core.Today()}
		if err := s.CreateDebit(ctx, &outside); err != nil {
			return err
		}
		inside = core.Debit{CustomerID: c.ID, Amount: 20, Date: core.Today()}
		return tx.CreateDebit(ctx, &inside)
	})
	require.NoError(t, err)
	assert.NotEqual(t, outside.ID, inside.ID)

	debits, err := s.DebitsByCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, debits, 2)

	boom := errors.New("boom")
	err = s.InTx(ctx, func(tx core.Store) error {
		if err := s.CreateDebit(ctx, &core.Debit{CustomerID: c.ID, Amount: 5, Date: core.Today()}); err != nil {
			return err
		}
		if err := tx.DeleteDebit(ctx, outside.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	debits, err = s.DebitsByCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, debits, 3, "rolled back delete, kept the outside write")
}

func TestStore_InTxDeletesOnlyWhatItTouched(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	c := &core.Customer{Name: "Anna"}
	require.NoError(t, s.CreateCustomer(ctx, c))
	d := &core.Debit{CustomerID: c.ID, Amount: 10, Date: core.Today()}
	require.NoError(t, s.CreateDebit(ctx, d))

	err := s.InTx(ctx, func(tx core.Store) error {
		require.NoError(t, s.UpdateCustomer(ctx, &core.Customer{ID: c.ID, Name: "Anne"}))
		return tx.DeleteDebit(ctx, d.ID)
	})
	require.NoError(t, err)

	got, err := s.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anne", got.Name)
	debits, err := s.DebitsByCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, debits)
}
