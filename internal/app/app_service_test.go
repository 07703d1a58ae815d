package app_test

import (
	"context"
	"testing"
	"time"

	"bookkeeping/internal/app"
	"bookkeeping/internal/core"
	"bookkeeping/internal/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	response  *core.PaymentResponse
	customers []string
}

func (f *fakeAgent) InterpretPayment(_ context.Context, _ string, customers []string, _ time.Time) (*core.PaymentResponse, error) {
	f.customers = customers
	return f.response, nil
}

func TestAppService_PaymentFlow(t *testing.T) {
	ctx := context.Background()
	agent := &fakeAgent{response: &core.PaymentResponse{
		Proposal: &core.PaymentProposal{CustomerName: "anna", Amount: "150", Date: "2024-05-01", Confidence: 0.8},
	}}
	svc := app.NewAppService(memory.New(), agent)

	anna, err := svc.CreateCustomer(ctx, "Anna")
	require.NoError(t, err)

	result, err := svc.InterpretPayment(ctx, "anna paid 150 on may 1st")
	require.NoError(t, err)
	require.False(t, result.IsClarification)
	assert.Equal(t, []string{"Anna"}, agent.customers)

	debit, err := svc.CommitPaymentProposal(ctx, *result.Proposal)
	require.NoError(t, err)
	assert.Equal(t, anna.ID, debit.CustomerID)
	assert.Equal(t, int64(150), debit.Amount)

	balance, err := svc.GetBalance(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), balance.Balance)

	_, err = svc.CommitPaymentProposal(ctx, core.PaymentProposal{CustomerName: "Zed", Amount: "1"})
	assert.True(t, core.IsNotFound(err))
}

func TestAppService_NoAgent(t *testing.T) {
	svc := app.NewAppService(memory.New(), nil)
	_, err := svc.InterpretPayment(context.Background(), "anything")
	assert.ErrorIs(t, err, app.ErrAIUnavailable)
}

func TestAppService_WholeAmounts(t *testing.T) {
	ctx := context.Background()
	svc := app.NewAppService(memory.New(), nil)
	anna, err := svc.CreateCustomer(ctx, "Anna")
	require.NoError(t, err)

	_, err = svc.RecordDebit(ctx, app.RecordDebitRequest{CustomerID: anna.ID, Amount: decimal.RequireFromString("10.5")})
	assert.True(t, core.IsInvalid(err))

	_, err = svc.RecordDebit(ctx, app.RecordDebitRequest{CustomerID: anna.ID, Amount: decimal.NewFromInt(10), Date: "05/01/2024"})
	assert.True(t, core.IsInvalid(err))

	d, err := svc.RecordDebit(ctx, app.RecordDebitRequest{CustomerID: anna.ID, Amount: decimal.RequireFromString("10.00")})
	require.NoError(t, err)
	assert.Equal(t, int64(10), d.Amount)
	assert.Equal(t, core.Today(), d.Date)
}

func TestAppService_AmountsOutOfRange(t *testing.T) {
	ctx := context.Background()
	svc := app.NewAppService(memory.New(), nil)
	anna, err := svc.CreateCustomer(ctx, "Anna")
	require.NoError(t, err)
	milk, err := svc.CreateProductType(ctx, "Milk")
	require.NoError(t, err)

	// 2^64 + 100 would wrap to 100 if truncated.
	huge := decimal.RequireFromString("18446744073709551716")
	_, err = svc.RecordDebit(ctx, app.RecordDebitRequest{CustomerID: anna.ID, Amount: huge})
	assert.True(t, core.IsInvalid(err))
	_, err = svc.RecordDebit(ctx, app.RecordDebitRequest{CustomerID: anna.ID, Amount: huge.Neg()})
	assert.True(t, core.IsInvalid(err))

	_, err = svc.CreateProduct(ctx, app.CreateProductRequest{ProductTypeID: milk.ID, Price: &huge})
	assert.True(t, core.IsInvalid(err))

	limit := decimal.NewFromInt(core.MaxAmount)
	d, err := svc.RecordDebit(ctx, app.RecordDebitRequest{CustomerID: anna.ID, Amount: limit})
	require.NoError(t, err)
	assert.Equal(t, core.MaxAmount, d.Amount)
	_, err = svc.RecordDebit(ctx, app.RecordDebitRequest{CustomerID: anna.ID, Amount: limit.Add(decimal.NewFromInt(1))})
	assert.True(t, core.IsInvalid(err))

	debits, err := svc.ListDebits(ctx, anna.ID, "")
	require.NoError(t, err)
	assert.Len(t, debits.Debits, 1)
}

func TestAppService_OrdersAndLedger(t *testing.T) {
	ctx := context.Background()
	svc := app.NewAppService(memory.New(), nil)

	anna, err := svc.CreateCustomer(ctx, "Anna")
	require.NoError(t, err)
	milk, err := svc.CreateProductType(ctx, "Milk")
	require.NoError(t, err)
	price := decimal.NewFromInt(40)
	p, err := svc.CreateProduct(ctx, app.CreateProductRequest{ProductTypeID: milk.ID, Price: &price})
	require.NoError(t, err)

	sheets := []core.CustomerQuantities{{CustomerID: anna.ID, Quantities: map[int]int64{p.ID: 2}}}
	_, err = svc.CreateOrder(ctx, app.SaveOrderRequest{Sheets: sheets})
	assert.True(t, core.IsInvalid(err), "an order needs a date")
	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders.Orders)

	o, err := svc.CreateOrder(ctx, app.SaveOrderRequest{Date: core.Today().Format(core.DateLayout), Sheets: sheets})
	require.NoError(t, err)

	cost, err := svc.GetOrderCost(ctx, o.Order.ID, "requested")
	require.NoError(t, err)
	assert.Equal(t, int64(80), cost.Cost)

	_, err = svc.ConfirmOrder(ctx, o.Order.ID, app.SaveOrderRequest{Sheets: sheets})
	require.NoError(t, err)
	_, err = svc.RecordDebit(ctx, app.RecordDebitRequest{CustomerID: anna.ID, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	ledger, err := svc.GetCustomerLedger(ctx, anna.ID)
	require.NoError(t, err)
	require.Len(t, ledger.Lines, 2)
	assert.Equal(t, core.TransferDebit, ledger.Lines[0].Kind)
	assert.Equal(t, int64(20), ledger.Balance)

	list, err := svc.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, list.Customers, 1)
	assert.Equal(t, int64(20), list.Customers[0].Balance)

	_, err = svc.GetOrderSheet(ctx, o.Order.ID, "shipped")
	assert.True(t, core.IsInvalid(err))

	latest, err := svc.GetLatestOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, o.Order.ID, latest.Order.ID)
}
