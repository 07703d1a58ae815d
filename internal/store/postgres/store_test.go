package postgres_test

import (
	"context"
	"os"
	"testing"

	"bookkeeping/internal/core"
	"bookkeeping/internal/db"
	"bookkeeping/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../../.env")

	// Integration tests need a dedicated database; they truncate every table.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err, "connect to test database")
	t.Cleanup(pool.Close)

	migrations, err := db.DiscoverMigrations(os.DirFS("../../../migrations"))
	require.NoError(t, err)
	_, err = db.Migrate(ctx, pool, migrations, zerolog.Nop())
	require.NoError(t, err, "apply migrations")

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE product_orders, customer_orders, orders, prices, products,
			product_types, debits, customers, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "truncate")
	return pool
}

func TestStore_LedgerRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := postgres.New(pool)

	customers := core.NewCustomerService(store)
	catalog := core.NewCatalogService(store)
	orders := core.NewOrderService(store)
	ledger := core.NewLedger(store)

	anna, err := customers.CreateCustomer(ctx, "Anna")
	require.NoError(t, err)
	_, err = customers.CreateCustomer(ctx, "Anna")
	assert.ErrorIs(t, err, core.ErrAlreadyExists)

	milk, err := catalog.CreateProductType(ctx, "Milk")
	require.NoError(t, err)
	p, err := catalog.CreateProduct(ctx, milk.ID, "1L", nil)
	require.NoError(t, err)
	assert.Equal(t, "Milk", p.TypeName)

	priceDate := core.Today().AddDate(0, 0, -10)
	_, err = catalog.AddPrice(ctx, p.ID, 40, &priceDate)
	require.NoError(t, err)

	orderDate := core.Today().AddDate(0, 0, -2)
	sheet := []core.CustomerQuantities{{CustomerID: anna.ID, Quantities: map[int]int64{p.ID: 3}}}
	o, err := orders.CreateOrder(ctx, orderDate, sheet)
	require.NoError(t, err)
	_, err = orders.ConfirmOrder(ctx, o.ID, sheet)
	require.NoError(t, err)

	_, err = customers.AddDebit(ctx, anna.ID, 100, nil)
	require.NoError(t, err)

	_, err = catalog.SetPriceToday(ctx, p.ID, 90)
	require.NoError(t, err)

	ts, err := ledger.Transfers(ctx, anna.ID)
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, core.TransferCredit, ts[0].Kind)
	assert.Equal(t, orderDate, ts[0].Date)
	assert.Equal(t, int64(120), ts[0].Credit())

	balance, err := ledger.Balance(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-20), balance)

	require.NoError(t, orders.DeleteOrder(ctx, o.ID))
	balance, err = ledger.Balance(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
}

func TestStore_InTxRollsBack(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := postgres.New(pool)
	orders := core.NewOrderService(store)

	_, err := orders.CreateOrder(ctx, core.Today(), []core.CustomerQuantities{{CustomerID: 404}})
	assert.True(t, core.IsNotFound(err))

	list, err := orders.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_OrderDateHasNoDefault(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, "INSERT INTO orders DEFAULT VALUES")
	assert.Error(t, err)
}

func TestStore_UpsertPrice(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := postgres.New(pool)

	pt := &core.ProductType{Name: "Bread"}
	require.NoError(t, store.CreateProductType(ctx, pt))
	p := &core.Product{ProductTypeID: pt.ID}
	require.NoError(t, store.CreateProduct(ctx, p))

	first := &core.Price{ProductID: p.ID, Price: 10, Date: core.Today()}
	require.NoError(t, store.UpsertPrice(ctx, first))
	second := &core.Price{ProductID: p.ID, Price: 12, Date: core.Today()}
	require.NoError(t, store.UpsertPrice(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	err := store.CreatePrice(ctx, &core.Price{ProductID: 404, Price: 1, Date: core.Today()})
	assert.True(t, core.IsNotFound(err))
}
