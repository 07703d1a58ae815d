// Package postgres is the PostgreSQL core.Store used in production.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"bookkeeping/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every query runs
// unchanged inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool // nil inside a transaction
	q    querier
}

var _ core.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

func (s *Store) InTx(ctx context.Context, fn func(tx core.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// mapErr translates driver errors into core sentinels.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", what, core.ErrAlreadyExists)
		case "23503":
			return fmt.Errorf("%s references a missing row: %w", what, core.ErrNotFound)
		case "23514", "22001":
			return fmt.Errorf("%s: %s: %w", what, pgErr.Message, core.ErrInvalidInput)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// execOne runs a single-row statement and reports ErrNotFound when it touches nothing.
func (s *Store) execOne(ctx context.Context, what, sql string, args ...any) error {
	tag, err := s.q.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(err, what)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return nil
}

// ── Customers and debits ─────────────────────────────────────────────────────

func (s *Store) CreateCustomer(ctx context.Context, c *core.Customer) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO customers (name) VALUES ($1)
		RETURNING id, created_at`, c.Name,
	).Scan(&c.ID, &c.CreatedAt)
	return mapErr(err, fmt.Sprintf("customer %q", c.Name))
}

func (s *Store) UpdateCustomer(ctx context.Context, c *core.Customer) error {
	err := s.q.QueryRow(ctx, `
		UPDATE customers SET name = $2 WHERE id = $1
		RETURNING created_at`, c.ID, c.Name,
	).Scan(&c.CreatedAt)
	return mapErr(err, fmt.Sprintf("customer %d", c.ID))
}

func (s *Store) GetCustomer(ctx context.Context, customerID int) (*core.Customer, error) {
	c := &core.Customer{}
	err := s.q.QueryRow(ctx, `SELECT id, name, created_at FROM customers WHERE id = $1`, customerID).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("customer %d", customerID))
	}
	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	rows, err := s.q.Query(ctx, `SELECT id, name, created_at FROM customers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Customer, error) {
		var c core.Customer
		err := row.Scan(&c.ID, &c.Name, &c.CreatedAt)
		return c, err
	})
}

func (s *Store) DeleteCustomer(ctx context.Context, customerID int) error {
	return s.execOne(ctx, fmt.Sprintf("customer %d", customerID), `DELETE FROM customers WHERE id = $1`, customerID)
}

func (s *Store) CreateDebit(ctx context.Context, d *core.Debit) error {
	d.Date = core.Day(d.Date)
	err := s.q.QueryRow(ctx, `
		INSERT INTO debits (customer_id, amount, date) VALUES ($1, $2, $3)
		RETURNING id`, d.CustomerID, d.Amount, d.Date,
	).Scan(&d.ID)
	return mapErr(err, fmt.Sprintf("debit of customer %d", d.CustomerID))
}

func (s *Store) UpdateDebit(ctx context.Context, d *core.Debit) error {
	d.Date = core.Day(d.Date)
	err := s.q.QueryRow(ctx, `
		UPDATE debits SET amount = $2, date = $3 WHERE id = $1
		RETURNING customer_id`, d.ID, d.Amount, d.Date,
	).Scan(&d.CustomerID)
	return mapErr(err, fmt.Sprintf("debit %d", d.ID))
}

func (s *Store) GetDebit(ctx context.Context, debitID int) (*core.Debit, error) {
	d := &core.Debit{}
	err := s.q.QueryRow(ctx, `SELECT id, customer_id, amount, date FROM debits WHERE id = $1`, debitID).
		Scan(&d.ID, &d.CustomerID, &d.Amount, &d.Date)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("debit %d", debitID))
	}
	return d, nil
}

func (s *Store) DeleteDebit(ctx context.Context, debitID int) error {
	return s.execOne(ctx, fmt.Sprintf("debit %d", debitID), `DELETE FROM debits WHERE id = $1`, debitID)
}

func (s *Store) DebitsByCustomer(ctx context.Context, customerID int) ([]core.Debit, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, customer_id, amount, date FROM debits
		WHERE customer_id = $1`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query debits: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Debit, error) {
		var d core.Debit
		err := row.Scan(&d.ID, &d.CustomerID, &d.Amount, &d.Date)
		return d, err
	})
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (s *Store) CreateProductType(ctx context.Context, pt *core.ProductType) error {
	err := s.q.QueryRow(ctx, `INSERT INTO product_types (name) VALUES ($1) RETURNING id`, pt.Name).Scan(&pt.ID)
	return mapErr(err, fmt.Sprintf("product type %q", pt.Name))
}

func (s *Store) UpdateProductType(ctx context.Context, pt *core.ProductType) error {
	return s.execOne(ctx, fmt.Sprintf("product type %d", pt.ID),
		`UPDATE product_types SET name = $2 WHERE id = $1`, pt.ID, pt.Name)
}

func (s *Store) GetProductType(ctx context.Context, productTypeID int) (*core.ProductType, error) {
	pt := &core.ProductType{}
	err := s.q.QueryRow(ctx, `SELECT id, name FROM product_types WHERE id = $1`, productTypeID).Scan(&pt.ID, &pt.Name)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("product type %d", productTypeID))
	}
	return pt, nil
}

func (s *Store) ListProductTypes(ctx context.Context) ([]core.ProductType, error) {
	rows, err := s.q.Query(ctx, `SELECT id, name FROM product_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product types: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.ProductType, error) {
		var pt core.ProductType
		err := row.Scan(&pt.ID, &pt.Name)
		return pt, err
	})
}

func (s *Store) DeleteProductType(ctx context.Context, productTypeID int) error {
	return s.execOne(ctx, fmt.Sprintf("product type %d", productTypeID),
		`DELETE FROM product_types WHERE id = $1`, productTypeID)
}

func (s *Store) CreateProduct(ctx context.Context, p *core.Product) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO products (product_type_id, name) VALUES ($1, $2)
		RETURNING id, (SELECT name FROM product_types WHERE id = $1)`, p.ProductTypeID, p.Name,
	).Scan(&p.ID, &p.TypeName)
	return mapErr(err, fmt.Sprintf("product of type %d", p.ProductTypeID))
}

func (s *Store) UpdateProduct(ctx context.Context, p *core.Product) error {
	return s.execOne(ctx, fmt.Sprintf("product %d", p.ID),
		`UPDATE products SET name = $2 WHERE id = $1`, p.ID, p.Name)
}

const productColumns = `p.id, p.product_type_id, pt.name, p.name FROM products p JOIN product_types pt ON pt.id = p.product_type_id`

func scanProduct(row pgx.Row) (core.Product, error) {
	var p core.Product
	err := row.Scan(&p.ID, &p.ProductTypeID, &p.TypeName, &p.Name)
	return p, err
}

func (s *Store) GetProduct(ctx context.Context, productID int) (*core.Product, error) {
	p, err := scanProduct(s.q.QueryRow(ctx, `SELECT `+productColumns+` WHERE p.id = $1`, productID))
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("product %d", productID))
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]core.Product, error) {
	rows, err := s.q.Query(ctx, `SELECT `+productColumns+` ORDER BY p.product_type_id, p.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Product, error) {
		return scanProduct(row)
	})
}

func (s *Store) DeleteProduct(ctx context.Context, productID int) error {
	return s.execOne(ctx, fmt.Sprintf("product %d", productID), `DELETE FROM products WHERE id = $1`, productID)
}

func (s *Store) CreatePrice(ctx context.Context, p *core.Price) error {
	p.Date = core.Day(p.Date)
	err := s.q.QueryRow(ctx, `
		INSERT INTO prices (product_id, price, date) VALUES ($1, $2, $3)
		RETURNING id`, p.ProductID, p.Price, p.Date,
	).Scan(&p.ID)
	return mapErr(err, fmt.Sprintf("price of product %d", p.ProductID))
}

func (s *Store) UpsertPrice(ctx context.Context, p *core.Price) error {
	p.Date = core.Day(p.Date)
	err := s.q.QueryRow(ctx, `
		UPDATE prices SET price = $3
		WHERE id = (
			SELECT id FROM prices WHERE product_id = $1 AND date = $2
			ORDER BY id DESC LIMIT 1
		)
		RETURNING id`, p.ProductID, p.Date, p.Price,
	).Scan(&p.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.CreatePrice(ctx, p)
	}
	return mapErr(err, fmt.Sprintf("price of product %d", p.ProductID))
}

func (s *Store) Prices(ctx context.Context, productID int) ([]core.Price, error) {
	rows, err := s.q.Query(ctx, `SELECT id, product_id, price, date FROM prices WHERE product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Price, error) {
		var p core.Price
		err := row.Scan(&p.ID, &p.ProductID, &p.Price, &p.Date)
		return p, err
	})
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *Store) CreateOrder(ctx context.Context, o *core.Order) error {
	o.Date = core.Day(o.Date)
	err := s.q.QueryRow(ctx, `INSERT INTO orders (date) VALUES ($1) RETURNING id`, o.Date).Scan(&o.ID)
	return mapErr(err, "order")
}

func (s *Store) UpdateOrder(ctx context.Context, o *core.Order) error {
	o.Date = core.Day(o.Date)
	return s.execOne(ctx, fmt.Sprintf("order %d", o.ID), `UPDATE orders SET date = $2 WHERE id = $1`, o.ID, o.Date)
}

func (s *Store) GetOrder(ctx context.Context, orderID int) (*core.Order, error) {
	o := &core.Order{}
	err := s.q.QueryRow(ctx, `SELECT id, date FROM orders WHERE id = $1`, orderID).Scan(&o.ID, &o.Date)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("order %d", orderID))
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]core.Order, error) {
	rows, err := s.q.Query(ctx, `SELECT id, date FROM orders`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Order, error) {
		var o core.Order
		err := row.Scan(&o.ID, &o.Date)
		return o, err
	})
}

func (s *Store) DeleteOrder(ctx context.Context, orderID int) error {
	return s.execOne(ctx, fmt.Sprintf("order %d", orderID), `DELETE FROM orders WHERE id = $1`, orderID)
}

func (s *Store) EnsureCustomerOrder(ctx context.Context, orderID, customerID int) (*core.CustomerOrder, error) {
	co := &core.CustomerOrder{OrderID: orderID, CustomerID: customerID}
	err := s.q.QueryRow(ctx, `
		INSERT INTO customer_orders (order_id, customer_id) VALUES ($1, $2)
		ON CONFLICT (order_id, customer_id) DO UPDATE SET order_id = EXCLUDED.order_id
		RETURNING id`, orderID, customerID,
	).Scan(&co.ID)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("order %d of customer %d", orderID, customerID))
	}
	return co, nil
}

func (s *Store) customerOrders(ctx context.Context, column string, id int) ([]core.CustomerOrder, error) {
	rows, err := s.q.Query(ctx, `SELECT id, order_id, customer_id FROM customer_orders WHERE `+column+` = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer orders: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.CustomerOrder, error) {
		var co core.CustomerOrder
		err := row.Scan(&co.ID, &co.OrderID, &co.CustomerID)
		return co, err
	})
}

func (s *Store) CustomerOrdersByCustomer(ctx context.Context, customerID int) ([]core.CustomerOrder, error) {
	return s.customerOrders(ctx, "customer_id", customerID)
}

func (s *Store) CustomerOrdersByOrder(ctx context.Context, orderID int) ([]core.CustomerOrder, error) {
	return s.customerOrders(ctx, "order_id", orderID)
}

func (s *Store) CreateProductOrder(ctx context.Context, po *core.ProductOrder) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO product_orders (customer_order_id, product_id, amount, confirmed_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, po.CustomerOrderID, po.ProductID, po.Amount, po.ConfirmedAmount,
	).Scan(&po.ID)
	return mapErr(err, fmt.Sprintf("product %d on customer order %d", po.ProductID, po.CustomerOrderID))
}

func (s *Store) UpdateProductOrder(ctx context.Context, po *core.ProductOrder) error {
	return s.execOne(ctx, fmt.Sprintf("product order %d", po.ID), `
		UPDATE product_orders SET amount = $2, confirmed_amount = $3 WHERE id = $1`,
		po.ID, po.Amount, po.ConfirmedAmount)
}

func (s *Store) ProductOrders(ctx context.Context, customerOrderID int) ([]core.ProductOrder, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, customer_order_id, product_id, amount, confirmed_amount
		FROM product_orders WHERE customer_order_id = $1`, customerOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product orders: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.ProductOrder, error) {
		var po core.ProductOrder
		err := row.Scan(&po.ID, &po.CustomerOrderID, &po.ProductID, &po.Amount, &po.ConfirmedAmount)
		return po, err
	})
}

// ── Users ────────────────────────────────────────────────────────────────────

const userColumns = `id, username, password_hash, role, is_active, created_at FROM users`

func scanUser(row pgx.Row) (*core.User, error) {
	u := &core.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, role, is_active) VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, u.Username, u.PasswordHash, u.Role, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt)
	return mapErr(err, fmt.Sprintf("user %q", u.Username))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	u, err := scanUser(s.q.QueryRow(ctx, `SELECT `+userColumns+` WHERE username = $1`, username))
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("user %q", username))
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, userID int) (*core.User, error) {
	u, err := scanUser(s.q.QueryRow(ctx, `SELECT `+userColumns+` WHERE id = $1`, userID))
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("user %d", userID))
	}
	return u, nil
}
