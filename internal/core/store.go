package core

import (
	"context"
	"time"
)

// EntityReader is the read side the ledger and cost computations depend on.
// Collections come back in no particular order; callers sort.
type EntityReader interface {
	DebitsByCustomer(ctx context.Context, customerID int) ([]Debit, error)
	CustomerOrdersByCustomer(ctx context.Context, customerID int) ([]CustomerOrder, error)
	CustomerOrdersByOrder(ctx context.Context, orderID int) ([]CustomerOrder, error)
	ProductOrders(ctx context.Context, customerOrderID int) ([]ProductOrder, error)
	Prices(ctx context.Context, productID int) ([]Price, error)
	GetOrder(ctx context.Context, orderID int) (*Order, error)
}

// Store is the full entity store: EntityReader plus record keeping writes.
// Deletes cascade the way the schema's foreign keys do.
type Store interface {
	EntityReader

	// Customers and debits
	CreateCustomer(ctx context.Context, c *Customer) error
	UpdateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, customerID int) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	DeleteCustomer(ctx context.Context, customerID int) error
	CreateDebit(ctx context.Context, d *Debit) error
	UpdateDebit(ctx context.Context, d *Debit) error
	GetDebit(ctx context.Context, debitID int) (*Debit, error)
	DeleteDebit(ctx context.Context, debitID int) error

	// Catalog
	CreateProductType(ctx context.Context, pt *ProductType) error
	UpdateProductType(ctx context.Context, pt *ProductType) error
	GetProductType(ctx context.Context, productTypeID int) (*ProductType, error)
	ListProductTypes(ctx context.Context) ([]ProductType, error)
	DeleteProductType(ctx context.Context, productTypeID int) error
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, productID int) (*Product, error)
	// ListProducts returns every product ordered by product type id, then product id.
	ListProducts(ctx context.Context) ([]Product, error)
	DeleteProduct(ctx context.Context, productID int) error
	CreatePrice(ctx context.Context, p *Price) error
	// UpsertPrice updates the price of the row dated p.Date (highest id if several) or inserts one.
	UpsertPrice(ctx context.Context, p *Price) error

	// Orders
	CreateOrder(ctx context.Context, o *Order) error
	UpdateOrder(ctx context.Context, o *Order) error
	ListOrders(ctx context.Context) ([]Order, error)
	DeleteOrder(ctx context.Context, orderID int) error
	// EnsureCustomerOrder returns the customer's sub-order of orderID, creating it when missing.
	EnsureCustomerOrder(ctx context.Context, orderID, customerID int) (*CustomerOrder, error)
	CreateProductOrder(ctx context.Context, po *ProductOrder) error
	UpdateProductOrder(ctx context.Context, po *ProductOrder) error

	// Users
	CreateUser(ctx context.Context, u *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, userID int) (*User, error)

	// InTx runs fn against a store whose writes commit together or not at all.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// orderLess sorts orders by date, then id.
func orderLess(a, b Order) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.ID < b.ID
}

// LatestOf returns the order with the greatest (date, id), or false for an empty slice.
func LatestOf(orders []Order) (Order, bool) {
	var latest Order
	found := false
	for _, o := range orders {
		if !found || orderLess(latest, o) {
			latest, found = o, true
		}
	}
	return latest, found
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
