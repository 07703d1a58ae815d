// Package memory is an in-process core.Store backed by maps.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"bookkeeping/internal/core"
)

type tables struct {
	customers      map[int]core.Customer
	debits         map[int]core.Debit
	productTypes   map[int]core.ProductType
	products       map[int]core.Product
	prices         map[int]core.Price
	orders         map[int]core.Order
	customerOrders map[int]core.CustomerOrder
	productOrders  map[int]core.ProductOrder
	users          map[int]core.User
}

func newTables() *tables {
	return &tables{
		customers:      make(map[int]core.Customer),
		debits:         make(map[int]core.Debit),
		productTypes:   make(map[int]core.ProductType),
		products:       make(map[int]core.Product),
		prices:         make(map[int]core.Price),
		orders:         make(map[int]core.Order),
		customerOrders: make(map[int]core.CustomerOrder),
		productOrders:  make(map[int]core.ProductOrder),
		users:          make(map[int]core.User),
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		customers:      maps.Clone(t.customers),
		debits:         maps.Clone(t.debits),
		productTypes:   maps.Clone(t.productTypes),
		products:       maps.Clone(t.products),
		prices:         maps.Clone(t.prices),
		orders:         maps.Clone(t.orders),
		customerOrders: maps.Clone(t.customerOrders),
		productOrders:  make(map[int]core.ProductOrder, len(t.productOrders)),
		users:          maps.Clone(t.users),
	}
	for id, po := range t.productOrders {
		c.productOrders[id] = copyProductOrder(po)
	}
	return c
}

// merge applies the rows a transaction changed (after vs before) to live.
// Rows the transaction did not touch keep whatever live holds now.
func merge[V any](live, before, after map[int]V, same func(a, b V) bool) {
	for id, v := range after {
		if old, ok := before[id]; !ok || !same(old, v) {
			live[id] = v
		}
	}
	for id := range before {
		if _, ok := after[id]; !ok {
			delete(live, id)
		}
	}
}

func equal[V comparable](a, b V) bool { return a == b }

func (t *tables) apply(before, after *tables) {
	merge(t.customers, before.customers, after.customers, equal[core.Customer])
	merge(t.debits, before.debits, after.debits, equal[core.Debit])
	merge(t.productTypes, before.productTypes, after.productTypes, func(a, b core.ProductType) bool {
		return a.ID == b.ID && a.Name == b.Name
	})
	merge(t.products, before.products, after.products, equal[core.Product])
	merge(t.prices, before.prices, after.prices, equal[core.Price])
	merge(t.orders, before.orders, after.orders, equal[core.Order])
	merge(t.customerOrders, before.customerOrders, after.customerOrders, equal[core.CustomerOrder])
	merge(t.productOrders, before.productOrders, after.productOrders, func(a, b core.ProductOrder) bool {
		return a.ID == b.ID && a.CustomerOrderID == b.CustomerOrderID && a.ProductID == b.ProductID &&
			a.Amount == b.Amount && a.IsConfirmed() == b.IsConfirmed() && a.Quantity(core.Confirmed) == b.Quantity(core.Confirmed)
	})
	merge(t.users, before.users, after.users, equal[core.User])
}

// sequences hands out ids. A store and its transactions share one, so ids
// never collide and, as with database sequences, a rollback does not reuse them.
type sequences struct {
	mu sync.Mutex
	n  map[string]int
}

func (q *sequences) next(table string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.n[table]++
	return q.n[table]
}

// Store implements core.Store in memory. A transaction works on a copy of the
// tables; on success only the rows it changed are written back, so writes
// made outside it meanwhile survive. Transactions are serialised with each other.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	t    *tables
	ids  *sequences
}

var _ core.Store = (*Store)(nil)

func New() *Store {
	return &Store{t: newTables(), ids: &sequences{n: make(map[string]int)}}
}

func notFound(kind string, id int) error {
	return fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
}

func copyProductOrder(po core.ProductOrder) core.ProductOrder {
	if po.ConfirmedAmount != nil {
		v := *po.ConfirmedAmount
		po.ConfirmedAmount = &v
	}
	return po
}

func (s *Store) InTx(ctx context.Context, fn func(tx core.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	before := s.t.clone()
	tx := &Store{t: before.clone(), ids: s.ids}
	s.mu.RUnlock()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.t.apply(before, tx.t)
	s.mu.Unlock()
	return nil
}

// ── Customers and debits ─────────────────────────────────────────────────────

func (s *Store) CreateCustomer(_ context.Context, c *core.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.t.customers {
		if existing.Name == c.Name {
			return fmt.Errorf("customer %q: %w", c.Name, core.ErrAlreadyExists)
		}
	}
	c.ID = s.ids.next("customers")
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.t.customers[c.ID] = *c
	return nil
}

func (s *Store) UpdateCustomer(_ context.Context, c *core.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.t.customers[c.ID]
	if !ok {
		return notFound("customer", c.ID)
	}
	for _, existing := range s.t.customers {
		if existing.ID != c.ID && existing.Name == c.Name {
			return fmt.Errorf("customer %q: %w", c.Name, core.ErrAlreadyExists)
		}
	}
	current.Name = c.Name
	s.t.customers[c.ID] = current
	*c = current
	return nil
}

func (s *Store) GetCustomer(_ context.Context, customerID int) (*core.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.t.customers[customerID]
	if !ok {
		return nil, notFound("customer", customerID)
	}
	return &c, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]core.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Customer, 0, len(s.t.customers))
	for _, c := range s.t.customers {
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) DeleteCustomer(_ context.Context, customerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.customers[customerID]; !ok {
		return notFound("customer", customerID)
	}
	for id, d := range s.t.debits {
		if d.CustomerID == customerID {
			delete(s.t.debits, id)
		}
	}
	for id, co := range s.t.customerOrders {
		if co.CustomerID == customerID {
			s.deleteCustomerOrderLocked(id)
		}
	}
	delete(s.t.customers, customerID)
	return nil
}

func (s *Store) CreateDebit(_ context.Context, d *core.Debit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.customers[d.CustomerID]; !ok {
		return notFound("customer", d.CustomerID)
	}
	d.ID = s.ids.next("debits")
	d.Date = core.Day(d.Date)
	s.t.debits[d.ID] = *d
	return nil
}

func (s *Store) UpdateDebit(_ context.Context, d *core.Debit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.t.debits[d.ID]
	if !ok {
		return notFound("debit", d.ID)
	}
	current.Amount = d.Amount
	current.Date = core.Day(d.Date)
	s.t.debits[d.ID] = current
	*d = current
	return nil
}

func (s *Store) GetDebit(_ context.Context, debitID int) (*core.Debit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.t.debits[debitID]
	if !ok {
		return nil, notFound("debit", debitID)
	}
	return &d, nil
}

func (s *Store) DeleteDebit(_ context.Context, debitID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.debits[debitID]; !ok {
		return notFound("debit", debitID)
	}
	delete(s.t.debits, debitID)
	return nil
}

func (s *Store) DebitsByCustomer(_ context.Context, customerID int) ([]core.Debit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Debit
	for _, d := range s.t.debits {
		if d.CustomerID == customerID {
			out = append(out, d)
		}
	}
	return out, nil
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (s *Store) CreateProductType(_ context.Context, pt *core.ProductType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.t.productTypes {
		if existing.Name == pt.Name {
			return fmt.Errorf("product type %q: %w", pt.Name, core.ErrAlreadyExists)
		}
	}
	pt.ID = s.ids.next("product_types")
	s.t.productTypes[pt.ID] = core.ProductType{ID: pt.ID, Name: pt.Name}
	return nil
}

func (s *Store) UpdateProductType(_ context.Context, pt *core.ProductType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.productTypes[pt.ID]; !ok {
		return notFound("product type", pt.ID)
	}
	for _, existing := range s.t.productTypes {
		if existing.ID != pt.ID && existing.Name == pt.Name {
			return fmt.Errorf("product type %q: %w", pt.Name, core.ErrAlreadyExists)
		}
	}
	s.t.productTypes[pt.ID] = core.ProductType{ID: pt.ID, Name: pt.Name}
	return nil
}

func (s *Store) GetProductType(_ context.Context, productTypeID int) (*core.ProductType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pt, ok := s.t.productTypes[productTypeID]
	if !ok {
		return nil, notFound("product type", productTypeID)
	}
	return &pt, nil
}

func (s *Store) ListProductTypes(_ context.Context) ([]core.ProductType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.ProductType, 0, len(s.t.productTypes))
	for _, pt := range s.t.productTypes {
		out = append(out, pt)
	}
	slices.SortFunc(out, func(a, b core.ProductType) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) DeleteProductType(_ context.Context, productTypeID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.productTypes[productTypeID]; !ok {
		return notFound("product type", productTypeID)
	}
	for id, p := range s.t.products {
		if p.ProductTypeID == productTypeID {
			s.deleteProductLocked(id)
		}
	}
	delete(s.t.productTypes, productTypeID)
	return nil
}

func (s *Store) CreateProduct(_ context.Context, p *core.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pt, ok := s.t.productTypes[p.ProductTypeID]
	if !ok {
		return notFound("product type", p.ProductTypeID)
	}
	p.ID = s.ids.next("products")
	p.TypeName = pt.Name
	s.t.products[p.ID] = core.Product{ID: p.ID, ProductTypeID: p.ProductTypeID, Name: p.Name}
	return nil
}

func (s *Store) UpdateProduct(_ context.Context, p *core.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.t.products[p.ID]
	if !ok {
		return notFound("product", p.ID)
	}
	current.Name = p.Name
	s.t.products[p.ID] = current
	return nil
}

func (s *Store) GetProduct(_ context.Context, productID int) (*core.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.t.products[productID]
	if !ok {
		return nil, notFound("product", productID)
	}
	p.TypeName = s.t.productTypes[p.ProductTypeID].Name
	return &p, nil
}

func (s *Store) ListProducts(_ context.Context) ([]core.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Product, 0, len(s.t.products))
	for _, p := range s.t.products {
		p.TypeName = s.t.productTypes[p.ProductTypeID].Name
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b core.Product) int {
		return cmp.Or(cmp.Compare(a.ProductTypeID, b.ProductTypeID), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *Store) DeleteProduct(_ context.Context, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.products[productID]; !ok {
		return notFound("product", productID)
	}
	s.deleteProductLocked(productID)
	return nil
}

func (s *Store) deleteProductLocked(productID int) {
	for id, p := range s.t.prices {
		if p.ProductID == productID {
			delete(s.t.prices, id)
		}
	}
	for id, po := range s.t.productOrders {
		if po.ProductID == productID {
			delete(s.t.productOrders, id)
		}
	}
	delete(s.t.products, productID)
}

func (s *Store) CreatePrice(_ context.Context, p *core.Price) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.products[p.ProductID]; !ok {
		return notFound("product", p.ProductID)
	}
	p.ID = s.ids.next("prices")
	p.Date = core.Day(p.Date)
	s.t.prices[p.ID] = *p
	return nil
}

func (s *Store) UpsertPrice(_ context.Context, p *core.Price) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.products[p.ProductID]; !ok {
		return notFound("product", p.ProductID)
	}
	p.Date = core.Day(p.Date)
	match := 0
	for id, existing := range s.t.prices {
		if existing.ProductID == p.ProductID && existing.Date.Equal(p.Date) && id > match {
			match = id
		}
	}
	if match == 0 {
		p.ID = s.ids.next("prices")
	} else {
		p.ID = match
	}
	s.t.prices[p.ID] = *p
	return nil
}

func (s *Store) Prices(_ context.Context, productID int) ([]core.Price, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Price
	for _, p := range s.t.prices {
		if p.ProductID == productID {
			out = append(out, p)
		}
	}
	return out, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *Store) CreateOrder(_ context.Context, o *core.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = s.ids.next("orders")
	o.Date = core.Day(o.Date)
	s.t.orders[o.ID] = *o
	return nil
}

func (s *Store) UpdateOrder(_ context.Context, o *core.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.orders[o.ID]; !ok {
		return notFound("order", o.ID)
	}
	o.Date = core.Day(o.Date)
	s.t.orders[o.ID] = *o
	return nil
}

func (s *Store) GetOrder(_ context.Context, orderID int) (*core.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.t.orders[orderID]
	if !ok {
		return nil, notFound("order", orderID)
	}
	return &o, nil
}

func (s *Store) ListOrders(_ context.Context) ([]core.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Order, 0, len(s.t.orders))
	for _, o := range s.t.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *Store) DeleteOrder(_ context.Context, orderID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.orders[orderID]; !ok {
		return notFound("order", orderID)
	}
	for id, co := range s.t.customerOrders {
		if co.OrderID == orderID {
			s.deleteCustomerOrderLocked(id)
		}
	}
	delete(s.t.orders, orderID)
	return nil
}

func (s *Store) deleteCustomerOrderLocked(customerOrderID int) {
	for id, po := range s.t.productOrders {
		if po.CustomerOrderID == customerOrderID {
			delete(s.t.productOrders, id)
		}
	}
	delete(s.t.customerOrders, customerOrderID)
}

func (s *Store) EnsureCustomerOrder(_ context.Context, orderID, customerID int) (*core.CustomerOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.orders[orderID]; !ok {
		return nil, notFound("order", orderID)
	}
	if _, ok := s.t.customers[customerID]; !ok {
		return nil, notFound("customer", customerID)
	}
	for _, co := range s.t.customerOrders {
		if co.OrderID == orderID && co.CustomerID == customerID {
			return &co, nil
		}
	}
	co := core.CustomerOrder{ID: s.ids.next("customer_orders"), OrderID: orderID, CustomerID: customerID}
	s.t.customerOrders[co.ID] = co
	return &co, nil
}

func (s *Store) CustomerOrdersByCustomer(_ context.Context, customerID int) ([]core.CustomerOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.CustomerOrder
	for _, co := range s.t.customerOrders {
		if co.CustomerID == customerID {
			out = append(out, co)
		}
	}
	return out, nil
}

func (s *Store) CustomerOrdersByOrder(_ context.Context, orderID int) ([]core.CustomerOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.CustomerOrder
	for _, co := range s.t.customerOrders {
		if co.OrderID == orderID {
			out = append(out, co)
		}
	}
	return out, nil
}

func (s *Store) CreateProductOrder(_ context.Context, po *core.ProductOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.t.customerOrders[po.CustomerOrderID]; !ok {
		return notFound("customer order", po.CustomerOrderID)
	}
	if _, ok := s.t.products[po.ProductID]; !ok {
		return notFound("product", po.ProductID)
	}
	for _, existing := range s.t.productOrders {
		if existing.CustomerOrderID == po.CustomerOrderID && existing.ProductID == po.ProductID {
			return fmt.Errorf("product %d on customer order %d: %w", po.ProductID, po.CustomerOrderID, core.ErrAlreadyExists)
		}
	}
	po.ID = s.ids.next("product_orders")
	s.t.productOrders[po.ID] = copyProductOrder(*po)
	return nil
}

func (s *Store) UpdateProductOrder(_ context.Context, po *core.ProductOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.t.productOrders[po.ID]
	if !ok {
		return notFound("product order", po.ID)
	}
	current.Amount = po.Amount
	current.ConfirmedAmount = po.ConfirmedAmount
	s.t.productOrders[po.ID] = copyProductOrder(current)
	return nil
}

func (s *Store) ProductOrders(_ context.Context, customerOrderID int) ([]core.ProductOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.ProductOrder
	for _, po := range s.t.productOrders {
		if po.CustomerOrderID == customerOrderID {
			out = append(out, copyProductOrder(po))
		}
	}
	return out, nil
}

// ── Users ────────────────────────────────────────────────────────────────────

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.t.users {
		if existing.Username == u.Username {
			return fmt.Errorf("user %q: %w", u.Username, core.ErrAlreadyExists)
		}
	}
	u.ID = s.ids.next("users")
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.t.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.t.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, core.ErrNotFound)
}

func (s *Store) GetUserByID(_ context.Context, userID int) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.t.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	return &u, nil
}
