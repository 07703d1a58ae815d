package core

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// OrderService manages orders through their order sheets: requested amounts
// are entered when the order is created or edited, confirmed amounts when it
// is confirmed. Only confirmed amounts reach the customer ledger.
type OrderService interface {
	CreateOrder(ctx context.Context, date time.Time, sheets []CustomerQuantities) (*Order, error)
	// UpdateOrder moves the order to date and saves requested amounts.
	UpdateOrder(ctx context.Context, orderID int, date time.Time, sheets []CustomerQuantities) (*Order, error)
	// ConfirmOrder saves confirmed amounts. The order date is not editable here.
	ConfirmOrder(ctx context.Context, orderID int, sheets []CustomerQuantities) (*Order, error)
	GetOrder(ctx context.Context, orderID int) (*Order, error)
	// ListOrders returns every order with its totals, newest first.
	ListOrders(ctx context.Context) ([]OrderSummary, error)
	// LatestOrder returns the order with the latest date, the highest id on ties.
	LatestOrder(ctx context.Context) (*Order, error)
	DeleteOrder(ctx context.Context, orderID int) error

	OrderSheet(ctx context.Context, orderID int, kind AmountKind) (*OrderSheet, error)
	OrderCost(ctx context.Context, orderID int, kind AmountKind) (int64, error)
}

type orderService struct {
	store Store
	costs *CostCalculator
}

func NewOrderService(store Store) OrderService {
	return &orderService{store: store, costs: NewCostCalculator(store)}
}

// ── Sheet save ───────────────────────────────────────────────────────────────

func (s *orderService) CreateOrder(ctx context.Context, date time.Time, sheets []CustomerQuantities) (*Order, error) {
	if date.IsZero() {
		return nil, ValidationError{Field: "date", Message: "is required"}
	}
	var created *Order
	err := s.store.InTx(ctx, func(tx Store) error {
		o := &Order{Date: Day(date)}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := saveSheets(ctx, tx, o.ID, sheets, Requested); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, orderID int, date time.Time, sheets []CustomerQuantities) (*Order, error) {
	if date.IsZero() {
		return nil, ValidationError{Field: "date", Message: "is required"}
	}
	var updated *Order
	err := s.store.InTx(ctx, func(tx Store) error {
		o, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		o.Date = Day(date)
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return fmt.Errorf("failed to update order %d: %w", orderID, err)
		}
		if err := saveSheets(ctx, tx, o.ID, sheets, Requested); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *orderService) ConfirmOrder(ctx context.Context, orderID int, sheets []CustomerQuantities) (*Order, error) {
	var confirmed *Order
	err := s.store.InTx(ctx, func(tx Store) error {
		o, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := saveSheets(ctx, tx, o.ID, sheets, Confirmed); err != nil {
			return err
		}
		confirmed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// saveSheets writes one field of every product line named by sheets.
// A positive quantity creates or updates the line; anything else zeroes the
// field of an existing line and creates nothing.
func saveSheets(ctx context.Context, tx Store, orderID int, sheets []CustomerQuantities, kind AmountKind) error {
	products, err := tx.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}
	known := make(map[int]bool, len(products))
	for _, p := range products {
		known[p.ID] = true
	}

	seen := make(map[int]bool, len(sheets))
	for _, sheet := range sheets {
		if seen[sheet.CustomerID] {
			return ValidationError{Field: "customer_id", Message: fmt.Sprintf("customer %d appears twice", sheet.CustomerID)}
		}
		seen[sheet.CustomerID] = true
		for productID, qty := range sheet.Quantities {
			if !known[productID] {
				return notFound("product", productID)
			}
			if qty > MaxQuantity {
				return ValidationError{Field: "quantity", Message: fmt.Sprintf("%d for product %d exceeds %d", qty, productID, MaxQuantity)}
			}
		}
		if _, err := tx.GetCustomer(ctx, sheet.CustomerID); err != nil {
			return err
		}

		co, err := tx.EnsureCustomerOrder(ctx, orderID, sheet.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to save order of customer %d: %w", sheet.CustomerID, err)
		}
		lines, err := tx.ProductOrders(ctx, co.ID)
		if err != nil {
			return fmt.Errorf("failed to load lines of customer order %d: %w", co.ID, err)
		}
		existing := make(map[int]ProductOrder, len(lines))
		for _, po := range lines {
			existing[po.ProductID] = po
		}

		for _, p := range products {
			qty := sheet.Quantities[p.ID]
			po, ok := existing[p.ID]
			if qty <= 0 {
				if !ok {
					continue
				}
				setQuantity(&po, 0, kind)
				if err := tx.UpdateProductOrder(ctx, &po); err != nil {
					return fmt.Errorf("failed to clear line %d: %w", po.ID, err)
				}
				continue
			}
			if ok {
				setQuantity(&po, qty, kind)
				if err := tx.UpdateProductOrder(ctx, &po); err != nil {
					return fmt.Errorf("failed to update line %d: %w", po.ID, err)
				}
				continue
			}
			po = ProductOrder{CustomerOrderID: co.ID, ProductID: p.ID}
			setQuantity(&po, qty, kind)
			if err := tx.CreateProductOrder(ctx, &po); err != nil {
				return fmt.Errorf("failed to add product %d to customer order %d: %w", p.ID, co.ID, err)
			}
		}
	}
	return nil
}

func setQuantity(po *ProductOrder, qty int64, kind AmountKind) {
	if kind == Requested {
		po.Amount = qty
		return
	}
	po.ConfirmedAmount = &qty
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *orderService) GetOrder(ctx context.Context, orderID int) (*Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

func (s *orderService) ListOrders(ctx context.Context) ([]OrderSummary, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	sort.Slice(orders, func(i, j int) bool { return orderLess(orders[j], orders[i]) })

	book := s.costs.newPriceBook()
	summaries := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		cos, err := s.store.CustomerOrdersByOrder(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load customers of order %d: %w", o.ID, err)
		}
		sum := OrderSummary{ID: o.ID, Date: o.Date, Customers: len(cos)}
		for _, co := range cos {
			req, err := book.customerOrderCost(ctx, co, o.Date, Requested)
			if err != nil {
				return nil, err
			}
			conf, err := book.customerOrderCost(ctx, co, o.Date, Confirmed)
			if err != nil {
				return nil, err
			}
			sum.RequestedCost += req
			sum.ConfirmedCost += conf
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (s *orderService) LatestOrder(ctx context.Context) (*Order, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	latest, ok := LatestOf(orders)
	if !ok {
		return nil, fmt.Errorf("no orders yet: %w", ErrNotFound)
	}
	return &latest, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, orderID int) error {
	return s.store.DeleteOrder(ctx, orderID)
}

func (s *orderService) OrderCost(ctx context.Context, orderID int, kind AmountKind) (int64, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	return s.costs.OrderCost(ctx, *o, kind)
}

func (s *orderService) OrderSheet(ctx context.Context, orderID int, kind AmountKind) (*OrderSheet, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	cos, err := s.store.CustomerOrdersByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers of order %d: %w", orderID, err)
	}

	column := make(map[int]int, len(products))
	for i, p := range products {
		column[p.ID] = i
	}

	sheet := &OrderSheet{
		Order:    *o,
		Kind:     kind,
		Products: products,
		Rows:     make([]OrderSheetRow, 0, len(cos)),
		Totals:   make([]int64, len(products)),
	}
	book := s.costs.newPriceBook()
	for _, co := range cos {
		c, err := s.store.GetCustomer(ctx, co.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load customer %d: %w", co.CustomerID, err)
		}
		lines, err := s.store.ProductOrders(ctx, co.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load lines of customer order %d: %w", co.ID, err)
		}
		row := OrderSheetRow{
			CustomerOrderID: co.ID,
			CustomerID:      c.ID,
			CustomerName:    c.Name,
			Quantities:      make([]int64, len(products)),
		}
		for _, po := range lines {
			i, ok := column[po.ProductID]
			if !ok {
				continue
			}
			qty := po.Quantity(kind)
			row.Quantities[i] = qty
			sheet.Totals[i] += qty

			req, err := book.lineCost(ctx, po, o.Date, Requested)
			if err != nil {
				return nil, err
			}
			conf, err := book.lineCost(ctx, po, o.Date, Confirmed)
			if err != nil {
				return nil, err
			}
			row.RequestedCost += req
			row.ConfirmedCost += conf
		}
		sheet.RequestedCost += row.RequestedCost
		sheet.ConfirmedCost += row.ConfirmedCost
		sheet.Rows = append(sheet.Rows, row)
	}
	sort.SliceStable(sheet.Rows, func(i, j int) bool {
		a, b := sheet.Rows[i], sheet.Rows[j]
		if a.CustomerName != b.CustomerName {
			return a.CustomerName < b.CustomerName
		}
		return a.CustomerOrderID < b.CustomerOrderID
	})
	return sheet, nil
}
