package core

import (
	"context"
	"fmt"
	"time"
)

// LineCost is quantity(kind) × unit price.
func LineCost(po ProductOrder, price int64, kind AmountKind) int64 {
	return po.Quantity(kind) * price
}

// CostCalculator prices order lines against the price history as it stood
// on the order's own date.
type CostCalculator struct {
	reader EntityReader
}

func NewCostCalculator(reader EntityReader) *CostCalculator {
	return &CostCalculator{reader: reader}
}

// priceBook memoises product histories for the length of one computation.
type priceBook struct {
	reader  EntityReader
	history map[int][]Price
}

func (c *CostCalculator) newPriceBook() *priceBook {
	return &priceBook{reader: c.reader, history: make(map[int][]Price)}
}

func (b *priceBook) priceAt(ctx context.Context, productID int, asOf time.Time) (int64, error) {
	prices, ok := b.history[productID]
	if !ok {
		var err error
		prices, err = b.reader.Prices(ctx, productID)
		if err != nil {
			return 0, fmt.Errorf("failed to load prices of product %d: %w", productID, err)
		}
		b.history[productID] = prices
	}
	return ResolvePrice(prices, asOf), nil
}

// LineCost prices one ProductOrder belonging to an order dated orderDate.
func (c *CostCalculator) LineCost(ctx context.Context, po ProductOrder, orderDate time.Time, kind AmountKind) (int64, error) {
	return c.newPriceBook().lineCost(ctx, po, orderDate, kind)
}

func (b *priceBook) lineCost(ctx context.Context, po ProductOrder, orderDate time.Time, kind AmountKind) (int64, error) {
	if po.Quantity(kind) == 0 {
		return 0, nil
	}
	price, err := b.priceAt(ctx, po.ProductID, orderDate)
	if err != nil {
		return 0, err
	}
	return LineCost(po, price, kind), nil
}

// CustomerOrderCost sums the line costs of one customer's sub-order.
func (c *CostCalculator) CustomerOrderCost(ctx context.Context, co CustomerOrder, kind AmountKind) (int64, error) {
	order, err := c.reader.GetOrder(ctx, co.OrderID)
	if err != nil {
		return 0, fmt.Errorf("failed to load order %d: %w", co.OrderID, err)
	}
	return c.newPriceBook().customerOrderCost(ctx, co, order.Date, kind)
}

func (b *priceBook) customerOrderCost(ctx context.Context, co CustomerOrder, orderDate time.Time, kind AmountKind) (int64, error) {
	lines, err := b.reader.ProductOrders(ctx, co.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load lines of customer order %d: %w", co.ID, err)
	}
	var total int64
	for _, po := range lines {
		cost, err := b.lineCost(ctx, po, orderDate, kind)
		if err != nil {
			return 0, err
		}
		total += cost
	}
	return total, nil
}

// OrderCost sums CustomerOrderCost over every customer of the order.
func (c *CostCalculator) OrderCost(ctx context.Context, order Order, kind AmountKind) (int64, error) {
	cos, err := c.reader.CustomerOrdersByOrder(ctx, order.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load customers of order %d: %w", order.ID, err)
	}
	book := c.newPriceBook()
	var total int64
	for _, co := range cos {
		cost, err := book.customerOrderCost(ctx, co, order.Date, kind)
		if err != nil {
			return 0, err
		}
		total += cost
	}
	return total, nil
}
