package core

import "time"

// CustomerQuantities is one customer's row of an order form: product id → quantity.
// Products missing from Quantities count as 0.
type CustomerQuantities struct {
	CustomerID int           `json:"customer_id"`
	Quantities map[int]int64 `json:"quantities"`
}

// OrderSheet is the customers × products table of one order.
// Columns follow Products; each row's Quantities and Totals align with it.
type OrderSheet struct {
	Order         Order           `json:"order"`
	Kind          AmountKind      `json:"kind"`
	Products      []Product       `json:"products"`
	Rows          []OrderSheetRow `json:"rows"`
	Totals        []int64         `json:"totals"`
	RequestedCost int64           `json:"requested_cost"`
	ConfirmedCost int64           `json:"confirmed_cost"`
}

// OrderSheetRow is one customer's part of an OrderSheet.
type OrderSheetRow struct {
	CustomerOrderID int     `json:"customer_order_id"`
	CustomerID      int     `json:"customer_id"`
	CustomerName    string  `json:"customer_name"`
	Quantities      []int64 `json:"quantities"`
	RequestedCost   int64   `json:"requested_cost"`
	ConfirmedCost   int64   `json:"confirmed_cost"`
}

// Headers returns the display names of the sheet's product columns.
func (s *OrderSheet) Headers() []string {
	out := make([]string, len(s.Products))
	for i, p := range s.Products {
		out[i] = p.DisplayName()
	}
	return out
}

// OrderSummary is an order with both of its totals, as listed.
type OrderSummary struct {
	ID            int       `json:"id"`
	Date          time.Time `json:"date"`
	Customers     int       `json:"customers"`
	RequestedCost int64     `json:"requested_cost"`
	ConfirmedCost int64     `json:"confirmed_cost"`
}
