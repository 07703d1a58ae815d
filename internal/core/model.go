package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar days.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day.
// All entity dates are stored and compared as days.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day.
func Today() time.Time {
	return Day(time.Now())
}

// ParseDate parses a YYYY-MM-DD string into a day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ValidationError{Field: "date", Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return t, nil
}

// Customer is a buyer whose payments and confirmed orders make up a ledger.
type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Debit is a payment received from a customer. Amount may be negative (refund/correction).
type Debit struct {
	ID         int       `json:"id"`
	CustomerID int       `json:"customer_id"`
	Amount     int64     `json:"amount"`
	Date       time.Time `json:"date"`
}

// ProductType groups product variants ("Milk", "Cheese").
type ProductType struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Products []Product `json:"products,omitempty"`
}

// Product is a variant of a product type. Name is a variant label and may be blank.
type Product struct {
	ID            int    `json:"id"`
	ProductTypeID int    `json:"product_type_id"`
	TypeName      string `json:"type_name"` // joined from product_types
	Name          string `json:"name"`
	CurrentPrice  int64  `json:"current_price"` // filled by listings only
}

// DisplayName renders "<type> <variant>".
func (p Product) DisplayName() string {
	return strings.TrimSpace(p.TypeName + " " + p.Name)
}

// Price is one entry in a product's price history, in whole currency units.
type Price struct {
	ID        int       `json:"id"`
	ProductID int       `json:"product_id"`
	Price     int64     `json:"price"`
	Date      time.Time `json:"date"`
}

// Order is a dated document shared by many customers.
type Order struct {
	ID   int       `json:"id"`
	Date time.Time `json:"date"`
}

// CustomerOrder is one customer's part of an Order.
type CustomerOrder struct {
	ID         int `json:"id"`
	OrderID    int `json:"order_id"`
	CustomerID int `json:"customer_id"`
}

// ProductOrder is a line of a CustomerOrder.
// ConfirmedAmount is nil until the line has been confirmed.
type ProductOrder struct {
	ID              int    `json:"id"`
	CustomerOrderID int    `json:"customer_order_id"`
	ProductID       int    `json:"product_id"`
	Amount          int64  `json:"amount"`
	ConfirmedAmount *int64 `json:"confirmed_amount"`
}

// AmountKind selects which quantity of a ProductOrder a cost is computed from.
type AmountKind string

const (
	Requested AmountKind = "requested"
	Confirmed AmountKind = "confirmed"
)

// ParseAmountKind accepts "requested" or "confirmed"; empty means Confirmed.
func ParseAmountKind(s string) (AmountKind, error) {
	switch AmountKind(strings.ToLower(strings.TrimSpace(s))) {
	case Requested:
		return Requested, nil
	case Confirmed, "":
		return Confirmed, nil
	}
	return "", ValidationError{Field: "kind", Message: fmt.Sprintf("unknown amount kind %q", s)}
}

// Quantity returns the quantity for kind. An unconfirmed line has confirmed quantity 0.
func (po ProductOrder) Quantity(kind AmountKind) int64 {
	if kind == Requested {
		return po.Amount
	}
	if po.ConfirmedAmount == nil {
		return 0
	}
	return *po.ConfirmedAmount
}

// IsConfirmed reports whether a confirmed quantity has been recorded, including an explicit zero.
func (po ProductOrder) IsConfirmed() bool {
	return po.ConfirmedAmount != nil
}
