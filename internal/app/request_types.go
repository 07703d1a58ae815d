package app

import (
	"bookkeeping/internal/core"

	"github.com/shopspring/decimal"
)

// RecordDebitRequest is the input for recording a customer payment.
type RecordDebitRequest struct {
	CustomerID int
	Amount     decimal.Decimal
	Date       string // YYYY-MM-DD; empty means today
}

// UpdateDebitRequest replaces a payment's amount and date.
type UpdateDebitRequest struct {
	Amount decimal.Decimal
	Date   string
}

// CreateProductRequest is the input for adding a product variant.
type CreateProductRequest struct {
	ProductTypeID int
	Name          string
	Price         *decimal.Decimal // optional initial price, dated today
}

// UpdateProductRequest renames a variant and optionally sets today's price.
type UpdateProductRequest struct {
	Name  string
	Price *decimal.Decimal
}

// AddPriceRequest appends an entry to a product's price history.
type AddPriceRequest struct {
	ProductID int
	Price     decimal.Decimal
	Date      string // YYYY-MM-DD; empty means today
}

// SaveOrderRequest carries an order form: the date and one row per customer.
// Date is ignored when confirming.
type SaveOrderRequest struct {
	Date   string
	Sheets []core.CustomerQuantities
}

// CreateUserRequest is the input for adding a staff account.
type CreateUserRequest struct {
	Username string
	Password string
	Role     string
}
