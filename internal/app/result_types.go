package app

import "bookkeeping/internal/core"

// CustomerBalance is a customer with the current balance of their ledger.
type CustomerBalance struct {
	core.Customer
	Balance int64 `json:"balance"`
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []CustomerBalance `json:"customers"`
}

// LedgerResult is returned by GetCustomerLedger.
type LedgerResult struct {
	Customer core.Customer        `json:"customer"`
	Lines    []core.StatementLine `json:"transfers"`
	Balance  int64                `json:"balance"`
}

// BalanceResult is returned by GetBalance.
type BalanceResult struct {
	CustomerID int   `json:"customer_id"`
	Balance    int64 `json:"balance"`
}

// DebitListResult is returned by ListDebits.
type DebitListResult struct {
	CustomerID int          `json:"customer_id"`
	Debits     []core.Debit `json:"debits"`
}

// CatalogResult is returned by ListProductTypes.
type CatalogResult struct {
	ProductTypes []core.ProductType `json:"product_types"`
}

// PriceHistoryResult is returned by GetPriceHistory.
type PriceHistoryResult struct {
	Product core.Product `json:"product"`
	Prices  []core.Price `json:"prices"`
}

// PriceAtResult is returned by GetPriceAt.
type PriceAtResult struct {
	ProductID int    `json:"product_id"`
	Date      string `json:"date"`
	Price     int64  `json:"price"`
}

// OrderResult is returned by order operations.
type OrderResult struct {
	Order core.Order `json:"order"`
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.OrderSummary `json:"orders"`
}

// OrderCostResult is returned by GetOrderCost.
type OrderCostResult struct {
	OrderID int             `json:"order_id"`
	Kind    core.AmountKind `json:"kind"`
	Cost    int64           `json:"cost"`
}

// AIResult is returned by InterpretPayment.
type AIResult struct {
	Proposal             *core.PaymentProposal `json:"proposal,omitempty"`
	ClarificationMessage string                `json:"clarification_message,omitempty"`
	IsClarification      bool                  `json:"is_clarification"`
}

// UserSession identifies an authenticated user.
type UserSession struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserResult is returned by GetUser.
type UserResult struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}
