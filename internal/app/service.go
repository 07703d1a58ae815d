package app

import (
	"context"

	"bookkeeping/internal/core"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ── Customers and payments ──

	// ListCustomers returns every customer, ordered by name, with their balance.
	ListCustomers(ctx context.Context) (*CustomerListResult, error)
	CreateCustomer(ctx context.Context, name string) (*core.Customer, error)
	RenameCustomer(ctx context.Context, customerID int, name string) (*core.Customer, error)
	DeleteCustomer(ctx context.Context, customerID int) error

	// GetCustomerLedger returns the customer's transfers with running balances.
	GetCustomerLedger(ctx context.Context, customerID int) (*LedgerResult, error)
	GetBalance(ctx context.Context, customerID int) (*BalanceResult, error)

	// ListDebits returns a customer's payments; a non-empty on (YYYY-MM-DD) keeps that day only.
	ListDebits(ctx context.Context, customerID int, on string) (*DebitListResult, error)
	RecordDebit(ctx context.Context, req RecordDebitRequest) (*core.Debit, error)
	UpdateDebit(ctx context.Context, debitID int, req UpdateDebitRequest) (*core.Debit, error)
	DeleteDebit(ctx context.Context, debitID int) error

	// ── Catalog ──

	// ListProductTypes returns the catalog with current prices.
	ListProductTypes(ctx context.Context) (*CatalogResult, error)
	CreateProductType(ctx context.Context, name string) (*core.ProductType, error)
	RenameProductType(ctx context.Context, productTypeID int, name string) (*core.ProductType, error)
	DeleteProductType(ctx context.Context, productTypeID int) error
	CreateProduct(ctx context.Context, req CreateProductRequest) (*core.Product, error)
	UpdateProduct(ctx context.Context, productID int, req UpdateProductRequest) (*core.Product, error)
	DeleteProduct(ctx context.Context, productID int) error
	GetPriceHistory(ctx context.Context, productID int) (*PriceHistoryResult, error)
	AddPrice(ctx context.Context, req AddPriceRequest) (*core.Price, error)
	// GetPriceAt resolves the price in effect on date (YYYY-MM-DD; empty means today).
	GetPriceAt(ctx context.Context, productID int, date string) (*PriceAtResult, error)

	// ── Orders ──

	// ListOrders returns every order with its totals, newest first.
	ListOrders(ctx context.Context) (*OrderListResult, error)
	GetOrder(ctx context.Context, orderID int) (*OrderResult, error)
	GetLatestOrder(ctx context.Context) (*OrderResult, error)
	CreateOrder(ctx context.Context, req SaveOrderRequest) (*OrderResult, error)
	UpdateOrder(ctx context.Context, orderID int, req SaveOrderRequest) (*OrderResult, error)
	// ConfirmOrder records confirmed amounts; only these reach customer ledgers.
	ConfirmOrder(ctx context.Context, orderID int, req SaveOrderRequest) (*OrderResult, error)
	DeleteOrder(ctx context.Context, orderID int) error
	// GetOrderSheet returns the customers × products table; kind is "requested" or "confirmed".
	GetOrderSheet(ctx context.Context, orderID int, kind string) (*core.OrderSheet, error)
	GetOrderCost(ctx context.Context, orderID int, kind string) (*OrderCostResult, error)

	// ── AI payment entry ──

	// InterpretPayment sends free text to the AI agent and returns either a
	// payment proposal or a clarification request. Nothing is recorded.
	InterpretPayment(ctx context.Context, text string) (*AIResult, error)
	// CommitPaymentProposal records a proposal as a Debit.
	// Must only be called after explicit user approval.
	CommitPaymentProposal(ctx context.Context, proposal core.PaymentProposal) (*core.Debit, error)

	// ── Users ──

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)
	// GetUser returns user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResult, error)
}
