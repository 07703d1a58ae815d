package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookkeeping/internal/ai"
	"bookkeeping/internal/core"

	"github.com/shopspring/decimal"
)

// ErrAIUnavailable is returned by InterpretPayment when no agent is configured.
var ErrAIUnavailable = errors.New("AI assistant not configured (set OPENAI_API_KEY)")

type appService struct {
	customers core.CustomerService
	catalog   core.CatalogService
	orders    core.OrderService
	users     core.UserService
	ledger    *core.Ledger
	agent     ai.AgentService
	now       func() time.Time
}

// NewAppService constructs an appService over store. agent may be nil.
func NewAppService(store core.Store, agent ai.AgentService) ApplicationService {
	return &appService{
		customers: core.NewCustomerService(store),
		catalog:   core.NewCatalogService(store),
		orders:    core.NewOrderService(store),
		users:     core.NewUserService(store),
		ledger:    core.NewLedger(store),
		agent:     agent,
		now:       time.Now,
	}
}

// ── private helpers ───────────────────────────────────────────────────────────

// optionalDate parses s, returning nil for an empty string.
func optionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *appService) today() time.Time {
	return core.Day(s.now())
}

// ── Customers and payments ────────────────────────────────────────────────────

func (s *appService) ListCustomers(ctx context.Context) (*CustomerListResult, error) {
	customers, err := s.customers.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}
	balances, err := s.ledger.Balances(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balances: %w", err)
	}
	out := make([]CustomerBalance, len(customers))
	for i, c := range customers {
		out[i] = CustomerBalance{Customer: c, Balance: balances[c.ID]}
	}
	return &CustomerListResult{Customers: out}, nil
}

func (s *appService) CreateCustomer(ctx context.Context, name string) (*core.Customer, error) {
	return s.customers.CreateCustomer(ctx, name)
}

func (s *appService) RenameCustomer(ctx context.Context, customerID int, name string) (*core.Customer, error) {
	return s.customers.RenameCustomer(ctx, customerID, name)
}

func (s *appService) DeleteCustomer(ctx context.Context, customerID int) error {
	return s.customers.DeleteCustomer(ctx, customerID)
}

func (s *appService) GetCustomerLedger(ctx context.Context, customerID int) (*LedgerResult, error) {
	c, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	lines, err := s.ledger.Statement(ctx, customerID)
	if err != nil {
		return nil, err
	}
	var balance int64
	if len(lines) > 0 {
		balance = lines[len(lines)-1].RunningBalance
	}
	return &LedgerResult{Customer: *c, Lines: lines, Balance: balance}, nil
}

func (s *appService) GetBalance(ctx context.Context, customerID int) (*BalanceResult, error) {
	if _, err := s.customers.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	balance, err := s.ledger.Balance(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &BalanceResult{CustomerID: customerID, Balance: balance}, nil
}

func (s *appService) ListDebits(ctx context.Context, customerID int, on string) (*DebitListResult, error) {
	day, err := optionalDate(on)
	if err != nil {
		return nil, err
	}
	debits, err := s.customers.Debits(ctx, customerID, day)
	if err != nil {
		return nil, err
	}
	return &DebitListResult{CustomerID: customerID, Debits: debits}, nil
}

func (s *appService) RecordDebit(ctx context.Context, req RecordDebitRequest) (*core.Debit, error) {
	amount, err := core.WholeAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	day, err := optionalDate(req.Date)
	if err != nil {
		return nil, err
	}
	return s.customers.AddDebit(ctx, req.CustomerID, amount, day)
}

func (s *appService) UpdateDebit(ctx context.Context, debitID int, req UpdateDebitRequest) (*core.Debit, error) {
	amount, err := core.WholeAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	day, err := core.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	return s.customers.UpdateDebit(ctx, debitID, amount, day)
}

func (s *appService) DeleteDebit(ctx context.Context, debitID int) error {
	return s.customers.DeleteDebit(ctx, debitID)
}

// ── Catalog ───────────────────────────────────────────────────────────────────

func (s *appService) ListProductTypes(ctx context.Context) (*CatalogResult, error) {
	types, err := s.catalog.ListProductTypes(ctx)
	if err != nil {
		return nil, err
	}
	return &CatalogResult{ProductTypes: types}, nil
}

func (s *appService) CreateProductType(ctx context.Context, name string) (*core.ProductType, error) {
	return s.catalog.CreateProductType(ctx, name)
}

func (s *appService) RenameProductType(ctx context.Context, productTypeID int, name string) (*core.ProductType, error) {
	return s.catalog.RenameProductType(ctx, productTypeID, name)
}

func (s *appService) DeleteProductType(ctx context.Context, productTypeID int) error {
	return s.catalog.DeleteProductType(ctx, productTypeID)
}

func optionalPrice(d *decimal.Decimal) (*int64, error) {
	if d == nil {
		return nil, nil
	}
	v, err := core.WholeAmount("price", *d)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*core.Product, error) {
	price, err := optionalPrice(req.Price)
	if err != nil {
		return nil, err
	}
	return s.catalog.CreateProduct(ctx, req.ProductTypeID, req.Name, price)
}

func (s *appService) UpdateProduct(ctx context.Context, productID int, req UpdateProductRequest) (*core.Product, error) {
	price, err := optionalPrice(req.Price)
	if err != nil {
		return nil, err
	}
	return s.catalog.UpdateProduct(ctx, productID, req.Name, price)
}

func (s *appService) DeleteProduct(ctx context.Context, productID int) error {
	return s.catalog.DeleteProduct(ctx, productID)
}

func (s *appService) GetPriceHistory(ctx context.Context, productID int) (*PriceHistoryResult, error) {
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	prices, err := s.catalog.PriceHistory(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &PriceHistoryResult{Product: *p, Prices: prices}, nil
}

func (s *appService) AddPrice(ctx context.Context, req AddPriceRequest) (*core.Price, error) {
	price, err := core.WholeAmount("price", req.Price)
	if err != nil {
		return nil, err
	}
	day, err := optionalDate(req.Date)
	if err != nil {
		return nil, err
	}
	return s.catalog.AddPrice(ctx, req.ProductID, price, day)
}

func (s *appService) GetPriceAt(ctx context.Context, productID int, date string) (*PriceAtResult, error) {
	day, err := optionalDate(date)
	if err != nil {
		return nil, err
	}
	asOf := s.today()
	if day != nil {
		asOf = *day
	}
	price, err := s.catalog.PriceAt(ctx, productID, asOf)
	if err != nil {
		return nil, err
	}
	return &PriceAtResult{ProductID: productID, Date: asOf.Format(core.DateLayout), Price: price}, nil
}

// ── Orders ────────────────────────────────────────────────────────────────────

func (s *appService) ListOrders(ctx context.Context) (*OrderListResult, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

func (s *appService) GetOrder(ctx context.Context, orderID int) (*OrderResult, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: *o}, nil
}

func (s *appService) GetLatestOrder(ctx context.Context) (*OrderResult, error) {
	o, err := s.orders.LatestOrder(ctx)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: *o}, nil
}

func (s *appService) CreateOrder(ctx context.Context, req SaveOrderRequest) (*OrderResult, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.CreateOrder(ctx, date, req.Sheets)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: *o}, nil
}

func (s *appService) UpdateOrder(ctx context.Context, orderID int, req SaveOrderRequest) (*OrderResult, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.UpdateOrder(ctx, orderID, date, req.Sheets)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: *o}, nil
}

func (s *appService) ConfirmOrder(ctx context.Context, orderID int, req SaveOrderRequest) (*OrderResult, error) {
	o, err := s.orders.ConfirmOrder(ctx, orderID, req.Sheets)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: *o}, nil
}

func (s *appService) DeleteOrder(ctx context.Context, orderID int) error {
	return s.orders.DeleteOrder(ctx, orderID)
}

func (s *appService) GetOrderSheet(ctx context.Context, orderID int, kind string) (*core.OrderSheet, error) {
	k, err := core.ParseAmountKind(kind)
	if err != nil {
		return nil, err
	}
	return s.orders.OrderSheet(ctx, orderID, k)
}

func (s *appService) GetOrderCost(ctx context.Context, orderID int, kind string) (*OrderCostResult, error) {
	k, err := core.ParseAmountKind(kind)
	if err != nil {
		return nil, err
	}
	cost, err := s.orders.OrderCost(ctx, orderID, k)
	if err != nil {
		return nil, err
	}
	return &OrderCostResult{OrderID: orderID, Kind: k, Cost: cost}, nil
}

// ── AI payment entry ──────────────────────────────────────────────────────────

func (s *appService) InterpretPayment(ctx context.Context, text string) (*AIResult, error) {
	if s.agent == nil {
		return nil, ErrAIUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return nil, core.ValidationError{Field: "text", Message: "is required"}
	}
	customers, err := s.customers.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(customers))
	for i, c := range customers {
		names[i] = c.Name
	}

	response, err := s.agent.InterpretPayment(ctx, text, names, s.today())
	if err != nil {
		return nil, err
	}

	if response.IsClarificationRequest || response.Proposal == nil {
		msg := "Which customer paid, and how much?"
		if response.Clarification != nil && response.Clarification.Message != "" {
			msg = response.Clarification.Message
		}
		return &AIResult{IsClarification: true, ClarificationMessage: msg}, nil
	}

	return &AIResult{
		IsClarification: false,
		Proposal:        response.Proposal,
	}, nil
}

func (s *appService) CommitPaymentProposal(ctx context.Context, proposal core.PaymentProposal) (*core.Debit, error) {
	proposal.Normalize(s.today())
	if err := proposal.Validate(); err != nil {
		return nil, core.ValidationError{Field: "proposal", Message: err.Error()}
	}
	amount, err := proposal.ParsedAmount()
	if err != nil {
		return nil, err
	}
	day, err := core.ParseDate(proposal.Date)
	if err != nil {
		return nil, err
	}

	customers, err := s.customers.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range customers {
		if strings.EqualFold(c.Name, proposal.CustomerName) {
			return s.customers.AddDebit(ctx, c.ID, amount, &day)
		}
	}
	return nil, fmt.Errorf("customer %q: %w", proposal.CustomerName, core.ErrNotFound)
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{UserID: u.ID, Username: u.Username, Role: u.Role}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{UserID: u.ID, Username: u.Username, Role: u.Role, IsActive: u.IsActive}, nil
}

func (s *appService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResult, error) {
	u, err := s.users.CreateUser(ctx, req.Username, req.Password, req.Role)
	if err != nil {
		return nil, err
	}
	return &UserResult{UserID: u.ID, Username: u.Username, Role: u.Role, IsActive: u.IsActive}, nil
}
