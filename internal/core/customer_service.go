package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// maxNameLength bounds customer, product type and product names.
const maxNameLength = 20

// CustomerService manages customers and the payments they make.
type CustomerService interface {
	CreateCustomer(ctx context.Context, name string) (*Customer, error)
	RenameCustomer(ctx context.Context, customerID int, name string) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int) (*Customer, error)
	// ListCustomers returns all customers ordered by name.
	ListCustomers(ctx context.Context) ([]Customer, error)
	// DeleteCustomer removes the customer with its debits and order lines.
	DeleteCustomer(ctx context.Context, customerID int) error

	// AddDebit records a payment. A nil date means today.
	AddDebit(ctx context.Context, customerID int, amount int64, date *time.Time) (*Debit, error)
	UpdateDebit(ctx context.Context, debitID int, amount int64, date time.Time) (*Debit, error)
	GetDebit(ctx context.Context, debitID int) (*Debit, error)
	DeleteDebit(ctx context.Context, debitID int) error
	// Debits lists a customer's payments by date then id. A non-nil on restricts them to that day.
	Debits(ctx context.Context, customerID int, on *time.Time) ([]Debit, error)
}

type customerService struct {
	store Store
}

func NewCustomerService(store Store) CustomerService {
	return &customerService{store: store}
}

// cleanName trims name and checks it against the shared name rules.
func cleanName(field, name string, required bool) (string, error) {
	name = strings.TrimSpace(name)
	if required && name == "" {
		return "", ValidationError{Field: field, Message: "is required"}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", maxNameLength)}
	}
	return name, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, name string) (*Customer, error) {
	name, err := cleanName("name", name, true)
	if err != nil {
		return nil, err
	}
	c := &Customer{Name: name}
	if err := s.store.CreateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create customer %q: %w", name, err)
	}
	return c, nil
}

func (s *customerService) RenameCustomer(ctx context.Context, customerID int, name string) (*Customer, error) {
	name, err := cleanName("name", name, true)
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	c.Name = name
	if err := s.store.UpdateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to rename customer %d: %w", customerID, err)
	}
	return c, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int) (*Customer, error) {
	return s.store.GetCustomer(ctx, customerID)
}

func (s *customerService) ListCustomers(ctx context.Context) ([]Customer, error) {
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	sort.Slice(customers, func(i, j int) bool {
		if customers[i].Name != customers[j].Name {
			return customers[i].Name < customers[j].Name
		}
		return customers[i].ID < customers[j].ID
	})
	return customers, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, customerID int) error {
	return s.store.DeleteCustomer(ctx, customerID)
}

func (s *customerService) AddDebit(ctx context.Context, customerID int, amount int64, date *time.Time) (*Debit, error) {
	if err := checkAmount("amount", amount); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	d := &Debit{CustomerID: customerID, Amount: amount, Date: Today()}
	if date != nil {
		d.Date = Day(*date)
	}
	if err := s.store.CreateDebit(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to record debit for customer %d: %w", customerID, err)
	}
	return d, nil
}

func (s *customerService) UpdateDebit(ctx context.Context, debitID int, amount int64, date time.Time) (*Debit, error) {
	if date.IsZero() {
		return nil, ValidationError{Field: "date", Message: "is required"}
	}
	if err := checkAmount("amount", amount); err != nil {
		return nil, err
	}
	d, err := s.store.GetDebit(ctx, debitID)
	if err != nil {
		return nil, err
	}
	d.Amount = amount
	d.Date = Day(date)
	if err := s.store.UpdateDebit(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update debit %d: %w", debitID, err)
	}
	return d, nil
}

func (s *customerService) GetDebit(ctx context.Context, debitID int) (*Debit, error) {
	return s.store.GetDebit(ctx, debitID)
}

func (s *customerService) DeleteDebit(ctx context.Context, debitID int) error {
	return s.store.DeleteDebit(ctx, debitID)
}

func (s *customerService) Debits(ctx context.Context, customerID int, on *time.Time) ([]Debit, error) {
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	all, err := s.store.DebitsByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load debits of customer %d: %w", customerID, err)
	}
	debits := make([]Debit, 0, len(all))
	for _, d := range all {
		if on != nil && !SameDay(d.Date, *on) {
			continue
		}
		debits = append(debits, d)
	}
	sort.Slice(debits, func(i, j int) bool {
		if !debits[i].Date.Equal(debits[j].Date) {
			return debits[i].Date.Before(debits[j].Date)
		}
		return debits[i].ID < debits[j].ID
	})
	return debits, nil
}
