package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// TransferKind tags a Transfer as a payment in or a confirmed order cost out.
type TransferKind int

const (
	TransferDebit TransferKind = iota
	TransferCredit
)

func (k TransferKind) String() string {
	switch k {
	case TransferDebit:
		return "debit"
	case TransferCredit:
		return "credit"
	}
	return fmt.Sprintf("TransferKind(%d)", int(k))
}

// Transfer is one row of a customer's ledger.
// Debits carry DebitID; credits carry OrderID and CustomerOrderID.
type Transfer struct {
	Kind            TransferKind
	Date            time.Time
	Amount          int64
	DebitID         int
	OrderID         int
	CustomerOrderID int
}

// DebitTransfer builds the ledger row of a payment.
func DebitTransfer(d Debit) Transfer {
	return Transfer{Kind: TransferDebit, Date: Day(d.Date), Amount: d.Amount, DebitID: d.ID}
}

// CreditTransfer builds the ledger row of a customer order with the given confirmed cost.
func CreditTransfer(co CustomerOrder, orderDate time.Time, cost int64) Transfer {
	return Transfer{
		Kind:            TransferCredit,
		Date:            Day(orderDate),
		Amount:          cost,
		OrderID:         co.OrderID,
		CustomerOrderID: co.ID,
	}
}

// Debit is the debit field, 0 for credits.
func (t Transfer) Debit() int64 {
	if t.Kind == TransferDebit {
		return t.Amount
	}
	return 0
}

// Credit is the credit field, 0 for debits.
func (t Transfer) Credit() int64 {
	if t.Kind == TransferCredit {
		return t.Amount
	}
	return 0
}

// Delta is the effect of the transfer on the balance.
func (t Transfer) Delta() int64 {
	return t.Debit() - t.Credit()
}

func (t Transfer) sourceID() int {
	if t.Kind == TransferDebit {
		return t.DebitID
	}
	return t.CustomerOrderID
}

type transferJSON struct {
	Date            string `json:"date"`
	Kind            string `json:"kind"`
	Debit           *int64 `json:"debit,omitempty"`
	Credit          *int64 `json:"credit,omitempty"`
	DebitID         int    `json:"debit_id,omitempty"`
	OrderID         int    `json:"order_id,omitempty"`
	CustomerOrderID int    `json:"customer_order_id,omitempty"`
}

func (t Transfer) wire() transferJSON {
	out := transferJSON{
		Date:            t.Date.Format(DateLayout),
		Kind:            t.Kind.String(),
		DebitID:         t.DebitID,
		OrderID:         t.OrderID,
		CustomerOrderID: t.CustomerOrderID,
	}
	amount := t.Amount
	if t.Kind == TransferDebit {
		out.Debit = &amount
	} else {
		out.Credit = &amount
	}
	return out
}

func (t Transfer) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.wire())
}

// SortTransfers orders transfers by date; on the same date debits come before
// credits, then lower source ids first.
func SortTransfers(ts []Transfer) {
	sort.SliceStable(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.sourceID() < b.sourceID()
	})
}

// BalanceOf sums debit − credit over ts.
func BalanceOf(ts []Transfer) int64 {
	var total int64
	for _, t := range ts {
		total += t.Delta()
	}
	return total
}

// StatementLine is a transfer with the balance right after it.
type StatementLine struct {
	Transfer
	RunningBalance int64
}

func (l StatementLine) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		transferJSON
		RunningBalance int64 `json:"running_balance"`
	}{l.Transfer.wire(), l.RunningBalance})
}

// RunningBalances annotates already sorted transfers with cumulative balances.
func RunningBalances(ts []Transfer) []StatementLine {
	lines := make([]StatementLine, len(ts))
	var running int64
	for i, t := range ts {
		running += t.Delta()
		lines[i] = StatementLine{Transfer: t, RunningBalance: running}
	}
	return lines
}

// Ledger derives customer transfer histories and balances from the entity
// store. Nothing is cached or persisted: every call reads current state.
type Ledger struct {
	reader EntityReader
	costs  *CostCalculator
}

func NewLedger(reader EntityReader) *Ledger {
	return &Ledger{reader: reader, costs: NewCostCalculator(reader)}
}

// Transfers returns the customer's debits and non-zero confirmed order costs, sorted.
func (l *Ledger) Transfers(ctx context.Context, customerID int) ([]Transfer, error) {
	debits, err := l.reader.DebitsByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load debits of customer %d: %w", customerID, err)
	}
	cos, err := l.reader.CustomerOrdersByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders of customer %d: %w", customerID, err)
	}

	transfers := make([]Transfer, 0, len(debits)+len(cos))
	for _, d := range debits {
		transfers = append(transfers, DebitTransfer(d))
	}

	book := l.costs.newPriceBook()
	for _, co := range cos {
		order, err := l.reader.GetOrder(ctx, co.OrderID)
		if err != nil {
			return nil, fmt.Errorf("failed to load order %d: %w", co.OrderID, err)
		}
		cost, err := book.customerOrderCost(ctx, co, order.Date, Confirmed)
		if err != nil {
			return nil, err
		}
		if cost == 0 {
			continue
		}
		transfers = append(transfers, CreditTransfer(co, order.Date, cost))
	}

	SortTransfers(transfers)
	return transfers, nil
}

// Balance is total debits minus total confirmed order cost.
func (l *Ledger) Balance(ctx context.Context, customerID int) (int64, error) {
	ts, err := l.Transfers(ctx, customerID)
	if err != nil {
		return 0, err
	}
	return BalanceOf(ts), nil
}

// Statement returns the sorted transfers with running balances.
func (l *Ledger) Statement(ctx context.Context, customerID int) ([]StatementLine, error) {
	ts, err := l.Transfers(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return RunningBalances(ts), nil
}

// Balances computes Balance for each of customerIDs.
func (l *Ledger) Balances(ctx context.Context, customerIDs []int) (map[int]int64, error) {
	out := make(map[int]int64, len(customerIDs))
	for _, id := range customerIDs {
		b, err := l.Balance(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = b
	}
	return out, nil
}
