package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookkeeping/internal/adapters/repl"
	"bookkeeping/internal/app"
	"bookkeeping/internal/core"

	"github.com/shopspring/decimal"
)

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage")

const usage = "Available: customers, balance, transfers, pay, orders, sheet, cost, price, propose, commit"

// Run executes a one-shot CLI command.
// args is os.Args[1:]; the first element is the subcommand name.
// Proposals for commit are read from in as JSON.
func Run(ctx context.Context, svc app.ApplicationService, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command\n%s", ErrUsage, usage)
	}

	switch args[0] {
	case "customers", "cust":
		result, err := svc.ListCustomers(ctx)
		if err != nil {
			return fmt.Errorf("failed to list customers: %w", err)
		}
		printBalances(out, result)

	case "balance", "bal":
		if len(args) < 2 {
			return fmt.Errorf("%w: app balance <customer>", ErrUsage)
		}
		c, err := repl.FindCustomer(ctx, svc, args[1])
		if err != nil {
			return err
		}
		result, err := svc.GetBalance(ctx, c.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result.Balance)

	case "transfers", "statement":
		if len(args) < 2 {
			return fmt.Errorf("%w: app transfers <customer>", ErrUsage)
		}
		c, err := repl.FindCustomer(ctx, svc, args[1])
		if err != nil {
			return err
		}
		result, err := svc.GetCustomerLedger(ctx, c.ID)
		if err != nil {
			return err
		}
		printStatement(out, result)

	case "pay":
		if len(args) < 3 {
			return fmt.Errorf("%w: app pay <customer> <amount> [YYYY-MM-DD]", ErrUsage)
		}
		c, err := repl.FindCustomer(ctx, svc, args[1])
		if err != nil {
			return err
		}
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return core.ValidationError{Field: "amount", Message: fmt.Sprintf("%q is not a number", args[2])}
		}
		req := app.RecordDebitRequest{CustomerID: c.ID, Amount: amount}
		if len(args) >= 4 {
			req.Date = args[3]
		}
		d, err := svc.RecordDebit(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Payment #%d recorded.\n", d.ID)

	case "orders":
		result, err := svc.ListOrders(ctx)
		if err != nil {
			return fmt.Errorf("failed to list orders: %w", err)
		}
		return writeJSON(out, result)

	case "sheet":
		if len(args) < 2 {
			return fmt.Errorf("%w: app sheet <order-id|latest> [requested|confirmed]", ErrUsage)
		}
		orderID, err := repl.OrderRef(ctx, svc, args[1])
		if err != nil {
			return err
		}
		kind := ""
		if len(args) >= 3 {
			kind = args[2]
		}
		sheet, err := svc.GetOrderSheet(ctx, orderID, kind)
		if err != nil {
			return err
		}
		return writeJSON(out, sheet)

	case "cost":
		if len(args) < 2 {
			return fmt.Errorf("%w: app cost <order-id|latest> [requested|confirmed]", ErrUsage)
		}
		orderID, err := repl.OrderRef(ctx, svc, args[1])
		if err != nil {
			return err
		}
		kind := ""
		if len(args) >= 3 {
			kind = args[2]
		}
		result, err := svc.GetOrderCost(ctx, orderID, kind)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result.Cost)

	case "price":
		if len(args) < 2 {
			return fmt.Errorf("%w: app price <product-id> [YYYY-MM-DD]", ErrUsage)
		}
		productID, err := strconv.Atoi(args[1])
		if err != nil {
			return core.ValidationError{Field: "product", Message: fmt.Sprintf("%q is not a product id", args[1])}
		}
		date := ""
		if len(args) >= 3 {
			date = args[2]
		}
		result, err := svc.GetPriceAt(ctx, productID, date)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result.Price)

	case "propose", "prop", "p":
		if len(args) < 2 {
			return fmt.Errorf("%w: app propose \"<payment description>\"", ErrUsage)
		}
		result, err := svc.InterpretPayment(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("agent error: %w", err)
		}
		if result.IsClarification {
			return fmt.Errorf("AI needs clarification: %s", result.ClarificationMessage)
		}
		return writeJSON(out, result.Proposal)

	case "commit", "com", "c":
		var proposal core.PaymentProposal
		if err := json.NewDecoder(in).Decode(&proposal); err != nil {
			return core.ValidationError{Field: "proposal", Message: "invalid JSON: " + err.Error()}
		}
		d, err := svc.CommitPaymentProposal(ctx, proposal)
		if err != nil {
			return fmt.Errorf("commit failed: %w", err)
		}
		fmt.Fprintf(out, "Payment #%d recorded.\n", d.ID)

	default:
		return fmt.Errorf("%w: unknown command %s\n%s", ErrUsage, args[0], usage)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBalances(out io.Writer, result *app.CustomerListResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-58s\n", "CUSTOMER BALANCES")
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-6s %-34s %18s\n", "ID", "NAME", "BALANCE")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, c := range result.Customers {
		fmt.Fprintf(out, "  %-6d %-34s %18d\n", c.ID, c.Name, c.Balance)
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
}

func printStatement(out io.Writer, result *app.LedgerResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  STATEMENT: %s\n", result.Customer.Name)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-12s %-8s %12s %12s %12s\n", "DATE", "KIND", "DEBIT", "CREDIT", "BALANCE")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, l := range result.Lines {
		fmt.Fprintf(out, "  %-12s %-8s %12d %12d %12d\n",
			l.Date.Format(core.DateLayout), l.Kind, l.Debit(), l.Credit(), l.RunningBalance)
	}
	fmt.Fprintln(out, strings.Repeat("-", 62))
	fmt.Fprintf(out, "  %-47s %12d\n", "CLOSING BALANCE", result.Balance)
	fmt.Fprintln(out, strings.Repeat("=", 62))
}
