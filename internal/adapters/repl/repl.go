package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookkeeping/internal/app"
	"bookkeeping/internal/core"

	"github.com/shopspring/decimal"
)

var errExit = errors.New("exit")

// session is one interactive REPL run.
type session struct {
	ctx    context.Context
	svc    app.ApplicationService
	reader *bufio.Reader
	out    io.Writer
}

// Run starts the interactive REPL loop.
// It reads commands from reader, dispatches slash commands deterministically,
// and routes natural language input through the AI payment agent.
// It returns when the user exits or reader is exhausted.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) {
	s := &session{ctx: ctx, svc: svc, reader: reader, out: out}

	fmt.Fprintln(out, "Bookkeeping")
	fmt.Fprintln(out, "Describe a payment in plain words, or use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		fmt.Fprint(out, "\n> ")
		input, err := s.readLine()
		if err != nil {
			fmt.Fprintln(out)
			return
		}
		if input == "" {
			continue
		}

		// Slash prefix → deterministic command dispatcher, no AI invoked.
		if strings.HasPrefix(input, "/") {
			if err := s.dispatch(input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return
				}
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			continue
		}

		if err := s.interpret(input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

// readLine returns the next trimmed line. io.EOF is reported only when
// nothing at all was read.
func (s *session) readLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *session) prompt(label string) string {
	fmt.Fprint(s.out, label)
	line, _ := s.readLine()
	return line
}

func (s *session) dispatch(input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]
	ctx, svc, out := s.ctx, s.svc, s.out

	switch cmd {
	case "customers", "c":
		result, err := svc.ListCustomers(ctx)
		if err != nil {
			return err
		}
		printCustomers(out, result)

	case "add-customer":
		if len(args) < 1 {
			fmt.Fprintln(out, "Usage: /add-customer <name>")
			return nil
		}
		c, err := svc.CreateCustomer(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Customer %s added (ID: %d).\n", c.Name, c.ID)

	case "transfers", "t":
		if len(args) < 1 {
			fmt.Fprintln(out, "Usage: /transfers <customer>")
			return nil
		}
		c, err := FindCustomer(ctx, svc, args[0])
		if err != nil {
			return err
		}
		result, err := svc.GetCustomerLedger(ctx, c.ID)
		if err != nil {
			return err
		}
		printLedger(out, result)

	case "balance", "bal":
		if len(args) < 1 {
			fmt.Fprintln(out, "Usage: /balance <customer>")
			return nil
		}
		c, err := FindCustomer(ctx, svc, args[0])
		if err != nil {
			return err
		}
		result, err := svc.GetBalance(ctx, c.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d\n", c.Name, result.Balance)

	case "pay":
		if len(args) < 2 {
			fmt.Fprintln(out, "Usage: /pay <customer> <amount> [YYYY-MM-DD]")
			return nil
		}
		c, err := FindCustomer(ctx, svc, args[0])
		if err != nil {
			return err
		}
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			fmt.Fprintf(out, "Invalid amount: %s\n", args[1])
			return nil
		}
		date := ""
		if len(args) >= 3 {
			date = args[2]
		}
		d, err := svc.RecordDebit(ctx, app.RecordDebitRequest{CustomerID: c.ID, Amount: amount, Date: date})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Payment #%d of %d recorded for %s on %s.\n", d.ID, d.Amount, c.Name, d.Date.Format(core.DateLayout))

	case "debits":
		if len(args) < 1 {
			fmt.Fprintln(out, "Usage: /debits <customer> [YYYY-MM-DD]")
			return nil
		}
		c, err := FindCustomer(ctx, svc, args[0])
		if err != nil {
			return err
		}
		on := ""
		if len(args) >= 2 {
			on = args[1]
		}
		result, err := svc.ListDebits(ctx, c.ID, on)
		if err != nil {
			return err
		}
		printDebits(out, c.Name, result)

	case "catalog", "products":
		result, err := svc.ListProductTypes(ctx)
		if err != nil {
			return err
		}
		printCatalog(out, result)

	case "add-type":
		if len(args) < 1 {
			fmt.Fprintln(out, "Usage: /add-type <name>")
			return nil
		}
		pt, err := svc.CreateProductType(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Product type %s added (ID: %d).\n", pt.Name, pt.ID)

	case "add-product":
		if len(args) < 2 {
			fmt.Fprintln(out, "Usage: /add-product <type-id> <price> [variant]")
			return nil
		}
		typeID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(out, "Invalid type id: %s\n", args[0])
			return nil
		}
		price, err := decimal.NewFromString(args[1])
		if err != nil {
			fmt.Fprintf(out, "Invalid price: %s\n", args[1])
			return nil
		}
		p, err := svc.CreateProduct(ctx, app.CreateProductRequest{
			ProductTypeID: typeID,
			Name:          strings.Join(args[2:], " "),
			Price:         &price,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Product %s added (ID: %d).\n", p.DisplayName(), p.ID)

	case "price":
		if len(args) < 2 {
			fmt.Fprintln(out, "Usage: /price <product-id> <price> [YYYY-MM-DD]")
			return nil
		}
		productID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(out, "Invalid product id: %s\n", args[0])
			return nil
		}
		price, err := decimal.NewFromString(args[1])
		if err != nil {
			fmt.Fprintf(out, "Invalid price: %s\n", args[1])
			return nil
		}
		date := ""
		if len(args) >= 3 {
			date = args[2]
		}
		p, err := svc.AddPrice(ctx, app.AddPriceRequest{ProductID: productID, Price: price, Date: date})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Price %d effective from %s.\n", p.Price, p.Date.Format(core.DateLayout))

	case "prices":
		if len(args) < 1 {
			fmt.Fprintln(out, "Usage: /prices <product-id>")
			return nil
		}
		productID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(out, "Invalid product id: %s\n", args[0])
			return nil
		}
		result, err := svc.GetPriceHistory(ctx, productID)
		if err != nil {
			return err
		}
		printPriceHistory(out, result)

	case "orders", "o":
		result, err := svc.ListOrders(ctx)
		if err != nil {
			return err
		}
		printOrders(out, result)

	case "new-order":
		date := ""
		if len(args) >= 1 {
			date = args[0]
		}
		return s.newOrder(date)

	case "confirm":
		if len(args) < 1 {
			fmt.Fprintln(out, "Usage: /confirm <order-id|latest>")
			return nil
		}
		orderID, err := OrderRef(ctx, svc, args[0])
		if err != nil {
			return err
		}
		return s.confirmOrder(orderID)

	case "sheet":
		if len(args) < 1 {
			fmt.Fprintln(out, "Usage: /sheet <order-id|latest> [requested|confirmed]")
			return nil
		}
		orderID, err := OrderRef(ctx, svc, args[0])
		if err != nil {
			return err
		}
		kind := ""
		if len(args) >= 2 {
			kind = args[1]
		}
		sheet, err := svc.GetOrderSheet(ctx, orderID, kind)
		if err != nil {
			return err
		}
		printSheet(out, sheet)

	case "help", "h":
		printHelp(out)

	case "exit", "quit", "e", "q":
		return errExit

	default:
		fmt.Fprintf(out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

// interpret routes free text through the AI agent, asking for clarification
// at most three times, and records the proposal only after approval.
func (s *session) interpret(input string) error {
	fmt.Fprintln(s.out, "[AI] Processing...")
	accumulated := input

	for rounds := 1; ; rounds++ {
		if rounds > 3 {
			fmt.Fprintln(s.out, "Could not produce a proposal. Try /pay instead, or type /help.")
			return nil
		}

		result, err := s.svc.InterpretPayment(s.ctx, accumulated)
		if err != nil {
			return err
		}

		if result.IsClarification {
			fmt.Fprintf(s.out, "\n[AI]: %s\n", result.ClarificationMessage)
			followUp := s.prompt("> ")

			// Slash command during clarification: cancel the AI flow and run it.
			if strings.HasPrefix(followUp, "/") {
				fmt.Fprintln(s.out, "(AI session cancelled)")
				return s.dispatch(followUp)
			}
			if followUp == "" || strings.EqualFold(followUp, "cancel") {
				fmt.Fprintln(s.out, "Cancelled.")
				return nil
			}
			accumulated = fmt.Sprintf("Original text: %s\nClarification requested: %s\nUser response: %s",
				accumulated, result.ClarificationMessage, followUp)
			fmt.Fprintln(s.out, "[AI] Thinking...")
			continue
		}

		proposal := result.Proposal
		printProposal(s.out, proposal)
		if proposal.Confidence < 0.6 {
			fmt.Fprintln(s.out, "\nWARNING: Low confidence proposal.")
		}

		choice := strings.ToLower(s.prompt("\nRecord this payment? (y/n): "))
		if choice != "y" && choice != "yes" {
			fmt.Fprintln(s.out, "Payment cancelled.")
			return nil
		}
		d, err := s.svc.CommitPaymentProposal(s.ctx, *proposal)
		if err != nil {
			fmt.Fprintf(s.out, "Payment FAILED: %v\n", err)
			return nil
		}
		fmt.Fprintf(s.out, "Payment #%d RECORDED.\n", d.ID)
		return nil
	}
}

// FindCustomer resolves ref as a customer id or, failing that, a case-insensitive name.
func FindCustomer(ctx context.Context, svc app.ApplicationService, ref string) (*core.Customer, error) {
	list, err := svc.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	id, idErr := strconv.Atoi(ref)
	for _, c := range list.Customers {
		if (idErr == nil && c.ID == id) || strings.EqualFold(c.Name, ref) {
			return &c.Customer, nil
		}
	}
	return nil, fmt.Errorf("customer %q: %w", ref, core.ErrNotFound)
}

// OrderRef resolves "latest" or a numeric order id.
func OrderRef(ctx context.Context, svc app.ApplicationService, ref string) (int, error) {
	if strings.EqualFold(ref, "latest") {
		o, err := svc.GetLatestOrder(ctx)
		if err != nil {
			return 0, err
		}
		return o.Order.ID, nil
	}
	id, err := strconv.Atoi(ref)
	if err != nil || id <= 0 {
		return 0, core.ValidationError{Field: "order", Message: fmt.Sprintf("%q is not an order id", ref)}
	}
	return id, nil
}
