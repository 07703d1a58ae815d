package repl

import (
	"fmt"
	"io"
	"strings"

	"bookkeeping/internal/app"
	"bookkeeping/internal/core"
)

func rule(w io.Writer, ch string, width int) {
	fmt.Fprintln(w, strings.Repeat(ch, width))
}

func printCustomers(w io.Writer, result *app.CustomerListResult) {
	fmt.Fprintln(w)
	rule(w, "=", 50)
	fmt.Fprintln(w, "  CUSTOMERS")
	rule(w, "=", 50)
	if len(result.Customers) == 0 {
		fmt.Fprintln(w, "  No customers yet. Use /add-customer <name>.")
		rule(w, "=", 50)
		return
	}
	fmt.Fprintf(w, "  %-5s %-22s %15s\n", "ID", "NAME", "BALANCE")
	rule(w, "-", 50)
	var total int64
	for _, c := range result.Customers {
		fmt.Fprintf(w, "  %-5d %-22s %15d\n", c.ID, c.Name, c.Balance)
		total += c.Balance
	}
	rule(w, "-", 50)
	fmt.Fprintf(w, "  %-28s %15d\n", "TOTAL", total)
	rule(w, "=", 50)
}

func printLedger(w io.Writer, result *app.LedgerResult) {
	fmt.Fprintln(w)
	rule(w, "=", 70)
	fmt.Fprintf(w, "  TRANSFERS: %s\n", result.Customer.Name)
	rule(w, "=", 70)
	if len(result.Lines) == 0 {
		fmt.Fprintln(w, "  No payments or confirmed orders yet.")
		rule(w, "=", 70)
		return
	}
	fmt.Fprintf(w, "  %-12s %-14s %12s %12s %12s\n", "DATE", "REFERENCE", "DEBIT", "CREDIT", "BALANCE")
	rule(w, "-", 70)
	for _, l := range result.Lines {
		fmt.Fprintf(w, "  %-12s %-14s %12s %12s %12d\n",
			l.Date.Format(core.DateLayout),
			reference(l.Transfer),
			blankZero(l.Debit()),
			blankZero(l.Credit()),
			l.RunningBalance,
		)
	}
	rule(w, "-", 70)
	fmt.Fprintf(w, "  %-54s %12d\n", "BALANCE", result.Balance)
	rule(w, "=", 70)
}

func reference(t core.Transfer) string {
	if t.Kind == core.TransferDebit {
		return fmt.Sprintf("payment #%d", t.DebitID)
	}
	return fmt.Sprintf("order #%d", t.OrderID)
}

func blankZero(v int64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

func printDebits(w io.Writer, customer string, result *app.DebitListResult) {
	fmt.Fprintf(w, "\nPayments of %s:\n", customer)
	if len(result.Debits) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, d := range result.Debits {
		fmt.Fprintf(w, "  #%-5d %s %10d\n", d.ID, d.Date.Format(core.DateLayout), d.Amount)
	}
}

func printCatalog(w io.Writer, result *app.CatalogResult) {
	fmt.Fprintln(w)
	rule(w, "=", 56)
	fmt.Fprintln(w, "  CATALOG")
	rule(w, "=", 56)
	if len(result.ProductTypes) == 0 {
		fmt.Fprintln(w, "  No product types yet. Use /add-type <name>.")
		rule(w, "=", 56)
		return
	}
	for _, pt := range result.ProductTypes {
		fmt.Fprintf(w, "  [%d] %s\n", pt.ID, pt.Name)
		for _, p := range pt.Products {
			name := p.Name
			if name == "" {
				name = "(default)"
			}
			fmt.Fprintf(w, "      #%-5d %-28s %10d\n", p.ID, name, p.CurrentPrice)
		}
	}
	rule(w, "=", 56)
}

func printPriceHistory(w io.Writer, result *app.PriceHistoryResult) {
	fmt.Fprintf(w, "\nPrice history of %s:\n", result.Product.DisplayName())
	if len(result.Prices) == 0 {
		fmt.Fprintln(w, "  (no prices)")
		return
	}
	for _, p := range result.Prices {
		fmt.Fprintf(w, "  %s %10d\n", p.Date.Format(core.DateLayout), p.Price)
	}
}

func printOrders(w io.Writer, result *app.OrderListResult) {
	fmt.Fprintln(w)
	rule(w, "=", 62)
	fmt.Fprintln(w, "  ORDERS")
	rule(w, "=", 62)
	if len(result.Orders) == 0 {
		fmt.Fprintln(w, "  No orders yet. Use /new-order.")
		rule(w, "=", 62)
		return
	}
	fmt.Fprintf(w, "  %-5s %-12s %10s %14s %14s\n", "ID", "DATE", "CUSTOMERS", "REQUESTED", "CONFIRMED")
	rule(w, "-", 62)
	for _, o := range result.Orders {
		fmt.Fprintf(w, "  %-5d %-12s %10d %14d %14d\n",
			o.ID, o.Date.Format(core.DateLayout), o.Customers, o.RequestedCost, o.ConfirmedCost)
	}
	rule(w, "=", 62)
}

// printSheet renders the customers × products table of an order.
func printSheet(w io.Writer, sheet *core.OrderSheet) {
	headers := sheet.Headers()
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(len(h), 6)
	}
	width := 22 + 12
	for _, wd := range widths {
		width += wd + 1
	}

	fmt.Fprintln(w)
	rule(w, "=", width)
	fmt.Fprintf(w, "  ORDER #%d  %s  (%s)\n", sheet.Order.ID, sheet.Order.Date.Format(core.DateLayout), sheet.Kind)
	rule(w, "=", width)
	fmt.Fprintf(w, "  %-20s", "CUSTOMER")
	for i, h := range headers {
		fmt.Fprintf(w, " %*s", widths[i], h)
	}
	fmt.Fprintf(w, " %11s\n", "COST")
	rule(w, "-", width)
	for _, row := range sheet.Rows {
		fmt.Fprintf(w, "  %-20s", row.CustomerName)
		for i, q := range row.Quantities {
			fmt.Fprintf(w, " %*s", widths[i], blankZero(q))
		}
		cost := row.RequestedCost
		if sheet.Kind == core.Confirmed {
			cost = row.ConfirmedCost
		}
		fmt.Fprintf(w, " %11d\n", cost)
	}
	rule(w, "-", width)
	fmt.Fprintf(w, "  %-20s", "TOTAL")
	for i, t := range sheet.Totals {
		fmt.Fprintf(w, " %*d", widths[i], t)
	}
	total := sheet.RequestedCost
	if sheet.Kind == core.Confirmed {
		total = sheet.ConfirmedCost
	}
	fmt.Fprintf(w, " %11d\n", total)
	rule(w, "=", width)
}

func printProposal(w io.Writer, p *core.PaymentProposal) {
	fmt.Fprintf(w, "\nCUSTOMER:   %s\n", p.CustomerName)
	amount := p.Amount
	if v, err := p.ParsedAmount(); err == nil {
		amount = core.FormatAmount(v)
	}
	fmt.Fprintf(w, "AMOUNT:     %s\n", amount)
	fmt.Fprintf(w, "DATE:       %s\n", p.Date)
	fmt.Fprintf(w, "REASONING:  %s\n", p.Reasoning)
	fmt.Fprintf(w, "CONFIDENCE: %.2f\n", p.Confidence)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "BOOKKEEPING COMMANDS")
	rule(w, "=", 62)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  CUSTOMERS")
	fmt.Fprintln(w, "  /customers                       List customers with balances")
	fmt.Fprintln(w, "  /add-customer <name>             Add a customer")
	fmt.Fprintln(w, "  /transfers <customer>            Ledger with running balance")
	fmt.Fprintln(w, "  /balance <customer>              Current balance")
	fmt.Fprintln(w, "  /pay <customer> <amount> [date]  Record a payment")
	fmt.Fprintln(w, "  /debits <customer> [date]        List payments, optionally of one day")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  CATALOG")
	fmt.Fprintln(w, "  /catalog                         Product types, variants and current prices")
	fmt.Fprintln(w, "  /add-type <name>                 Add a product type")
	fmt.Fprintln(w, "  /add-product <type-id> <price> [variant]")
	fmt.Fprintln(w, "  /price <product-id> <price> [date]  Add a price entry")
	fmt.Fprintln(w, "  /prices <product-id>             Price history")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  ORDERS")
	fmt.Fprintln(w, "  /orders                          List orders")
	fmt.Fprintln(w, "  /new-order [date]                Enter requested amounts (interactive)")
	fmt.Fprintln(w, "  /confirm <order-id|latest>       Enter confirmed amounts (interactive)")
	fmt.Fprintln(w, "  /sheet <order-id|latest> [requested|confirmed]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  SESSION")
	fmt.Fprintln(w, "  /help                            Show this help")
	fmt.Fprintln(w, "  /exit                            Exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  AGENT MODE  (no / prefix)")
	fmt.Fprintln(w, "  Describe a payment in plain words.")
	fmt.Fprintln(w, "  Example: \"Anna paid 250 yesterday\"")
	rule(w, "=", 62)
}
