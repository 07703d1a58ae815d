package repl

import (
	"fmt"
	"strconv"
	"strings"

	"bookkeeping/internal/app"
	"bookkeeping/internal/core"
)

// ParseQuantities reads one sheet row: whitespace-separated quantities in
// column order. Missing trailing columns and "-" mean zero.
func ParseQuantities(line string, products []core.Product) (map[int]int64, error) {
	fields := strings.Fields(line)
	if len(fields) > len(products) {
		return nil, fmt.Errorf("expected at most %d quantities, got %d", len(products), len(fields))
	}
	out := make(map[int]int64, len(fields))
	for i, f := range fields {
		if f == "-" {
			continue
		}
		q, err := strconv.ParseInt(f, 10, 64)
		if err != nil || q < 0 {
			return nil, fmt.Errorf("invalid quantity %q for %s", f, products[i].DisplayName())
		}
		if q > 0 {
			out[products[i].ID] = q
		}
	}
	return out, nil
}

func (s *session) catalogColumns() ([]core.Product, error) {
	catalog, err := s.svc.ListProductTypes(s.ctx)
	if err != nil {
		return nil, err
	}
	var products []core.Product
	for _, pt := range catalog.ProductTypes {
		products = append(products, pt.Products...)
	}
	return products, nil
}

func (s *session) printColumns(products []core.Product) {
	fmt.Fprintln(s.out, "Columns:")
	for i, p := range products {
		fmt.Fprintf(s.out, "  %d. %s (%d)\n", i+1, p.DisplayName(), p.CurrentPrice)
	}
}

// newOrder runs an interactive order entry session: one row of requested
// quantities per customer.
func (s *session) newOrder(date string) error {
	products, err := s.catalogColumns()
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(s.out, "The catalog is empty. Add products first.")
		return nil
	}
	customers, err := s.svc.ListCustomers(s.ctx)
	if err != nil {
		return err
	}
	if len(customers.Customers) == 0 {
		fmt.Fprintln(s.out, "No customers yet. Add customers first.")
		return nil
	}

	for strings.TrimSpace(date) == "" {
		fmt.Fprint(s.out, "Order date (YYYY-MM-DD): ")
		raw, err := s.readLine()
		if err != nil || strings.EqualFold(raw, "cancel") {
			fmt.Fprintln(s.out, "Order entry cancelled.")
			return nil
		}
		if _, err := core.ParseDate(raw); err != nil {
			fmt.Fprintf(s.out, "  %v\n", err)
			continue
		}
		date = raw
	}

	fmt.Fprintln(s.out, "Enter requested quantities per customer in column order.")
	fmt.Fprintln(s.out, "Leave blank to skip a customer, type 'cancel' to abort.")
	s.printColumns(products)

	var sheets []core.CustomerQuantities
	for _, c := range customers.Customers {
		for {
			raw := s.prompt(fmt.Sprintf("  %s: ", c.Name))
			if strings.EqualFold(raw, "cancel") {
				fmt.Fprintln(s.out, "Order entry cancelled.")
				return nil
			}
			q, err := ParseQuantities(raw, products)
			if err != nil {
				fmt.Fprintf(s.out, "  %v\n", err)
				continue
			}
			if len(q) > 0 {
				sheets = append(sheets, core.CustomerQuantities{CustomerID: c.ID, Quantities: q})
			}
			break
		}
	}
	if len(sheets) == 0 {
		fmt.Fprintln(s.out, "No quantities entered. Order not created.")
		return nil
	}

	result, err := s.svc.CreateOrder(s.ctx, app.SaveOrderRequest{Date: date, Sheets: sheets})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "\nOrder #%d created for %s.\n", result.Order.ID, result.Order.Date.Format(core.DateLayout))
	sheet, err := s.svc.GetOrderSheet(s.ctx, result.Order.ID, string(core.Requested))
	if err != nil {
		return err
	}
	printSheet(s.out, sheet)
	fmt.Fprintf(s.out, "Use '/confirm %d' once amounts are settled.\n", result.Order.ID)
	return nil
}

// confirmOrder walks the order's customers, offering the requested
// quantities as the confirmed default.
func (s *session) confirmOrder(orderID int) error {
	requested, err := s.svc.GetOrderSheet(s.ctx, orderID, string(core.Requested))
	if err != nil {
		return err
	}
	if len(requested.Rows) == 0 {
		fmt.Fprintln(s.out, "The order has no customers.")
		return nil
	}

	fmt.Fprintln(s.out, "Enter confirmed quantities; blank accepts the requested row, 'cancel' aborts.")
	s.printColumns(requested.Products)

	sheets := make([]core.CustomerQuantities, 0, len(requested.Rows))
	for _, row := range requested.Rows {
		defaults := make(map[int]int64)
		shown := make([]string, len(row.Quantities))
		for i, q := range row.Quantities {
			shown[i] = strconv.FormatInt(q, 10)
			if q > 0 {
				defaults[requested.Products[i].ID] = q
			}
		}
		for {
			raw := s.prompt(fmt.Sprintf("  %s [%s]: ", row.CustomerName, strings.Join(shown, " ")))
			if strings.EqualFold(raw, "cancel") {
				fmt.Fprintln(s.out, "Confirmation cancelled.")
				return nil
			}
			if raw == "" {
				sheets = append(sheets, core.CustomerQuantities{CustomerID: row.CustomerID, Quantities: defaults})
				break
			}
			q, err := ParseQuantities(raw, requested.Products)
			if err != nil {
				fmt.Fprintf(s.out, "  %v\n", err)
				continue
			}
			sheets = append(sheets, core.CustomerQuantities{CustomerID: row.CustomerID, Quantities: q})
			break
		}
	}

	if _, err := s.svc.ConfirmOrder(s.ctx, orderID, app.SaveOrderRequest{Sheets: sheets}); err != nil {
		return err
	}
	confirmed, err := s.svc.GetOrderSheet(s.ctx, orderID, string(core.Confirmed))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "\nOrder #%d CONFIRMED.\n", orderID)
	printSheet(s.out, confirmed)
	return nil
}
