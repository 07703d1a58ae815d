package web

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"bookkeeping/internal/app"
	"bookkeeping/internal/core"

	"github.com/shopspring/decimal"
)

type nameRequest struct {
	Name string `json:"name"`
}

type debitRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// apiListCustomers handles GET /api/customers.
func (h *Handler) apiListCustomers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateCustomer handles POST /api/customers.
func (h *Handler) apiCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.CreateCustomer(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, c)
}

// apiRenameCustomer handles PUT /api/customers/{id}.
func (h *Handler) apiRenameCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.RenameCustomer(r.Context(), id, req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, c)
}

// apiDeleteCustomer handles DELETE /api/customers/{id}.
// Debits and customer orders of the customer go with it.
func (h *Handler) apiDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiCustomerLedger handles GET /api/customers/{id}/transfers.
func (h *Handler) apiCustomerLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetCustomerLedger(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCustomerStatement handles GET /api/customers/{id}/statement.
// Streams CSV when format=csv, otherwise behaves like the transfers endpoint.
func (h *Handler) apiCustomerStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetCustomerLedger(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") != "csv" {
		writeJSON(w, result)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="statement-%d.csv"`, id))
	if err := writeStatementCSV(w, result); err != nil {
		// Headers are already sent.
		h.log.Error().Err(err).
			Str("request_id", requestIDFromContext(r.Context())).
			Int("customer_id", id).
			Msg("failed to write statement csv")
	}
}

func writeStatementCSV(w io.Writer, result *app.LedgerResult) error {
	rows := make([][]string, 0, len(result.Lines)+2)
	rows = append(rows, []string{"date", "kind", "reference", "debit", "credit", "balance"})
	for _, line := range result.Lines {
		rows = append(rows, []string{
			line.Date.Format(core.DateLayout),
			line.Kind.String(),
			transferReference(line.Transfer),
			amountCell(line.Debit()),
			amountCell(line.Credit()),
			strconv.FormatInt(line.RunningBalance, 10),
		})
	}
	rows = append(rows, []string{"", "", csvSafe(result.Customer.Name), "", "", strconv.FormatInt(result.Balance, 10)})
	if err := csv.NewWriter(w).WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write statement of customer %d: %w", result.Customer.ID, err)
	}
	return nil
}

func transferReference(t core.Transfer) string {
	if t.Kind == core.TransferDebit {
		return fmt.Sprintf("payment #%d", t.DebitID)
	}
	return fmt.Sprintf("order #%d", t.OrderID)
}

func amountCell(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

// csvSafe prevents CSV formula injection by prefixing cells that begin with a
// formula-triggering character with a single quote.
func csvSafe(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// apiCustomerBalance handles GET /api/customers/{id}/balance.
func (h *Handler) apiCustomerBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetBalance(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiListDebits handles GET /api/customers/{id}/debits?date=YYYY-MM-DD.
func (h *Handler) apiListDebits(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.ListDebits(r.Context(), id, r.URL.Query().Get("date"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiRecordDebit handles POST /api/customers/{id}/debits.
func (h *Handler) apiRecordDebit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req debitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.RecordDebit(r.Context(), app.RecordDebitRequest{
		CustomerID: id,
		Amount:     req.Amount,
		Date:       req.Date,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, d)
}

// apiUpdateDebit handles PUT /api/debits/{id}.
func (h *Handler) apiUpdateDebit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req debitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.UpdateDebit(r.Context(), id, app.UpdateDebitRequest{Amount: req.Amount, Date: req.Date})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, d)
}

// apiDeleteDebit handles DELETE /api/debits/{id}.
func (h *Handler) apiDeleteDebit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteDebit(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
