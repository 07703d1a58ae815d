package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bookkeeping/internal/app"
	"bookkeeping/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler holds the ApplicationService, the chi router, and the pending payment store.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	pending   *pendingStore
	jwtSecret string
	log       zerolog.Logger
}

// NewHandler creates and wires the chi router with all routes.
// The pending-store purge loop stops when ctx is cancelled.
func NewHandler(ctx context.Context, svc app.ApplicationService, allowedOrigins []string, jwtSecret string, logger zerolog.Logger) http.Handler {
	h := &Handler{
		svc:       svc,
		pending:   newPendingStore(),
		jwtSecret: jwtSecret,
		log:       logger,
	}
	h.pending.startPurge(ctx)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.With(RequestBodyLimit(1<<20)).Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Authenticated API ─────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// Customers and payments
		r.Get("/api/customers", h.apiListCustomers)
		r.Post("/api/customers", h.apiCreateCustomer)
		r.Put("/api/customers/{id}", h.apiRenameCustomer)
		r.Delete("/api/customers/{id}", h.apiDeleteCustomer)
		r.Get("/api/customers/{id}/transfers", h.apiCustomerLedger)
		r.Get("/api/customers/{id}/statement", h.apiCustomerStatement)
		r.Get("/api/customers/{id}/balance", h.apiCustomerBalance)
		r.Get("/api/customers/{id}/debits", h.apiListDebits)
		r.Post("/api/customers/{id}/debits", h.apiRecordDebit)
		r.Put("/api/debits/{id}", h.apiUpdateDebit)
		r.Delete("/api/debits/{id}", h.apiDeleteDebit)

		// Catalog
		r.Get("/api/product-types", h.apiListProductTypes)
		r.Post("/api/product-types", h.apiCreateProductType)
		r.Put("/api/product-types/{id}", h.apiRenameProductType)
		r.Delete("/api/product-types/{id}", h.apiDeleteProductType)
		r.Post("/api/products", h.apiCreateProduct)
		r.Put("/api/products/{id}", h.apiUpdateProduct)
		r.Delete("/api/products/{id}", h.apiDeleteProduct)
		r.Get("/api/products/{id}/prices", h.apiPriceHistory)
		r.Post("/api/products/{id}/prices", h.apiAddPrice)
		r.Get("/api/products/{id}/price", h.apiPriceAt)

		// Orders
		r.Get("/api/orders", h.apiListOrders)
		r.Post("/api/orders", h.apiCreateOrder)
		r.Get("/api/orders/latest", h.apiLatestOrder)
		r.Get("/api/orders/{id}", h.apiGetOrder)
		r.Put("/api/orders/{id}", h.apiUpdateOrder)
		r.Delete("/api/orders/{id}", h.apiDeleteOrder)
		r.Post("/api/orders/{id}/confirm", h.apiConfirmOrder)
		r.Get("/api/orders/{id}/sheet", h.apiOrderSheet)
		r.Get("/api/orders/{id}/cost", h.apiOrderCost)

		// AI payment entry
		r.Post("/api/ai/payments/interpret", h.apiInterpretPayment)
		r.Post("/api/ai/payments/confirm", h.apiConfirmPayment)

		// Users
		r.With(h.RequireRole(core.RoleAdmin)).Post("/api/users", h.apiCreateUser)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam parses the {name} URL parameter as a positive integer id.
// On failure it writes a 400 response and returns false.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid "+name+": must be a positive integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
