package web

import (
	"net/http"

	"bookkeeping/internal/app"
	"bookkeeping/internal/core"
)

// orderRequest is the JSON form of an order sheet. Quantities are keyed by
// product id; products left out are treated as zero.
type orderRequest struct {
	Date      string                    `json:"date"`
	Customers []core.CustomerQuantities `json:"customers"`
}

func (o orderRequest) toApp() app.SaveOrderRequest {
	return app.SaveOrderRequest{Date: o.Date, Sheets: o.Customers}
}

// apiListOrders handles GET /api/orders.
func (h *Handler) apiListOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListOrders(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateOrder handles POST /api/orders.
func (h *Handler) apiCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateOrder(r.Context(), req.toApp())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, result)
}

// apiLatestOrder handles GET /api/orders/latest.
func (h *Handler) apiLatestOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetLatestOrder(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiGetOrder handles GET /api/orders/{id}.
func (h *Handler) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiUpdateOrder handles PUT /api/orders/{id}: date and requested amounts.
func (h *Handler) apiUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateOrder(r.Context(), id, req.toApp())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiConfirmOrder handles POST /api/orders/{id}/confirm: confirmed amounts.
func (h *Handler) apiConfirmOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.ConfirmOrder(r.Context(), id, req.toApp())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiDeleteOrder handles DELETE /api/orders/{id}.
func (h *Handler) apiDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiOrderSheet handles GET /api/orders/{id}/sheet?kind=requested|confirmed.
func (h *Handler) apiOrderSheet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	sheet, err := h.svc.GetOrderSheet(r.Context(), id, r.URL.Query().Get("kind"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, sheet)
}

// apiOrderCost handles GET /api/orders/{id}/cost?kind=requested|confirmed.
func (h *Handler) apiOrderCost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetOrderCost(r.Context(), id, r.URL.Query().Get("kind"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
