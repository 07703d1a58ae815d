package web

import (
	"net/http"

	"bookkeeping/internal/app"

	"github.com/shopspring/decimal"
)

type productRequest struct {
	ProductTypeID int              `json:"product_type_id"`
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price"`
}

type priceRequest struct {
	Price decimal.Decimal `json:"price"`
	Date  string          `json:"date"`
}

// apiListProductTypes handles GET /api/product-types.
func (h *Handler) apiListProductTypes(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProductTypes(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateProductType handles POST /api/product-types.
func (h *Handler) apiCreateProductType(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pt, err := h.svc.CreateProductType(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, pt)
}

// apiRenameProductType handles PUT /api/product-types/{id}.
func (h *Handler) apiRenameProductType(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pt, err := h.svc.RenameProductType(r.Context(), id, req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, pt)
}

// apiDeleteProductType handles DELETE /api/product-types/{id}.
func (h *Handler) apiDeleteProductType(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProductType(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiCreateProduct handles POST /api/products.
func (h *Handler) apiCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), app.CreateProductRequest{
		ProductTypeID: req.ProductTypeID,
		Name:          req.Name,
		Price:         req.Price,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, p)
}

// apiUpdateProduct handles PUT /api/products/{id}.
// A price in the body becomes today's price.
func (h *Handler) apiUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), id, app.UpdateProductRequest{Name: req.Name, Price: req.Price})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// apiDeleteProduct handles DELETE /api/products/{id}.
func (h *Handler) apiDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiPriceHistory handles GET /api/products/{id}/prices.
func (h *Handler) apiPriceHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetPriceHistory(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiAddPrice handles POST /api/products/{id}/prices.
func (h *Handler) apiAddPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req priceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.AddPrice(r.Context(), app.AddPriceRequest{ProductID: id, Price: req.Price, Date: req.Date})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, p)
}

// apiPriceAt handles GET /api/products/{id}/price?date=YYYY-MM-DD.
func (h *Handler) apiPriceAt(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetPriceAt(r.Context(), id, r.URL.Query().Get("date"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
