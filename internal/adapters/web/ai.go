package web

import (
	"net/http"
	"strings"

	"bookkeeping/internal/core"

	"github.com/google/uuid"
)

type interpretRequest struct {
	Text string `json:"text"`
}

type interpretResponse struct {
	Token                string                `json:"token,omitempty"`
	IsClarification      bool                  `json:"is_clarification"`
	ClarificationMessage string                `json:"clarification_message,omitempty"`
	Proposal             *core.PaymentProposal `json:"proposal,omitempty"`
}

type confirmRequest struct {
	Token  string `json:"token"`
	Action string `json:"action"` // "confirm" or "cancel"
}

// apiInterpretPayment handles POST /api/ai/payments/interpret.
// A proposal is parked under a fresh token; nothing is recorded yet.
func (h *Handler) apiInterpretPayment(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.InterpretPayment(r.Context(), text)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if result.IsClarification || result.Proposal == nil {
		writeJSON(w, interpretResponse{IsClarification: true, ClarificationMessage: result.ClarificationMessage})
		return
	}

	token := uuid.NewString()
	h.pending.put(token, pendingPayment{
		Proposal:  *result.Proposal,
		UserID:    authFromContext(r.Context()).UserID,
		CreatedAt: h.pending.now(),
	})
	writeJSON(w, interpretResponse{Token: token, Proposal: result.Proposal})
}

// apiConfirmPayment records or discards a pending proposal identified by its token.
func (h *Handler) apiConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeError(w, r, "token is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.Action != "confirm" && req.Action != "cancel" {
		writeError(w, r, "action must be 'confirm' or 'cancel'", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	pending, ok := h.pending.take(req.Token)
	if !ok {
		writeError(w, r, "token not found or expired", "NOT_FOUND", http.StatusNotFound)
		return
	}
	if pending.UserID != authFromContext(r.Context()).UserID {
		h.pending.put(req.Token, pending)
		writeError(w, r, "proposal belongs to another user", "FORBIDDEN", http.StatusForbidden)
		return
	}

	if req.Action == "cancel" {
		writeJSON(w, map[string]any{"ok": true, "message": "Cancelled."})
		return
	}

	debit, err := h.svc.CommitPaymentProposal(r.Context(), pending.Proposal)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, debit)
}
