package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"skillswap/backend/internal/models"
	"skillswap/backend/internal/service"
)

// PaymentHandler sells credit packs through the payment gateway. The callback
// route is hit by the gateway redirect, not by an authenticated client.
type PaymentHandler struct {
	payments    service.PaymentService
	frontendURL string
}

func NewPaymentHandler(payments service.PaymentService, frontendURL string) *PaymentHandler {
	return &PaymentHandler{payments: payments, frontendURL: frontendURL}
}

func (h *PaymentHandler) Routes(r chi.Router) {
	r.Post("/orders", h.CreateOrder)
}

type createOrderRequest struct {
	Credits int64 `json:"credits"`
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req createOrderRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	result, err := h.payments.CreateOrder(r.Context(), user.ID, req.Credits)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated, map[string]interface{}{
		"order_id":    result.OrderID,
		"payment_url": result.PaymentURL,
	})
}

// Callback receives the gateway redirect, verifies the charge, and sends the
// payer back to the frontend with the outcome in the query string.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseUint(r.URL.Query().Get("order_id"), 10, 64)
	if err != nil {
		h.redirect(w, r, "failed", 0)
		return
	}
	token, err := strconv.ParseInt(r.URL.Query().Get("token"), 10, 64)
	if err != nil {
		h.redirect(w, r, "failed", orderID)
		return
	}

	order, err := h.payments.HandleCallback(r.Context(), orderID, token)
	if err != nil || order.Status != models.PaymentOrderVerified {
		h.redirect(w, r, "failed", orderID)
		return
	}

	h.redirect(w, r, "success", orderID)
}

func (h *PaymentHandler) redirect(w http.ResponseWriter, r *http.Request, outcome string, orderID uint64) {
	url := fmt.Sprintf("%s/wallet?payment=%s&order=%d", h.frontendURL, outcome, orderID)
	http.Redirect(w, r, url, http.StatusFound)
}
