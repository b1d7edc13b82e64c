package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/srujanab94/acp-commerce/internal/checkout"
	"github.com/srujanab94/acp-commerce/internal/domain"
	"github.com/srujanab94/acp-commerce/internal/payment"
)

type CheckoutHandler struct {
	svc     *checkout.Service
	timeout time.Duration
}

func NewCheckoutHandler(svc *checkout.Service, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		svc:     svc,
		timeout: timeout,
	}
}

type LineItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateCheckoutRequestDTO struct {
	Items           []LineItemRequestDTO `json:"items"`
	ShippingAddress *domain.Address      `json:"shipping_address,omitempty"`
	CustomerEmail   string               `json:"customer_email,omitempty"`
}

type SupplyInfoRequestDTO struct {
	ShippingAddress *domain.Address `json:"shipping_address,omitempty"`
	CustomerEmail   string          `json:"customer_email,omitempty"`
}

type CompleteRequestDTO struct {
	PaymentToken string `json:"payment_token"`
}

type CancelRequestDTO struct {
	Reason string `json:"reason,omitempty"`
}

type RefundRequestDTO struct {
	Amount int64 `json:"amount,omitempty"`
}

type CompleteResponseDTO struct {
	OrderID          string           `json:"order_id"`
	SettlementStatus string           `json:"settlement_status"`
	Checkout         *domain.Checkout `json:"checkout"`
}

// PaymentDeclinedResponse carries the gateway's structured refusal plus
// the checkout as it stands after the failed attempt.
type PaymentDeclinedResponse struct {
	Error    string           `json:"error"`
	Code     string           `json:"code"`
	Category string           `json:"category"`
	Checkout *domain.Checkout `json:"checkout,omitempty"`
}

// POST /api/v1/checkouts
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	items := make([]checkout.LineItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = checkout.LineItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	c, err := h.svc.Create(ctx, checkout.CreateRequest{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		CustomerEmail:   req.CustomerEmail,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

// GET /api/v1/checkouts/{checkout_id}
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.svc.Get(ctx, chi.URLParam(r, "checkout_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// PATCH /api/v1/checkouts/{checkout_id}
func (h *CheckoutHandler) SupplyInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SupplyInfoRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := h.svc.SupplyInfo(ctx, chi.URLParam(r, "checkout_id"), req.ShippingAddress, req.CustomerEmail)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// POST /api/v1/checkouts/{checkout_id}/complete
func (h *CheckoutHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checkoutID := chi.URLParam(r, "checkout_id")

	var req CompleteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PaymentToken == "" {
		respondError(w, http.StatusBadRequest, "missing_payment_token", "payment_token is required")
		return
	}

	res, err := h.svc.Complete(ctx, checkoutID, req.PaymentToken)
	if err != nil {
		var decline *payment.DeclineError
		if errors.As(err, &decline) {
			h.respondDeclined(ctx, w, checkoutID, decline)
			return
		}
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CompleteResponseDTO{
		OrderID:          res.OrderID,
		SettlementStatus: res.SettlementStatus,
		Checkout:         res.Checkout,
	})
}

func (h *CheckoutHandler) respondDeclined(ctx context.Context, w http.ResponseWriter, checkoutID string, decline *payment.DeclineError) {
	resp := PaymentDeclinedResponse{
		Error:    decline.Message,
		Code:     decline.Code,
		Category: decline.Category,
	}
	// best effort: include the session so the caller sees payment_failed
	if c, err := h.svc.Get(ctx, checkoutID); err == nil {
		resp.Checkout = c
	}
	respondJSON(w, http.StatusPaymentRequired, resp)
}

// POST /api/v1/checkouts/{checkout_id}/retry-payment
func (h *CheckoutHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.svc.RetryPayment(ctx, chi.URLParam(r, "checkout_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// POST /api/v1/checkouts/{checkout_id}/cancel
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CancelRequestDTO
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}

	c, err := h.svc.Cancel(ctx, chi.URLParam(r, "checkout_id"), req.Reason)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// POST /api/v1/checkouts/{checkout_id}/refund
func (h *CheckoutHandler) Refund(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RefundRequestDTO
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}
	if req.Amount < 0 {
		respondError(w, http.StatusBadRequest, "invalid_amount", "amount must not be negative")
		return
	}

	c, err := h.svc.Refund(ctx, chi.URLParam(r, "checkout_id"), req.Amount)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}
