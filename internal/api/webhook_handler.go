package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v81"

	"github.com/srujanab94/acp-commerce/internal/checkout"
	"github.com/srujanab94/acp-commerce/internal/domain"
	"github.com/srujanab94/acp-commerce/internal/payment"
)

const maxWebhookBodyBytes = int64(65536)

// WebhookHandler reconciles checkouts against authoritative gateway
// events, so a settlement still lands even when the original caller
// timed out and never saw the Complete response.
type WebhookHandler struct {
	svc    *checkout.Service
	secret string
}

func NewWebhookHandler(svc *checkout.Service, secret string) *WebhookHandler {
	return &WebhookHandler{
		svc:    svc,
		secret: secret,
	}
}

// POST /webhooks/stripe
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
		return
	}

	event, err := payment.VerifyWebhookEvent(payload, r.Header.Get("Stripe-Signature"), h.secret)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed")
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		h.reconcile(w, r, event, true)
	case "payment_intent.payment_failed":
		h.reconcile(w, r, event, false)
	default:
		log.Printf("ignoring webhook event type %s", event.Type)
		respondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
	}
}

func (h *WebhookHandler) reconcile(w http.ResponseWriter, r *http.Request, event stripe.Event, succeeded bool) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed payment intent payload")
		return
	}

	checkoutID := pi.Metadata["checkout_id"]
	if checkoutID == "" {
		log.Printf("webhook %s: payment intent %s has no checkout_id metadata", event.Type, pi.ID)
		respondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	var err error
	if succeeded {
		_, err = h.svc.ReconcilePaymentSuccess(r.Context(), checkoutID, pi.ID, intentPaymentMethod(&pi))
	} else {
		_, err = h.svc.ReconcilePaymentFailure(r.Context(), checkoutID, intentFailure(&pi))
	}

	if err != nil {
		// Respond 200 regardless: the gateway would retry on non-2xx and
		// an unknown or conflicting checkout will not resolve by replay.
		if !errors.Is(err, checkout.ErrCheckoutNotFound) {
			log.Printf("webhook reconcile for checkout %s failed: %v", checkoutID, err)
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "unreconciled"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "reconciled"})
}

func intentPaymentMethod(pi *stripe.PaymentIntent) string {
	if pi.PaymentMethod != nil {
		return pi.PaymentMethod.ID
	}
	return ""
}

func intentFailure(pi *stripe.PaymentIntent) domain.PaymentError {
	if pi.LastPaymentError == nil {
		return domain.PaymentError{
			Code:     "payment_failed",
			Message:  "payment failed",
			Category: "card_error",
		}
	}
	return domain.PaymentError{
		Code:     string(pi.LastPaymentError.Code),
		Message:  pi.LastPaymentError.Msg,
		Category: string(pi.LastPaymentError.Type),
	}
}
