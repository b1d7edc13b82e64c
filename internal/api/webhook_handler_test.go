package api

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/srujanab94/acp-commerce/internal/domain"
)

// signWebhookPayload builds a Stripe-Signature header the way Stripe
// signs events: HMAC-SHA256 over "<timestamp>.<payload>".
func signWebhookPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func paymentIntentEvent(eventType, intentID, checkoutID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"type": %q,
		"data": {
			"object": {
				"id": %q,
				"object": "payment_intent",
				"metadata": {"checkout_id": %q}
			}
		}
	}`, eventType, intentID, checkoutID))
}

func postWebhook(t *testing.T, router http.Handler, payload []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", sig)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_InvalidSignature(t *testing.T) {
	router := newTestRouter(t)

	payload := paymentIntentEvent("payment_intent.succeeded", "pi_1", "co_1")
	rec := postWebhook(t, router, payload, "t=123,v1=deadbeef")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestWebhook_ReconcilesSuccess(t *testing.T) {
	router := newTestRouter(t)

	c := createCheckout(t, router)
	supplyInfo(t, router, c.ID)

	payload := paymentIntentEvent("payment_intent.succeeded", "pi_webhook_1", c.ID)
	rec := postWebhook(t, router, payload, signWebhookPayload(payload, testWebhookSecret, time.Now()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	got := decodeCheckout(t, doJSON(t, router, "GET", "/api/v1/checkouts/"+c.ID, nil))
	if got.Status != domain.StatusCompleted {
		t.Errorf("expected checkout completed after webhook, got %s", got.Status)
	}
	if got.PaymentIntentID != "pi_webhook_1" {
		t.Errorf("expected payment_intent_id pi_webhook_1, got %s", got.PaymentIntentID)
	}
}

func TestWebhook_ReconcilesFailure(t *testing.T) {
	router := newTestRouter(t)

	c := createCheckout(t, router)
	supplyInfo(t, router, c.ID)

	payload := paymentIntentEvent("payment_intent.payment_failed", "pi_webhook_2", c.ID)
	rec := postWebhook(t, router, payload, signWebhookPayload(payload, testWebhookSecret, time.Now()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	got := decodeCheckout(t, doJSON(t, router, "GET", "/api/v1/checkouts/"+c.ID, nil))
	if got.Status != domain.StatusPaymentFailed {
		t.Errorf("expected checkout payment_failed after webhook, got %s", got.Status)
	}
	if got.PaymentError == nil {
		t.Error("expected payment_error to be recorded")
	}
}

func TestWebhook_ReplayIsIdempotent(t *testing.T) {
	router := newTestRouter(t)

	c := createCheckout(t, router)
	supplyInfo(t, router, c.ID)

	payload := paymentIntentEvent("payment_intent.succeeded", "pi_webhook_3", c.ID)
	sig := signWebhookPayload(payload, testWebhookSecret, time.Now())

	for i := 0; i < 2; i++ {
		rec := postWebhook(t, router, payload, sig)
		if rec.Code != http.StatusOK {
			t.Fatalf("replay %d: expected status %d, got %d", i, http.StatusOK, rec.Code)
		}
	}

	got := decodeCheckout(t, doJSON(t, router, "GET", "/api/v1/checkouts/"+c.ID, nil))
	if got.Status != domain.StatusCompleted {
		t.Errorf("expected checkout completed, got %s", got.Status)
	}
}

func TestWebhook_UnknownCheckoutStillAcked(t *testing.T) {
	router := newTestRouter(t)

	payload := paymentIntentEvent("payment_intent.succeeded", "pi_webhook_4", "co_missing")
	rec := postWebhook(t, router, payload, signWebhookPayload(payload, testWebhookSecret, time.Now()))

	// acked so the gateway stops retrying an unresolvable event
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestWebhook_IgnoresOtherEventTypes(t *testing.T) {
	router := newTestRouter(t)

	payload := []byte(`{"id": "evt_test_2", "type": "charge.refunded", "data": {"object": {}}}`)
	rec := postWebhook(t, router, payload, signWebhookPayload(payload, testWebhookSecret, time.Now()))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
