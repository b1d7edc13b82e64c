package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter mounts the API surface on a fresh chi router. Global
// middleware is attached by the caller.
func NewRouter(products *ProductHandler, checkouts *CheckoutHandler, webhooks *WebhookHandler) chi.Router {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", products.List)
		r.Get("/products/{product_id}", products.Get)

		r.Route("/checkouts", func(r chi.Router) {
			r.Post("/", checkouts.Create)
			r.Get("/{checkout_id}", checkouts.Get)
			r.Patch("/{checkout_id}", checkouts.SupplyInfo)
			r.Post("/{checkout_id}/complete", checkouts.Complete)
			r.Post("/{checkout_id}/retry-payment", checkouts.RetryPayment)
			r.Post("/{checkout_id}/cancel", checkouts.Cancel)
			r.Post("/{checkout_id}/refund", checkouts.Refund)
		})
	})

	r.Post("/webhooks/stripe", webhooks.HandleEvent)

	return r
}
