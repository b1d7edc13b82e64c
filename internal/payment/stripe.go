package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

// StripeGateway charges through Stripe PaymentIntents. The payment token
// supplied by the caller is a Stripe payment method id.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(apiKey string) *StripeGateway {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) AuthorizeAndCapture(_ context.Context, req ChargeRequest) (*Charge, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.Amount),
		Currency:      stripe.String(req.Currency),
		PaymentMethod: stripe.String(req.PaymentToken),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.IdempotencyKey = stripe.String(chargeIdempotencyKey(req))
	params.AddMetadata("checkout_id", req.CheckoutID)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return nil, &DeclineError{
				Code:     string(stripeErr.Code),
				Message:  stripeErr.Msg,
				Category: string(stripeErr.Type),
			}
		}
		return nil, fmt.Errorf("stripe payment intent failed: %w", err)
	}

	if pi.Status == stripe.PaymentIntentStatusRequiresPaymentMethod ||
		pi.Status == stripe.PaymentIntentStatusCanceled {
		return nil, &DeclineError{
			Code:     "payment_not_completed",
			Message:  fmt.Sprintf("payment intent ended in status %s", pi.Status),
			Category: "card_error",
		}
	}

	return &Charge{
		TransactionID:  pi.ID,
		Status:         string(pi.Status),
		CapturedAmount: pi.Amount,
		PaymentMethod:  paymentMethodID(pi),
	}, nil
}

func (g *StripeGateway) Refund(_ context.Context, req RefundRequest) (*RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.TransactionID),
	}
	if req.Amount > 0 {
		params.Amount = stripe.Int64(req.Amount)
	}

	ref, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe refund failed: %w", err)
	}

	return &RefundResult{
		RefundID: ref.ID,
		Status:   string(ref.Status),
		Amount:   ref.Amount,
	}, nil
}

// chargeIdempotencyKey scopes the Stripe idempotency key to one
// settlement attempt. A bare checkout id would pin the first attempt's
// params forever and make every retried payment fail idempotency checks.
func chargeIdempotencyKey(req ChargeRequest) string {
	return fmt.Sprintf("%s:%d", req.CheckoutID, req.Attempt)
}

func paymentMethodID(pi *stripe.PaymentIntent) string {
	if pi.PaymentMethod != nil {
		return pi.PaymentMethod.ID
	}
	return ""
}

// VerifyWebhookEvent checks the Stripe-Signature header against the
// endpoint secret and returns the parsed event. The event's API version
// may differ from the SDK pin; only the signature decides validity.
func VerifyWebhookEvent(payload []byte, sigHeader, secret string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
