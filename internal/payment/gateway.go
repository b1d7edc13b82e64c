package payment

import (
	"context"
	"fmt"
)

// ChargeRequest asks the gateway to authorize and capture a payment.
// CheckoutID correlates the charge with the checkout; Attempt numbers
// the settlement attempt so retries with a fresh token get a fresh
// idempotency key instead of replaying a stored outcome.
type ChargeRequest struct {
	Amount       int64
	Currency     string
	PaymentToken string
	CheckoutID   string
	Attempt      int
}

// Charge is the successful outcome of AuthorizeAndCapture.
type Charge struct {
	TransactionID  string
	Status         string // gateway settlement status, e.g. "succeeded", "processing"
	CapturedAmount int64
	PaymentMethod  string
}

type RefundRequest struct {
	TransactionID string
	// Amount in minor units; 0 refunds the full captured amount.
	Amount int64
}

type RefundResult struct {
	RefundID string
	Status   string
	Amount   int64
}

// DeclineError is a payment refusal reported by the gateway. Any other
// error returned from the gateway is an infrastructure fault, not a
// decision about the payment.
type DeclineError struct {
	Code     string
	Message  string
	Category string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("payment declined: %s (%s)", e.Message, e.Code)
}

// Gateway is the external payment collaborator.
type Gateway interface {
	AuthorizeAndCapture(ctx context.Context, req ChargeRequest) (*Charge, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}
