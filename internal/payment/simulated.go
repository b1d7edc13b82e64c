package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SimulatedGateway approves or declines based on well-known test tokens,
// so the API can run end to end without a Stripe account. Unknown tokens
// are approved.
type SimulatedGateway struct{}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

// declineTokens maps test tokens to the refusal they simulate.
var declineTokens = map[string]DeclineError{
	"tok_decline":      {Code: "card_declined", Message: "Your card was declined.", Category: "card_error"},
	"tok_insufficient": {Code: "insufficient_funds", Message: "Your card has insufficient funds.", Category: "card_error"},
	"tok_expired":      {Code: "expired_card", Message: "Your card has expired.", Category: "card_error"},
}

func (g *SimulatedGateway) AuthorizeAndCapture(_ context.Context, req ChargeRequest) (*Charge, error) {
	if decline, ok := declineTokens[req.PaymentToken]; ok {
		d := decline
		return nil, &d
	}

	return &Charge{
		TransactionID:  fmt.Sprintf("txn_%s", uuid.NewString()),
		Status:         "succeeded",
		CapturedAmount: req.Amount,
		PaymentMethod:  req.PaymentToken,
	}, nil
}

// Refund always succeeds for the simulated gateway.
func (g *SimulatedGateway) Refund(_ context.Context, req RefundRequest) (*RefundResult, error) {
	return &RefundResult{
		RefundID: fmt.Sprintf("re_%s", uuid.NewString()),
		Status:   "succeeded",
		Amount:   req.Amount,
	}, nil
}
