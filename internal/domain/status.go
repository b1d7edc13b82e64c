package domain

type CheckoutStatus string

const (
	StatusPendingInfo    CheckoutStatus = "pending_info"
	StatusPendingPayment CheckoutStatus = "pending_payment"
	StatusPaymentFailed  CheckoutStatus = "payment_failed"
	StatusCompleted      CheckoutStatus = "completed"
	StatusCancelled      CheckoutStatus = "cancelled"
)

// transitions lists the legal next statuses for each non-terminal status.
var transitions = map[CheckoutStatus][]CheckoutStatus{
	StatusPendingInfo:    {StatusPendingPayment, StatusCancelled},
	StatusPendingPayment: {StatusCompleted, StatusPaymentFailed, StatusCancelled},
	StatusPaymentFailed:  {StatusPendingPayment, StatusCancelled},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
