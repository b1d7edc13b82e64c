package domain

import "time"

// Money is an amount in minor currency units (cents for USD).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// LineItem snapshots a product at checkout-creation time. Later catalog
// price changes must not alter an existing checkout's total.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
	Total     Money  `json:"total"`
}

// PaymentError holds the structured decline detail reported by the gateway.
type PaymentError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

type Checkout struct {
	ID                 string         `json:"id"`
	Status             CheckoutStatus `json:"status"`
	LineItems          []LineItem     `json:"line_items"`
	Total              Money          `json:"total"`
	ShippingAddress    *Address       `json:"shipping_address,omitempty"`
	CustomerEmail      string         `json:"customer_email,omitempty"`
	PaymentIntentID    string         `json:"payment_intent_id,omitempty"`
	PaymentMethod      string         `json:"payment_method,omitempty"`
	PaymentError       *PaymentError  `json:"payment_error,omitempty"`
	// PaymentAttempts counts settlement attempts so each one carries a
	// distinct gateway idempotency key.
	PaymentAttempts int `json:"payment_attempts,omitempty"`
	// RefundID is the most recent refund; RefundedAmount accumulates
	// across partial refunds up to the captured total.
	RefundID string `json:"refund_id,omitempty"`
	RefundedAmount     int64          `json:"refunded_amount,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CancellationReason string         `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// InfoComplete reports whether both shipping address and customer email
// have been supplied.
func (c *Checkout) InfoComplete() bool {
	return c.ShippingAddress != nil && c.CustomerEmail != ""
}

// Clone returns a deep copy so stored state cannot be mutated through
// a returned pointer.
func (c *Checkout) Clone() *Checkout {
	cp := *c
	cp.LineItems = make([]LineItem, len(c.LineItems))
	copy(cp.LineItems, c.LineItems)
	if c.ShippingAddress != nil {
		addr := *c.ShippingAddress
		cp.ShippingAddress = &addr
	}
	if c.PaymentError != nil {
		pe := *c.PaymentError
		cp.PaymentError = &pe
	}
	if c.CompletedAt != nil {
		ts := *c.CompletedAt
		cp.CompletedAt = &ts
	}
	return &cp
}
