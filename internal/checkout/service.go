package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/srujanab94/acp-commerce/internal/catalog"
	"github.com/srujanab94/acp-commerce/internal/domain"
	"github.com/srujanab94/acp-commerce/internal/payment"
	"github.com/srujanab94/acp-commerce/internal/store"
)

// Service owns checkout lifecycle transitions and orchestrates the
// catalog, store and payment gateway collaborators.
type Service struct {
	store   store.Store
	catalog catalog.Catalog
	gateway payment.Gateway
	sfg     singleflight.Group // serializes Complete per checkout id
}

func NewService(st store.Store, cat catalog.Catalog, gw payment.Gateway) *Service {
	return &Service{
		store:   st,
		catalog: cat,
		gateway: gw,
	}
}

type LineItemRequest struct {
	ProductID string
	Quantity  int
}

type CreateRequest struct {
	Items           []LineItemRequest
	ShippingAddress *domain.Address
	CustomerEmail   string
}

// CompleteResult carries the settled checkout plus the gateway-reported
// settlement status and a fresh order id correlating this completion.
// The order id is generated here and not persisted anywhere else.
type CompleteResult struct {
	Checkout         *domain.Checkout
	OrderID          string
	SettlementStatus string
}

// Create validates the requested line items against the catalog, snapshots
// unit prices, computes the total once and stores a new pending_info
// checkout. Nothing is stored when validation fails.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Checkout, error) {
	if len(req.Items) == 0 {
		return nil, ErrInvalidLineItems
	}

	items := make([]domain.LineItem, 0, len(req.Items))
	var total int64
	currency := ""
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for product %s", ErrInvalidLineItems, it.ProductID)
		}
		p, ok := s.catalog.Lookup(it.ProductID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
		}
		if !p.InStock() {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, it.ProductID)
		}
		if currency == "" {
			currency = p.Price.Currency
		}
		lineTotal := p.Price.Amount * int64(it.Quantity)
		items = append(items, domain.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
			Total:     domain.Money{Amount: lineTotal, Currency: currency},
		})
		total += lineTotal
	}

	now := time.Now().UTC()
	c := &domain.Checkout{
		ID:              uuid.NewString(),
		Status:          domain.StatusPendingInfo,
		LineItems:       items,
		Total:           domain.Money{Amount: total, Currency: currency},
		ShippingAddress: req.ShippingAddress,
		CustomerEmail:   req.CustomerEmail,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("store checkout: %w", err)
	}
	return c, nil
}

// Get returns the checkout by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Checkout, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return c, nil
}

// SupplyInfo merges the provided fields into the checkout. Fields are only
// ever added; a nil address or empty email never clears a previously
// supplied value. Once both shipping address and email are present the
// checkout advances from pending_info to pending_payment. Idempotent with
// respect to status.
func (s *Service) SupplyInfo(ctx context.Context, id string, addr *domain.Address, email string) (*domain.Checkout, error) {
	c, err := s.store.Update(ctx, id, func(c *domain.Checkout) error {
		if addr != nil {
			c.ShippingAddress = addr
		}
		if email != "" {
			c.CustomerEmail = email
		}
		if c.Status == domain.StatusPendingInfo && c.InfoComplete() {
			c.Status = domain.StatusPendingPayment
		}
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return c, nil
}

// Complete settles a pending_payment checkout through the gateway.
// Concurrent calls for the same checkout id share a single in-flight
// attempt, so at most one authorization is issued per checkout.
func (s *Service) Complete(ctx context.Context, id, paymentToken string) (*CompleteResult, error) {
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		return s.complete(ctx, id, paymentToken)
	})
	if err != nil {
		return nil, err
	}
	return v.(*CompleteResult), nil
}

func (s *Service) complete(ctx context.Context, id, paymentToken string) (*CompleteResult, error) {
	// The gateway is never called for a checkout outside pending_payment.
	// The attempt counter advances in the same update as the precondition
	// check, so every authorization carries its own idempotency key.
	c, err := s.store.Update(ctx, id, func(c *domain.Checkout) error {
		if c.Status != domain.StatusPendingPayment {
			return fmt.Errorf("%w: cannot complete checkout in status %s", ErrInvalidState, c.Status)
		}
		c.PaymentAttempts++
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	charge, err := s.gateway.AuthorizeAndCapture(ctx, payment.ChargeRequest{
		Amount:       c.Total.Amount,
		Currency:     c.Total.Currency,
		PaymentToken: paymentToken,
		CheckoutID:   c.ID,
		Attempt:      c.PaymentAttempts,
	})

	var decline *payment.DeclineError
	if errors.As(err, &decline) {
		if _, uerr := s.recordPaymentFailure(ctx, id, domain.PaymentError{
			Code:     decline.Code,
			Message:  decline.Message,
			Category: decline.Category,
		}); uerr != nil {
			log.Printf("failed to record payment failure for checkout %s: %v", id, uerr)
		}
		return nil, decline
	}
	if err != nil {
		// Outcome unknown: leave the checkout in pending_payment so the
		// gateway's webhook (or a fresh attempt) can reconcile it.
		return nil, fmt.Errorf("payment gateway: %w", err)
	}

	updated, err := s.store.Update(ctx, id, func(c *domain.Checkout) error {
		if !domain.CanTransitionTo(c.Status, domain.StatusCompleted) {
			log.Printf("charge %s captured for checkout %s now in status %s", charge.TransactionID, id, c.Status)
			return fmt.Errorf("%w: checkout moved to %s during settlement", ErrInvalidState, c.Status)
		}
		now := time.Now().UTC()
		c.Status = domain.StatusCompleted
		c.PaymentIntentID = charge.TransactionID
		c.PaymentMethod = charge.PaymentMethod
		c.PaymentError = nil
		c.CompletedAt = &now
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	return &CompleteResult{
		Checkout:         updated,
		OrderID:          fmt.Sprintf("order_%s", uuid.NewString()),
		SettlementStatus: charge.Status,
	}, nil
}

// RetryPayment moves a payment_failed checkout back to pending_payment so
// Complete can be attempted again with a new token.
func (s *Service) RetryPayment(ctx context.Context, id string) (*domain.Checkout, error) {
	c, err := s.store.Update(ctx, id, func(c *domain.Checkout) error {
		if c.Status != domain.StatusPaymentFailed {
			return fmt.Errorf("%w: cannot retry payment in status %s", ErrInvalidState, c.Status)
		}
		c.Status = domain.StatusPendingPayment
		c.PaymentError = nil
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return c, nil
}

// Cancel moves any non-terminal checkout to cancelled. A completed
// checkout cannot be cancelled; it is refunded instead.
func (s *Service) Cancel(ctx context.Context, id, reason string) (*domain.Checkout, error) {
	if reason == "" {
		reason = "user_cancelled"
	}
	c, err := s.store.Update(ctx, id, func(c *domain.Checkout) error {
		if !domain.CanTransitionTo(c.Status, domain.StatusCancelled) {
			return fmt.Errorf("%w: cannot cancel checkout in status %s", ErrInvalidState, c.Status)
		}
		c.Status = domain.StatusCancelled
		c.CancellationReason = reason
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return c, nil
}

// Refund refunds a completed checkout through the gateway. amount of 0
// refunds whatever remains of the captured total. Refunds may be partial
// and repeated, but never exceed the captured total in aggregate.
func (s *Service) Refund(ctx context.Context, id string, amount int64) (*domain.Checkout, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if c.Status != domain.StatusCompleted || c.PaymentIntentID == "" {
		return nil, fmt.Errorf("%w: only a completed checkout can be refunded", ErrInvalidState)
	}
	remaining := c.Total.Amount - c.RefundedAmount
	if remaining <= 0 {
		return nil, fmt.Errorf("%w: checkout %s is already fully refunded", ErrInvalidState, id)
	}
	if amount == 0 {
		amount = remaining
	}
	if amount > remaining {
		return nil, fmt.Errorf("%w: refund of %d exceeds remaining captured amount %d", ErrInvalidState, amount, remaining)
	}

	res, err := s.gateway.Refund(ctx, payment.RefundRequest{
		TransactionID: c.PaymentIntentID,
		Amount:        amount,
	})
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}

	updated, err := s.store.Update(ctx, id, func(c *domain.Checkout) error {
		c.RefundID = res.RefundID
		c.RefundedAmount += res.Amount
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return updated, nil
}

// ReconcilePaymentSuccess applies an authoritative gateway success signal
// (e.g. from a webhook) to the checkout. Idempotent: a checkout already in
// a terminal status is left untouched.
func (s *Service) ReconcilePaymentSuccess(ctx context.Context, id, transactionID, paymentMethod string) (*domain.Checkout, error) {
	c, err := s.store.Update(ctx, id, func(c *domain.Checkout) error {
		if c.Status.IsTerminal() {
			return nil
		}
		if !domain.CanTransitionTo(c.Status, domain.StatusCompleted) {
			return fmt.Errorf("%w: cannot settle checkout in status %s", ErrInvalidState, c.Status)
		}
		now := time.Now().UTC()
		c.Status = domain.StatusCompleted
		c.PaymentIntentID = transactionID
		c.PaymentMethod = paymentMethod
		c.PaymentError = nil
		c.CompletedAt = &now
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return c, nil
}

// ReconcilePaymentFailure applies an authoritative gateway failure signal
// to the checkout. Idempotent on terminal and already-failed checkouts.
func (s *Service) ReconcilePaymentFailure(ctx context.Context, id string, perr domain.PaymentError) (*domain.Checkout, error) {
	c, err := s.store.Update(ctx, id, func(c *domain.Checkout) error {
		if c.Status.IsTerminal() || c.Status == domain.StatusPaymentFailed {
			return nil
		}
		if !domain.CanTransitionTo(c.Status, domain.StatusPaymentFailed) {
			return fmt.Errorf("%w: cannot fail checkout in status %s", ErrInvalidState, c.Status)
		}
		pe := perr
		c.Status = domain.StatusPaymentFailed
		c.PaymentError = &pe
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return c, nil
}

func (s *Service) recordPaymentFailure(ctx context.Context, id string, perr domain.PaymentError) (*domain.Checkout, error) {
	return s.store.Update(ctx, id, func(c *domain.Checkout) error {
		if !domain.CanTransitionTo(c.Status, domain.StatusPaymentFailed) {
			return fmt.Errorf("%w: cannot fail checkout in status %s", ErrInvalidState, c.Status)
		}
		pe := perr
		c.Status = domain.StatusPaymentFailed
		c.PaymentError = &pe
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrCheckoutNotFound) {
		return ErrCheckoutNotFound
	}
	return err
}
