package store

import (
	"context"
	"errors"

	"github.com/srujanab94/acp-commerce/internal/domain"
)

var ErrCheckoutNotFound = errors.New("checkout not found")

// Store holds the authoritative mapping from checkout id to checkout state.
// Implementations must return copies; callers never observe shared mutable
// state through a returned pointer.
type Store interface {
	// Put stores a new checkout.
	Put(ctx context.Context, c *domain.Checkout) error
	// Get returns the checkout or ErrCheckoutNotFound.
	Get(ctx context.Context, id string) (*domain.Checkout, error)
	// Update applies fn to the stored checkout and persists the result.
	// If fn returns an error the checkout is left unchanged. Returns the
	// updated checkout.
	Update(ctx context.Context, id string, fn func(c *domain.Checkout) error) (*domain.Checkout, error)
}
