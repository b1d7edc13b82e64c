package checkout

import "errors"

var (
	ErrCheckoutNotFound   = errors.New("checkout not found")
	ErrInvalidLineItems   = errors.New("checkout requires at least one line item")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is out of stock")
	ErrInvalidState       = errors.New("checkout status does not permit this operation")
)
