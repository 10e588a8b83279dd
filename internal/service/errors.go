package service

import "errors"

var (
	// ErrEmptyCart is a client error: checkout requires a non-empty cart
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidCard is a client error: the card could not be parsed
	ErrInvalidCard = errors.New("invalid card details")

	// ErrInvalidQuantity is a client error on the cart-update path
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 10")

	// ErrNameMismatch is a client error: the submitted line name does
	// not match the catalog
	ErrNameMismatch = errors.New("product name mismatch")

	// ErrInvalidTransition rejects non-linear or terminal status changes
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrOrderNotPending guards deletion: only Pending orders may be
	// deleted
	ErrOrderNotPending = errors.New("only pending orders can be deleted")
)
