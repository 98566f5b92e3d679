package status

import "errors"

var (
	// Invalid cart: rejected before any fee resolution begins.
	ErrEmptyCart       = errors.New("pricing: cart is empty")
	ErrInvalidQuantity = errors.New("pricing: quantity must be positive")
	ErrUnknownTier     = errors.New("pricing: unknown ticket tier")
	ErrInactiveTier    = errors.New("pricing: ticket tier is not on sale")

	// Configuration errors: the calculation aborts rather than pricing
	// at a silent default.
	ErrOrphanedTier = errors.New("pricing: ticket tier has no owning event")

	// ErrAmountOverflow is raised instead of wrapping silently.
	ErrAmountOverflow = errors.New("pricing: amount overflow")

	// ErrInactivePromo is only returned under the reject policy; the
	// default policy degrades an inactive code to a zero discount.
	ErrInactivePromo = errors.New("promo: code is inactive")
	ErrPromoNotFound = errors.New("promo: code not found")
)
