package pricing

import (
	"fmt"

	"eventhub/models"
)

// Applies reports whether the promo code discounts the given tier.
// The scope variants are mutually exclusive and exhaustive: a tier can
// only match through its code's declared scope, never through another
// code property. A tier with no group never matches a group-scoped
// code.
func Applies(code *models.PromoCode, tier models.TicketTier) bool {
	if code == nil || !code.IsActive {
		return false
	}
	switch scope := code.Scope.(type) {
	case models.ScopeAllTickets:
		return true
	case models.ScopeSpecificGroups:
		if tier.GroupID == "" {
			return false
		}
		_, ok := scope.GroupIDs[tier.GroupID]
		return ok
	case models.ScopeSpecificTiers:
		_, ok := scope.TierIDs[tier.ID]
		return ok
	case models.ScopeDisabled:
		return false
	default:
		// A nil or unknown scope behaves like disabled.
		return false
	}
}

// lineDiscount computes the discount for one qualifying cart line in
// per-ticket mode: a flat amount scales with quantity, a percentage is
// floored against the line subtotal, mirroring the fee rules.
func lineDiscount(code *models.PromoCode, subtotal, quantity int64) (int64, error) {
	switch code.Kind {
	case models.DiscountKindFlat:
		return mulChecked(code.Amount, quantity)
	case models.DiscountKindPercentage:
		return percentOf(subtotal, code.Amount)
	}
	return 0, fmt.Errorf("promo %s: unknown discount kind %q", code.Code, code.Kind)
}

// orderDiscount computes the single order-level discount against the
// sum of qualifying line subtotals. Recomputing once here, instead of
// summing per-line values, keeps the two modes from drifting apart by
// rounding.
func orderDiscount(code *models.PromoCode, qualifyingSubtotal int64) (int64, error) {
	switch code.Kind {
	case models.DiscountKindFlat:
		return code.Amount, nil
	case models.DiscountKindPercentage:
		return percentOf(qualifyingSubtotal, code.Amount)
	}
	return 0, fmt.Errorf("promo %s: unknown discount kind %q", code.Code, code.Kind)
}
