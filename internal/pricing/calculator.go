package pricing

import (
	"fmt"

	"eventhub/internal/status"
	"eventhub/models"
)

// Policy carries the product decisions the engine does not hardcode.
type Policy struct {
	// RejectInactivePromo fails the calculation when the supplied code
	// is inactive. The default (false) degrades the code to a zero
	// discount so an expired code never blocks checkout.
	RejectInactivePromo bool
}

// PriceCart turns a cart plus the snapshot's optional promo code into
// a complete breakdown. Same snapshot and selections always produce
// the same breakdown; there is no clock or randomness dependency.
// Partial pricing is never returned: any invalid line or configuration
// error fails the whole calculation.
func PriceCart(snap *Snapshot, selections []models.CartSelection, policy Policy) (*models.FeeBreakdown, error) {
	if len(selections) == 0 {
		return nil, status.ErrEmptyCart
	}

	// Validate the whole cart before resolving any fees.
	tiers := make([]models.TicketTier, len(selections))
	for i, sel := range selections {
		if sel.Quantity <= 0 {
			return nil, fmt.Errorf("tier %s quantity %d: %w",
				sel.TierID, sel.Quantity, status.ErrInvalidQuantity)
		}
		tier, ok := snap.Tiers[sel.TierID]
		if !ok {
			return nil, fmt.Errorf("tier %s: %w", sel.TierID, status.ErrUnknownTier)
		}
		if !tier.IsActive {
			return nil, fmt.Errorf("tier %s: %w", sel.TierID, status.ErrInactiveTier)
		}
		tiers[i] = tier
	}

	promo := snap.Promo
	if promo != nil && !promo.IsActive {
		if policy.RejectInactivePromo {
			return nil, fmt.Errorf("code %s: %w", promo.Code, status.ErrInactivePromo)
		}
		promo = nil
	}

	breakdown := &models.FeeBreakdown{
		Lines: make([]models.LineBreakdown, 0, len(selections)),
	}
	if promo != nil {
		breakdown.PromoCode = promo.Code
		breakdown.PromoScope = promo.ScopeName()
		breakdown.OrderLevel = promo.AppliesToOrder
	}

	var qualifyingSubtotal int64
	var perLineDiscounts int64

	for i, sel := range selections {
		tier := tiers[i]

		lineSubtotal, err := mulChecked(tier.FacePrice, sel.Quantity)
		if err != nil {
			return nil, fmt.Errorf("tier %s subtotal: %w", tier.ID, err)
		}

		feeItems, err := snap.ResolveFees(tier)
		if err != nil {
			return nil, err
		}

		line := models.LineBreakdown{
			TierID:    tier.ID,
			TierName:  tier.Name,
			Quantity:  sel.Quantity,
			UnitPrice: tier.FacePrice,
			Subtotal:  lineSubtotal,
			Fees:      make([]models.FeeLine, 0, len(feeItems)),
		}

		for _, item := range feeItems {
			var value int64
			switch item.Kind {
			case models.FeeKindFlat:
				// Flat fees are per ticket and scale with quantity.
				value, err = mulChecked(item.Amount, sel.Quantity)
			case models.FeeKindPercentage:
				value, err = percentOf(lineSubtotal, item.Amount)
			default:
				return nil, fmt.Errorf("fee item %s: unknown kind %q", item.ID, item.Kind)
			}
			if err != nil {
				return nil, fmt.Errorf("fee %q on tier %s: %w", item.Label, tier.ID, err)
			}

			line.Fees = append(line.Fees, models.FeeLine{
				Label:         item.Label,
				Kind:          item.Kind,
				Amount:        item.Amount,
				ComputedValue: value,
			})
			if line.FeeTotal, err = addChecked(line.FeeTotal, value); err != nil {
				return nil, fmt.Errorf("fee total on tier %s: %w", tier.ID, err)
			}
		}

		if promo != nil && Applies(promo, tier) {
			if qualifyingSubtotal, err = addChecked(qualifyingSubtotal, lineSubtotal); err != nil {
				return nil, err
			}
			if !promo.AppliesToOrder {
				// Discounts apply to the ticket price, never to fees.
				discount, err := lineDiscount(promo, lineSubtotal, sel.Quantity)
				if err != nil {
					return nil, err
				}
				line.Discount = discount
				if perLineDiscounts, err = addChecked(perLineDiscounts, discount); err != nil {
					return nil, err
				}
			}
		}

		line.Total = line.Subtotal + line.FeeTotal - line.Discount

		if breakdown.Subtotal, err = addChecked(breakdown.Subtotal, lineSubtotal); err != nil {
			return nil, err
		}
		if breakdown.TotalFees, err = addChecked(breakdown.TotalFees, line.FeeTotal); err != nil {
			return nil, err
		}
		breakdown.Lines = append(breakdown.Lines, line)
	}

	if promo != nil {
		if promo.AppliesToOrder {
			if qualifyingSubtotal > 0 {
				discount, err := orderDiscount(promo, qualifyingSubtotal)
				if err != nil {
					return nil, err
				}
				breakdown.TotalDiscount = discount
			}
		} else {
			breakdown.TotalDiscount = perLineDiscounts
		}
	}

	total, err := addChecked(breakdown.Subtotal, breakdown.TotalFees)
	if err != nil {
		return nil, err
	}
	total -= breakdown.TotalDiscount
	if total < 0 {
		// Excess discount is forfeited, never carried over.
		total = 0
	}
	breakdown.Total = total

	return breakdown, nil
}
