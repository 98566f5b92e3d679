package pricing

import (
	"eventhub/models"
)

// The adapter maps a computed breakdown onto the two persisted shapes:
// the aggregate document stored on the order and the itemized document
// stored on each order line item. It copies the computed values
// verbatim; any re-derivation here would let the stored record drift
// from what the calculator produced.

func OrderDocument(b *models.FeeBreakdown, currency string) models.OrderPricingDoc {
	return models.OrderPricingDoc{
		Subtotal:      b.Subtotal,
		TotalFees:     b.TotalFees,
		TotalDiscount: b.TotalDiscount,
		Total:         b.Total,
		PromoCode:     b.PromoCode,
		Currency:      currency,
	}
}

func LineDocuments(b *models.FeeBreakdown) []models.LinePricingDoc {
	docs := make([]models.LinePricingDoc, len(b.Lines))
	for i, line := range b.Lines {
		fees := make([]models.FeeLine, len(line.Fees))
		copy(fees, line.Fees)
		docs[i] = models.LinePricingDoc{
			TierID:    line.TierID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
			Fees:      fees,
			FeeTotal:  line.FeeTotal,
			Discount:  line.Discount,
			Total:     line.Total,
		}
	}
	return docs
}
