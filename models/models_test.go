package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The persisted breakdown documents are a presentation contract with
// the UI layer: renaming or removing a field is a breaking change.
// These tests pin the field names down.
func TestOrderPricingDoc_FieldContract(t *testing.T) {
	doc := OrderPricingDoc{
		Subtotal:      10000,
		TotalFees:     450,
		TotalDiscount: 1000,
		Total:         9450,
		PromoCode:     "TEN",
		Currency:      "USD",
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	fields := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &fields))

	for _, name := range []string{"subtotal", "total_fees", "total_discount", "total", "promo_code", "currency"} {
		assert.Contains(t, fields, name)
	}
}

func TestLinePricingDoc_FieldContract(t *testing.T) {
	doc := LinePricingDoc{
		TierID:    "tier-ga",
		Quantity:  2,
		UnitPrice: 5000,
		Subtotal:  10000,
		Fees: []FeeLine{
			{Label: "service", Kind: FeeKindPercentage, Amount: 250, ComputedValue: 250},
		},
		FeeTotal: 250,
		Discount: 1000,
		Total:    9250,
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	fields := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &fields))

	for _, name := range []string{"tier_id", "quantity", "unit_price", "subtotal", "fees", "fee_total", "discount", "total"} {
		assert.Contains(t, fields, name)
	}

	fees := fields["fees"].([]any)
	require.Len(t, fees, 1)
	fee := fees[0].(map[string]any)
	for _, name := range []string{"label", "kind", "amount", "computed_value"} {
		assert.Contains(t, fee, name)
	}
}

func TestPromoCode_ScopeName(t *testing.T) {
	tests := []struct {
		scope    PromoScope
		expected string
	}{
		{ScopeAllTickets{}, "all_tickets"},
		{ScopeSpecificGroups{}, "specific_groups"},
		{ScopeSpecificTiers{}, "specific_tiers"},
		{ScopeDisabled{}, "disabled"},
		{nil, "disabled"},
	}

	for _, tt := range tests {
		code := &PromoCode{Code: "X", Scope: tt.scope}
		assert.Equal(t, tt.expected, code.ScopeName())
	}
}

func TestPromoCode_ScopeNotSerialized(t *testing.T) {
	code := PromoCode{
		Code:  "TEN",
		Kind:  DiscountKindPercentage,
		Scope: ScopeSpecificTiers{TierIDs: map[string]struct{}{"tier-1": {}}},
	}

	data, err := json.Marshal(code)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "tier-1")
}

func TestFeeBreakdown_RoundTrip(t *testing.T) {
	breakdown := FeeBreakdown{
		Lines: []LineBreakdown{
			{
				TierID:   "tier-ga",
				Quantity: 2,
				Subtotal: 10000,
				Fees:     []FeeLine{{Label: "service", Kind: FeeKindPercentage, Amount: 250, ComputedValue: 250}},
				FeeTotal: 250,
				Total:    10250,
			},
		},
		Subtotal:  10000,
		TotalFees: 250,
		Total:     10250,
	}

	data, err := json.Marshal(breakdown)
	require.NoError(t, err)

	var decoded FeeBreakdown
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, breakdown, decoded)
}
