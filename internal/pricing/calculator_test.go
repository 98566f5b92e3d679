package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/status"
	"eventhub/models"
)

func TestPriceCart_NoPromo_TotalIsSubtotalPlusFees(t *testing.T) {
	snap := testSnapshot()
	snap.TierFees["tier-ga"] = []models.FeeItem{feeItem("f-t", "processing", models.FeeKindPercentage, 250, 0)}
	snap.EventFees["evt-1"] = []models.FeeItem{feeItem("f-e", "platform", models.FeeKindFlat, 100, 0)}

	b, err := PriceCart(snap, []models.CartSelection{{TierID: "tier-ga", Quantity: 2}}, Policy{})
	require.NoError(t, err)

	// 2 x 5000 = 10000; floor(10000*250/10000) + 100*2 = 250 + 200 = 450.
	assert.Equal(t, int64(10000), b.Subtotal)
	assert.Equal(t, int64(450), b.TotalFees)
	assert.Equal(t, int64(0), b.TotalDiscount)
	assert.Equal(t, int64(10450), b.Total)
	assert.Equal(t, b.Subtotal+b.TotalFees, b.Total)

	require.Len(t, b.Lines, 1)
	line := b.Lines[0]
	require.Len(t, line.Fees, 2)
	assert.Equal(t, "platform", line.Fees[0].Label)
	assert.Equal(t, int64(200), line.Fees[0].ComputedValue)
	assert.Equal(t, "processing", line.Fees[1].Label)
	assert.Equal(t, int64(250), line.Fees[1].ComputedValue)
	assert.Equal(t, line.Subtotal+line.FeeTotal, line.Total)
}

func TestPriceCart_PerTicketPercentagePromo(t *testing.T) {
	snap := testSnapshot()
	snap.TierFees["tier-ga"] = []models.FeeItem{feeItem("f-t", "processing", models.FeeKindPercentage, 250, 0)}
	snap.EventFees["evt-1"] = []models.FeeItem{feeItem("f-e", "platform", models.FeeKindFlat, 100, 0)}
	snap.Promo = &models.PromoCode{
		Code:     "TEN",
		Kind:     models.DiscountKindPercentage,
		Amount:   1000,
		Scope:    models.ScopeAllTickets{},
		IsActive: true,
	}

	b, err := PriceCart(snap, []models.CartSelection{{TierID: "tier-ga", Quantity: 2}}, Policy{})
	require.NoError(t, err)

	// Discount computes against the ticket subtotal, never the fees.
	assert.Equal(t, int64(1000), b.TotalDiscount)
	assert.Equal(t, int64(9450), b.Total)
	assert.Equal(t, int64(1000), b.Lines[0].Discount)
	assert.Equal(t, "TEN", b.PromoCode)
	assert.Equal(t, "all_tickets", b.PromoScope)
}

func TestPriceCart_PerLineVsOrderLevelRoundingDiffer(t *testing.T) {
	// Two tiers at 150 cents with a 1% code: per-ticket mode floors each
	// line to 1 cent (total 2), order mode floors once on 300 (total 3).
	snap := testSnapshot()
	snap.Tiers["tier-a"] = models.TicketTier{ID: "tier-a", EventID: "evt-1", Name: "A", FacePrice: 150, IsActive: true}
	snap.Tiers["tier-b"] = models.TicketTier{ID: "tier-b", EventID: "evt-1", Name: "B", FacePrice: 150, IsActive: true}

	cart := []models.CartSelection{
		{TierID: "tier-a", Quantity: 1},
		{TierID: "tier-b", Quantity: 1},
	}

	perTicket := &models.PromoCode{
		Code: "ONEPCT", Kind: models.DiscountKindPercentage, Amount: 100,
		Scope: models.ScopeAllTickets{}, IsActive: true,
	}

	snap.Promo = perTicket
	b, err := PriceCart(snap, cart, Policy{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.TotalDiscount)
	assert.Equal(t, int64(298), b.Total)

	orderLevel := *perTicket
	orderLevel.AppliesToOrder = true
	snap.Promo = &orderLevel
	b, err = PriceCart(snap, cart, Policy{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), b.TotalDiscount)
	assert.Equal(t, int64(297), b.Total)
	// In order mode the single discount lives on the order, not a line.
	assert.Equal(t, int64(0), b.Lines[0].Discount)
	assert.Equal(t, int64(0), b.Lines[1].Discount)
	assert.True(t, b.OrderLevel)
}

func TestPriceCart_OrderLevelUsesQualifyingSubtotalOnly(t *testing.T) {
	snap := testSnapshot()
	snap.Promo = &models.PromoCode{
		Code:           "GA10",
		Kind:           models.DiscountKindPercentage,
		Amount:         1000,
		Scope:          models.ScopeSpecificTiers{TierIDs: map[string]struct{}{"tier-ga": {}}},
		AppliesToOrder: true,
		IsActive:       true,
	}

	b, err := PriceCart(snap, []models.CartSelection{
		{TierID: "tier-ga", Quantity: 1},  // 5000, qualifies
		{TierID: "tier-vip", Quantity: 1}, // 15000, does not
	}, Policy{})
	require.NoError(t, err)

	assert.Equal(t, int64(20000), b.Subtotal)
	assert.Equal(t, int64(500), b.TotalDiscount) // 10% of 5000, not of 20000
	assert.Equal(t, int64(19500), b.Total)
}

func TestPriceCart_ScopeMismatchYieldsZeroDiscount(t *testing.T) {
	snap := testSnapshot()
	snap.Promo = &models.PromoCode{
		Code:     "T1ONLY",
		Kind:     models.DiscountKindPercentage,
		Amount:   1000,
		Scope:    models.ScopeSpecificTiers{TierIDs: map[string]struct{}{"tier-ga": {}}},
		IsActive: true,
	}

	b, err := PriceCart(snap, []models.CartSelection{{TierID: "tier-vip", Quantity: 1}}, Policy{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.TotalDiscount)
	assert.Equal(t, b.Subtotal+b.TotalFees, b.Total)
}

func TestPriceCart_FlatDiscountScalesWithQuantity(t *testing.T) {
	snap := testSnapshot()
	snap.Promo = &models.PromoCode{
		Code:     "5OFF",
		Kind:     models.DiscountKindFlat,
		Amount:   500,
		Scope:    models.ScopeAllTickets{},
		IsActive: true,
	}

	b, err := PriceCart(snap, []models.CartSelection{{TierID: "tier-ga", Quantity: 3}}, Policy{})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), b.TotalDiscount)

	// Order mode applies the flat amount once.
	snap.Promo.AppliesToOrder = true
	b, err = PriceCart(snap, []models.CartSelection{{TierID: "tier-ga", Quantity: 3}}, Policy{})
	require.NoError(t, err)
	assert.Equal(t, int64(500), b.TotalDiscount)
}

func TestPriceCart_TotalFlooredAtZero(t *testing.T) {
	snap := testSnapshot()
	snap.Promo = &models.PromoCode{
		Code:     "HUGE",
		Kind:     models.DiscountKindFlat,
		Amount:   999999,
		Scope:    models.ScopeAllTickets{},
		IsActive: true,
	}

	b, err := PriceCart(snap, []models.CartSelection{{TierID: "tier-loose", Quantity: 1}}, Policy{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Total)
	assert.GreaterOrEqual(t, b.Total, int64(0))
}

func TestPriceCart_Idempotent(t *testing.T) {
	snap := testSnapshot()
	snap.TierFees["tier-ga"] = []models.FeeItem{feeItem("f-t", "processing", models.FeeKindPercentage, 250, 0)}
	snap.Promo = &models.PromoCode{
		Code: "TEN", Kind: models.DiscountKindPercentage, Amount: 1000,
		Scope: models.ScopeAllTickets{}, IsActive: true,
	}
	cart := []models.CartSelection{
		{TierID: "tier-ga", Quantity: 2},
		{TierID: "tier-vip", Quantity: 1},
	}

	first, err := PriceCart(snap, cart, Policy{})
	require.NoError(t, err)
	second, err := PriceCart(snap, cart, Policy{})
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestPriceCart_QuantityMonotonicity(t *testing.T) {
	snap := testSnapshot()
	snap.TierFees["tier-ga"] = []models.FeeItem{feeItem("f-t", "processing", models.FeeKindPercentage, 250, 0)}
	snap.Promo = &models.PromoCode{
		Code: "TEN", Kind: models.DiscountKindPercentage, Amount: 1000,
		Scope: models.ScopeAllTickets{}, IsActive: true,
	}

	var prev int64 = -1
	for qty := int64(1); qty <= 20; qty++ {
		b, err := PriceCart(snap, []models.CartSelection{{TierID: "tier-ga", Quantity: qty}}, Policy{})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.Total, prev, "total decreased at quantity %d", qty)
		prev = b.Total
	}
}

func TestPriceCart_InvalidCarts(t *testing.T) {
	snap := testSnapshot()
	inactive := snap.Tiers["tier-ga"]
	inactive.ID = "tier-off"
	inactive.IsActive = false
	snap.Tiers["tier-off"] = inactive

	tests := []struct {
		name string
		cart []models.CartSelection
		want error
	}{
		{"empty cart", nil, status.ErrEmptyCart},
		{"zero quantity", []models.CartSelection{{TierID: "tier-ga", Quantity: 0}}, status.ErrInvalidQuantity},
		{"negative quantity", []models.CartSelection{{TierID: "tier-ga", Quantity: -2}}, status.ErrInvalidQuantity},
		{"unknown tier", []models.CartSelection{{TierID: "tier-nope", Quantity: 1}}, status.ErrUnknownTier},
		{"inactive tier", []models.CartSelection{{TierID: "tier-off", Quantity: 1}}, status.ErrInactiveTier},
		{
			"one bad line fails the whole cart",
			[]models.CartSelection{{TierID: "tier-ga", Quantity: 1}, {TierID: "tier-nope", Quantity: 1}},
			status.ErrUnknownTier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := PriceCart(snap, tt.cart, Policy{})
			assert.Nil(t, b)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPriceCart_Overflow(t *testing.T) {
	snap := testSnapshot()
	pricey := models.TicketTier{ID: "tier-max", EventID: "evt-1", Name: "Max", FacePrice: math.MaxInt64 / 2, IsActive: true}
	snap.Tiers["tier-max"] = pricey

	b, err := PriceCart(snap, []models.CartSelection{{TierID: "tier-max", Quantity: 3}}, Policy{})
	assert.Nil(t, b)
	assert.ErrorIs(t, err, status.ErrAmountOverflow)
}

func TestPriceCart_InactivePromoPolicy(t *testing.T) {
	snap := testSnapshot()
	snap.Promo = &models.PromoCode{
		Code: "EXPIRED", Kind: models.DiscountKindPercentage, Amount: 1000,
		Scope: models.ScopeAllTickets{}, IsActive: false,
	}
	cart := []models.CartSelection{{TierID: "tier-ga", Quantity: 1}}

	// Default policy: degrade to full price, checkout proceeds.
	b, err := PriceCart(snap, cart, Policy{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.TotalDiscount)
	assert.Empty(t, b.PromoCode)

	// Reject policy: the calculation fails with a typed error.
	b, err = PriceCart(snap, cart, Policy{RejectInactivePromo: true})
	assert.Nil(t, b)
	assert.ErrorIs(t, err, status.ErrInactivePromo)
}

func TestOrderDocument_MirrorsBreakdown(t *testing.T) {
	snap := testSnapshot()
	snap.TierFees["tier-ga"] = []models.FeeItem{feeItem("f-t", "processing", models.FeeKindPercentage, 250, 0)}
	snap.Promo = &models.PromoCode{
		Code: "TEN", Kind: models.DiscountKindPercentage, Amount: 1000,
		Scope: models.ScopeAllTickets{}, IsActive: true,
	}

	b, err := PriceCart(snap, []models.CartSelection{{TierID: "tier-ga", Quantity: 2}}, Policy{})
	require.NoError(t, err)

	doc := OrderDocument(b, "USD")
	assert.Equal(t, b.Subtotal, doc.Subtotal)
	assert.Equal(t, b.TotalFees, doc.TotalFees)
	assert.Equal(t, b.TotalDiscount, doc.TotalDiscount)
	assert.Equal(t, b.Total, doc.Total)
	assert.Equal(t, "TEN", doc.PromoCode)
	assert.Equal(t, "USD", doc.Currency)

	lines := LineDocuments(b)
	require.Len(t, lines, len(b.Lines))
	for i, line := range lines {
		assert.Equal(t, b.Lines[i].TierID, line.TierID)
		assert.Equal(t, b.Lines[i].Subtotal, line.Subtotal)
		assert.Equal(t, b.Lines[i].Fees, line.Fees)
		assert.Equal(t, b.Lines[i].FeeTotal, line.FeeTotal)
		assert.Equal(t, b.Lines[i].Discount, line.Discount)
		assert.Equal(t, b.Lines[i].Total, line.Total)
	}
}

func BenchmarkPriceCart(b *testing.B) {
	snap := testSnapshot()
	snap.PlatformFees = []models.FeeItem{feeItem("f-p", "service", models.FeeKindPercentage, 250, 0)}
	snap.EventFees["evt-1"] = []models.FeeItem{feeItem("f-e", "venue", models.FeeKindFlat, 100, 0)}
	snap.Promo = &models.PromoCode{
		Code: "TEN", Kind: models.DiscountKindPercentage, Amount: 1000,
		Scope: models.ScopeAllTickets{}, IsActive: true,
	}
	cart := []models.CartSelection{
		{TierID: "tier-ga", Quantity: 2},
		{TierID: "tier-vip", Quantity: 4},
		{TierID: "tier-loose", Quantity: 1},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		PriceCart(snap, cart, Policy{})
	}
}
