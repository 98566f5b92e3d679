package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eventhub/models"
)

func TestApplies_AllTickets(t *testing.T) {
	code := &models.PromoCode{Code: "EVERYONE", Scope: models.ScopeAllTickets{}, IsActive: true}
	snap := testSnapshot()

	assert.True(t, Applies(code, snap.Tiers["tier-ga"]))
	assert.True(t, Applies(code, snap.Tiers["tier-vip"]))
	assert.True(t, Applies(code, snap.Tiers["tier-loose"]))
}

func TestApplies_SpecificTiers(t *testing.T) {
	code := &models.PromoCode{
		Code:     "GAONLY",
		Scope:    models.ScopeSpecificTiers{TierIDs: map[string]struct{}{"tier-ga": {}}},
		IsActive: true,
	}
	snap := testSnapshot()

	assert.True(t, Applies(code, snap.Tiers["tier-ga"]))
	assert.False(t, Applies(code, snap.Tiers["tier-vip"]))
}

func TestApplies_SpecificGroups(t *testing.T) {
	code := &models.PromoCode{
		Code:     "VIPGROUP",
		Scope:    models.ScopeSpecificGroups{GroupIDs: map[string]struct{}{"grp-vip": {}}},
		IsActive: true,
	}
	snap := testSnapshot()

	assert.False(t, Applies(code, snap.Tiers["tier-ga"]))
	assert.True(t, Applies(code, snap.Tiers["tier-vip"]))
	// A tier with no group never matches a group-scoped code.
	assert.False(t, Applies(code, snap.Tiers["tier-loose"]))
}

func TestApplies_EmptyAllowListMatchesNothing(t *testing.T) {
	snap := testSnapshot()

	tiersCode := &models.PromoCode{Code: "T", Scope: models.ScopeSpecificTiers{TierIDs: map[string]struct{}{}}, IsActive: true}
	groupsCode := &models.PromoCode{Code: "G", Scope: models.ScopeSpecificGroups{GroupIDs: map[string]struct{}{}}, IsActive: true}

	for _, tier := range snap.Tiers {
		assert.False(t, Applies(tiersCode, tier))
		assert.False(t, Applies(groupsCode, tier))
	}
}

func TestApplies_DisabledAndInactive(t *testing.T) {
	snap := testSnapshot()

	disabled := &models.PromoCode{Code: "OFF", Scope: models.ScopeDisabled{}, IsActive: true}
	inactive := &models.PromoCode{Code: "OLD", Scope: models.ScopeAllTickets{}, IsActive: false}
	nilScope := &models.PromoCode{Code: "RAW", IsActive: true}

	assert.False(t, Applies(disabled, snap.Tiers["tier-ga"]))
	assert.False(t, Applies(inactive, snap.Tiers["tier-ga"]))
	assert.False(t, Applies(nilScope, snap.Tiers["tier-ga"]))
	assert.False(t, Applies(nil, snap.Tiers["tier-ga"]))
}
