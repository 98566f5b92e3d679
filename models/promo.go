package models

type DiscountKind string

const (
	DiscountKindFlat       DiscountKind = "flat"
	DiscountKindPercentage DiscountKind = "percentage"
)

// PromoScope is the sealed set of targeting rules for a promo code.
// Each variant carries only the data its rule needs, so scope dispatch
// is an exhaustive type switch rather than flag checking.
type PromoScope interface {
	isPromoScope()
	Name() string
}

// ScopeAllTickets matches every tier.
type ScopeAllTickets struct{}

// ScopeSpecificGroups matches tiers whose group id is in the allow-list.
// An empty allow-list matches nothing.
type ScopeSpecificGroups struct {
	GroupIDs map[string]struct{}
}

// ScopeSpecificTiers matches tiers whose id is in the allow-list.
// An empty allow-list matches nothing.
type ScopeSpecificTiers struct {
	TierIDs map[string]struct{}
}

// ScopeDisabled matches nothing.
type ScopeDisabled struct{}

func (ScopeAllTickets) isPromoScope()     {}
func (ScopeSpecificGroups) isPromoScope() {}
func (ScopeSpecificTiers) isPromoScope()  {}
func (ScopeDisabled) isPromoScope()       {}

func (ScopeAllTickets) Name() string     { return "all_tickets" }
func (ScopeSpecificGroups) Name() string { return "specific_groups" }
func (ScopeSpecificTiers) Name() string  { return "specific_tiers" }
func (ScopeDisabled) Name() string       { return "disabled" }

type PromoCode struct {
	ID     string       `json:"id"`
	Code   string       `json:"code"`
	Kind   DiscountKind `json:"kind"`
	Amount int64        `json:"amount"` // cents or basis points depending on Kind

	// Scope is built by the snapshot loader from the stored scope value
	// plus the allow-list join rows; it is not serialized directly.
	Scope PromoScope `json:"-"`

	// AppliesToOrder selects whether the discount is computed once
	// against the qualifying order subtotal or per qualifying ticket.
	AppliesToOrder bool `json:"applies_to_order"`
	IsActive       bool `json:"is_active"`
}

// ScopeName returns the stored scope enum value, "disabled" when no
// scope has been attached.
func (p *PromoCode) ScopeName() string {
	if p.Scope == nil {
		return ScopeDisabled{}.Name()
	}
	return p.Scope.Name()
}
