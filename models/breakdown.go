package models

// FeeLine is one resolved fee item applied to a cart line, with the
// value it computed to. Amount keeps the configured cents/basis points
// so the stored breakdown is auditable without the fee_items rows.
type FeeLine struct {
	Label         string  `json:"label"`
	Kind          FeeKind `json:"kind"`
	Amount        int64   `json:"amount"`
	ComputedValue int64   `json:"computed_value"`
}

type LineBreakdown struct {
	TierID    string    `json:"tier_id"`
	TierName  string    `json:"tier_name"`
	Quantity  int64     `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	Subtotal  int64     `json:"subtotal"`
	Fees      []FeeLine `json:"fees"`
	FeeTotal  int64     `json:"fee_total"`
	Discount  int64     `json:"discount"` // zero when the promo applies at order level
	Total     int64     `json:"total"`
}

// FeeBreakdown is the complete result of pricing one cart. It is
// computed once at checkout time and persisted verbatim; historical
// orders keep the breakdown produced under the rules in effect at
// purchase time.
type FeeBreakdown struct {
	Lines         []LineBreakdown `json:"lines"`
	Subtotal      int64           `json:"subtotal"`
	TotalFees     int64           `json:"total_fees"`
	TotalDiscount int64           `json:"total_discount"`
	Total         int64           `json:"total"`
	PromoCode     string          `json:"promo_code,omitempty"`
	PromoScope    string          `json:"promo_scope,omitempty"`
	OrderLevel    bool            `json:"order_level_discount,omitempty"`
}

// OrderPricingDoc is the aggregate document attached to an order
// record. Field names are a presentation contract with the UI layer:
// adding fields is safe, renaming or removing is a breaking change.
type OrderPricingDoc struct {
	Subtotal      int64  `json:"subtotal"`
	TotalFees     int64  `json:"total_fees"`
	TotalDiscount int64  `json:"total_discount"`
	Total         int64  `json:"total"`
	PromoCode     string `json:"promo_code,omitempty"`
	Currency      string `json:"currency"`
}

// LinePricingDoc is the itemized document attached to each order line
// item record. Same stability contract as OrderPricingDoc.
type LinePricingDoc struct {
	TierID    string    `json:"tier_id"`
	Quantity  int64     `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	Subtotal  int64     `json:"subtotal"`
	Fees      []FeeLine `json:"fees"`
	FeeTotal  int64     `json:"fee_total"`
	Discount  int64     `json:"discount"`
	Total     int64     `json:"total"`
}
