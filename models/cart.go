package models

// CartSelection is a caller-supplied line of a checkout cart.
type CartSelection struct {
	TierID   string `json:"tier_id"`
	Quantity int64  `json:"quantity"`
}
