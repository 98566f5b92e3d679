package models

import (
	"time"
)

type FeeKind string

const (
	FeeKindFlat       FeeKind = "flat"       // amount is cents, charged per ticket
	FeeKindPercentage FeeKind = "percentage" // amount is basis points of the face price
)

// FeeLevel is the configuration level a fee item is attached to.
// Resolution order is platform, event, group, tier.
type FeeLevel string

const (
	FeeLevelPlatform FeeLevel = "platform"
	FeeLevelEvent    FeeLevel = "event"
	FeeLevelGroup    FeeLevel = "group"
	FeeLevelTier     FeeLevel = "tier"
)

type FeeItem struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Kind      FeeKind   `json:"kind"`
	Amount    int64     `json:"amount"` // cents or basis points depending on Kind
	Level     FeeLevel  `json:"level"`
	OwnerID   string    `json:"owner_id,omitempty"` // event/group/tier id, empty at platform level
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	Created   time.Time `json:"created"`
}
