package pricing

import (
	"fmt"
	"sort"

	"eventhub/internal/status"
	"eventhub/models"
)

// Snapshot is an immutable view of the pricing configuration, fetched
// once per checkout attempt by the calling workflow. Admins may edit
// fee tables while checkouts are in flight; the engine never observes
// that because it only ever reads the snapshot it was given.
type Snapshot struct {
	Events map[string]models.Event
	Groups map[string]models.TicketGroup
	Tiers  map[string]models.TicketTier

	PlatformFees []models.FeeItem
	EventFees    map[string][]models.FeeItem // keyed by event id
	GroupFees    map[string][]models.FeeItem // keyed by group id
	TierFees     map[string][]models.FeeItem // keyed by tier id

	// Promo is the resolved code for this checkout, nil when the caller
	// supplied none or the code does not exist.
	Promo *models.PromoCode
}

// ResolveFees returns the ordered fee items applicable to a tier:
// platform items, then the owning event's, then the owning group's (if
// any), then the tier's own. Within a level items sort by sort order
// with creation time breaking ties. Inactive items are excluded
// entirely, never zeroed. The order is both the display order and the
// order percentage items are reported in; percentages always compute
// against the face price, never a fee-inflated running total.
func (s *Snapshot) ResolveFees(tier models.TicketTier) ([]models.FeeItem, error) {
	if tier.EventID == "" {
		return nil, fmt.Errorf("tier %s: %w", tier.ID, status.ErrOrphanedTier)
	}
	if _, ok := s.Events[tier.EventID]; !ok {
		return nil, fmt.Errorf("tier %s references missing event %s: %w",
			tier.ID, tier.EventID, status.ErrOrphanedTier)
	}

	items := activeSorted(s.PlatformFees)
	items = append(items, activeSorted(s.EventFees[tier.EventID])...)
	if tier.GroupID != "" {
		items = append(items, activeSorted(s.GroupFees[tier.GroupID])...)
	}
	items = append(items, activeSorted(s.TierFees[tier.ID])...)

	return items, nil
}

func activeSorted(items []models.FeeItem) []models.FeeItem {
	out := make([]models.FeeItem, 0, len(items))
	for _, item := range items {
		if item.IsActive {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}
