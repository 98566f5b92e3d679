package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketbase/dbx"

	"eventhub/internal/pricing"
	"eventhub/internal/status"
	"eventhub/models"
)

// catalogSnapshot is the cacheable, promo-free part of a pricing
// snapshot: one event's tiers, groups and every fee item that can
// apply to them. It is serialized as-is into Redis.
type catalogSnapshot struct {
	Event        models.Event                 `json:"event"`
	Groups       []models.TicketGroup         `json:"groups"`
	Tiers        []models.TicketTier          `json:"tiers"`
	PlatformFees []models.FeeItem             `json:"platform_fees"`
	EventFees    []models.FeeItem             `json:"event_fees"`
	GroupFees    map[string][]models.FeeItem  `json:"group_fees"`
	TierFees     map[string][]models.FeeItem  `json:"tier_fees"`
}

func (c *catalogSnapshot) toPricingSnapshot() *pricing.Snapshot {
	snap := &pricing.Snapshot{
		Events:       map[string]models.Event{c.Event.ID: c.Event},
		Groups:       make(map[string]models.TicketGroup, len(c.Groups)),
		Tiers:        make(map[string]models.TicketTier, len(c.Tiers)),
		PlatformFees: c.PlatformFees,
		EventFees:    map[string][]models.FeeItem{c.Event.ID: c.EventFees},
		GroupFees:    c.GroupFees,
		TierFees:     c.TierFees,
	}
	for _, group := range c.Groups {
		snap.Groups[group.ID] = group
	}
	for _, tier := range c.Tiers {
		snap.Tiers[tier.ID] = tier
	}
	return snap
}

type eventRow struct {
	ID             string `db:"id"`
	OrganizationID string `db:"organization_id"`
	Name           string `db:"name"`
	Venue          string `db:"venue"`
	Status         string `db:"status"`
}

type groupRow struct {
	ID           string `db:"id"`
	EventID      string `db:"event_id"`
	Name         string `db:"name"`
	DisplayColor string `db:"display_color"`
	SortOrder    int    `db:"sort_order"`
}

type tierRow struct {
	ID        string `db:"id"`
	EventID   string `db:"event_id"`
	GroupID   string `db:"group_id"`
	Name      string `db:"name"`
	FacePrice int64  `db:"face_price"`
	IsActive  bool   `db:"is_active"`
}

type feeItemRow struct {
	ID        string `db:"id"`
	Label     string `db:"label"`
	Kind      string `db:"kind"`
	Amount    int64  `db:"amount"`
	Level     string `db:"level"`
	OwnerID   string `db:"owner_id"`
	SortOrder int    `db:"sort_order"`
	IsActive  bool   `db:"is_active"`
	Created   string `db:"created"`
}

type promoRow struct {
	ID             string `db:"id"`
	Code           string `db:"code"`
	Kind           string `db:"kind"`
	Amount         int64  `db:"amount"`
	Scope          string `db:"scope"`
	AppliesToOrder bool   `db:"applies_to_order"`
	IsActive       bool   `db:"is_active"`
}

func (r feeItemRow) toModel() models.FeeItem {
	return models.FeeItem{
		ID:        r.ID,
		Label:     r.Label,
		Kind:      models.FeeKind(r.Kind),
		Amount:    r.Amount,
		Level:     models.FeeLevel(r.Level),
		OwnerID:   r.OwnerID,
		SortOrder: r.SortOrder,
		IsActive:  r.IsActive,
		Created:   parseDateTime(r.Created),
	}
}

// parseDateTime handles the stored text datetime format; a zero time
// is fine for sorting since creation order ties are already rare.
func parseDateTime(value string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05.000Z", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// loadSnapshot returns the pricing snapshot for one event, read
// through the Redis cache. The cached value is immutable for its TTL,
// so checkouts racing an admin edit all price under one consistent
// configuration.
func (s *CheckoutService) loadSnapshot(ctx context.Context, eventID string) (*pricing.Snapshot, error) {
	cacheKey := fmt.Sprintf("pricing:snapshot:%s", eventID)

	if data, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
		var cached catalogSnapshot
		if err := json.Unmarshal(data, &cached); err == nil {
			s.trackSnapshotCache(true)
			return cached.toPricingSnapshot(), nil
		}
		slog.Warn("discarding unreadable snapshot cache entry", "event_id", eventID, "error", err)
	}
	s.trackSnapshotCache(false)

	catalog, err := s.fetchCatalog(eventID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(catalog); err == nil {
		if err := s.Redis.Set(ctx, cacheKey, data, s.cfg.SnapshotCacheTTL).Err(); err != nil {
			slog.Warn("failed to cache pricing snapshot", "event_id", eventID, "error", err)
		}
	}

	return catalog.toPricingSnapshot(), nil
}

func (s *CheckoutService) fetchCatalog(eventID string) (*catalogSnapshot, error) {
	event := eventRow{}
	err := s.app.DB().
		Select("id", "organization_id", "name", "venue", "status").
		From("events").
		Where(dbx.HashExp{"id": eventID}).
		One(&event)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}

	groups := []groupRow{}
	err = s.app.DB().
		Select("id", "event_id", "name", "display_color", "sort_order").
		From("ticket_groups").
		Where(dbx.HashExp{"event_id": eventID}).
		OrderBy("sort_order ASC").
		All(&groups)
	if err != nil {
		return nil, fmt.Errorf("ticket groups for event %s: %w", eventID, err)
	}

	tiers := []tierRow{}
	err = s.app.DB().
		Select("id", "event_id", "group_id", "name", "face_price", "is_active").
		From("ticket_tiers").
		Where(dbx.HashExp{"event_id": eventID}).
		All(&tiers)
	if err != nil {
		return nil, fmt.Errorf("ticket tiers for event %s: %w", eventID, err)
	}

	ownerIDs := make([]any, 0, len(groups)+len(tiers))
	for _, group := range groups {
		ownerIDs = append(ownerIDs, group.ID)
	}
	for _, tier := range tiers {
		ownerIDs = append(ownerIDs, tier.ID)
	}

	feeConditions := []dbx.Expression{
		dbx.HashExp{"level": string(models.FeeLevelPlatform)},
		dbx.And(
			dbx.HashExp{"level": string(models.FeeLevelEvent)},
			dbx.HashExp{"owner_id": eventID},
		),
	}
	if len(ownerIDs) > 0 {
		feeConditions = append(feeConditions, dbx.In("owner_id", ownerIDs...))
	}

	feeRows := []feeItemRow{}
	err = s.app.DB().
		Select("id", "label", "kind", "amount", "level", "owner_id", "sort_order", "is_active", "created").
		From("fee_items").
		Where(dbx.Or(feeConditions...)).
		OrderBy("sort_order ASC", "created ASC").
		All(&feeRows)
	if err != nil {
		return nil, fmt.Errorf("fee items for event %s: %w", eventID, err)
	}

	catalog := &catalogSnapshot{
		Event: models.Event{
			ID:             event.ID,
			OrganizationID: event.OrganizationID,
			Name:           event.Name,
			Venue:          event.Venue,
			Status:         event.Status,
		},
		GroupFees: map[string][]models.FeeItem{},
		TierFees:  map[string][]models.FeeItem{},
	}
	for _, row := range groups {
		catalog.Groups = append(catalog.Groups, models.TicketGroup{
			ID:           row.ID,
			EventID:      row.EventID,
			Name:         row.Name,
			DisplayColor: row.DisplayColor,
			SortOrder:    row.SortOrder,
		})
	}
	for _, row := range tiers {
		catalog.Tiers = append(catalog.Tiers, models.TicketTier{
			ID:        row.ID,
			EventID:   row.EventID,
			GroupID:   row.GroupID,
			Name:      row.Name,
			FacePrice: row.FacePrice,
			IsActive:  row.IsActive,
		})
	}
	for _, row := range feeRows {
		item := row.toModel()
		switch item.Level {
		case models.FeeLevelPlatform:
			catalog.PlatformFees = append(catalog.PlatformFees, item)
		case models.FeeLevelEvent:
			catalog.EventFees = append(catalog.EventFees, item)
		case models.FeeLevelGroup:
			catalog.GroupFees[item.OwnerID] = append(catalog.GroupFees[item.OwnerID], item)
		case models.FeeLevelTier:
			catalog.TierFees[item.OwnerID] = append(catalog.TierFees[item.OwnerID], item)
		}
	}

	// The flat configured tax rate rides along as a trailing
	// platform-level percentage item so the breakdown itemizes it.
	if s.cfg.TaxRateBP > 0 {
		catalog.PlatformFees = append(catalog.PlatformFees, models.FeeItem{
			ID:        "tax",
			Label:     "tax",
			Kind:      models.FeeKindPercentage,
			Amount:    s.cfg.TaxRateBP,
			Level:     models.FeeLevelPlatform,
			SortOrder: 1 << 20,
			IsActive:  true,
		})
	}

	return catalog, nil
}

// loadPromo resolves a promo code and its allow-lists into the scope
// variant the engine dispatches on.
func (s *CheckoutService) loadPromo(code string) (*models.PromoCode, error) {
	row := promoRow{}
	err := s.app.DB().
		Select("id", "code", "kind", "amount", "scope", "applies_to_order", "is_active").
		From("promo_codes").
		Where(dbx.HashExp{"code": code}).
		One(&row)
	if err != nil {
		return nil, fmt.Errorf("code %s: %w", code, status.ErrPromoNotFound)
	}

	promo := &models.PromoCode{
		ID:             row.ID,
		Code:           row.Code,
		Kind:           models.DiscountKind(row.Kind),
		Amount:         row.Amount,
		AppliesToOrder: row.AppliesToOrder,
		IsActive:       row.IsActive,
	}

	switch row.Scope {
	case "all_tickets":
		promo.Scope = models.ScopeAllTickets{}
	case "specific_groups":
		ids, err := s.allowList("promo_code_groups", "group_id", row.ID)
		if err != nil {
			return nil, err
		}
		promo.Scope = models.ScopeSpecificGroups{GroupIDs: ids}
	case "specific_tiers":
		ids, err := s.allowList("promo_code_tiers", "tier_id", row.ID)
		if err != nil {
			return nil, err
		}
		promo.Scope = models.ScopeSpecificTiers{TierIDs: ids}
	default:
		promo.Scope = models.ScopeDisabled{}
	}

	return promo, nil
}

func (s *CheckoutService) allowList(table, column, promoID string) (map[string]struct{}, error) {
	rows := []struct {
		ID string `db:"id"`
	}{}
	err := s.app.DB().
		Select(column + " AS id").
		From(table).
		Where(dbx.HashExp{"promo_id": promoID}).
		All(&rows)
	if err != nil {
		return nil, fmt.Errorf("%s for promo %s: %w", table, promoID, err)
	}

	ids := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		ids[row.ID] = struct{}{}
	}
	return ids, nil
}
