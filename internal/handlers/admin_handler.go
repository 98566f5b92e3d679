package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventhub/config"
	"eventhub/models"
)

// AdminHandler is the configuration surface for organization staff.
// Role resolution happens upstream; by the time these run the caller
// is an authenticated superuser or is rejected outright.
type AdminHandler struct {
	app *pocketbase.PocketBase
	cfg *config.Config
}

func NewAdminHandler(app *pocketbase.PocketBase, cfg *config.Config) *AdminHandler {
	return &AdminHandler{app: app, cfg: cfg}
}

func (h *AdminHandler) requireSuperuser(e *core.RequestEvent) error {
	if e.Auth == nil || !e.Auth.IsSuperuser() {
		return apis.NewUnauthorizedError("Admin access required", nil)
	}
	return nil
}

// ListFeeItems - list fee items, optionally filtered by level and owner
func (h *AdminHandler) ListFeeItems(e *core.RequestEvent) error {
	if err := h.requireSuperuser(e); err != nil {
		return err
	}

	query := h.app.DB().
		Select("id", "label", "kind", "amount", "level", "owner_id", "sort_order", "is_active", "created").
		From("fee_items").
		OrderBy("level ASC", "sort_order ASC", "created ASC")

	conditions := dbx.HashExp{}
	if level := e.Request.URL.Query().Get("level"); level != "" {
		conditions["level"] = level
	}
	if owner := e.Request.URL.Query().Get("owner_id"); owner != "" {
		conditions["owner_id"] = owner
	}
	if len(conditions) > 0 {
		query = query.Where(conditions)
	}

	items := []map[string]any{}
	rows := []struct {
		ID        string `db:"id"`
		Label     string `db:"label"`
		Kind      string `db:"kind"`
		Amount    int64  `db:"amount"`
		Level     string `db:"level"`
		OwnerID   string `db:"owner_id"`
		SortOrder int    `db:"sort_order"`
		IsActive  bool   `db:"is_active"`
		Created   string `db:"created"`
	}{}
	if err := query.All(&rows); err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to list fee items", err)
	}
	for _, row := range rows {
		items = append(items, map[string]any{
			"id":         row.ID,
			"label":      row.Label,
			"kind":       row.Kind,
			"amount":     row.Amount,
			"level":      row.Level,
			"owner_id":   row.OwnerID,
			"sort_order": row.SortOrder,
			"is_active":  row.IsActive,
			"created":    row.Created,
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"fee_items": items,
		"total":     len(items),
	})
}

// CreateFeeItem - attach a fee item at one of the four levels
func (h *AdminHandler) CreateFeeItem(e *core.RequestEvent) error {
	if err := h.requireSuperuser(e); err != nil {
		return err
	}

	var req struct {
		Label     string `json:"label"`
		Kind      string `json:"kind"`
		Amount    int64  `json:"amount"`
		Level     string `json:"level"`
		OwnerID   string `json:"owner_id"`
		SortOrder int    `json:"sort_order"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.validateRate(models.FeeKind(req.Kind) == models.FeeKindPercentage, req.Amount); err != nil {
		return err
	}
	switch models.FeeKind(req.Kind) {
	case models.FeeKindFlat, models.FeeKindPercentage:
	default:
		return apis.NewBadRequestError(fmt.Sprintf("Unknown fee kind %q", req.Kind), nil)
	}
	switch models.FeeLevel(req.Level) {
	case models.FeeLevelPlatform:
		if req.OwnerID != "" {
			return apis.NewBadRequestError("Platform fee items carry no owner", nil)
		}
	case models.FeeLevelEvent, models.FeeLevelGroup, models.FeeLevelTier:
		if req.OwnerID == "" {
			return apis.NewBadRequestError("owner_id is required for this level", nil)
		}
	default:
		return apis.NewBadRequestError(fmt.Sprintf("Unknown fee level %q", req.Level), nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("fee_items")
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "fee_items collection missing", err)
	}

	record := core.NewRecord(collection)
	record.Set("label", req.Label)
	record.Set("kind", req.Kind)
	record.Set("amount", req.Amount)
	record.Set("level", req.Level)
	record.Set("owner_id", req.OwnerID)
	record.Set("sort_order", req.SortOrder)
	record.Set("is_active", true)

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to create fee item", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"id": record.Id})
}

// CreatePromoCode - create a promo code with its scope allow-list
func (h *AdminHandler) CreatePromoCode(e *core.RequestEvent) error {
	if err := h.requireSuperuser(e); err != nil {
		return err
	}

	var req struct {
		Code           string   `json:"code"`
		Kind           string   `json:"kind"`
		Amount         int64    `json:"amount"`
		Scope          string   `json:"scope"`
		AppliesToOrder bool     `json:"applies_to_order"`
		GroupIDs       []string `json:"group_ids"`
		TierIDs        []string `json:"tier_ids"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if req.Code == "" {
		return apis.NewBadRequestError("code is required", nil)
	}
	switch models.DiscountKind(req.Kind) {
	case models.DiscountKindFlat, models.DiscountKindPercentage:
	default:
		return apis.NewBadRequestError(fmt.Sprintf("Unknown discount kind %q", req.Kind), nil)
	}
	if err := h.validateRate(models.DiscountKind(req.Kind) == models.DiscountKindPercentage, req.Amount); err != nil {
		return err
	}

	switch req.Scope {
	case "all_tickets", "disabled":
	case "specific_groups":
		if len(req.TierIDs) > 0 {
			return apis.NewBadRequestError("group-scoped codes take group_ids, not tier_ids", nil)
		}
	case "specific_tiers":
		if len(req.GroupIDs) > 0 {
			return apis.NewBadRequestError("tier-scoped codes take tier_ids, not group_ids", nil)
		}
	default:
		return apis.NewBadRequestError(fmt.Sprintf("Unknown scope %q", req.Scope), nil)
	}

	var promoID string
	err := h.app.RunInTransaction(func(txApp core.App) error {
		collection, err := txApp.FindCollectionByNameOrId("promo_codes")
		if err != nil {
			return err
		}
		record := core.NewRecord(collection)
		record.Set("code", req.Code)
		record.Set("kind", req.Kind)
		record.Set("amount", req.Amount)
		record.Set("scope", req.Scope)
		record.Set("applies_to_order", req.AppliesToOrder)
		record.Set("is_active", true)
		if err := txApp.Save(record); err != nil {
			return err
		}
		promoID = record.Id

		if req.Scope == "specific_groups" {
			if err := saveAllowList(txApp, "promo_code_groups", "group_id", promoID, req.GroupIDs); err != nil {
				return err
			}
		}
		if req.Scope == "specific_tiers" {
			if err := saveAllowList(txApp, "promo_code_tiers", "tier_id", promoID, req.TierIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apis.NewBadRequestError("Failed to create promo code", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"id": promoID})
}

func saveAllowList(txApp core.App, table, column, promoID string, ids []string) error {
	collection, err := txApp.FindCollectionByNameOrId(table)
	if err != nil {
		return err
	}
	for _, id := range ids {
		record := core.NewRecord(collection)
		record.Set("promo_id", promoID)
		record.Set(column, id)
		if err := txApp.Save(record); err != nil {
			return err
		}
	}
	return nil
}

// validateRate enforces the optional configuration-time basis point
// cap. The engine itself accepts any non-negative rate; the cap lives
// here so oversized rates are rejected where they are configured.
func (h *AdminHandler) validateRate(isPercentage bool, amount int64) error {
	if amount < 0 {
		return apis.NewBadRequestError("amount must be non-negative", nil)
	}
	if isPercentage && h.cfg.MaxBasisPoints > 0 && amount > h.cfg.MaxBasisPoints {
		return apis.NewBadRequestError(
			fmt.Sprintf("rate %d exceeds the configured cap of %d basis points", amount, h.cfg.MaxBasisPoints), nil)
	}
	return nil
}
