package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventhub/internal/services"
	"eventhub/internal/status"
	"eventhub/models"
)

type CheckoutHandler struct {
	app             *pocketbase.PocketBase
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(app *pocketbase.PocketBase, checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		app:             app,
		checkoutService: checkoutService,
	}
}

type checkoutRequest struct {
	EventID    string                 `json:"event_id"`
	Selections []models.CartSelection `json:"selections"`
	PromoCode  string                 `json:"promo_code"`
}

// Quote - price a cart without creating an order
func (h *CheckoutHandler) Quote(e *core.RequestEvent) error {
	var req checkoutRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	breakdown, err := h.checkoutService.Quote(e.Request.Context(), req.EventID, req.Selections, req.PromoCode)
	if err != nil {
		return pricingError(err)
	}

	return e.JSON(http.StatusOK, breakdown)
}

// Confirm - price the cart and create the order with its breakdown
func (h *CheckoutHandler) Confirm(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req checkoutRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	confirmation, err := h.checkoutService.Confirm(e.Request.Context(), e.Auth.Id, req.EventID, req.Selections, req.PromoCode)
	if err != nil {
		slog.Error("h.checkoutService.Confirm()", "event_id", req.EventID, "user_id", e.Auth.Id, "error", err)
		return pricingError(err)
	}

	return e.JSON(http.StatusOK, confirmation)
}

// GetOrder - return a persisted order with its stored breakdown documents
func (h *CheckoutHandler) GetOrder(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	orderID := e.Request.PathValue("orderId")

	order, err := h.app.FindRecordById("orders", orderID)
	if err != nil {
		return apis.NewNotFoundError("Order not found", err)
	}
	if order.GetString("user_id") != e.Auth.Id {
		return apis.NewForbiddenError("Access denied", nil)
	}

	items := []struct {
		ID      string `db:"id" json:"id"`
		TierID  string `db:"tier_id" json:"tier_id"`
		Pricing string `db:"pricing" json:"pricing"`
	}{}
	err = h.app.DB().
		Select("id", "tier_id", "pricing").
		From("order_items").
		Where(dbx.HashExp{"order_id": orderID}).
		All(&items)
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to load order items", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"order_id":  order.Id,
		"reference": order.GetString("reference"),
		"status":    order.GetString("status"),
		"pricing":   order.Get("pricing"),
		"items":     items,
	})
}

// pricingError translates engine errors into API responses. Invalid
// input and rejected promos are the caller's fault; configuration and
// overflow errors are not.
func pricingError(err error) error {
	switch {
	case errors.Is(err, status.ErrEmptyCart),
		errors.Is(err, status.ErrInvalidQuantity),
		errors.Is(err, status.ErrUnknownTier),
		errors.Is(err, status.ErrInactiveTier),
		errors.Is(err, status.ErrInactivePromo),
		errors.Is(err, status.ErrPromoNotFound):
		return apis.NewBadRequestError(err.Error(), err)
	case errors.Is(err, status.ErrOrphanedTier),
		errors.Is(err, status.ErrAmountOverflow):
		return apis.NewApiError(http.StatusInternalServerError, err.Error(), err)
	default:
		return apis.NewApiError(http.StatusInternalServerError, "Pricing failed", err)
	}
}
