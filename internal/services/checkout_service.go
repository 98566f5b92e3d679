package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"eventhub/config"
	"eventhub/internal/pricing"
	"eventhub/internal/status"
	"eventhub/models"
	"eventhub/monitoring"
	"eventhub/utils"
)

// CheckoutService prices carts and turns confirmed quotes into
// persisted orders. The pricing itself happens in the pure engine;
// this service owns the snapshot fetch, persistence and the
// notification to the purchaser.
type CheckoutService struct {
	app     *pocketbase.PocketBase
	Redis   *redis.Client
	PubNub  *pubnub.PubNub
	monitor *monitoring.Monitor
	breaker *utils.CircuitBreaker
	cfg     *config.Config
}

func NewCheckoutService(app *pocketbase.PocketBase, redisClient *redis.Client, pn *pubnub.PubNub, monitor *monitoring.Monitor, cfg *config.Config) *CheckoutService {
	return &CheckoutService{
		app:     app,
		Redis:   redisClient,
		PubNub:  pn,
		monitor: monitor,
		breaker: utils.NewCircuitBreaker("order-notifications", 5, 30*time.Second),
		cfg:     cfg,
	}
}

// OrderConfirmation is returned to the checkout workflow, which hands
// the amount off to the payment processor.
type OrderConfirmation struct {
	OrderID   string `json:"order_id"`
	Reference string `json:"reference"`
	Total     int64  `json:"total"`
	Amount    string `json:"amount"` // decimal currency units for the payment handoff
	Currency  string `json:"currency"`
}

func (s *CheckoutService) policy() pricing.Policy {
	return pricing.Policy{
		RejectInactivePromo: s.cfg.PromoInactivePolicy == config.PromoPolicyReject,
	}
}

// Quote prices a cart without persisting anything.
func (s *CheckoutService) Quote(ctx context.Context, eventID string, selections []models.CartSelection, promoCode string) (*models.FeeBreakdown, error) {
	snap, err := s.loadSnapshot(ctx, eventID)
	if err != nil {
		s.trackPricing("snapshot_error", 0)
		return nil, err
	}

	if promoCode != "" {
		promo, err := s.loadPromo(promoCode)
		switch {
		case errors.Is(err, status.ErrPromoNotFound):
			// An unknown code behaves like an inactive one: the reject
			// policy fails the quote, the default prices at full.
			if s.policy().RejectInactivePromo {
				s.trackPricing("promo_rejected", 0)
				return nil, err
			}
			slog.Info("ignoring unknown promo code", "code", promoCode, "event_id", eventID)
		case err != nil:
			s.trackPricing("promo_error", 0)
			return nil, err
		default:
			snap.Promo = promo
		}
	}

	breakdown, err := pricing.PriceCart(snap, selections, s.policy())
	if err != nil {
		s.trackPricing("error", 0)
		return nil, err
	}

	s.trackPricing("ok", breakdown.Total)
	if breakdown.PromoCode != "" {
		s.trackPromo(breakdown.PromoScope, breakdown.OrderLevel)
	}

	return breakdown, nil
}

// Confirm prices the cart and persists the order with its breakdown
// documents attached. The breakdown is stored verbatim and never
// recomputed, so the order stays priced under the rules in effect now
// even if fee configuration changes later.
func (s *CheckoutService) Confirm(ctx context.Context, userID, eventID string, selections []models.CartSelection, promoCode string) (*OrderConfirmation, error) {
	breakdown, err := s.Quote(ctx, eventID, selections, promoCode)
	if err != nil {
		return nil, err
	}

	reference, err := utils.GenerateCode(4)
	if err != nil {
		return nil, fmt.Errorf("order reference: %w", err)
	}

	orderDoc := pricing.OrderDocument(breakdown, s.cfg.Currency)
	lineDocs := pricing.LineDocuments(breakdown)

	var orderID string
	err = s.app.RunInTransaction(func(txApp core.App) error {
		ordersCol, err := txApp.FindCollectionByNameOrId("orders")
		if err != nil {
			return err
		}
		order := core.NewRecord(ordersCol)
		order.Set("user_id", userID)
		order.Set("event_id", eventID)
		order.Set("reference", reference)
		order.Set("status", "pending_payment")
		order.Set("subtotal", breakdown.Subtotal)
		order.Set("total_fees", breakdown.TotalFees)
		order.Set("total_discount", breakdown.TotalDiscount)
		order.Set("total", breakdown.Total)
		order.Set("promo_code", breakdown.PromoCode)
		order.Set("currency", s.cfg.Currency)
		order.Set("pricing", orderDoc)
		if err := txApp.Save(order); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		orderID = order.Id

		itemsCol, err := txApp.FindCollectionByNameOrId("order_items")
		if err != nil {
			return err
		}
		for _, doc := range lineDocs {
			item := core.NewRecord(itemsCol)
			item.Set("order_id", orderID)
			item.Set("tier_id", doc.TierID)
			item.Set("quantity", doc.Quantity)
			item.Set("total", doc.Total)
			item.Set("pricing", doc)
			if err := txApp.Save(item); err != nil {
				return fmt.Errorf("save order item %s: %w", doc.TierID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cacheQuote(ctx, orderID, breakdown)

	confirmation := &OrderConfirmation{
		OrderID:   orderID,
		Reference: reference,
		Total:     breakdown.Total,
		Amount:    FormatAmount(breakdown.Total),
		Currency:  s.cfg.Currency,
	}

	s.notifyOrderPriced(userID, confirmation)

	return confirmation, nil
}

// FormatAmount renders cents as decimal currency units for the
// payment handoff, e.g. 10450 -> "104.50".
func FormatAmount(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func (s *CheckoutService) cacheQuote(ctx context.Context, orderID string, breakdown *models.FeeBreakdown) {
	data, err := json.Marshal(breakdown)
	if err != nil {
		return
	}
	key := fmt.Sprintf("order:quote:%s", orderID)
	if err := s.Redis.Set(ctx, key, data, s.cfg.QuoteTTL).Err(); err != nil {
		slog.Warn("failed to cache order quote", "order_id", orderID, "error", err)
	}
}

// notifyOrderPriced publishes the confirmation on the purchaser's
// channel. Notification delivery is best effort and guarded by a
// circuit breaker; checkout never fails because of it.
func (s *CheckoutService) notifyOrderPriced(userID string, confirmation *OrderConfirmation) {
	if s.PubNub == nil {
		return
	}

	err := s.breaker.Execute(func() error {
		channel := fmt.Sprintf("user-%s", userID)
		_, _, err := s.PubNub.Publish().
			Channel(channel).
			Message(map[string]any{
				"type":      "order_priced",
				"order_id":  confirmation.OrderID,
				"reference": confirmation.Reference,
				"total":     confirmation.Total,
				"amount":    confirmation.Amount,
				"currency":  confirmation.Currency,
			}).
			Execute()
		return err
	})
	if err != nil {
		slog.Warn("order notification not delivered", "user_id", userID, "order_id", confirmation.OrderID, "error", err)
	}
}

func (s *CheckoutService) trackPricing(outcome string, total int64) {
	if s.monitor != nil {
		s.monitor.TrackPricing(outcome, total)
	}
}

func (s *CheckoutService) trackPromo(scope string, orderLevel bool) {
	if s.monitor != nil {
		s.monitor.TrackPromo(scope, orderLevel)
	}
}

func (s *CheckoutService) trackSnapshotCache(hit bool) {
	if s.monitor != nil {
		s.monitor.TrackSnapshotCache(hit)
	}
}
