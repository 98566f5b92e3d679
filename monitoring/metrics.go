package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	pricedCarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_carts_total",
			Help: "Priced carts by outcome",
		},
		[]string{"outcome"},
	)

	promoApplications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_promo_applications_total",
			Help: "Promo codes applied to priced carts, by scope and mode",
		},
		[]string{"scope", "mode"},
	)

	orderTotals = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricing_order_total_cents",
			Help:    "Distribution of computed order totals",
			Buckets: prometheus.ExponentialBuckets(100, 4, 10),
		},
	)

	snapshotCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_snapshot_cache_total",
			Help: "Snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	cachedSnapshots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricing_snapshots_cached",
			Help: "Current number of cached event pricing snapshots",
		},
	)
)

type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}

	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx := context.Background()

		keys, err := m.redis.Keys(ctx, "pricing:snapshot:*").Result()
		if err != nil {
			continue
		}
		cachedSnapshots.Set(float64(len(keys)))
	}
}

// TrackPricing records the outcome of one pricing call.
func (m *Monitor) TrackPricing(outcome string, totalCents int64) {
	pricedCarts.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		orderTotals.Observe(float64(totalCents))
	}
}

// TrackPromo records an applied promo code by scope and discount mode.
func (m *Monitor) TrackPromo(scope string, orderLevel bool) {
	mode := "per_ticket"
	if orderLevel {
		mode = "order"
	}
	promoApplications.WithLabelValues(scope, mode).Inc()
}

// TrackSnapshotCache records a snapshot cache hit or miss.
func (m *Monitor) TrackSnapshotCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	snapshotCache.WithLabelValues(result).Inc()
}
