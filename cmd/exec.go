package cmd

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"eventhub/config"
	"eventhub/internal/handlers"
	"eventhub/internal/services"
	"eventhub/monitoring"
	"eventhub/security"
	"eventhub/utils"

	_ "eventhub/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	// Initialize monitoring
	var monitor *monitoring.Monitor
	if cfg.EnableMetrics {
		monitor = monitoring.NewMonitor(redisClient)
		go serveMetrics(cfg.MetricsPort)
	}

	// Initialize services
	checkoutService := services.NewCheckoutService(app, redisClient, pn, monitor, cfg)

	// Initialize handlers
	checkoutHandler := handlers.NewCheckoutHandler(app, checkoutService)
	adminHandler := handlers.NewAdminHandler(app, cfg)
	rateLimiter := security.NewRateLimiter(redisClient, cfg.CheckoutRateLimit, cfg.CheckoutRateWindow)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.Environment == "development",
	})

	// Setup graceful shutdown
	go handleShutdown()

	// Register routes
	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Checkout endpoints
		e.Router.POST("/api/checkout/quote", checkoutHandler.Quote).
			BindFunc(rateLimiter.CheckoutRateLimit())
		e.Router.POST("/api/checkout/confirm", checkoutHandler.Confirm).
			BindFunc(rateLimiter.CheckoutRateLimit())
		e.Router.GET("/api/orders/{orderId}", checkoutHandler.GetOrder)

		// Admin configuration endpoints
		e.Router.GET("/api/admin/fee-items", adminHandler.ListFeeItems)
		e.Router.POST("/api/admin/fee-items", adminHandler.CreateFeeItem)
		e.Router.POST("/api/admin/promo-codes", adminHandler.CreatePromoCode)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	return app.Start()
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("Metrics server stopped: %v", err)
	}
}

// handleShutdown logs the shutdown signal; the app itself traps it
// and unwinds through Start.
func handleShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}
