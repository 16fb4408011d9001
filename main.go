package main

import (
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go/v7"

	"ticket-resale/config"
	"ticket-resale/handlers"
	"ticket-resale/internal/services/escrowapi"
	_ "ticket-resale/migrations"
	"ticket-resale/security"
	"ticket-resale/services"
	"ticket-resale/utils"
)

func main() {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	cache := utils.NewRedisCache(redisClient)

	// Initialize PubNub (optional; notifier degrades to no-op without keys)
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId("ticket-resale-server"))
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}
	notifier := services.NewNotifier(pn)

	// Escrow backend client
	escrowClient := escrowapi.NewClient(escrowapi.ClientConfig{
		BaseURL: cfg.EscrowAPIURL,
		Token:   cfg.EscrowAPIToken,
		Timeout: cfg.EscrowAPITimeout,
	})

	// Initialize services
	balanceService := services.NewBalanceService(cfg)
	disputeService := services.NewDisputeService(escrowClient, cache, notifier, cfg.EscrowCacheTTL)
	transferService := services.NewTransferService(escrowClient, cache, notifier, cfg.NotesMaxLength, cfg.EvidenceMaxSize)

	// Initialize handlers
	balanceHandler := handlers.NewBalanceHandler(app, balanceService, cache, cfg.BalanceCacheTTL)
	disputeHandler := handlers.NewDisputeHandler(app, disputeService, escrowClient)
	transferHandler := handlers.NewTransferHandler(app, transferService)
	webhookHandler := handlers.NewWebhookHandler(app, cache, notifier, cfg.WebhookSecret)

	rateLimiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Metrics endpoint
	if cfg.EnableMetrics {
		go func() {
			log.Printf("Metrics listening on :%s", cfg.MetricsPort)
			if err := http.ListenAndServe(":"+cfg.MetricsPort, promhttp.Handler()); err != nil {
				log.Printf("Metrics server stopped: %v", err)
			}
		}()
	}

	// Register routes
	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Balance endpoint
		e.Router.GET("/api/balance", balanceHandler.GetBalance)

		// Dispute endpoints
		e.Router.GET("/api/orders/{orderId}/dispute-eligibility", disputeHandler.GetEligibility)
		e.Router.POST("/api/orders/{orderId}/disputes", disputeHandler.CreateDispute).
			BindFunc(rateLimiter.Limit("dispute-create", 5, time.Minute))
		e.Router.POST("/api/disputes/{id}/cancel", disputeHandler.CancelDispute)
		e.Router.GET("/api/disputes/{id}/actions", disputeHandler.GetActions)

		// Transfer confirmation endpoints
		e.Router.POST("/api/orders/{orderId}/mark-transferred", transferHandler.MarkTransferred).
			BindFunc(rateLimiter.Limit("transfer-submit", 10, time.Minute))
		e.Router.POST("/api/orders/{orderId}/confirm-receipt", transferHandler.ConfirmReceipt).
			BindFunc(rateLimiter.Limit("transfer-submit", 10, time.Minute))
		e.Router.GET("/api/orders/{orderId}/transfer-state", transferHandler.GetState)

		// Escrow settlement webhook
		e.Router.POST("/api/webhooks/escrow", webhookHandler.HandleEscrowEvent)

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

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
