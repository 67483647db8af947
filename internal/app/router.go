package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rideshare/internal/handler"
	"rideshare/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler         *handler.TripHandler
	WalletHandler       *handler.WalletHandler
	NotificationHandler *handler.NotificationHandler
	PayoutHandler       *handler.PayoutHandler
	UserHandler         *handler.UserHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Idempotency-Key"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("", deps.UserHandler.GetAll)
			users.PATCH("/:id/status", deps.UserHandler.SetStatus)
			users.GET("/:id/notifications", deps.NotificationHandler.ListForUser)
		}

		// Trip lifecycle routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.Request)
			trips.GET("", deps.TripHandler.GetAll)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("/:id/confirm", deps.TripHandler.Confirm)
			trips.POST("/:id/assign", deps.TripHandler.Assign)
			trips.POST("/:id/cancel", deps.TripHandler.Cancel)
			trips.POST("/:id/complete", deps.TripHandler.Complete)
			trips.POST("/:id/rate", deps.TripHandler.Rate)
			trips.GET("/:id/receipt", deps.TripHandler.Receipt)
		}

		// Rider-scoped reads.
		riders := v1.Group("/riders")
		{
			riders.GET("/:id/active-trip", deps.TripHandler.ActiveTrip)
			riders.GET("/:id/trips", deps.TripHandler.RiderTrips)
		}

		// Wallet routes.
		wallets := v1.Group("/wallets")
		{
			wallets.GET("/:ownerType/:ownerId", deps.WalletHandler.GetWallet)
			wallets.GET("/:ownerType/:ownerId/afford", deps.WalletHandler.Afford)
			wallets.POST("/adjust", deps.WalletHandler.Adjust)
		}

		// Notification routes.
		v1.POST("/notifications", deps.NotificationHandler.Create)
		v1.POST("/announcements", deps.NotificationHandler.Announce)

		// Payout routes.
		payouts := v1.Group("/payouts")
		{
			payouts.POST("/:id/release", deps.PayoutHandler.Release)
		}

		drivers := v1.Group("/drivers")
		{
			drivers.GET("/:id/payouts", deps.PayoutHandler.DriverPayouts)
		}
	}

	return router
}
