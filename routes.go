package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"agrimarket-backend/config"
	"agrimarket-backend/internal/api"
	"agrimarket-backend/internal/middleware"
	"agrimarket-backend/internal/models"
	"agrimarket-backend/internal/services"
	"agrimarket-backend/internal/upstream"
)

// application holds the wired services of one server instance
type application struct {
	cfg    *config.Config
	db     *sql.DB
	logger *zap.Logger

	auth          *services.AuthService
	sessions      *services.SessionService
	accounts      *services.AccountService
	catalog       *services.CatalogService
	carts         *services.CartStore
	notifications *services.NotificationService
	checkout      *services.CheckoutService
	buyer         *services.BuyerService
	seller        *services.SellerService
	admin         *services.AdminService
	ws            *services.WebSocketService
	scheduler     *services.SchedulerService
}

func newApplication(cfg *config.Config, db *sql.DB, logger *zap.Logger) *application {
	client := upstream.NewClient(cfg.UpstreamAPIURL, cfg.UpstreamTimeout, logger)
	loader := upstream.NewLoader(client, cfg.FallbackEnabled, logger)

	app := &application{cfg: cfg, db: db, logger: logger}
	app.auth = services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiration)
	app.sessions = services.NewSessionService(db)
	app.accounts = services.NewAccountService(client, app.sessions, app.auth, logger)
	app.catalog = services.NewCatalogService(client, cfg.AssetBaseURL, cfg.Currency, cfg.CatalogCacheTTL)
	app.carts = services.NewCartStore(models.ShippingRates{
		Standard: decimal.NewFromInt(cfg.StandardShipping),
		Express:  decimal.NewFromInt(cfg.ExpressShipping),
	})
	app.notifications = services.NewNotificationService(db, logger)
	app.checkout = services.NewCheckoutService(db, client, app.carts, app.notifications, logger)
	app.buyer = services.NewBuyerService(client, cfg.Currency)
	app.seller = services.NewSellerService(loader, app.catalog, logger)
	app.admin = services.NewAdminService(loader, logger)
	app.ws = services.NewWebSocketService(cfg.AllowedOrigins, cfg.AllowAllOrigins, logger)
	app.scheduler = services.NewSchedulerService(app.sessions, app.checkout, logger)

	app.carts.Subscribe(app.ws.PublishCart)
	app.notifications.SetPublisher(app.ws.PublishNotifications)

	return app
}

func (app *application) corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	if app.cfg.AllowAllOrigins {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = app.cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		middleware.IdempotencyKeyHeader,
	}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

func (app *application) router() *gin.Engine {
	cfg := app.cfg
	router := gin.New()

	router.Use(middleware.Recovery(app.logger))
	router.Use(middleware.RequestLogger(app.logger))
	if cfg.IsProduction() {
		router.Use(middleware.HSTS())
	}
	router.Use(cors.New(app.corsConfig()))
	router.Use(middleware.SecurityMiddleware(&middleware.SecurityConfig{
		MaxRequestSize:    cfg.MaxFileSize * 2,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   time.Duration(cfg.RateLimitWindow) * time.Second,
		RequireHTTPS:      false,
		Logger:            app.logger,
	}))
	router.Use(middleware.InputValidationMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"message":  "AgriMarket API is running",
			"fallback": cfg.FallbackEnabled,
		})
	})
	if cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	authMiddleware := middleware.NewAuthMiddleware(app.auth, app.sessions, cfg.SessionCookieName)

	authHandlers := api.NewAuthHandlers(app.accounts, api.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
	})
	catalogHandlers := api.NewCatalogHandlers(app.catalog)
	cartHandlers := api.NewCartHandlers(app.carts, app.catalog)
	checkoutHandlers := api.NewCheckoutHandlers(app.checkout, app.carts)
	notificationHandlers := api.NewNotificationHandlers(app.notifications)
	buyerHandlers := api.NewBuyerHandlers(app.buyer)
	sellerHandlers := api.NewSellerHandlers(app.seller)
	adminHandlers := api.NewAdminHandlers(app.admin)

	apiGroup := router.Group("/api")
	{
		authLimit := middleware.AuthRateLimitMiddleware(10)
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/register", authLimit, authHandlers.Register)
			auth.POST("/login", authLimit, authHandlers.Login)
			auth.POST("/logout", authMiddleware.AuthRequired(), authHandlers.Logout)
			auth.GET("/me", authMiddleware.AuthRequired(), authHandlers.Me)
		}

		register := apiGroup.Group("/register")
		{
			register.GET("/types", authHandlers.AccountTypes)
			register.GET("/regions", authHandlers.Regions)
			register.GET("/regions/:id/cities", authHandlers.Cities)
		}

		apiGroup.GET("/products", catalogHandlers.GetProducts)
		apiGroup.GET("/products/:id", catalogHandlers.GetProduct)
		apiGroup.GET("/categories", catalogHandlers.GetCategories)

		protected := apiGroup.Group("")
		protected.Use(authMiddleware.AuthRequired())
		{
			protected.GET("/ws", app.ws.HandleWebSocket)

			cart := protected.Group("/cart")
			{
				cart.GET("", cartHandlers.GetCart)
				cart.POST("/items", cartHandlers.AddToCart)
				cart.PUT("/items/:productId", cartHandlers.UpdateCartItem)
				cart.DELETE("/items/:productId", cartHandlers.RemoveFromCart)
				cart.DELETE("", cartHandlers.ClearCart)
			}

			checkout := protected.Group("/checkout")
			{
				checkout.GET("", checkoutHandlers.Summary)
				checkout.POST("", middleware.IdempotencyKey(), checkoutHandlers.Checkout)
				checkout.GET("/attempts", checkoutHandlers.Attempts)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", notificationHandlers.GetNotifications)
				notifications.GET("/unread-count", notificationHandlers.GetUnreadCount)
				notifications.PUT("/read-all", notificationHandlers.MarkAllAsRead)
				notifications.GET("/preferences", notificationHandlers.GetNotificationPreferences)
				notifications.PUT("/preferences", notificationHandlers.UpdateNotificationPreferences)
				notifications.PUT("/:id/toggle", notificationHandlers.ToggleRead)
				notifications.PUT("/:id/read", notificationHandlers.MarkAsRead)
				notifications.PUT("/:id/unread", notificationHandlers.MarkAsUnread)
				notifications.DELETE("/:id", notificationHandlers.DeleteNotification)
			}

			buyer := protected.Group("/buyer")
			{
				buyer.GET("/orders", buyerHandlers.GetOrders)
				buyer.GET("/orders/:id", buyerHandlers.GetOrder)
			}

			seller := protected.Group("/seller")
			seller.Use(authMiddleware.RequireRoles(string(models.UserRoleSeller), string(models.UserRoleAdmin)))
			{
				seller.GET("/products", sellerHandlers.GetProducts)
				seller.POST("/products",
					middleware.FileUploadSecurityMiddleware(cfg.MaxFileSize, cfg.AllowedFileTypes),
					sellerHandlers.CreateProduct)
				seller.PUT("/products/:id",
					middleware.FileUploadSecurityMiddleware(cfg.MaxFileSize, cfg.AllowedFileTypes),
					sellerHandlers.UpdateProduct)
				seller.DELETE("/products/:id", sellerHandlers.DeleteProduct)

				seller.GET("/analytics", sellerHandlers.GetAnalytics)
				seller.GET("/inventory", sellerHandlers.GetInventory)
				seller.PUT("/inventory/:productId", sellerHandlers.UpdateStock)
				seller.GET("/orders", sellerHandlers.GetOrders)
				seller.PUT("/orders/:id/status", sellerHandlers.UpdateOrderStatus)
				seller.GET("/payments", sellerHandlers.GetPayments)
				seller.GET("/reports", sellerHandlers.GetReports)
				seller.GET("/profile/stats", sellerHandlers.GetProfileStats)
				seller.GET("/profile/:section", sellerHandlers.GetProfileSection)
				seller.PUT("/profile/:section", sellerHandlers.UpdateProfileSection)
			}

			admin := protected.Group("/admin")
			admin.Use(authMiddleware.RequireRoles(string(models.UserRoleAdmin)))
			{
				admin.GET("/analytics", adminHandlers.GetAnalytics)
				admin.GET("/users", adminHandlers.GetUsers)
				admin.GET("/settings", adminHandlers.GetSettings)
				admin.PUT("/settings", adminHandlers.UpdateSettings)
			}
		}
	}

	return router
}
