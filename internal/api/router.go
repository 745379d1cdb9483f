package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/api/handlers"
	"github.com/oudaybenrhouma/ghalinino-api/internal/api/middleware"
)

// NewRouter creates and configures the Gin router
func NewRouter(d handlers.Deps) *gin.Engine {
	if d.Cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(customRecovery(d.Logger))
	router.Use(loggingMiddleware(d.Logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Ghali Nino Storefront API",
			"endpoints": []string{
				"GET /health",
				"GET /v1/catalog/products",
				"GET /v1/cart",
				"POST /v1/checkout/submit",
				"GET /v1/orders/:orderNumber",
				"GET /v1/admin/orders",
			},
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		// Public auth endpoints
		auth := v1.Group("/auth")
		{
			auth.POST("/register", handlers.HandleRegister(d))
			auth.POST("/login", handlers.HandleLogin(d))
			auth.POST("/logout", handlers.HandleLogout(d))
		}
		v1.GET("/me", middleware.RequireAuth(d.Auth, d.Logger), handlers.HandleMe(d))

		// Catalog: public, but wholesale viewers see their prices
		catalog := v1.Group("/catalog")
		catalog.Use(middleware.OptionalAuth(d.Auth, d.Logger))
		{
			catalog.GET("/products", handlers.HandleListProducts(d))
			catalog.GET("/products/:id", handlers.HandleGetProduct(d))
			catalog.GET("/governorates", handlers.HandleListGovernorates(d))
			catalog.GET("/shipping-quote", handlers.HandleShippingQuote(d))
		}

		// Cart: one surface for guests (X-Cart-Token) and accounts (bearer)
		cart := v1.Group("/cart")
		cart.Use(middleware.OptionalAuth(d.Auth, d.Logger))
		{
			cart.GET("", handlers.HandleGetCart(d))
			cart.GET("/watch", handlers.HandleWatchCart(d))
			cart.POST("/items", handlers.HandleAddCartItem(d))
			cart.PUT("/items/:productId", handlers.HandleUpdateCartItem(d))
			cart.DELETE("/items/:productId", handlers.HandleRemoveCartItem(d))
			cart.DELETE("", handlers.HandleClearCart(d))
		}

		// Checkout
		checkout := v1.Group("/checkout")
		checkout.Use(middleware.OptionalAuth(d.Auth, d.Logger))
		{
			checkout.POST("/review", handlers.HandleCheckoutReview(d))
			checkout.POST("/submit", middleware.Idempotency(d.Repos, d.Logger), handlers.HandleCheckoutSubmit(d))
		}

		// Orders
		orders := v1.Group("/orders")
		{
			orders.GET("", middleware.RequireAuth(d.Auth, d.Logger), handlers.HandleListMyOrders(d))
			orders.GET("/:orderNumber", handlers.HandleTrackOrder(d))
			orders.POST("/:orderNumber/bank-proof", handlers.HandleUploadBankProof(d))
			orders.GET("/:orderNumber/payment/verify", handlers.HandleVerifyGatewayPayment(d))
		}

		// Wholesale application
		v1.POST("/wholesale/apply", middleware.RequireAuth(d.Auth, d.Logger), handlers.HandleApplyWholesale(d))

		// Back office
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAuth(d.Auth, d.Logger))
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/orders", handlers.HandleAdminListOrders(d))
			admin.GET("/orders/:id", handlers.HandleAdminGetOrder(d))
			admin.PUT("/orders/:id/status", handlers.HandleAdminUpdateOrderStatus(d))
			admin.POST("/orders/:id/confirm-payment", handlers.HandleAdminConfirmPayment(d))
			admin.GET("/wholesale/applications", handlers.HandleAdminListWholesaleApplications(d))
			admin.POST("/wholesale/:id/approve", handlers.HandleAdminApproveWholesale(d))
			admin.POST("/wholesale/:id/reject", handlers.HandleAdminRejectWholesale(d))
			admin.POST("/products", handlers.HandleAdminCreateProduct(d))
			admin.PUT("/products/:id/stock", handlers.HandleAdminUpdateStock(d))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method
		start := time.Now()

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
