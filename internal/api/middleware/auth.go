package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/service"
)

const CustomerContextKey = "customer"

// RequireAuth authenticates requests using a bearer session token
func RequireAuth(auth *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, ok := authenticate(c, auth, logger)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Set(CustomerContextKey, customer)
		c.Next()
	}
}

// OptionalAuth resolves the customer when a valid token is present and
// carries on anonymously otherwise. Used on cart and checkout routes that
// serve both guests and accounts.
func OptionalAuth(auth *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if customer, ok := authenticate(c, auth, logger); ok {
			c.Set(CustomerContextKey, customer)
		}
		c.Next()
	}
}

// RequireAdmin gates the back-office group. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, ok := GetCustomerFromContext(c)
		if !ok || !customer.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetCustomerFromContext retrieves the authenticated customer, if any
func GetCustomerFromContext(c *gin.Context) (*domain.Customer, bool) {
	value, exists := c.Get(CustomerContextKey)
	if !exists {
		return nil, false
	}
	customer, ok := value.(*domain.Customer)
	return customer, ok
}

// BearerToken extracts the raw bearer token from the Authorization header
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func authenticate(c *gin.Context, auth *service.AuthService, logger *zap.Logger) (*domain.Customer, bool) {
	token, ok := BearerToken(c)
	if !ok {
		return nil, false
	}

	customer, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		logger.Debug("Token authentication failed", zap.Error(err))
		return nil, false
	}
	return customer, true
}
