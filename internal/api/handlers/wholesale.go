package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oudaybenrhouma/ghalinino-api/internal/api/middleware"
)

// HandleApplyWholesale queues the authenticated customer's wholesale
// application for admin review.
func HandleApplyWholesale(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, ok := middleware.GetCustomerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if err := wholesaleService(d).Apply(c.Request.Context(), customer.ID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"wholesale_status": "pending"})
	}
}
