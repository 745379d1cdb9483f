package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/api/middleware"
	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/service"
)

type registerRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	FullName       string `json:"full_name" binding:"required"`
	Phone          string `json:"phone"`
	WantsWholesale bool   `json:"wants_wholesale"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type customerResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	Phone           string `json:"phone,omitempty"`
	WholesaleStatus string `json:"wholesale_status"`
	IsAdmin         bool   `json:"is_admin,omitempty"`
}

func toCustomerResponse(c *domain.Customer) customerResponse {
	return customerResponse{
		ID:              c.ID.String(),
		Email:           c.Email,
		FullName:        c.FullName,
		Phone:           c.Phone,
		WholesaleStatus: string(c.Wholesale.Status),
		IsAdmin:         c.IsAdmin,
	}
}

// HandleRegister creates an account and returns a session token
func HandleRegister(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		customer, token, err := d.Auth.Register(c.Request.Context(), req.Email, req.Password, req.FullName, req.Phone, req.WantsWholesale)
		if err != nil {
			respondError(c, err)
			return
		}

		mergeGuestCartIfAny(c, d, customer)

		c.JSON(http.StatusCreated, gin.H{
			"customer": toCustomerResponse(customer),
			"token":    token,
		})
	}
}

// HandleLogin verifies credentials, opens a session and folds any guest
// cart into the customer's cart.
func HandleLogin(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		customer, token, err := d.Auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		mergeGuestCartIfAny(c, d, customer)

		c.JSON(http.StatusOK, gin.H{
			"customer": toCustomerResponse(customer),
			"token":    token,
		})
	}
}

// HandleLogout invalidates the current session token
func HandleLogout(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := middleware.BearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if err := d.Auth.Logout(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// HandleMe returns the authenticated customer's profile
func HandleMe(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, ok := middleware.GetCustomerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, toCustomerResponse(customer))
	}
}

// mergeGuestCartIfAny folds the X-Cart-Token guest cart into the signed-in
// customer's cart. Merge failures never fail the sign-in.
func mergeGuestCartIfAny(c *gin.Context, d Deps, customer *domain.Customer) {
	token := c.GetHeader(cartTokenHeader)
	if token == "" {
		return
	}

	err := service.MergeGuestCart(c.Request.Context(), d.Repos.GuestCart, token, d.Repos.Cart, customer.ID, d.stockValidator(), d.Logger)
	if err != nil {
		d.Logger.Warn("Guest cart merge failed on sign-in",
			zap.String("customer_id", customer.ID.String()), zap.Error(err))
	}
}
