package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oudaybenrhouma/ghalinino-api/internal/api/middleware"
	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
)

type orderItemResponse struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

func toOrderItemResponses(items []*domain.OrderItem) []orderItemResponse {
	out := make([]orderItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, orderItemResponse{
			ProductID: item.ProductID.String(),
			SKU:       item.SKU,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	return out
}

// HandleTrackOrder returns an order by its order number. Order numbers are
// unguessable (random suffix), which is the tracking secret for guests.
func HandleTrackOrder(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := d.Repos.Order.GetByOrderNumber(c.Request.Context(), c.Param("orderNumber"))
		if err != nil {
			respondError(c, err)
			return
		}

		items, err := d.Repos.Order.GetItems(c.Request.Context(), order.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		resp := toOrderResponse(order)
		c.JSON(http.StatusOK, gin.H{"order": resp, "items": toOrderItemResponses(items)})
	}
}

// HandleListMyOrders lists the authenticated customer's orders
func HandleListMyOrders(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, ok := middleware.GetCustomerFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		limit, offset := pagination(c)

		orders, err := d.Repos.Order.ListByCustomerID(c.Request.Context(), customer.ID, limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for _, o := range orders {
			out = append(out, toOrderResponse(o))
		}
		c.JSON(http.StatusOK, gin.H{"orders": out, "limit": limit, "offset": offset})
	}
}

type bankProofRequest struct {
	ProofURL string `json:"proof_url" binding:"required,url"`
}

// HandleUploadBankProof attaches the transfer proof to a bank-transfer
// order and moves it to payment_pending for admin review.
func HandleUploadBankProof(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bankProofRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		order, err := d.orderService().UploadBankProof(c.Request.Context(), c.Param("orderNumber"), req.ProofURL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}

// HandleVerifyGatewayPayment is the return/verify callback after the hosted
// payment page. The outcome is always re-checked with the gateway
// server-side; the redirect alone proves nothing.
func HandleVerifyGatewayPayment(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderNumber := c.Param("orderNumber")

		paid, err := d.orderService().VerifyGatewayPayment(c.Request.Context(), orderNumber)
		if err != nil {
			respondError(c, err)
			return
		}

		order, err := d.Repos.Order.GetByOrderNumber(c.Request.Context(), orderNumber)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"paid": paid, "order": toOrderResponse(order)})
	}
}
