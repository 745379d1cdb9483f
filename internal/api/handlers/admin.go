package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/realtime"
	"github.com/oudaybenrhouma/ghalinino-api/internal/service"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

// HandleAdminListOrders lists orders, optionally filtered by status
func HandleAdminListOrders(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pagination(c)

		var orders []*domain.Order
		var err error
		if statusParam := c.Query("status"); statusParam != "" {
			status := domain.OrderStatus(statusParam)
			if !status.IsValid() {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown order status: " + statusParam})
				return
			}
			orders, err = d.Repos.Order.ListByStatus(c.Request.Context(), status, limit, offset)
		} else {
			orders, err = d.Repos.Order.List(c.Request.Context(), limit, offset)
		}
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

// HandleAdminGetOrder returns an order with its items and audit events
func HandleAdminGetOrder(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid order id"})
			return
		}

		order, err := d.Repos.Order.GetByID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, err)
			return
		}
		items, err := d.Repos.Order.GetItems(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, err)
			return
		}
		events, err := d.Repos.OrderEvent.GetByOrderID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"order":  toOrderResponse(order),
			"items":  toOrderItemResponses(items),
			"events": events,
		})
	}
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
	Reason string             `json:"reason"`
}

// HandleAdminUpdateOrderStatus applies a status transition
func HandleAdminUpdateOrderStatus(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid order id"})
			return
		}

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		order, err := d.orderService().UpdateStatus(c.Request.Context(), orderID, req.Status, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}

// HandleAdminConfirmPayment marks a bank-transfer or cash order paid
func HandleAdminConfirmPayment(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid order id"})
			return
		}

		order, err := d.orderService().ConfirmPayment(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}

func wholesaleService(d Deps) *service.WholesaleService {
	return service.NewWholesaleService(d.Repos.Customer, d.Mail, d.Logger)
}

// HandleAdminListWholesaleApplications lists pending wholesale applications
func HandleAdminListWholesaleApplications(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pagination(c)

		customers, err := wholesaleService(d).ListPending(c.Request.Context(), limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]customerResponse, 0, len(customers))
		for _, cust := range customers {
			out = append(out, toCustomerResponse(cust))
		}
		c.JSON(http.StatusOK, gin.H{"applications": out, "limit": limit, "offset": offset})
	}
}

type approveWholesaleRequest struct {
	DiscountTier int `json:"discount_tier"`
}

// HandleAdminApproveWholesale approves a wholesale application
func HandleAdminApproveWholesale(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid customer id"})
			return
		}

		var req approveWholesaleRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		if err := wholesaleService(d).Approve(c.Request.Context(), customerID, req.DiscountTier); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type rejectWholesaleRequest struct {
	Reason string `json:"reason"`
}

// HandleAdminRejectWholesale rejects a wholesale application
func HandleAdminRejectWholesale(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid customer id"})
			return
		}

		var req rejectWholesaleRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		if err := wholesaleService(d).Reject(c.Request.Context(), customerID, req.Reason); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type createProductRequest struct {
	SKU             string  `json:"sku" binding:"required"`
	NameAr          string  `json:"name_ar" binding:"required"`
	NameFr          string  `json:"name_fr" binding:"required"`
	DescriptionAr   *string `json:"description_ar"`
	DescriptionFr   *string `json:"description_fr"`
	RetailPrice     int64   `json:"retail_price" binding:"required,min=1"`
	WholesalePrice  *int64  `json:"wholesale_price"`
	CompareAtPrice  *int64  `json:"compare_at_price"`
	AvailableStock  int     `json:"available_stock" binding:"min=0"`
	WholesaleMinQty int     `json:"wholesale_min_qty"`
	ImageURL        *string `json:"image_url"`
	IsActive        *bool   `json:"is_active"`
}

// HandleAdminCreateProduct adds a catalog product
func HandleAdminCreateProduct(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		// SKUs are the merchant-facing product key; reject duplicates up front
		if existing, err := d.Repos.Product.GetBySKU(c.Request.Context(), req.SKU); err == nil && existing != nil {
			respondError(c, &errors.ErrConflict{Message: "sku already exists: " + req.SKU})
			return
		} else if err != nil {
			if _, isNotFound := err.(*errors.ErrNotFound); !isNotFound {
				respondError(c, err)
				return
			}
		}

		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}
		product := &domain.Product{
			ID:              uuid.New(),
			SKU:             req.SKU,
			NameAr:          req.NameAr,
			NameFr:          req.NameFr,
			DescriptionAr:   req.DescriptionAr,
			DescriptionFr:   req.DescriptionFr,
			RetailPrice:     req.RetailPrice,
			WholesalePrice:  req.WholesalePrice,
			CompareAtPrice:  req.CompareAtPrice,
			AvailableStock:  req.AvailableStock,
			WholesaleMinQty: req.WholesaleMinQty,
			ImageURL:        req.ImageURL,
			IsActive:        active,
		}
		if err := d.Repos.Product.Create(c.Request.Context(), product); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toProductResponse(product, true))
	}
}

type updateStockRequest struct {
	AvailableStock int `json:"available_stock" binding:"min=0"`
}

// HandleAdminUpdateStock sets a product's available stock and signals
// watching carts so open storefronts reconcile.
func HandleAdminUpdateStock(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid product id"})
			return
		}

		var req updateStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		if err := d.Repos.Product.UpdateStock(c.Request.Context(), productID, req.AvailableStock); err != nil {
			respondError(c, err)
			return
		}

		d.Feed.Publish(c.Request.Context(), realtime.ProductKey(productID.String()))
		c.Status(http.StatusNoContent)
	}
}
