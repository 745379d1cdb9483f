package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/api/middleware"
	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/service"
)

type guestContact struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

type checkoutRequest struct {
	Guest           *guestContact          `json:"guest,omitempty"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   domain.PaymentMethod   `json:"payment_method"`
}

type orderResponse struct {
	ID              string                 `json:"id"`
	OrderNumber     string                 `json:"order_number"`
	Status          domain.OrderStatus     `json:"status"`
	PaymentStatus   domain.PaymentStatus   `json:"payment_status"`
	PaymentMethod   domain.PaymentMethod   `json:"payment_method"`
	IsWholesale     bool                   `json:"is_wholesale"`
	Totals          domain.CheckoutTotals  `json:"totals"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	RedirectURL     string                 `json:"redirect_url,omitempty"`
	BankReference   string                 `json:"bank_reference,omitempty"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:              o.ID.String(),
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		IsWholesale:     o.IsWholesale,
		Totals:          o.Totals,
		ShippingAddress: o.ShippingAddress,
	}
}

// buildCheckout replays the request through the checkout state machine so
// step gating holds no matter what the client sends.
func buildCheckout(c *gin.Context, d Deps, req checkoutRequest) (*service.Checkout, service.CheckoutIdentity, error) {
	identity := service.CheckoutIdentity{}
	if customer, ok := middleware.GetCustomerFromContext(c); ok {
		identity = service.CheckoutIdentity{
			CustomerID:        &customer.ID,
			Name:              customer.FullName,
			Phone:             customer.Phone,
			Email:             &customer.Email,
			IsWholesale:       customer.Wholesale.Status != domain.WholesaleStatusNone,
			WholesaleApproved: customer.Wholesale.Approved(),
		}
	} else if req.Guest != nil {
		identity = service.CheckoutIdentity{
			Name:  req.Guest.Name,
			Phone: req.Guest.Phone,
			Email: req.Guest.Email,
		}
	}

	checkout := service.NewCheckout(d.Volume)
	if err := checkout.SetIdentity(identity); err != nil {
		return nil, identity, err
	}
	if err := checkout.SetAddress(req.ShippingAddress); err != nil {
		return nil, identity, err
	}
	if err := checkout.SetPaymentMethod(req.PaymentMethod); err != nil {
		return nil, identity, err
	}
	return checkout, identity, nil
}

// HandleCheckoutReview prices the cart for the review step: lines at the
// buyer's tier, volume discounts, shipping for the governorate and the
// wholesale minimum progress.
func HandleCheckoutReview(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		checkout, _, err := buildCheckout(c, d, req)
		if err != nil {
			respondError(c, err)
			return
		}

		viewer := resolveCart(c, d)
		if err := viewer.store.Load(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}

		summary, err := checkout.Review(viewer.store.Snapshot())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// HandleCheckoutSubmit submits the order. Stock is re-validated, totals are
// recomputed server-side and the write is transactional; on failure the
// cart is untouched and checkout state stays valid for a retry.
func HandleCheckoutSubmit(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Replayed Idempotency-Key: return the order it created
		_, _, existingOrderID, isExisting := middleware.GetIdempotencyInfo(c)
		if isExisting {
			orderID, err := uuid.Parse(existingOrderID)
			if err != nil {
				d.Logger.Error("Invalid existing order ID from idempotency", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			order, err := d.Repos.Order.GetByID(c.Request.Context(), orderID)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, toOrderResponse(order))
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		checkout, identity, err := buildCheckout(c, d, req)
		if err != nil {
			respondError(c, err)
			return
		}

		viewer := resolveCart(c, d)
		if err := viewer.store.Load(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		snapshot := viewer.store.Snapshot()

		if err := checkout.ValidateSubmit(snapshot); err != nil {
			respondError(c, err)
			return
		}

		result, err := d.orderService().SubmitOrder(c.Request.Context(), service.SubmitInput{
			Identity: identity,
			Address:  checkout.Address(),
			Method:   checkout.PaymentMethod(),
			Lines:    snapshot.Lines,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		// Order is in; an unclearable cart is a warning, not a failure
		if err := viewer.store.Clear(c.Request.Context()); err != nil {
			d.Logger.Warn("Failed to clear cart after submission",
				zap.String("order_number", result.Order.OrderNumber), zap.Error(err))
		}

		if key, requestHash, _, _ := middleware.GetIdempotencyInfo(c); key != "" {
			idempotency := &domain.IdempotencyKey{
				Key:         key,
				OrderID:     result.Order.ID,
				RequestHash: requestHash,
			}
			if err := d.Repos.IdempotencyKey.Create(c.Request.Context(), idempotency); err != nil {
				d.Logger.Warn("Failed to store idempotency key", zap.Error(err))
			}
		}

		resp := toOrderResponse(result.Order)
		resp.RedirectURL = result.RedirectURL
		resp.BankReference = result.BankReference
		c.JSON(http.StatusCreated, resp)
	}
}
