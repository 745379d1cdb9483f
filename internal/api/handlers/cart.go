package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oudaybenrhouma/ghalinino-api/internal/api/middleware"
	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/i18n"
	"github.com/oudaybenrhouma/ghalinino-api/internal/pricing"
	"github.com/oudaybenrhouma/ghalinino-api/internal/service"
)

// cartTokenHeader carries the anonymous cart token. Issued on the first
// cart mutation and echoed back by the client on every request.
const cartTokenHeader = "X-Cart-Token"

type cartLineResponse struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	NameAr    string `json:"name_ar"`
	NameFr    string `json:"name_fr"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

type cartResponse struct {
	Lines     []cartLineResponse `json:"lines"`
	ItemCount int                `json:"item_count"`
	Subtotal  int64              `json:"subtotal"`
	Minimum   *pricing.Progress  `json:"minimum_order,omitempty"`
	CartToken string             `json:"cart_token,omitempty"`
	Warning   string             `json:"warning,omitempty"`
}

// cartViewer is the resolved cart context for one request
type cartViewer struct {
	store       *service.CartStore
	customer    *domain.Customer
	issuedToken string // set when a new guest token was minted
}

// resolveCart builds the viewer's cart store: the Postgres-backed cart for
// authenticated customers, the Redis-backed cart for guests. A guest with
// no token gets a fresh one, returned in the response body and header.
func resolveCart(c *gin.Context, d Deps) cartViewer {
	viewer := cartViewer{}

	var backend service.CartBackend
	wholesaleApproved := false
	if customer, ok := middleware.GetCustomerFromContext(c); ok {
		viewer.customer = customer
		wholesaleApproved = customer.Wholesale.Approved()
		backend = service.NewRemoteCartBackend(d.Repos.Cart, customer.ID)
	} else {
		token := c.GetHeader(cartTokenHeader)
		if token == "" {
			token = uuid.NewString()
			viewer.issuedToken = token
			c.Header(cartTokenHeader, token)
		}
		backend = service.NewGuestCartBackend(d.Repos.GuestCart, token)
	}

	viewer.store = service.NewCartStore(backend, d.stockValidator(), d.Feed, wholesaleApproved, d.Logger)
	return viewer
}

func (v cartViewer) response(lang i18n.Lang, warning string) cartResponse {
	snap := v.store.Snapshot()

	resp := cartResponse{
		Lines:     make([]cartLineResponse, 0, len(snap.Lines)),
		ItemCount: snap.ItemCount,
		Subtotal:  snap.Subtotal,
		CartToken: v.issuedToken,
		Warning:   warning,
	}
	for _, line := range snap.Lines {
		wholesaleApproved := v.customer != nil && v.customer.Wholesale.Approved()
		unit := pricing.UnitPrice(line.Snapshot, wholesaleApproved)
		resp.Lines = append(resp.Lines, cartLineResponse{
			ProductID: line.ProductID.String(),
			SKU:       line.Snapshot.SKU,
			NameAr:    line.Snapshot.NameAr,
			NameFr:    line.Snapshot.NameFr,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			LineTotal: unit * int64(line.Quantity),
		})
	}

	if v.customer != nil && v.customer.Wholesale.Approved() {
		progress := pricing.MinimumOrderProgress(snap.Subtotal, true)
		resp.Minimum = &progress
	}
	return resp
}

// HandleGetCart returns the viewer's cart, fixed up against live stock
func HandleGetCart(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := resolveCart(c, d)
		if err := viewer.store.Load(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, viewer.response(lang(c), ""))
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// HandleAddCartItem adds a product to the cart, quantity defaulting to one
func HandleAddCartItem(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}
		productID, _ := uuid.Parse(req.ProductID)
		if req.Quantity < 1 {
			req.Quantity = 1
		}

		viewer := resolveCart(c, d)
		if err := viewer.store.Load(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		if err := viewer.store.AddItem(c.Request.Context(), productID, req.Quantity); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, viewer.response(lang(c), ""))
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandleUpdateCartItem sets a line's quantity; clamps to stock with a
// localized warning, removes the line when quantity drops below one.
func HandleUpdateCartItem(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := uuid.Parse(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid product id"})
			return
		}

		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		viewer := resolveCart(c, d)
		if err := viewer.store.Load(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}

		final, err := viewer.store.UpdateQuantity(c.Request.Context(), productID, req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}

		warning := ""
		if req.Quantity > 0 && final < req.Quantity {
			warning = i18n.Msg(lang(c), i18n.KeyStockClamped, final)
		}
		c.JSON(http.StatusOK, viewer.response(lang(c), warning))
	}
}

// HandleRemoveCartItem removes a line; removing an absent line succeeds
func HandleRemoveCartItem(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := uuid.Parse(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid product id"})
			return
		}

		viewer := resolveCart(c, d)
		if err := viewer.store.Load(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		if err := viewer.store.RemoveItem(c.Request.Context(), productID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, viewer.response(lang(c), ""))
	}
}

// HandleClearCart empties the cart
func HandleClearCart(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := resolveCart(c, d)
		if err := viewer.store.Load(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		if err := viewer.store.Clear(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, viewer.response(lang(c), ""))
	}
}

// HandleWatchCart long-polls for the next cart change signal and returns
// the reloaded cart, or the current cart on timeout. Signals are coalesced;
// a stale wake-up just returns an identical cart.
func HandleWatchCart(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := resolveCart(c, d)
		if err := viewer.store.Load(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}

		if err := viewer.store.AwaitChange(c.Request.Context(), 25*time.Second); err != nil {
			if c.Request.Context().Err() != nil {
				return
			}
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, viewer.response(lang(c), ""))
	}
}
