package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oudaybenrhouma/ghalinino-api/internal/api/middleware"
	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/pricing"
)

type productResponse struct {
	ID              string  `json:"id"`
	SKU             string  `json:"sku"`
	NameAr          string  `json:"name_ar"`
	NameFr          string  `json:"name_fr"`
	DescriptionAr   *string `json:"description_ar,omitempty"`
	DescriptionFr   *string `json:"description_fr,omitempty"`
	Price           int64   `json:"price"`
	CompareAtPrice  *int64  `json:"compare_at_price,omitempty"`
	WholesalePrice  *int64  `json:"wholesale_price,omitempty"`
	WholesaleMinQty int     `json:"wholesale_min_qty,omitempty"`
	AvailableStock  int     `json:"available_stock"`
	ImageURL        *string `json:"image_url,omitempty"`
}

// toProductResponse prices the product for the viewer: the wholesale price
// column is only exposed to approved wholesale accounts.
func toProductResponse(p *domain.Product, wholesaleApproved bool) productResponse {
	resp := productResponse{
		ID:             p.ID.String(),
		SKU:            p.SKU,
		NameAr:         p.NameAr,
		NameFr:         p.NameFr,
		DescriptionAr:  p.DescriptionAr,
		DescriptionFr:  p.DescriptionFr,
		Price:          pricing.UnitPrice(p.Snapshot(), wholesaleApproved),
		CompareAtPrice: p.CompareAtPrice,
		AvailableStock: p.AvailableStock,
		ImageURL:       p.ImageURL,
	}
	if wholesaleApproved {
		resp.WholesalePrice = p.WholesalePrice
		resp.WholesaleMinQty = p.WholesaleMinQty
	}
	return resp
}

func viewerIsWholesale(c *gin.Context) bool {
	customer, ok := middleware.GetCustomerFromContext(c)
	return ok && customer.Wholesale.Approved()
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// HandleListProducts lists active catalog products
func HandleListProducts(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pagination(c)

		products, err := d.Repos.Product.ListActive(c.Request.Context(), limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}

		wholesale := viewerIsWholesale(c)
		out := make([]productResponse, 0, len(products))
		for _, p := range products {
			out = append(out, toProductResponse(p, wholesale))
		}
		c.JSON(http.StatusOK, gin.H{"products": out, "limit": limit, "offset": offset})
	}
}

// HandleGetProduct returns one product; inactive products 404 for the storefront
func HandleGetProduct(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid product id"})
			return
		}

		product, err := d.Repos.Product.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if !product.IsActive {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found: " + id.String()})
			return
		}

		c.JSON(http.StatusOK, toProductResponse(product, viewerIsWholesale(c)))
	}
}

// HandleShippingQuote prices shipping for a governorate and cart total
// before checkout, so the storefront can show the fee and the free-shipping
// progress live.
func HandleShippingQuote(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		gov := domain.Governorate(c.Query("governorate"))
		if !gov.IsValid() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown governorate"})
			return
		}

		total, err := strconv.ParseInt(c.DefaultQuery("total", "0"), 10, 64)
		if err != nil || total < 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid total"})
			return
		}

		wholesale := viewerIsWholesale(c)
		quote := pricing.CalculateShipping(gov, total, wholesale, wholesale)
		c.JSON(http.StatusOK, gin.H{
			"governorate": string(gov),
			"zone":        gov.Zone().String(),
			"quote":       quote,
		})
	}
}

// HandleListGovernorates returns the 24 governorates with their zones
func HandleListGovernorates(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		type govEntry struct {
			Governorate string `json:"governorate"`
			Zone        string `json:"zone"`
		}
		govs := domain.Governorates()
		out := make([]govEntry, 0, len(govs))
		for _, g := range govs {
			out = append(out, govEntry{Governorate: string(g), Zone: g.Zone().String()})
		}
		c.JSON(http.StatusOK, gin.H{"governorates": out})
	}
}
