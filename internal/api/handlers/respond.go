package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/config"
	"github.com/oudaybenrhouma/ghalinino-api/internal/i18n"
	"github.com/oudaybenrhouma/ghalinino-api/internal/pricing"
	"github.com/oudaybenrhouma/ghalinino-api/internal/realtime"
	"github.com/oudaybenrhouma/ghalinino-api/internal/repository"
	"github.com/oudaybenrhouma/ghalinino-api/internal/service"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

// Deps is everything the handlers close over
type Deps struct {
	Cfg     *config.Config
	Repos   *repository.Repositories
	Auth    *service.AuthService
	Gateway service.PaymentGateway
	Mail    service.Notifier
	Feed    realtime.Feed
	Volume  pricing.VolumeDiscountPolicy
	Logger  *zap.Logger
}

func (d Deps) stockValidator() *service.StockValidator {
	return service.NewStockValidator(d.Repos.Product, d.Logger)
}

func (d Deps) orderService() *service.OrderService {
	return service.NewOrderService(d.Repos, d.stockValidator(), d.Gateway, d.Mail, d.Volume, d.Logger)
}

// lang picks the response language from Accept-Language; Arabic default
func lang(c *gin.Context) i18n.Lang {
	return i18n.FromAcceptLanguage(c.GetHeader("Accept-Language"))
}

// respondError maps typed service errors to HTTP responses, localizing
// user-facing messages via the i18n catalog.
func respondError(c *gin.Context, err error) {
	l := lang(c)

	switch e := err.(type) {
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *errors.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": e.Error()})
	case *errors.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	case *errors.ErrStockConflict:
		c.JSON(http.StatusConflict, gin.H{
			"error":      e.Error(),
			"message":    i18n.Msg(l, i18n.KeyStockInsufficient, e.Available),
			"product_id": e.ProductID,
			"available":  e.Available,
		})
	case *errors.ErrMinimumOrder:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":            e.Error(),
			"message":          i18n.Msg(l, i18n.KeyMinimumOrderUnmet, e.Remaining),
			"minimum":          e.Minimum,
			"amount_remaining": e.Remaining,
		})
	case *errors.ErrValidation:
		body := gin.H{"error": e.Error()}
		if e.MessageKey != "" {
			body["message"] = i18n.Msg(l, e.MessageKey)
		}
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case *errors.ErrInvalidStateTransition:
		c.JSON(http.StatusConflict, gin.H{
			"error": e.Error(),
			"from":  string(e.From),
			"to":    string(e.To),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
