package i18n

import (
	"fmt"
	"strings"
)

// Lang is a supported storefront language
type Lang string

const (
	LangAr Lang = "ar"
	LangFr Lang = "fr"
)

// Message keys for user-facing cart/checkout errors
const (
	KeyStockInsufficient    = "stock_insufficient"
	KeyStockClamped         = "stock_clamped"
	KeyProductUnavailable   = "product_unavailable"
	KeyCartSyncFailed       = "cart_sync_failed"
	KeyCartEmpty            = "cart_empty"
	KeyAddressIncomplete    = "address_incomplete"
	KeyPaymentMethodMissing = "payment_method_missing"
	KeyMinimumOrderUnmet    = "minimum_order_unmet"
	KeySubmitFailed         = "submit_failed"
	KeyPaymentSessionFailed = "payment_session_failed"
)

var messages = map[Lang]map[string]string{
	LangAr: {
		KeyStockInsufficient:    "الكمية المطلوبة غير متوفرة، المتوفر حاليا %d فقط",
		KeyStockClamped:         "تم تعديل الكمية إلى %d حسب المخزون المتوفر",
		KeyProductUnavailable:   "هذا المنتج لم يعد متوفرا",
		KeyCartSyncFailed:       "تعذر حفظ السلة، الرجاء المحاولة مرة أخرى",
		KeyCartEmpty:            "السلة فارغة",
		KeyAddressIncomplete:    "الرجاء إكمال عنوان التوصيل",
		KeyPaymentMethodMissing: "الرجاء اختيار طريقة الدفع",
		KeyMinimumOrderUnmet:    "الحد الأدنى لطلبات الجملة غير مكتمل، يتبقى %d مليم",
		KeySubmitFailed:         "تعذر إرسال الطلب، الرجاء المحاولة مرة أخرى",
		KeyPaymentSessionFailed: "تعذر فتح جلسة الدفع، الرجاء المحاولة لاحقا",
	},
	LangFr: {
		KeyStockInsufficient:    "Quantité demandée indisponible, seulement %d en stock",
		KeyStockClamped:         "Quantité ajustée à %d selon le stock disponible",
		KeyProductUnavailable:   "Ce produit n'est plus disponible",
		KeyCartSyncFailed:       "Impossible d'enregistrer le panier, veuillez réessayer",
		KeyCartEmpty:            "Le panier est vide",
		KeyAddressIncomplete:    "Veuillez compléter l'adresse de livraison",
		KeyPaymentMethodMissing: "Veuillez choisir un mode de paiement",
		KeyMinimumOrderUnmet:    "Minimum de commande en gros non atteint, il manque %d millimes",
		KeySubmitFailed:         "Échec de l'envoi de la commande, veuillez réessayer",
		KeyPaymentSessionFailed: "Impossible d'ouvrir la session de paiement, réessayez plus tard",
	},
}

// Msg returns the localized message for key, formatted with args.
// Arabic is the default; unknown keys come back as the key itself so a
// missing translation never panics a checkout.
func Msg(lang Lang, key string, args ...interface{}) string {
	catalog, ok := messages[lang]
	if !ok {
		catalog = messages[LangAr]
	}
	tmpl, ok := catalog[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// FromAcceptLanguage picks the storefront language from an Accept-Language
// header value. Arabic is the default.
func FromAcceptLanguage(header string) Lang {
	for _, part := range strings.Split(header, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		switch {
		case strings.HasPrefix(tag, "fr"):
			return LangFr
		case strings.HasPrefix(tag, "ar"):
			return LangAr
		}
	}
	return LangAr
}
