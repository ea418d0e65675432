package http

import (
	"net/http"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/i18n"
	"github.com/Mr-Shodiyorov/admin-page/internal/pricing"
)

// LocaleResponse reports the UI language.
//
// swagger:model
type LocaleResponse struct {
	// example: uz
	Locale    string   `json:"locale"`
	Supported []string `json:"supported"`
}

type localeRequest struct {
	Locale string `json:"locale"`
}

// PricePreview is the live price shown next to the price inputs.
//
// swagger:model
type PricePreview struct {
	// Rounded to two decimals
	//
	// example: 80.00
	FinalPrice string `json:"final_price"`
}

type SettingsHandler struct {
	locale  *i18n.Locale
	respond *Responder
}

func NewSettingsHandler(locale *i18n.Locale, respond *Responder) *SettingsHandler {
	return &SettingsHandler{locale: locale, respond: respond}
}

func (h *SettingsHandler) localeResponse() LocaleResponse {
	supported := make([]string, 0, len(i18n.Supported))
	for _, tag := range i18n.Supported {
		supported = append(supported, tag.String())
	}
	return LocaleResponse{Locale: h.locale.Current().String(), Supported: supported}
}

// GetLocale handles GET /settings/locale
//
// swagger:route GET /settings/locale settings getLocale
//
// Responses:
//
//	200: LocaleResponse
func (h *SettingsHandler) GetLocale(w http.ResponseWriter, r *http.Request) {
	h.respond.JSON(w, http.StatusOK, h.localeResponse())
}

// SetLocale handles PUT /settings/locale
//
// swagger:route PUT /settings/locale settings setLocale
//
// Switches the UI language. Connected feeds receive a locale_changed event.
//
// Responses:
//
//	200: LocaleResponse
//	422: validationErrorResponse
func (h *SettingsHandler) SetLocale(w http.ResponseWriter, r *http.Request) {
	var req localeRequest
	if err := decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	if _, err := h.locale.SetLocale(req.Locale); err != nil {
		h.respond.Error(w, r, domain.NewValidationError("locale", "oneof", err.Error()))
		return
	}
	h.respond.JSON(w, http.StatusOK, h.localeResponse())
}

// PreviewPrice handles GET /pricing/preview
//
// swagger:route GET /pricing/preview pricing previewPrice
//
// Computes the discounted price the store would keep. Unparseable inputs
// count as zero, a negative price as zero, and the discount is clamped to
// 0..100 and truncated to a whole percent.
//
// Responses:
//
//	200: PricePreview
func (h *SettingsHandler) PreviewPrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	final := pricing.SalePrice(domain.RawNumber(q.Get("price")), domain.RawNumber(q.Get("discount")))
	h.respond.JSON(w, http.StatusOK, PricePreview{FinalPrice: final.StringFixed(2)})
}
