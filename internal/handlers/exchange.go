// internal/handlers/exchange.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/kpay-backend/internal/i18n"
	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/services"
	"github.com/javajoker/kpay-backend/internal/utils"
)

type ExchangeHandler struct {
	exchangeService *services.ExchangeService
}

func NewExchangeHandler(exchangeService *services.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{exchangeService: exchangeService}
}

type listAssetRequest struct {
	AssetLink string        `json:"asset_link"`
	Price     models.Amount `json:"price"`
}

// POST /exchange/listings
func (h *ExchangeHandler) ListItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req listAssetRequest
	if !bindJSON(c, &req) {
		return
	}

	listing, err := h.exchangeService.ListItem(c.Request.Context(), caller(c), req.AssetLink, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyListingCreated),
		"listing": listing,
	})
}

// GET /exchange/listings
func (h *ExchangeHandler) GetListings(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	listings, total, err := h.exchangeService.Listings(c.Request.Context(), listingFilter(c), params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(listings, total, params))
}

// GET /exchange/listings/:id
func (h *ExchangeHandler) GetListing(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	listing, err := h.exchangeService.GetListing(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// GET /exchange/count
func (h *ExchangeHandler) GetListingCount(c *gin.Context) {
	count, err := h.exchangeService.ListingCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"listing_count": count})
}

// POST /exchange/listings/:id/cancel
func (h *ExchangeHandler) CancelListing(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.exchangeService.CancelListing(c.Request.Context(), caller(c), id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyListingCancelled),
		"listing_id": id,
	})
}

// PUT /exchange/listings/:id/price
func (h *ExchangeHandler) UpdateListingPrice(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req priceRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.exchangeService.UpdateListingPrice(c.Request.Context(), caller(c), id, req.Price); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyListingUpdated),
		"listing_id": id,
		"price":      amountView(req.Price),
	})
}

// POST /exchange/listings/:id/buy
func (h *ExchangeHandler) BuyAsset(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	listing, err := h.exchangeService.BuyAsset(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyListingSold),
		"listing": listing,
	})
}
