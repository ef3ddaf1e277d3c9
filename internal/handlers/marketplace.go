// internal/handlers/marketplace.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/kpay-backend/internal/i18n"
	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/services"
	"github.com/javajoker/kpay-backend/internal/utils"
)

type MarketplaceHandler struct {
	marketplaceService *services.MarketplaceService
	metadataService    *services.MetadataService
}

func NewMarketplaceHandler(marketplaceService *services.MarketplaceService, metadataService *services.MetadataService) *MarketplaceHandler {
	return &MarketplaceHandler{
		marketplaceService: marketplaceService,
		metadataService:    metadataService,
	}
}

type createNFTRequest struct {
	TokenURI string `json:"token_uri"`
}

type transferNFTRequest struct {
	To string `json:"to" validate:"required,address"`
}

type priceRequest struct {
	Price models.Amount `json:"price"`
}

// POST /nfts
func (h *MarketplaceHandler) CreateNFT(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req createNFTRequest
	if !bindJSON(c, &req) {
		return
	}

	nft, err := h.marketplaceService.CreateNFT(c.Request.Context(), caller(c), req.TokenURI)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyNFTCreated),
		"nft":     nft,
	})
}

// GET /nfts/:id
func (h *MarketplaceHandler) GetNFT(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := h.marketplaceService.GetNFT(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, view)
}

// GET /nfts/:id/metadata
func (h *MarketplaceHandler) GetMetadata(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	uri, err := h.marketplaceService.TokenURI(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	metadata, err := h.metadataService.Resolve(c.Request.Context(), uri)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"token_id":  id,
		"token_uri": uri,
		"metadata":  metadata,
	})
}

// GET /nfts/owner/:holder
func (h *MarketplaceHandler) GetAssetsOf(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	nfts, total, err := h.marketplaceService.AssetsOf(c.Request.Context(), c.Param("holder"), params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(nfts, total, params))
}

// POST /nfts/:id/transfer
func (h *MarketplaceHandler) TransferNFT(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req transferNFTRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.marketplaceService.TransferNFT(c.Request.Context(), caller(c), id, req.To); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyNFTTransferred),
		"token_id": id,
		"to":       strings.ToLower(req.To),
	})
}

// POST /nfts/:id/list
func (h *MarketplaceHandler) ListItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req priceRequest
	if !bindJSON(c, &req) {
		return
	}

	listing, err := h.marketplaceService.ListItem(c.Request.Context(), caller(c), id, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyListingCreated),
		"listing": listing,
	})
}

// POST /nfts/:id/cancel
func (h *MarketplaceHandler) CancelListing(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.marketplaceService.CancelListing(c.Request.Context(), caller(c), id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyListingCancelled),
		"token_id": id,
	})
}

// PUT /nfts/:id/price
func (h *MarketplaceHandler) UpdateListingPrice(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req priceRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.marketplaceService.UpdateListingPrice(c.Request.Context(), caller(c), id, req.Price); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyListingUpdated),
		"token_id": id,
		"price":    amountView(req.Price),
	})
}

// POST /nfts/:id/buy
func (h *MarketplaceHandler) BuyNFT(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	listing, err := h.marketplaceService.BuyNFT(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyListingSold),
		"listing": listing,
	})
}

// GET /marketplace/listings
func (h *MarketplaceHandler) GetListings(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	listings, total, err := h.marketplaceService.Listings(c.Request.Context(), listingFilter(c), params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(listings, total, params))
}

// GET /marketplace/listings/:id
func (h *MarketplaceHandler) GetListing(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	listing, err := h.marketplaceService.GetListing(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// listingFilter reads ?seller= and ?active= from the query. Listings are
// active-only unless active=false.
func listingFilter(c *gin.Context) services.ListingFilter {
	filter := services.ListingFilter{
		Seller:     strings.ToLower(c.Query("seller")),
		ActiveOnly: true,
	}
	if activeStr := c.Query("active"); activeStr != "" {
		if active, err := strconv.ParseBool(activeStr); err == nil {
			filter.ActiveOnly = active
		}
	}
	return filter
}
