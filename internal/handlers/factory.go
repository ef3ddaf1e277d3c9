// internal/handlers/factory.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/kpay-backend/internal/i18n"
	"github.com/javajoker/kpay-backend/internal/services"
	"github.com/javajoker/kpay-backend/internal/utils"
)

type FactoryHandler struct {
	factoryService *services.FactoryService
}

func NewFactoryHandler(factoryService *services.FactoryService) *FactoryHandler {
	return &FactoryHandler{factoryService: factoryService}
}

// POST /factory/tokens
func (h *FactoryHandler) CreateToken(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.factoryService.CreateToken(c.Request.Context(), caller(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTokenCreated),
		"token":   created,
	})
}

// GET /factory/tokens
// With ?details=true the full creation records are returned instead of
// bare addresses.
func (h *FactoryHandler) GetAllTokens(c *gin.Context) {
	if c.Query("details") == "true" {
		records, err := h.factoryService.CreatedTokens(c.Request.Context(), "")
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{"tokens": records, "count": len(records)})
		return
	}

	tokens, err := h.factoryService.GetAllTokens(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"tokens": tokens, "count": len(tokens)})
}

// GET /factory/tokens/user/:address
func (h *FactoryHandler) GetUserTokens(c *gin.Context) {
	tokens, err := h.factoryService.GetUserTokens(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"creator": c.Param("address"),
		"tokens":  tokens,
		"count":   len(tokens),
	})
}

// GET /factory/fee
func (h *FactoryHandler) GetCreationFee(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"creation_fee": amountView(h.factoryService.CreationFee())})
}
