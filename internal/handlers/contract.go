// internal/handlers/contract.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/kpay-backend/internal/services"
	"github.com/javajoker/kpay-backend/internal/utils"
)

// ContractHandler serves the public, read-only view of deployed contracts.
type ContractHandler struct {
	contractService *services.ContractService
}

func NewContractHandler(contractService *services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// GET /contracts
func (h *ContractHandler) GetContracts(c *gin.Context) {
	contracts, err := h.contractService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, contracts)
}

// GET /contracts/:kind
func (h *ContractHandler) GetContract(c *gin.Context) {
	kind, err := services.ParseContractKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}

	contract, err := h.contractService.Get(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, contract)
}

// GET /contracts/:kind/treasury
func (h *ContractHandler) GetTreasury(c *gin.Context) {
	kind, err := services.ParseContractKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}

	balance, err := h.contractService.TreasuryBalance(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"kind":     kind,
		"treasury": amountView(balance),
	})
}
