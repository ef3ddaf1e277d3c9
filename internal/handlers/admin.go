// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/kpay-backend/internal/i18n"
	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/services"
	"github.com/javajoker/kpay-backend/internal/utils"
)

// AdminHandler exposes the owner-only contract operations. The route group
// requires the admin role; each operation still checks the contract owner.
type AdminHandler struct {
	contractService    *services.ContractService
	marketplaceService *services.MarketplaceService
	exchangeService    *services.ExchangeService
	factoryService     *services.FactoryService
	schedulerService   *services.SchedulerService
}

func NewAdminHandler(
	contractService *services.ContractService,
	marketplaceService *services.MarketplaceService,
	exchangeService *services.ExchangeService,
	factoryService *services.FactoryService,
	schedulerService *services.SchedulerService,
) *AdminHandler {
	return &AdminHandler{
		contractService:    contractService,
		marketplaceService: marketplaceService,
		exchangeService:    exchangeService,
		factoryService:     factoryService,
		schedulerService:   schedulerService,
	}
}

type withdrawRequest struct {
	Amount models.Amount `json:"amount"`
}

type ownershipRequest struct {
	NewOwner string `json:"new_owner" validate:"required,address"`
}

type kpayTokenRequest struct {
	Token string `json:"token" validate:"required,address"`
}

type tokenWithdrawRequest struct {
	Token  string        `json:"token" validate:"required,address"`
	Amount models.Amount `json:"amount"`
}

// POST /admin/contracts/:kind/pause
func (h *AdminHandler) Pause(c *gin.Context) {
	h.setPaused(c, true)
}

// POST /admin/contracts/:kind/unpause
func (h *AdminHandler) Unpause(c *gin.Context) {
	h.setPaused(c, false)
}

func (h *AdminHandler) setPaused(c *gin.Context, paused bool) {
	lang := utils.GetLangFromContext(c)

	kind, err := services.ParseContractKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}

	if paused {
		err = h.contractService.Pause(c.Request.Context(), caller(c), kind)
	} else {
		err = h.contractService.Unpause(c.Request.Context(), caller(c), kind)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdminActionSuccess),
		"kind":    kind,
		"paused":  paused,
	})
}

// POST /admin/contracts/:kind/withdraw
// Marketplace and exchange withdraw an explicit amount; the factory always
// sweeps its whole fee balance.
func (h *AdminHandler) Withdraw(c *gin.Context) {
	kind, err := services.ParseContractKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}

	switch kind {
	case models.ContractKindFactory:
		h.WithdrawFees(c)
		return
	case models.ContractKindScheduler:
		h.WithdrawSchedulerTokens(c)
		return
	}

	var req withdrawRequest
	if !bindJSON(c, &req) {
		return
	}

	if kind == models.ContractKindMarketplace {
		err = h.marketplaceService.WithdrawKpay(c.Request.Context(), caller(c), req.Amount)
	} else {
		err = h.exchangeService.WithdrawKpay(c.Request.Context(), caller(c), req.Amount)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	h.withdrawn(c, kind, req.Amount)
}

// POST /admin/factory/withdraw
func (h *AdminHandler) WithdrawFees(c *gin.Context) {
	amount, err := h.factoryService.WithdrawFees(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.withdrawn(c, models.ContractKindFactory, amount)
}

// POST /admin/scheduler/withdraw
func (h *AdminHandler) WithdrawSchedulerTokens(c *gin.Context) {
	var req tokenWithdrawRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.schedulerService.WithdrawTokens(c.Request.Context(), caller(c), req.Token, req.Amount); err != nil {
		respondError(c, err)
		return
	}

	h.withdrawn(c, models.ContractKindScheduler, req.Amount)
}

func (h *AdminHandler) withdrawn(c *gin.Context, kind models.ContractKind, amount models.Amount) {
	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyWithdrawSuccess),
		"kind":    kind,
		"amount":  amountView(amount),
	})
}

// POST /admin/contracts/:kind/ownership
func (h *AdminHandler) TransferOwnership(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	kind, err := services.ParseContractKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req ownershipRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.contractService.TransferOwnership(c.Request.Context(), caller(c), kind, req.NewOwner); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyAdminActionSuccess),
		"kind":      kind,
		"new_owner": req.NewOwner,
	})
}

// POST /admin/factory/kpay-token
func (h *AdminHandler) SetKpayToken(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req kpayTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.factoryService.SetKpayToken(c.Request.Context(), caller(c), req.Token); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdminActionSuccess),
		"token":   req.Token,
	})
}
