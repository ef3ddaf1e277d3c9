// internal/handlers/token.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/kpay-backend/internal/i18n"
	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/services"
	"github.com/javajoker/kpay-backend/internal/utils"
)

type TokenHandler struct {
	tokenService *services.TokenService
}

func NewTokenHandler(tokenService *services.TokenService) *TokenHandler {
	return &TokenHandler{tokenService: tokenService}
}

type approveRequest struct {
	Spender string        `json:"spender" validate:"required,address"`
	Amount  models.Amount `json:"amount"`
}

type transferRequest struct {
	To     string        `json:"to" validate:"required,address"`
	Amount models.Amount `json:"amount"`
}

type transferFromRequest struct {
	From   string        `json:"from" validate:"required,address"`
	To     string        `json:"to" validate:"required,address"`
	Amount models.Amount `json:"amount"`
}

type burnRequest struct {
	Amount models.Amount `json:"amount"`
}

// GET /tokens/:address
func (h *TokenHandler) GetToken(c *gin.Context) {
	info, err := h.tokenService.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, info)
}

// GET /tokens/:address/balances/:holder
func (h *TokenHandler) GetBalance(c *gin.Context) {
	balance, err := h.tokenService.BalanceOf(c.Request.Context(), c.Param("address"), c.Param("holder"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"token":   c.Param("address"),
		"holder":  c.Param("holder"),
		"balance": amountView(balance),
	})
}

// GET /tokens/:address/allowances/:owner/:spender
func (h *TokenHandler) GetAllowance(c *gin.Context) {
	allowance, err := h.tokenService.Allowance(c.Request.Context(), c.Param("address"), c.Param("owner"), c.Param("spender"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"token":     c.Param("address"),
		"owner":     c.Param("owner"),
		"spender":   c.Param("spender"),
		"allowance": amountView(allowance),
	})
}

// POST /tokens/:address/approve
func (h *TokenHandler) Approve(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req approveRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.tokenService.Approve(c.Request.Context(), caller(c), c.Param("address"), req.Spender, req.Amount); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTokenApproved),
		"spender": req.Spender,
		"amount":  amountView(req.Amount),
	})
}

// POST /tokens/:address/transfer
func (h *TokenHandler) Transfer(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req transferRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.tokenService.Transfer(c.Request.Context(), caller(c), c.Param("address"), req.To, req.Amount); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTokenTransferred),
		"to":      req.To,
		"amount":  amountView(req.Amount),
	})
}

// POST /tokens/:address/transfer-from
func (h *TokenHandler) TransferFrom(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req transferFromRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.tokenService.TransferFrom(c.Request.Context(), caller(c), c.Param("address"), req.From, req.To, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTokenTransferred),
		"from":    req.From,
		"to":      req.To,
		"amount":  amountView(req.Amount),
	})
}

// POST /tokens/:address/mint
func (h *TokenHandler) Mint(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req transferRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.tokenService.Mint(c.Request.Context(), caller(c), c.Param("address"), req.To, req.Amount); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTokenMinted),
		"to":      req.To,
		"amount":  amountView(req.Amount),
	})
}

// POST /tokens/:address/burn
func (h *TokenHandler) Burn(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req burnRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.tokenService.Burn(c.Request.Context(), caller(c), c.Param("address"), req.Amount); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTokenBurned),
		"amount":  amountView(req.Amount),
	})
}
