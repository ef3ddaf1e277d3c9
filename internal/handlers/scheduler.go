// internal/handlers/scheduler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/kpay-backend/internal/i18n"
	"github.com/javajoker/kpay-backend/internal/services"
	"github.com/javajoker/kpay-backend/internal/utils"
)

type SchedulerHandler struct {
	schedulerService *services.SchedulerService
}

func NewSchedulerHandler(schedulerService *services.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{schedulerService: schedulerService}
}

// POST /scheduler/orders
func (h *SchedulerHandler) CreateOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.schedulerService.CreatePurchaseOrder(c.Request.Context(), caller(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderCreated),
		"order":   order,
	})
}

// DELETE /scheduler/orders
func (h *SchedulerHandler) CancelOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	if err := h.schedulerService.CancelPurchaseOrder(c.Request.Context(), caller(c)); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyOrderCancelled)})
}

// POST /scheduler/orders/execute
func (h *SchedulerHandler) ExecuteOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	order, err := h.schedulerService.ExecutePurchase(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderExecuted),
		"order":   order,
	})
}

// GET /scheduler/orders/me
func (h *SchedulerHandler) GetMyOrder(c *gin.Context) {
	h.respondOrder(c, caller(c))
}

// GET /scheduler/orders/:owner
func (h *SchedulerHandler) GetOrder(c *gin.Context) {
	h.respondOrder(c, c.Param("owner"))
}

func (h *SchedulerHandler) respondOrder(c *gin.Context, owner string) {
	order, err := h.schedulerService.GetPurchaseOrder(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"order":  order,
		"active": order.Active(),
	})
}
