// internal/handlers/event.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/kpay-backend/internal/services"
	"github.com/javajoker/kpay-backend/internal/utils"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// GET /events?contract=&name=&after=
func (h *EventHandler) GetEvents(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.EventFilter{
		Contract: c.Query("contract"),
		Name:     c.Query("name"),
	}
	if afterStr := c.Query("after"); afterStr != "" {
		if after, err := strconv.ParseUint(afterStr, 10, 64); err == nil {
			filter.After = after
		}
	}

	events, total, err := h.eventService.Events(c.Request.Context(), filter, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(events, total, params))
}
