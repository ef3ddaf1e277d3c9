// internal/services/event_service.go
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/utils"
)

type EventService struct {
	db *gorm.DB
}

type EventFilter struct {
	Contract string
	Name     string
	After    uint64
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// Events lists committed events in sequence order.
func (s *EventService) Events(ctx context.Context, filter EventFilter, params utils.PaginationParams) ([]models.ContractEvent, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.ContractEvent{})
	if filter.Contract != "" {
		contract, err := NormalizeAddress(filter.Contract)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("contract = ?", contract)
	}
	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}
	if filter.After > 0 {
		query = query.Where("sequence > ?", filter.After)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	var events []models.ContractEvent
	if err := utils.ApplyPagination(query.Order("sequence asc"), params).Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get events: %w", err)
	}
	return events, total, nil
}
