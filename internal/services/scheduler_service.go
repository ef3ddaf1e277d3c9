// internal/services/scheduler_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/models"
)

// SchedulerService keeps one recurring-purchase order per owner. Nothing here
// runs on a timer; an external keeper calls ExecutePurchase.
type SchedulerService struct {
	db    *gorm.DB
	chain *Chain
}

type CreateOrderRequest struct {
	TokenAddress     string        `json:"token_address" validate:"required,address"`
	PurchaseInterval uint64        `json:"purchase_interval"`
	KpayAmount       models.Amount `json:"kpay_amount"`
}

func NewSchedulerService(db *gorm.DB, chain *Chain) *SchedulerService {
	return &SchedulerService{db: db, chain: chain}
}

func findOrder(db *gorm.DB, contract, owner string) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := db.Where("contract = ? AND owner = ?", contract, owner).Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

// CreatePurchaseOrder replaces any previous order of caller.
func (s *SchedulerService) CreatePurchaseOrder(ctx context.Context, caller string, req *CreateOrderRequest) (*models.PurchaseOrder, error) {
	token, err := accountAddress(req.TokenAddress)
	if err != nil {
		return nil, fail(ErrInvalidArgument, "Invalid token address")
	}
	if req.KpayAmount.IsZero() {
		return nil, fail(ErrInvalidArgument, "Kpay amount must be greater than 0")
	}
	if req.PurchaseInterval == 0 {
		return nil, fail(ErrInvalidArgument, "Purchase interval must be greater than 0")
	}

	var order *models.PurchaseOrder
	_, err = s.chain.Execute(ctx, "createPurchaseOrder", func(tx *Tx) error {
		scheduler, err := loadContract(tx.DB(), models.ContractKindScheduler)
		if err != nil {
			return err
		}
		if err := requireNotPaused(scheduler); err != nil {
			return err
		}
		order, err = findOrder(tx.DB(), scheduler.Address, caller)
		if err != nil {
			return err
		}
		if order == nil {
			order = &models.PurchaseOrder{Contract: scheduler.Address, Owner: caller}
		}
		order.TokenAddress = token
		order.PurchaseInterval = req.PurchaseInterval
		order.KpayAmount = req.KpayAmount
		order.LastExecutedAt = nil
		order.ExecutionCount = 0
		if err := tx.DB().Save(order).Error; err != nil {
			return fmt.Errorf("failed to save purchase order: %w", err)
		}
		tx.Emit(scheduler.Address, scheduler.Kind, "OrderCreated", models.JSONB{
			"owner":            caller,
			"tokenAddress":     token,
			"purchaseInterval": req.PurchaseInterval,
			"kpayAmount":       req.KpayAmount.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CancelPurchaseOrder always succeeds; cancelling an empty order just resets
// it again.
func (s *SchedulerService) CancelPurchaseOrder(ctx context.Context, caller string) error {
	_, err := s.chain.Execute(ctx, "cancelPurchaseOrder", func(tx *Tx) error {
		scheduler, err := loadContract(tx.DB(), models.ContractKindScheduler)
		if err != nil {
			return err
		}
		order, err := findOrder(tx.DB(), scheduler.Address, caller)
		if err != nil {
			return err
		}
		if order != nil {
			err := tx.DB().Model(order).Updates(map[string]interface{}{
				"token_address":     models.ZeroAddress,
				"purchase_interval": 0,
				"kpay_amount":       models.Amount{},
				"last_executed_at":  nil,
				"execution_count":   0,
			}).Error
			if err != nil {
				return err
			}
		}
		tx.Emit(scheduler.Address, scheduler.Kind, "OrderCancelled", models.JSONB{"owner": caller})
		return nil
	})
	return err
}

// ExecutePurchase runs one purchase leg of caller's order. The interval is
// recorded but not enforced.
func (s *SchedulerService) ExecutePurchase(ctx context.Context, caller string) (*models.PurchaseOrder, error) {
	var order *models.PurchaseOrder
	_, err := s.chain.Execute(ctx, "executePurchase", func(tx *Tx) error {
		scheduler, err := loadContract(tx.DB(), models.ContractKindScheduler)
		if err != nil {
			return err
		}
		order, err = findOrder(tx.DB(), scheduler.Address, caller)
		if err != nil {
			return err
		}
		if !order.Active() {
			return fail(ErrInvalidArgument, "No active purchase order")
		}
		bal, err := balanceOf(tx.DB(), scheduler.PaymentToken, caller)
		if err != nil {
			return err
		}
		if bal.LessThan(order.KpayAmount) {
			return fail(ErrInsufficientBalance, "Insufficient KPAY balance")
		}
		if err := tx.transferFrom(scheduler.PaymentToken, scheduler.Address, caller, scheduler.Address, order.KpayAmount, "ERC20InsufficientAllowance"); err != nil {
			return err
		}

		now := tx.Now()
		order.LastExecutedAt = &now
		order.ExecutionCount++
		err = tx.DB().Model(order).Updates(map[string]interface{}{
			"last_executed_at": now,
			"execution_count":  order.ExecutionCount,
		}).Error
		if err != nil {
			return err
		}
		tx.Emit(scheduler.Address, scheduler.Kind, "PurchaseExecuted", models.JSONB{
			"owner": caller, "amount": order.KpayAmount.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetPurchaseOrder returns the empty order for owners that never created one.
func (s *SchedulerService) GetPurchaseOrder(ctx context.Context, owner string) (*models.PurchaseOrder, error) {
	owner, err := NormalizeAddress(owner)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	scheduler, err := loadContract(db, models.ContractKindScheduler)
	if err != nil {
		return nil, err
	}
	order, err := findOrder(db, scheduler.Address, owner)
	if err != nil {
		return nil, err
	}
	if order == nil {
		order = &models.PurchaseOrder{Contract: scheduler.Address, Owner: owner, TokenAddress: models.ZeroAddress}
	}
	return order, nil
}

// WithdrawTokens moves any token held by the scheduler to the administrator.
func (s *SchedulerService) WithdrawTokens(ctx context.Context, caller, token string, amount models.Amount) error {
	token, err := NormalizeAddress(token)
	if err != nil {
		return err
	}
	if amount.IsZero() {
		return fail(ErrInvalidArgument, "Amount must be greater than 0")
	}
	_, err = s.chain.Execute(ctx, "withdrawTokens", func(tx *Tx) error {
		scheduler, err := loadContract(tx.DB(), models.ContractKindScheduler)
		if err != nil {
			return err
		}
		if err := requireOwner(scheduler, caller, "Ownable: caller is not the owner"); err != nil {
			return err
		}
		if _, err := findToken(tx.DB(), token); err != nil {
			return err
		}
		if err := tx.transfer(token, scheduler.Address, scheduler.Owner, amount); err != nil {
			return err
		}
		tx.Emit(scheduler.Address, scheduler.Kind, "TokensWithdrawn", models.JSONB{
			"token": token, "to": scheduler.Owner, "amount": amount.String(),
		})
		return nil
	})
	return err
}
