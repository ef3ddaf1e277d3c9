// internal/services/contract_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/models"
)

type ContractService struct {
	db    *gorm.DB
	chain *Chain
}

// ContractView is a contract record plus its live treasury balance.
type ContractView struct {
	models.Contract
	Treasury models.Amount `json:"treasury"`
}

func NewContractService(db *gorm.DB, chain *Chain) *ContractService {
	return &ContractService{db: db, chain: chain}
}

func loadContract(db *gorm.DB, kind models.ContractKind) (*models.Contract, error) {
	var contract models.Contract
	if err := db.Where("kind = ?", kind).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(ErrNotFound, fmt.Sprintf("contract %s is not deployed", kind))
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &contract, nil
}

func requireOwner(contract *models.Contract, caller, reason string) error {
	if contract.Owner != caller {
		return fail(ErrUnauthorized, reason)
	}
	return nil
}

func requireNotPaused(contract *models.Contract) error {
	if contract.Paused {
		return fail(ErrOperationPaused, "EnforcedPause")
	}
	return nil
}

// nextID bumps the contract's counter and returns the new value.
func nextID(db *gorm.DB, contract *models.Contract) (uint64, error) {
	contract.Counter++
	if err := db.Model(contract).Update("counter", contract.Counter).Error; err != nil {
		return 0, fmt.Errorf("failed to advance counter: %w", err)
	}
	return contract.Counter, nil
}

func ParseContractKind(raw string) (models.ContractKind, error) {
	kind := models.ContractKind(raw)
	if !kind.Valid() {
		return "", fail(ErrNotFound, "unknown contract "+raw)
	}
	return kind, nil
}

func (s *ContractService) List(ctx context.Context) ([]ContractView, error) {
	var contracts []models.Contract
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	views := make([]ContractView, 0, len(contracts))
	for _, c := range contracts {
		bal, err := balanceOf(s.db.WithContext(ctx), c.PaymentToken, c.Address)
		if err != nil {
			return nil, err
		}
		views = append(views, ContractView{Contract: c, Treasury: bal})
	}
	return views, nil
}

func (s *ContractService) Get(ctx context.Context, kind models.ContractKind) (*ContractView, error) {
	contract, err := loadContract(s.db.WithContext(ctx), kind)
	if err != nil {
		return nil, err
	}
	bal, err := balanceOf(s.db.WithContext(ctx), contract.PaymentToken, contract.Address)
	if err != nil {
		return nil, err
	}
	return &ContractView{Contract: *contract, Treasury: bal}, nil
}

func (s *ContractService) Pause(ctx context.Context, caller string, kind models.ContractKind) error {
	return s.setPaused(ctx, caller, kind, true)
}

func (s *ContractService) Unpause(ctx context.Context, caller string, kind models.ContractKind) error {
	return s.setPaused(ctx, caller, kind, false)
}

func (s *ContractService) setPaused(ctx context.Context, caller string, kind models.ContractKind, paused bool) error {
	_, err := s.chain.Execute(ctx, "setPaused", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), kind)
		if err != nil {
			return err
		}
		if err := requireOwner(contract, caller, "OwnableUnauthorizedAccount"); err != nil {
			return err
		}
		if contract.Paused == paused {
			if paused {
				return fail(ErrOperationPaused, "EnforcedPause")
			}
			return fail(ErrInvalidArgument, "ExpectedPause")
		}
		if err := tx.DB().Model(contract).Update("paused", paused).Error; err != nil {
			return err
		}
		name := "Unpaused"
		if paused {
			name = "Paused"
		}
		tx.Emit(contract.Address, contract.Kind, name, models.JSONB{"account": caller})
		return nil
	})
	return err
}

func (s *ContractService) TransferOwnership(ctx context.Context, caller string, kind models.ContractKind, newOwner string) error {
	newOwner, err := accountAddress(newOwner)
	if err != nil {
		return fail(ErrInvalidArgument, "OwnableInvalidOwner")
	}
	_, err = s.chain.Execute(ctx, "transferOwnership", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), kind)
		if err != nil {
			return err
		}
		if err := requireOwner(contract, caller, "OwnableUnauthorizedAccount"); err != nil {
			return err
		}
		previous := contract.Owner
		if err := tx.DB().Model(contract).Update("owner", newOwner).Error; err != nil {
			return err
		}
		tx.Emit(contract.Address, contract.Kind, "OwnershipTransferred", models.JSONB{
			"previousOwner": previous, "newOwner": newOwner,
		})
		return nil
	})
	return err
}
