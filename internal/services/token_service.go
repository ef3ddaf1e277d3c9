// internal/services/token_service.go
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/models"
)

type TokenService struct {
	db    *gorm.DB
	chain *Chain
}

type TokenInfo struct {
	models.Token
	Holders int64 `json:"holders"`
}

func NewTokenService(db *gorm.DB, chain *Chain) *TokenService {
	return &TokenService{db: db, chain: chain}
}

func (s *TokenService) Get(ctx context.Context, address string) (*TokenInfo, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	token, err := findToken(db, address)
	if err != nil {
		return nil, err
	}
	var holders int64
	if err := db.Model(&models.TokenBalance{}).
		Where("token_address = ? AND amount <> ?", address, "0").
		Count(&holders).Error; err != nil {
		return nil, fmt.Errorf("failed to count holders: %w", err)
	}
	return &TokenInfo{Token: *token, Holders: holders}, nil
}

func (s *TokenService) BalanceOf(ctx context.Context, token, holder string) (models.Amount, error) {
	token, err := NormalizeAddress(token)
	if err != nil {
		return models.Amount{}, err
	}
	holder, err = NormalizeAddress(holder)
	if err != nil {
		return models.Amount{}, err
	}
	db := s.db.WithContext(ctx)
	if _, err := findToken(db, token); err != nil {
		return models.Amount{}, err
	}
	return balanceOf(db, token, holder)
}

func (s *TokenService) Allowance(ctx context.Context, token, owner, spender string) (models.Amount, error) {
	addrs, err := normalizeAll(token, owner, spender)
	if err != nil {
		return models.Amount{}, err
	}
	db := s.db.WithContext(ctx)
	if _, err := findToken(db, addrs[0]); err != nil {
		return models.Amount{}, err
	}
	return allowanceOf(db, addrs[0], addrs[1], addrs[2])
}

func (s *TokenService) TotalSupply(ctx context.Context, token string) (models.Amount, error) {
	info, err := s.Get(ctx, token)
	if err != nil {
		return models.Amount{}, err
	}
	return info.TotalSupply, nil
}

func (s *TokenService) Approve(ctx context.Context, caller, token, spender string, amount models.Amount) error {
	addrs, err := normalizeAll(token, spender)
	if err != nil {
		return err
	}
	_, err = s.chain.Execute(ctx, "approve", func(tx *Tx) error {
		if _, err := findToken(tx.DB(), addrs[0]); err != nil {
			return err
		}
		return tx.approve(addrs[0], caller, addrs[1], amount)
	})
	return err
}

func (s *TokenService) Transfer(ctx context.Context, caller, token, to string, amount models.Amount) error {
	addrs, err := normalizeAll(token, to)
	if err != nil {
		return err
	}
	_, err = s.chain.Execute(ctx, "transfer", func(tx *Tx) error {
		if _, err := findToken(tx.DB(), addrs[0]); err != nil {
			return err
		}
		return tx.transfer(addrs[0], caller, addrs[1], amount)
	})
	return err
}

func (s *TokenService) TransferFrom(ctx context.Context, caller, token, from, to string, amount models.Amount) error {
	addrs, err := normalizeAll(token, from, to)
	if err != nil {
		return err
	}
	_, err = s.chain.Execute(ctx, "transferFrom", func(tx *Tx) error {
		if _, err := findToken(tx.DB(), addrs[0]); err != nil {
			return err
		}
		return tx.transferFrom(addrs[0], caller, addrs[1], addrs[2], amount, "ERC20InsufficientAllowance")
	})
	return err
}

// Mint is restricted to the token's administrator.
func (s *TokenService) Mint(ctx context.Context, caller, token, to string, amount models.Amount) error {
	addrs, err := normalizeAll(token, to)
	if err != nil {
		return err
	}
	_, err = s.chain.Execute(ctx, "mint", func(tx *Tx) error {
		t, err := findToken(tx.DB(), addrs[0])
		if err != nil {
			return err
		}
		if t.Owner != caller {
			return fail(ErrUnauthorized, "OwnableUnauthorizedAccount")
		}
		return tx.mint(t, addrs[1], amount)
	})
	return err
}

func (s *TokenService) Burn(ctx context.Context, caller, token string, amount models.Amount) error {
	token, err := NormalizeAddress(token)
	if err != nil {
		return err
	}
	_, err = s.chain.Execute(ctx, "burn", func(tx *Tx) error {
		t, err := findToken(tx.DB(), token)
		if err != nil {
			return err
		}
		return tx.burn(t, caller, amount)
	})
	return err
}

func normalizeAll(addrs ...string) ([]string, error) {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		n, err := NormalizeAddress(a)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
