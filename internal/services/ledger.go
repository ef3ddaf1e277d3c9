// internal/services/ledger.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/kpay-backend/internal/models"
)

// Token ledger primitives. They run inside a commit and take the commit's
// handle; none of them locks on its own.

func findToken(db *gorm.DB, address string) (*models.Token, error) {
	var token models.Token
	if err := db.Where("address = ?", address).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(ErrNotFound, "unknown token "+address)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &token, nil
}

func balanceOf(db *gorm.DB, token, holder string) (models.Amount, error) {
	var row models.TokenBalance
	err := db.Where("token_address = ? AND holder = ?", token, holder).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Amount{}, nil
	}
	if err != nil {
		return models.Amount{}, fmt.Errorf("database error: %w", err)
	}
	return row.Amount, nil
}

func setBalance(db *gorm.DB, token, holder string, amount models.Amount) error {
	row := models.TokenBalance{TokenAddress: token, Holder: holder, Amount: amount}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_address"}, {Name: "holder"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&row).Error
}

func allowanceOf(db *gorm.DB, token, owner, spender string) (models.Amount, error) {
	var row models.TokenAllowance
	err := db.Where("token_address = ? AND owner = ? AND spender = ?", token, owner, spender).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Amount{}, nil
	}
	if err != nil {
		return models.Amount{}, fmt.Errorf("database error: %w", err)
	}
	return row.Amount, nil
}

func setAllowance(db *gorm.DB, token, owner, spender string, amount models.Amount) error {
	row := models.TokenAllowance{TokenAddress: token, Owner: owner, Spender: spender, Amount: amount}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_address"}, {Name: "owner"}, {Name: "spender"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&row).Error
}

func (t *Tx) transfer(token, from, to string, amount models.Amount) error {
	if to == models.ZeroAddress {
		return fail(ErrInvalidArgument, "ERC20: transfer to the zero address")
	}
	fromBal, err := balanceOf(t.db, token, from)
	if err != nil {
		return err
	}
	if fromBal.LessThan(amount) {
		return fail(ErrInsufficientBalance, "ERC20: transfer amount exceeds balance")
	}
	if from != to {
		toBal, err := balanceOf(t.db, token, to)
		if err != nil {
			return err
		}
		if err := setBalance(t.db, token, from, fromBal.Sub(amount)); err != nil {
			return err
		}
		if err := setBalance(t.db, token, to, toBal.Add(amount)); err != nil {
			return err
		}
	}
	t.Emit(token, models.ContractKindToken, "Transfer", models.JSONB{
		"from": from, "to": to, "value": amount.String(),
	})
	return nil
}

// transferFrom checks the allowance first, then the balance, and spends the
// allowance only when the transfer goes through.
func (t *Tx) transferFrom(token, spender, from, to string, amount models.Amount, reason string) error {
	allowed, err := allowanceOf(t.db, token, from, spender)
	if err != nil {
		return err
	}
	if allowed.LessThan(amount) {
		return fail(ErrInsufficientAllowance, reason)
	}
	if err := t.transfer(token, from, to, amount); err != nil {
		return err
	}
	return setAllowance(t.db, token, from, spender, allowed.Sub(amount))
}

func (t *Tx) approve(token, owner, spender string, amount models.Amount) error {
	if spender == models.ZeroAddress {
		return fail(ErrInvalidArgument, "ERC20: approve to the zero address")
	}
	if err := setAllowance(t.db, token, owner, spender, amount); err != nil {
		return err
	}
	t.Emit(token, models.ContractKindToken, "Approval", models.JSONB{
		"owner": owner, "spender": spender, "value": amount.String(),
	})
	return nil
}

func (t *Tx) mint(token *models.Token, to string, amount models.Amount) error {
	if to == models.ZeroAddress {
		return fail(ErrInvalidArgument, "ERC20: mint to the zero address")
	}
	if token.TotalSupply.Add(amount).Overflows() {
		return fail(ErrInvalidArgument, "ERC20: total supply overflow")
	}
	bal, err := balanceOf(t.db, token.Address, to)
	if err != nil {
		return err
	}
	if err := setBalance(t.db, token.Address, to, bal.Add(amount)); err != nil {
		return err
	}
	token.TotalSupply = token.TotalSupply.Add(amount)
	if err := t.db.Model(token).Update("total_supply", token.TotalSupply).Error; err != nil {
		return err
	}
	t.Emit(token.Address, models.ContractKindToken, "Transfer", models.JSONB{
		"from": models.ZeroAddress, "to": to, "value": amount.String(),
	})
	return nil
}

func (t *Tx) burn(token *models.Token, from string, amount models.Amount) error {
	bal, err := balanceOf(t.db, token.Address, from)
	if err != nil {
		return err
	}
	if bal.LessThan(amount) {
		return fail(ErrInsufficientBalance, "ERC20InsufficientBalance")
	}
	if err := setBalance(t.db, token.Address, from, bal.Sub(amount)); err != nil {
		return err
	}
	token.TotalSupply = token.TotalSupply.Sub(amount)
	if err := t.db.Model(token).Update("total_supply", token.TotalSupply).Error; err != nil {
		return err
	}
	t.Emit(token.Address, models.ContractKindToken, "Transfer", models.JSONB{
		"from": from, "to": models.ZeroAddress, "value": amount.String(),
	})
	return nil
}

// createToken deploys a new token record with the whole initial supply held
// by owner.
func (t *Tx) createToken(address, name, symbol string, decimals uint8, owner string, initialSupply models.Amount) (*models.Token, error) {
	token := &models.Token{
		Address:     address,
		Name:        name,
		Symbol:      symbol,
		Decimals:    decimals,
		TotalSupply: models.Amount{},
		Owner:       owner,
	}
	if err := t.db.Create(token).Error; err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}
	if !initialSupply.IsZero() {
		if err := t.mint(token, owner, initialSupply); err != nil {
			return nil, err
		}
	}
	return token, nil
}
