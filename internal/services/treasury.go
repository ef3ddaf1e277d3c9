// internal/services/treasury.go
package services

import (
	"context"

	"github.com/javajoker/kpay-backend/internal/models"
)

// The treasury of a contract is nothing more than the contract's own balance
// of its payment token.

func (t *Tx) withdrawAmount(contract *models.Contract, amount models.Amount) error {
	if amount.IsZero() {
		return fail(ErrInvalidArgument, "Amount must be greater than 0")
	}
	bal, err := balanceOf(t.db, contract.PaymentToken, contract.Address)
	if err != nil {
		return err
	}
	if bal.IsZero() {
		return fail(ErrNothingToWithdraw, "No KPAY to withdraw")
	}
	if bal.LessThan(amount) {
		return fail(ErrInsufficientFunds, "Insufficient KPAY balance")
	}
	if err := t.transfer(contract.PaymentToken, contract.Address, contract.Owner, amount); err != nil {
		return err
	}
	t.Emit(contract.Address, contract.Kind, "KpayWithdrawn", models.JSONB{
		"to": contract.Owner, "amount": amount.String(),
	})
	return nil
}

func (t *Tx) withdrawAll(contract *models.Contract) (models.Amount, error) {
	bal, err := balanceOf(t.db, contract.PaymentToken, contract.Address)
	if err != nil {
		return models.Amount{}, err
	}
	if bal.IsZero() {
		return models.Amount{}, fail(ErrNothingToWithdraw, "No fees to withdraw")
	}
	if err := t.transfer(contract.PaymentToken, contract.Address, contract.Owner, bal); err != nil {
		return models.Amount{}, err
	}
	t.Emit(contract.Address, contract.Kind, "FeesWithdrawn", models.JSONB{
		"to": contract.Owner, "amount": bal.String(),
	})
	return bal, nil
}

// TreasuryBalance reads the accumulated payment-token balance of a contract.
func (s *ContractService) TreasuryBalance(ctx context.Context, kind models.ContractKind) (models.Amount, error) {
	view, err := s.Get(ctx, kind)
	if err != nil {
		return models.Amount{}, err
	}
	return view.Treasury, nil
}
