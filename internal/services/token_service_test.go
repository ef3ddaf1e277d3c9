// internal/services/token_service_test.go
package services

import (
	"github.com/javajoker/kpay-backend/internal/models"
)

func (suite *LedgerTestSuite) TestTransferMovesBalance() {
	alice := suite.newAccount()

	suite.fund(alice, "2.5")

	suite.assertAmount("2.5", suite.balance(alice))
	suite.assertAmount("9997.5", suite.balance(testAdmin))
}

func (suite *LedgerTestSuite) TestTransferExceedingBalance() {
	alice, bob := suite.newAccount(), suite.newAccount()
	suite.fund(alice, "1")

	err := suite.tokens.Transfer(suite.ctx, alice, suite.deployment.Kpay, bob, kpay("2"))
	suite.ErrorIs(err, ErrInsufficientBalance)
	suite.Equal("ERC20: transfer amount exceeds balance", Reason(err))
	suite.assertAmount("1", suite.balance(alice))
}

func (suite *LedgerTestSuite) TestTransferToZeroAddress() {
	err := suite.tokens.Transfer(suite.ctx, testAdmin, suite.deployment.Kpay, "0x0000000000000000000000000000000000000000", kpay("1"))
	suite.ErrorIs(err, ErrInvalidArgument)
}

func (suite *LedgerTestSuite) TestTransferFromSpendsAllowance() {
	alice, spender, bob := suite.newAccount(), suite.newAccount(), suite.newAccount()
	suite.fund(alice, "10")
	suite.approve(alice, spender, "4")

	err := suite.tokens.TransferFrom(suite.ctx, spender, suite.deployment.Kpay, alice, bob, kpay("3"))
	suite.Require().NoError(err)

	allowance, err := suite.tokens.Allowance(suite.ctx, suite.deployment.Kpay, alice, spender)
	suite.Require().NoError(err)
	suite.assertAmount("1", allowance)
	suite.assertAmount("3", suite.balance(bob))

	err = suite.tokens.TransferFrom(suite.ctx, spender, suite.deployment.Kpay, alice, bob, kpay("2"))
	suite.ErrorIs(err, ErrInsufficientAllowance)
	suite.Equal("ERC20InsufficientAllowance", Reason(err))
}

func (suite *LedgerTestSuite) TestApproveOverwrites() {
	alice, spender := suite.newAccount(), suite.newAccount()
	suite.approve(alice, spender, "5")
	suite.approve(alice, spender, "2")

	allowance, err := suite.tokens.Allowance(suite.ctx, suite.deployment.Kpay, alice, spender)
	suite.Require().NoError(err)
	suite.assertAmount("2", allowance)
}

func (suite *LedgerTestSuite) TestMintAndBurn() {
	alice := suite.newAccount()

	err := suite.tokens.Mint(suite.ctx, alice, suite.deployment.Kpay, alice, kpay("1"))
	suite.ErrorIs(err, ErrUnauthorized)

	suite.Require().NoError(suite.tokens.Mint(suite.ctx, testAdmin, suite.deployment.Kpay, alice, kpay("5")))
	supply, err := suite.tokens.TotalSupply(suite.ctx, suite.deployment.Kpay)
	suite.Require().NoError(err)
	suite.assertAmount("10005", supply)

	suite.Require().NoError(suite.tokens.Burn(suite.ctx, alice, suite.deployment.Kpay, kpay("2")))
	suite.assertAmount("3", suite.balance(alice))

	err = suite.tokens.Burn(suite.ctx, alice, suite.deployment.Kpay, kpay("4"))
	suite.ErrorIs(err, ErrInsufficientBalance)
	suite.Equal("ERC20InsufficientBalance", Reason(err))

	supply, err = suite.tokens.TotalSupply(suite.ctx, suite.deployment.Kpay)
	suite.Require().NoError(err)
	suite.assertAmount("10003", supply)
}

func (suite *LedgerTestSuite) TestUnknownToken() {
	_, err := suite.tokens.Get(suite.ctx, suite.newAccount())
	suite.ErrorIs(err, ErrNotFound)

	_, err = suite.tokens.BalanceOf(suite.ctx, "nope", testAdmin)
	suite.ErrorIs(err, ErrInvalidArgument)
}

func (suite *LedgerTestSuite) TestTokenHolders() {
	suite.fund(suite.newAccount(), "1")

	info, err := suite.tokens.Get(suite.ctx, suite.deployment.Kpay)
	suite.Require().NoError(err)
	suite.Equal(int64(2), info.Holders)
}

func (suite *LedgerTestSuite) TestTokenHoldersCountFailure() {
	suite.Require().NoError(suite.db.Migrator().DropTable(&models.TokenBalance{}))

	_, err := suite.tokens.Get(suite.ctx, suite.deployment.Kpay)
	suite.Error(err)
}

func (suite *LedgerTestSuite) TestMintBeyondMaxSupply() {
	headroom := models.MaxAmount.Sub(kpay("10000"))
	suite.Require().NoError(suite.tokens.Mint(suite.ctx, testAdmin, suite.deployment.Kpay, testAdmin, headroom))

	err := suite.tokens.Mint(suite.ctx, testAdmin, suite.deployment.Kpay, testAdmin, models.NewAmount(1))
	suite.ErrorIs(err, ErrInvalidArgument)
	suite.Equal("ERC20: total supply overflow", Reason(err))

	supply, err := suite.tokens.TotalSupply(suite.ctx, suite.deployment.Kpay)
	suite.Require().NoError(err)
	suite.Equal(models.MaxAmount.String(), supply.String())
}
