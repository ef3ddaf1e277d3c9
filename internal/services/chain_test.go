// internal/services/chain_test.go
package services

import (
	"errors"

	"github.com/javajoker/kpay-backend/internal/config"
	"github.com/javajoker/kpay-backend/internal/models"
)

func (suite *LedgerTestSuite) TestDeployCreatesKpayAndContracts() {
	d := suite.deployment
	suite.Equal(DeriveAddress(testAdmin, 0), d.Kpay)
	suite.Equal(DeriveAddress(testAdmin, 1), d.Marketplace)
	suite.Equal(DeriveAddress(testAdmin, 4), d.Scheduler)

	info, err := suite.tokens.Get(suite.ctx, d.Kpay)
	suite.Require().NoError(err)
	suite.Equal("KPAY", info.Symbol)
	suite.Equal(uint8(18), info.Decimals)
	suite.assertAmount("10000", info.TotalSupply)
	suite.assertAmount("10000", suite.balance(testAdmin))

	views, err := suite.contracts.List(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(views, 4)
	for _, v := range views {
		suite.Equal(testAdmin, v.Owner)
		suite.Equal(d.Kpay, v.PaymentToken)
		suite.True(v.Treasury.IsZero())
	}
}

func (suite *LedgerTestSuite) TestDeployIsIdempotent() {
	before := suite.eventCount()

	again, err := Deploy(suite.ctx, suite.chain, config.LedgerConfig{InitialSupply: kpay("1")}, testAdmin)
	suite.Require().NoError(err)

	suite.Equal(suite.deployment, again)
	suite.Equal(before, suite.eventCount())
	suite.assertAmount("10000", suite.balance(testAdmin))
}

func (suite *LedgerTestSuite) TestEventSequenceIsGlobalAndOrdered() {
	alice := suite.newAccount()
	suite.fund(alice, "5")
	_, err := suite.marketplace.CreateNFT(suite.ctx, alice, "ipfs://a")
	suite.Require().NoError(err)

	var events []models.ContractEvent
	suite.Require().NoError(suite.db.Order("sequence asc").Find(&events).Error)
	suite.Require().NotEmpty(events)
	for i, e := range events {
		suite.Equal(uint64(i+1), e.Sequence)
	}
	last := events[len(events)-1]
	suite.Equal("Transfer", last.Name)
	suite.Equal(models.ContractKindMarketplace, last.ContractKind)
}

func (suite *LedgerTestSuite) TestFailedCommitLeavesNoTrace() {
	alice := suite.newAccount()
	before := suite.eventCount()
	published := len(suite.publisher.names())

	_, err := suite.chain.Execute(suite.ctx, "test", func(tx *Tx) error {
		if err := tx.transfer(suite.deployment.Kpay, testAdmin, alice, kpay("1")); err != nil {
			return err
		}
		return fail(ErrInvalidArgument, "abort")
	})
	suite.Require().ErrorIs(err, ErrInvalidArgument)

	suite.True(suite.balance(alice).IsZero())
	suite.assertAmount("10000", suite.balance(testAdmin))
	suite.Equal(before, suite.eventCount())
	suite.Len(suite.publisher.names(), published)
}

func (suite *LedgerTestSuite) TestPublishFailureDoesNotUndoCommit() {
	alice := suite.newAccount()
	suite.publisher.err = errors.New("broker down")

	suite.fund(alice, "1")

	suite.assertAmount("1", suite.balance(alice))
	suite.Contains(suite.publisher.names(), "Transfer")
}
