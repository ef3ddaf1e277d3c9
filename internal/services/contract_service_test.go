// internal/services/contract_service_test.go
package services

import (
	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/utils"
)

func (suite *LedgerTestSuite) TestPauseAndUnpause() {
	kind := models.ContractKindMarketplace
	creator := suite.newAccount()

	suite.Require().NoError(suite.contracts.Pause(suite.ctx, testAdmin, kind))
	view, err := suite.contracts.Get(suite.ctx, kind)
	suite.Require().NoError(err)
	suite.True(view.Paused)

	err = suite.contracts.Pause(suite.ctx, testAdmin, kind)
	suite.ErrorIs(err, ErrOperationPaused)
	suite.Equal("EnforcedPause", Reason(err))

	_, err = suite.marketplace.CreateNFT(suite.ctx, creator, "ipfs://paused")
	suite.ErrorIs(err, ErrOperationPaused)

	suite.Require().NoError(suite.contracts.Unpause(suite.ctx, testAdmin, kind))
	err = suite.contracts.Unpause(suite.ctx, testAdmin, kind)
	suite.ErrorIs(err, ErrInvalidArgument)
	suite.Equal("ExpectedPause", Reason(err))

	_, err = suite.marketplace.CreateNFT(suite.ctx, creator, "ipfs://unpaused")
	suite.NoError(err)
}

func (suite *LedgerTestSuite) TestPauseDoesNotBlockSettlement() {
	seller, buyer := suite.newAccount(), suite.newAccount()
	id := suite.listed(seller, "1")
	suite.fund(buyer, "1")
	suite.approve(buyer, suite.deployment.Marketplace, "1")

	suite.Require().NoError(suite.contracts.Pause(suite.ctx, testAdmin, models.ContractKindMarketplace))
	_, err := suite.marketplace.BuyNFT(suite.ctx, buyer, id)
	suite.NoError(err)
}

func (suite *LedgerTestSuite) TestPauseRequiresOwner() {
	err := suite.contracts.Pause(suite.ctx, suite.newAccount(), models.ContractKindExchange)
	suite.ErrorIs(err, ErrUnauthorized)
	suite.Equal("OwnableUnauthorizedAccount", Reason(err))
}

func (suite *LedgerTestSuite) TestTransferOwnership() {
	kind := models.ContractKindExchange
	next := suite.newAccount()

	err := suite.contracts.TransferOwnership(suite.ctx, testAdmin, kind, models.ZeroAddress)
	suite.ErrorIs(err, ErrInvalidArgument)
	suite.Equal("OwnableInvalidOwner", Reason(err))

	suite.Require().NoError(suite.contracts.TransferOwnership(suite.ctx, testAdmin, kind, next))

	view, err := suite.contracts.Get(suite.ctx, kind)
	suite.Require().NoError(err)
	suite.Equal(next, view.Owner)

	err = suite.contracts.Pause(suite.ctx, testAdmin, kind)
	suite.ErrorIs(err, ErrUnauthorized)
	suite.NoError(suite.contracts.Pause(suite.ctx, next, kind))
}

func (suite *LedgerTestSuite) TestContractListAndTreasury() {
	views, err := suite.contracts.List(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(views, 4)
	for _, v := range views {
		suite.Equal(suite.deployment.Kpay, v.PaymentToken)
		suite.True(v.Treasury.IsZero())
	}

	seller, buyer := suite.newAccount(), suite.newAccount()
	id := suite.listed(seller, "2")
	suite.fund(buyer, "2")
	suite.approve(buyer, suite.deployment.Marketplace, "2")
	_, err = suite.marketplace.BuyNFT(suite.ctx, buyer, id)
	suite.Require().NoError(err)

	treasury, err := suite.contracts.TreasuryBalance(suite.ctx, models.ContractKindMarketplace)
	suite.Require().NoError(err)
	suite.assertAmount("2", treasury)
}

func (suite *LedgerTestSuite) TestParseContractKind() {
	kind, err := ParseContractKind("token_factory")
	suite.Require().NoError(err)
	suite.Equal(models.ContractKindFactory, kind)

	_, err = ParseContractKind("token")
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *LedgerTestSuite) TestEventsFilter() {
	seller := suite.newAccount()
	suite.listed(seller, "1")
	suite.listed(seller, "1")

	all, total, err := suite.events.Events(suite.ctx, EventFilter{}, utils.DefaultPagination())
	suite.Require().NoError(err)
	suite.Equal(suite.eventCount(), total)
	for i := 1; i < len(all); i++ {
		suite.Less(all[i-1].Sequence, all[i].Sequence)
	}

	listed, total, err := suite.events.Events(suite.ctx, EventFilter{Name: "NFTListed"}, utils.DefaultPagination())
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Equal(suite.deployment.Marketplace, listed[0].Contract)

	later, total, err := suite.events.Events(suite.ctx, EventFilter{Name: "NFTListed", After: listed[0].Sequence}, utils.DefaultPagination())
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(listed[1].Sequence, later[0].Sequence)

	scoped, _, err := suite.events.Events(suite.ctx, EventFilter{Contract: suite.deployment.Factory}, utils.DefaultPagination())
	suite.Require().NoError(err)
	suite.Require().Len(scoped, 1)
	suite.Equal("OwnershipTransferred", scoped[0].Name)

	_, _, err = suite.events.Events(suite.ctx, EventFilter{Contract: "nope"}, utils.DefaultPagination())
	suite.Error(err)
}
