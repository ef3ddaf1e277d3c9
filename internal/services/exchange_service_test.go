// internal/services/exchange_service_test.go
package services

import (
	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/utils"
)

func (suite *LedgerTestSuite) TestExchangeListingCount() {
	seller := suite.newAccount()

	count, err := suite.exchange.ListingCount(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(uint64(0), count)

	first, err := suite.exchange.ListItem(suite.ctx, seller, "https://assets.example/1", kpay("1"))
	suite.Require().NoError(err)
	suite.Equal(uint64(1), first.ItemID)

	count, err = suite.exchange.ListingCount(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(uint64(1), count)

	second, err := suite.exchange.ListItem(suite.ctx, seller, "https://assets.example/2", kpay("1"))
	suite.Require().NoError(err)
	suite.Equal(uint64(2), second.ItemID)

	count, err = suite.exchange.ListingCount(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(uint64(2), count)
}

func (suite *LedgerTestSuite) TestExchangeListItemValidation() {
	seller := suite.newAccount()

	_, err := suite.exchange.ListItem(suite.ctx, seller, "", kpay("1"))
	suite.ErrorIs(err, ErrInvalidArgument)
	suite.Equal("Asset link cannot be empty", Reason(err))

	_, err = suite.exchange.ListItem(suite.ctx, seller, "https://assets.example/1", models.Amount{})
	suite.ErrorIs(err, ErrInvalidArgument)
	suite.Equal("Price must be greater than 0", Reason(err))

	count, err := suite.exchange.ListingCount(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(uint64(0), count)
}

func (suite *LedgerTestSuite) TestExchangeBuyAsset() {
	seller, buyer := suite.newAccount(), suite.newAccount()
	listing, err := suite.exchange.ListItem(suite.ctx, seller, "https://assets.example/1", kpay("3"))
	suite.Require().NoError(err)
	suite.fund(buyer, "3")
	suite.approve(buyer, suite.deployment.Exchange, "3")

	sold, err := suite.exchange.BuyAsset(suite.ctx, buyer, listing.ItemID)
	suite.Require().NoError(err)
	suite.False(sold.IsListed)
	suite.Equal(buyer, sold.Buyer)

	suite.True(suite.balance(buyer).IsZero())
	suite.assertAmount("3", suite.balance(suite.deployment.Exchange))

	_, err = suite.exchange.BuyAsset(suite.ctx, buyer, listing.ItemID)
	suite.ErrorIs(err, ErrNotListed)
	suite.Equal("Asset is not listed", Reason(err))
}

func (suite *LedgerTestSuite) TestExchangeBuyUnknownListing() {
	_, err := suite.exchange.BuyAsset(suite.ctx, suite.newAccount(), 99)
	suite.ErrorIs(err, ErrNotListed)

	_, err = suite.exchange.GetListing(suite.ctx, 99)
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *LedgerTestSuite) TestExchangeBuyWithInsufficientBalance() {
	seller, buyer := suite.newAccount(), suite.newAccount()
	listing, err := suite.exchange.ListItem(suite.ctx, seller, "https://assets.example/1", kpay("3"))
	suite.Require().NoError(err)
	suite.fund(buyer, "1")
	suite.approve(buyer, suite.deployment.Exchange, "3")

	_, err = suite.exchange.BuyAsset(suite.ctx, buyer, listing.ItemID)
	suite.ErrorIs(err, ErrInsufficientBalance)

	allowance, err := suite.tokens.Allowance(suite.ctx, suite.deployment.Kpay, buyer, suite.deployment.Exchange)
	suite.Require().NoError(err)
	suite.assertAmount("3", allowance)
}

func (suite *LedgerTestSuite) TestExchangeSellerOnlyOperations() {
	seller, stranger := suite.newAccount(), suite.newAccount()
	listing, err := suite.exchange.ListItem(suite.ctx, seller, "https://assets.example/1", kpay("1"))
	suite.Require().NoError(err)

	err = suite.exchange.CancelListing(suite.ctx, stranger, listing.ItemID)
	suite.ErrorIs(err, ErrUnauthorized)
	suite.Equal("Only seller can perform this action", Reason(err))

	err = suite.exchange.UpdateListingPrice(suite.ctx, stranger, listing.ItemID, kpay("2"))
	suite.ErrorIs(err, ErrUnauthorized)

	suite.Require().NoError(suite.exchange.UpdateListingPrice(suite.ctx, seller, listing.ItemID, kpay("2")))
	suite.Require().NoError(suite.exchange.CancelListing(suite.ctx, seller, listing.ItemID))

	err = suite.exchange.CancelListing(suite.ctx, seller, listing.ItemID)
	suite.ErrorIs(err, ErrNotListed)

	all, total, err := suite.exchange.Listings(suite.ctx, ListingFilter{Seller: seller}, utils.DefaultPagination())
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.assertAmount("2", all[0].Price)
	suite.Equal("https://assets.example/1", all[0].AssetLink)
}

func (suite *LedgerTestSuite) TestExchangeWithdraw() {
	seller, buyer := suite.newAccount(), suite.newAccount()
	listing, err := suite.exchange.ListItem(suite.ctx, seller, "https://assets.example/1", kpay("1"))
	suite.Require().NoError(err)
	suite.fund(buyer, "1")
	suite.approve(buyer, suite.deployment.Exchange, "1")
	_, err = suite.exchange.BuyAsset(suite.ctx, buyer, listing.ItemID)
	suite.Require().NoError(err)

	err = suite.exchange.WithdrawKpay(suite.ctx, seller, kpay("1"))
	suite.ErrorIs(err, ErrUnauthorized)
	suite.Equal("Only owner can withdraw", Reason(err))

	suite.Require().NoError(suite.exchange.WithdrawKpay(suite.ctx, testAdmin, kpay("1")))
	suite.True(suite.balance(suite.deployment.Exchange).IsZero())

	err = suite.exchange.WithdrawKpay(suite.ctx, testAdmin, kpay("1"))
	suite.ErrorIs(err, ErrNothingToWithdraw)
}
