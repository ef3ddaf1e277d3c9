// internal/services/marketplace_service_test.go
package services

import (
	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/utils"
)

// listed mints an NFT to seller and lists it at price.
func (suite *LedgerTestSuite) listed(seller, price string) uint64 {
	nft, err := suite.marketplace.CreateNFT(suite.ctx, seller, "ipfs://QmToken")
	suite.Require().NoError(err)
	_, err = suite.marketplace.ListItem(suite.ctx, seller, nft.TokenID, kpay(price))
	suite.Require().NoError(err)
	return nft.TokenID
}

func (suite *LedgerTestSuite) TestCreateNFTAssignsSequentialIDs() {
	alice := suite.newAccount()

	first, err := suite.marketplace.CreateNFT(suite.ctx, alice, "ipfs://one")
	suite.Require().NoError(err)
	second, err := suite.marketplace.CreateNFT(suite.ctx, alice, "ipfs://two")
	suite.Require().NoError(err)

	suite.Equal(uint64(1), first.TokenID)
	suite.Equal(uint64(2), second.TokenID)

	owner, err := suite.marketplace.OwnerOf(suite.ctx, 2)
	suite.Require().NoError(err)
	suite.Equal(alice, owner)

	uri, err := suite.marketplace.TokenURI(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal("ipfs://one", uri)

	nfts, total, err := suite.marketplace.AssetsOf(suite.ctx, alice, utils.DefaultPagination())
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(nfts, 2)
}

func (suite *LedgerTestSuite) TestCreateNFTRejectsEmptyURI() {
	_, err := suite.marketplace.CreateNFT(suite.ctx, suite.newAccount(), "")
	suite.ErrorIs(err, ErrInvalidArgument)
	suite.Equal("Empty token URI", Reason(err))

	// only the empty string is rejected
	nft, err := suite.marketplace.CreateNFT(suite.ctx, suite.newAccount(), "  ")
	suite.Require().NoError(err)
	suite.Equal("  ", nft.URI)
}

func (suite *LedgerTestSuite) TestUnknownNFT() {
	_, err := suite.marketplace.OwnerOf(suite.ctx, 42)
	suite.ErrorIs(err, ErrNotFound)
	suite.Equal("ERC721NonexistentToken(42)", Reason(err))
}

func (suite *LedgerTestSuite) TestBuyNFT() {
	seller, buyer := suite.newAccount(), suite.newAccount()
	id := suite.listed(seller, "1")
	suite.fund(buyer, "2")
	suite.approve(buyer, suite.deployment.Marketplace, "1")

	sold, err := suite.marketplace.BuyNFT(suite.ctx, buyer, id)
	suite.Require().NoError(err)
	suite.False(sold.IsListed)
	suite.Equal(buyer, sold.Buyer)

	suite.assertAmount("1", suite.balance(buyer))
	suite.assertAmount("1", suite.balance(suite.deployment.Marketplace))
	suite.True(suite.balance(seller).IsZero())

	owner, err := suite.marketplace.OwnerOf(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Equal(buyer, owner)

	suite.Contains(suite.publisher.names(), "NFTSold")
}

func (suite *LedgerTestSuite) TestBuyNFTPaysSellerUnderSellerPolicy() {
	suite.Require().NoError(suite.db.Model(&models.Contract{}).
		Where("kind = ?", models.ContractKindMarketplace).
		Update("proceeds_policy", models.ProceedsSeller).Error)

	seller, buyer := suite.newAccount(), suite.newAccount()
	id := suite.listed(seller, "1")
	suite.fund(buyer, "1")
	suite.approve(buyer, suite.deployment.Marketplace, "1")

	_, err := suite.marketplace.BuyNFT(suite.ctx, buyer, id)
	suite.Require().NoError(err)

	suite.assertAmount("1", suite.balance(seller))
	suite.True(suite.balance(suite.deployment.Marketplace).IsZero())
}

func (suite *LedgerTestSuite) TestBuyNFTWithoutAllowanceChangesNothing() {
	seller, buyer := suite.newAccount(), suite.newAccount()
	id := suite.listed(seller, "1")
	suite.fund(buyer, "2")
	before := suite.eventCount()

	_, err := suite.marketplace.BuyNFT(suite.ctx, buyer, id)
	suite.ErrorIs(err, ErrInsufficientAllowance)
	suite.Equal("Insufficient allowance", Reason(err))

	suite.assertAmount("2", suite.balance(buyer))
	suite.Equal(before, suite.eventCount())
	listing, err := suite.marketplace.GetListing(suite.ctx, id)
	suite.Require().NoError(err)
	suite.True(listing.IsListed)
}

func (suite *LedgerTestSuite) TestBuyNFTEdgeCases() {
	seller, buyer := suite.newAccount(), suite.newAccount()
	nft, err := suite.marketplace.CreateNFT(suite.ctx, seller, "ipfs://x")
	suite.Require().NoError(err)

	_, err = suite.marketplace.BuyNFT(suite.ctx, buyer, nft.TokenID)
	suite.ErrorIs(err, ErrNotListed)
	suite.Equal("Not listed", Reason(err))

	_, err = suite.marketplace.ListItem(suite.ctx, seller, nft.TokenID, kpay("1"))
	suite.Require().NoError(err)

	// a seller may buy back its own listing like any other buyer
	suite.fund(seller, "1")
	suite.approve(seller, suite.deployment.Marketplace, "1")
	sold, err := suite.marketplace.BuyNFT(suite.ctx, seller, nft.TokenID)
	suite.Require().NoError(err)
	suite.False(sold.IsListed)

	owner, err := suite.marketplace.OwnerOf(suite.ctx, nft.TokenID)
	suite.Require().NoError(err)
	suite.Equal(seller, owner)
	suite.assertAmount("1", suite.balance(suite.deployment.Marketplace))
}

func (suite *LedgerTestSuite) TestBuyAfterSellerTransferFails() {
	seller, other, buyer := suite.newAccount(), suite.newAccount(), suite.newAccount()
	id := suite.listed(seller, "1")
	suite.Require().NoError(suite.marketplace.TransferNFT(suite.ctx, seller, id, other))

	suite.fund(buyer, "1")
	suite.approve(buyer, suite.deployment.Marketplace, "1")

	_, err := suite.marketplace.BuyNFT(suite.ctx, buyer, id)
	suite.ErrorIs(err, ErrUnauthorized)
	suite.Equal("Seller no longer holds asset", Reason(err))
	suite.assertAmount("1", suite.balance(buyer))

	owner, err := suite.marketplace.OwnerOf(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Equal(other, owner)
}

func (suite *LedgerTestSuite) TestListItemRules() {
	seller, stranger := suite.newAccount(), suite.newAccount()
	nft, err := suite.marketplace.CreateNFT(suite.ctx, seller, "ipfs://x")
	suite.Require().NoError(err)

	_, err = suite.marketplace.ListItem(suite.ctx, seller, nft.TokenID, models.Amount{})
	suite.ErrorIs(err, ErrInvalidArgument)
	suite.Equal("Price must be > 0", Reason(err))

	_, err = suite.marketplace.ListItem(suite.ctx, stranger, nft.TokenID, kpay("1"))
	suite.ErrorIs(err, ErrUnauthorized)
	suite.Equal("Not owner", Reason(err))

	_, err = suite.marketplace.ListItem(suite.ctx, seller, nft.TokenID, kpay("1"))
	suite.Require().NoError(err)

	_, err = suite.marketplace.ListItem(suite.ctx, seller, nft.TokenID, kpay("2"))
	suite.ErrorIs(err, ErrAlreadyListed)
	suite.Equal("Already listed", Reason(err))
}

func (suite *LedgerTestSuite) TestCancelListingTwice() {
	seller := suite.newAccount()
	id := suite.listed(seller, "1")

	suite.Require().NoError(suite.marketplace.CancelListing(suite.ctx, seller, id))

	err := suite.marketplace.CancelListing(suite.ctx, seller, id)
	suite.ErrorIs(err, ErrNotListed)

	listing, err := suite.marketplace.GetListing(suite.ctx, id)
	suite.Require().NoError(err)
	suite.False(listing.IsListed)
	suite.Equal(seller, listing.Seller)
}

func (suite *LedgerTestSuite) TestCancelListingByStranger() {
	id := suite.listed(suite.newAccount(), "1")

	err := suite.marketplace.CancelListing(suite.ctx, suite.newAccount(), id)
	suite.ErrorIs(err, ErrUnauthorized)
	suite.Equal("Not owner", Reason(err))
}

func (suite *LedgerTestSuite) TestUpdateListingPrice() {
	seller := suite.newAccount()
	id := suite.listed(seller, "1")

	err := suite.marketplace.UpdateListingPrice(suite.ctx, seller, id, models.Amount{})
	suite.ErrorIs(err, ErrInvalidArgument)

	suite.Require().NoError(suite.marketplace.UpdateListingPrice(suite.ctx, seller, id, kpay("3")))
	listing, err := suite.marketplace.GetListing(suite.ctx, id)
	suite.Require().NoError(err)
	suite.assertAmount("3", listing.Price)
	suite.Contains(suite.publisher.names(), "NFTPriceUpdated")
}

func (suite *LedgerTestSuite) TestRelistAfterSale() {
	seller, buyer := suite.newAccount(), suite.newAccount()
	id := suite.listed(seller, "1")
	suite.fund(buyer, "1")
	suite.approve(buyer, suite.deployment.Marketplace, "1")
	_, err := suite.marketplace.BuyNFT(suite.ctx, buyer, id)
	suite.Require().NoError(err)

	listing, err := suite.marketplace.ListItem(suite.ctx, buyer, id, kpay("5"))
	suite.Require().NoError(err)
	suite.Equal(buyer, listing.Seller)
	suite.Empty(listing.Buyer)

	active, total, err := suite.marketplace.Listings(suite.ctx, ListingFilter{ActiveOnly: true}, utils.DefaultPagination())
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(buyer, active[0].Seller)
}

func (suite *LedgerTestSuite) TestMarketplaceWithdraw() {
	seller, buyer := suite.newAccount(), suite.newAccount()

	err := suite.marketplace.WithdrawKpay(suite.ctx, testAdmin, kpay("1"))
	suite.ErrorIs(err, ErrNothingToWithdraw)

	id := suite.listed(seller, "2")
	suite.fund(buyer, "2")
	suite.approve(buyer, suite.deployment.Marketplace, "2")
	_, err = suite.marketplace.BuyNFT(suite.ctx, buyer, id)
	suite.Require().NoError(err)

	err = suite.marketplace.WithdrawKpay(suite.ctx, seller, kpay("1"))
	suite.ErrorIs(err, ErrUnauthorized)
	suite.Equal("OwnableUnauthorizedAccount", Reason(err))

	err = suite.marketplace.WithdrawKpay(suite.ctx, testAdmin, kpay("3"))
	suite.ErrorIs(err, ErrInsufficientFunds)

	err = suite.marketplace.WithdrawKpay(suite.ctx, testAdmin, models.Amount{})
	suite.ErrorIs(err, ErrInvalidArgument)

	suite.Require().NoError(suite.marketplace.WithdrawKpay(suite.ctx, testAdmin, kpay("1.5")))
	suite.assertAmount("0.5", suite.balance(suite.deployment.Marketplace))
	suite.assertAmount("9999.5", suite.balance(testAdmin))
}
