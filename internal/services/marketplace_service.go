// internal/services/marketplace_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/utils"
)

// MarketplaceService is the NFT marketplace: an asset registry that mints
// sequentially numbered NFTs plus a listing ledger keyed by token id.
type MarketplaceService struct {
	db    *gorm.DB
	chain *Chain
}

type NFTView struct {
	models.NFT
	Listing *models.Listing `json:"listing,omitempty"`
}

var marketplaceRules = listingRules{
	kind:           models.ContractKindMarketplace,
	notSeller:      "Not owner",
	zeroPrice:      "Price must be > 0",
	notListed:      "Not listed",
	cancelledEvent: "NFTListingCancelled",
	priceEvent:     "NFTPriceUpdated",
	soldEvent:      "NFTSold",
	itemArg:        "tokenId",
}

func NewMarketplaceService(db *gorm.DB, chain *Chain) *MarketplaceService {
	return &MarketplaceService{db: db, chain: chain}
}

func findNFT(db *gorm.DB, contract string, id uint64) (*models.NFT, error) {
	var nft models.NFT
	if err := db.Where("contract = ? AND token_id = ?", contract, id).Take(&nft).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(ErrNotFound, fmt.Sprintf("ERC721NonexistentToken(%d)", id))
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &nft, nil
}

// CreateNFT mints the next token id to caller.
func (s *MarketplaceService) CreateNFT(ctx context.Context, caller, uri string) (*models.NFT, error) {
	if uri == "" {
		return nil, fail(ErrInvalidArgument, "Empty token URI")
	}

	var nft *models.NFT
	_, err := s.chain.Execute(ctx, "createNFT", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), models.ContractKindMarketplace)
		if err != nil {
			return err
		}
		if err := requireNotPaused(contract); err != nil {
			return err
		}
		id, err := nextID(tx.DB(), contract)
		if err != nil {
			return err
		}
		nft = &models.NFT{
			Contract: contract.Address,
			TokenID:  id,
			URI:      uri,
			Holder:   caller,
			Minter:   caller,
		}
		if err := tx.DB().Create(nft).Error; err != nil {
			return fmt.Errorf("failed to mint NFT: %w", err)
		}
		tx.Emit(contract.Address, contract.Kind, "Transfer", models.JSONB{
			"from": models.ZeroAddress, "to": caller, "tokenId": id,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nft, nil
}

func (s *MarketplaceService) GetNFT(ctx context.Context, id uint64) (*NFTView, error) {
	db := s.db.WithContext(ctx)
	contract, err := loadContract(db, models.ContractKindMarketplace)
	if err != nil {
		return nil, err
	}
	nft, err := findNFT(db, contract.Address, id)
	if err != nil {
		return nil, err
	}
	listing, err := findListing(db, contract.Address, id)
	if err != nil {
		return nil, err
	}
	return &NFTView{NFT: *nft, Listing: listing}, nil
}

func (s *MarketplaceService) OwnerOf(ctx context.Context, id uint64) (string, error) {
	view, err := s.GetNFT(ctx, id)
	if err != nil {
		return "", err
	}
	return view.Holder, nil
}

func (s *MarketplaceService) TokenURI(ctx context.Context, id uint64) (string, error) {
	view, err := s.GetNFT(ctx, id)
	if err != nil {
		return "", err
	}
	return view.URI, nil
}

func (s *MarketplaceService) AssetsOf(ctx context.Context, holder string, params utils.PaginationParams) ([]models.NFT, int64, error) {
	holder, err := NormalizeAddress(holder)
	if err != nil {
		return nil, 0, err
	}
	db := s.db.WithContext(ctx)
	contract, err := loadContract(db, models.ContractKindMarketplace)
	if err != nil {
		return nil, 0, err
	}

	query := db.Model(&models.NFT{}).Where("contract = ? AND holder = ?", contract.Address, holder)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count NFTs: %w", err)
	}

	var nfts []models.NFT
	query = utils.ApplySort(query, params, []string{"token_id", "created_at", "updated_at"})
	if err := utils.ApplyPagination(query, params).Find(&nfts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get NFTs: %w", err)
	}
	return nfts, total, nil
}

// TransferNFT moves holdership. An active listing stays in place; buying it
// fails until the seller holds the asset again.
func (s *MarketplaceService) TransferNFT(ctx context.Context, caller string, id uint64, to string) error {
	to, err := accountAddress(to)
	if err != nil {
		return fail(ErrInvalidArgument, "ERC721InvalidReceiver")
	}
	_, err = s.chain.Execute(ctx, "transferNFT", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), models.ContractKindMarketplace)
		if err != nil {
			return err
		}
		nft, err := findNFT(tx.DB(), contract.Address, id)
		if err != nil {
			return err
		}
		if nft.Holder != caller {
			return fail(ErrUnauthorized, "ERC721InsufficientApproval")
		}
		return tx.moveNFT(contract, nft, to)
	})
	return err
}

func (t *Tx) moveNFT(contract *models.Contract, nft *models.NFT, to string) error {
	from := nft.Holder
	if err := t.db.Model(nft).Update("holder", to).Error; err != nil {
		return err
	}
	t.Emit(contract.Address, contract.Kind, "Transfer", models.JSONB{
		"from": from, "to": to, "tokenId": nft.TokenID,
	})
	return nil
}

func (s *MarketplaceService) ListItem(ctx context.Context, caller string, id uint64, price models.Amount) (*models.Listing, error) {
	var listing *models.Listing
	_, err := s.chain.Execute(ctx, "listItem", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), models.ContractKindMarketplace)
		if err != nil {
			return err
		}
		nft, err := findNFT(tx.DB(), contract.Address, id)
		if err != nil {
			return err
		}
		if nft.Holder != caller {
			return fail(ErrUnauthorized, "Not owner")
		}
		if price.IsZero() {
			return fail(ErrInvalidArgument, "Price must be > 0")
		}
		existing, err := findListing(tx.DB(), contract.Address, id)
		if err != nil {
			return err
		}
		if existing != nil && existing.IsListed {
			return fail(ErrAlreadyListed, "Already listed")
		}

		if existing == nil {
			listing = &models.Listing{Contract: contract.Address, ItemID: id}
		} else {
			listing = existing
		}
		listing.Seller = caller
		listing.Price = price
		listing.IsListed = true
		listing.Buyer = ""
		if err := tx.DB().Save(listing).Error; err != nil {
			return fmt.Errorf("failed to save listing: %w", err)
		}

		tx.Emit(contract.Address, contract.Kind, "NFTListed", models.JSONB{
			"tokenId": id, "seller": caller, "price": price.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *MarketplaceService) CancelListing(ctx context.Context, caller string, id uint64) error {
	_, err := s.chain.Execute(ctx, "cancelListing", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), models.ContractKindMarketplace)
		if err != nil {
			return err
		}
		return tx.cancelListing(marketplaceRules, contract, id, caller)
	})
	return err
}

func (s *MarketplaceService) UpdateListingPrice(ctx context.Context, caller string, id uint64, price models.Amount) error {
	_, err := s.chain.Execute(ctx, "updateListingPrice", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), models.ContractKindMarketplace)
		if err != nil {
			return err
		}
		return tx.updateListingPrice(marketplaceRules, contract, id, caller, price)
	})
	return err
}

// BuyNFT settles an active listing: the buyer pays through the marketplace
// allowance and receives the token.
func (s *MarketplaceService) BuyNFT(ctx context.Context, caller string, id uint64) (*models.Listing, error) {
	var sold *models.Listing
	_, err := s.chain.Execute(ctx, "buyNFT", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), models.ContractKindMarketplace)
		if err != nil {
			return err
		}
		listing, err := tx.settle(marketplaceRules, contract, id, caller)
		if err != nil {
			return err
		}
		nft, err := findNFT(tx.DB(), contract.Address, id)
		if err != nil {
			return err
		}
		if nft.Holder != listing.Seller {
			return fail(ErrUnauthorized, "Seller no longer holds asset")
		}
		if err := tx.moveNFT(contract, nft, caller); err != nil {
			return err
		}
		sold = listing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sold, nil
}

func (s *MarketplaceService) GetListing(ctx context.Context, id uint64) (*models.Listing, error) {
	db := s.db.WithContext(ctx)
	contract, err := loadContract(db, models.ContractKindMarketplace)
	if err != nil {
		return nil, err
	}
	listing, err := findListing(db, contract.Address, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fail(ErrNotFound, fmt.Sprintf("no listing for token %d", id))
	}
	return listing, nil
}

func (s *MarketplaceService) Listings(ctx context.Context, filter ListingFilter, params utils.PaginationParams) ([]models.Listing, int64, error) {
	contract, err := loadContract(s.db.WithContext(ctx), models.ContractKindMarketplace)
	if err != nil {
		return nil, 0, err
	}
	filter.Contract = contract.Address
	return queryListings(ctx, s.db, filter, params)
}

func (s *MarketplaceService) WithdrawKpay(ctx context.Context, caller string, amount models.Amount) error {
	_, err := s.chain.Execute(ctx, "withdrawKpay", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), models.ContractKindMarketplace)
		if err != nil {
			return err
		}
		if err := requireOwner(contract, caller, "OwnableUnauthorizedAccount"); err != nil {
			return err
		}
		return tx.withdrawAmount(contract, amount)
	})
	return err
}
