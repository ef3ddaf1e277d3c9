// internal/services/exchange_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/utils"
)

// ExchangeService is the digital asset exchange: listings point at an
// off-ledger asset link and are numbered by the exchange itself.
type ExchangeService struct {
	db    *gorm.DB
	chain *Chain
}

var exchangeRules = listingRules{
	kind:           models.ContractKindExchange,
	notSeller:      "Only seller can perform this action",
	zeroPrice:      "Price must be greater than 0",
	notListed:      "Asset is not listed",
	cancelledEvent: "AssetListingCancelled",
	priceEvent:     "AssetPriceUpdated",
	soldEvent:      "AssetSold",
	itemArg:        "listingId",
}

func NewExchangeService(db *gorm.DB, chain *Chain) *ExchangeService {
	return &ExchangeService{db: db, chain: chain}
}

func (s *ExchangeService) ListItem(ctx context.Context, caller, assetLink string, price models.Amount) (*models.Listing, error) {
	assetLink = strings.TrimSpace(assetLink)
	if assetLink == "" {
		return nil, fail(ErrInvalidArgument, "Asset link cannot be empty")
	}
	if price.IsZero() {
		return nil, fail(ErrInvalidArgument, "Price must be greater than 0")
	}

	var listing *models.Listing
	_, err := s.chain.Execute(ctx, "listAsset", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), models.ContractKindExchange)
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
		listing = &models.Listing{
			Contract:  contract.Address,
			ItemID:    id,
			AssetLink: assetLink,
			Seller:    caller,
			Price:     price,
			IsListed:  true,
		}
		if err := tx.DB().Create(listing).Error; err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}
		tx.Emit(contract.Address, contract.Kind, "AssetListed", models.JSONB{
			"listingId": id, "seller": caller, "assetLink": assetLink, "price": price.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *ExchangeService) CancelListing(ctx context.Context, caller string, id uint64) error {
	_, err := s.chain.Execute(ctx, "cancelAssetListing", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), models.ContractKindExchange)
		if err != nil {
			return err
		}
		return tx.cancelListing(exchangeRules, contract, id, caller)
	})
	return err
}

func (s *ExchangeService) UpdateListingPrice(ctx context.Context, caller string, id uint64, price models.Amount) error {
	_, err := s.chain.Execute(ctx, "updateAssetPrice", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), models.ContractKindExchange)
		if err != nil {
			return err
		}
		return tx.updateListingPrice(exchangeRules, contract, id, caller, price)
	})
	return err
}

func (s *ExchangeService) BuyAsset(ctx context.Context, caller string, id uint64) (*models.Listing, error) {
	var sold *models.Listing
	_, err := s.chain.Execute(ctx, "buyAsset", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), models.ContractKindExchange)
		if err != nil {
			return err
		}
		sold, err = tx.settle(exchangeRules, contract, id, caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sold, nil
}

// ListingCount is the number of listings ever created, which is also the id
// of the latest one. Ids start at 1.
func (s *ExchangeService) ListingCount(ctx context.Context) (uint64, error) {
	contract, err := loadContract(s.db.WithContext(ctx), models.ContractKindExchange)
	if err != nil {
		return 0, err
	}
	return contract.Counter, nil
}

func (s *ExchangeService) GetListing(ctx context.Context, id uint64) (*models.Listing, error) {
	db := s.db.WithContext(ctx)
	contract, err := loadContract(db, models.ContractKindExchange)
	if err != nil {
		return nil, err
	}
	listing, err := findListing(db, contract.Address, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fail(ErrNotFound, fmt.Sprintf("no listing %d", id))
	}
	return listing, nil
}

func (s *ExchangeService) Listings(ctx context.Context, filter ListingFilter, params utils.PaginationParams) ([]models.Listing, int64, error) {
	contract, err := loadContract(s.db.WithContext(ctx), models.ContractKindExchange)
	if err != nil {
		return nil, 0, err
	}
	filter.Contract = contract.Address
	return queryListings(ctx, s.db, filter, params)
}

func (s *ExchangeService) WithdrawKpay(ctx context.Context, caller string, amount models.Amount) error {
	_, err := s.chain.Execute(ctx, "withdrawExchangeKpay", func(tx *Tx) error {
		contract, err := loadContract(tx.DB(), models.ContractKindExchange)
		if err != nil {
			return err
		}
		if err := requireOwner(contract, caller, "Only owner can withdraw"); err != nil {
			return err
		}
		return tx.withdrawAmount(contract, amount)
	})
	return err
}
