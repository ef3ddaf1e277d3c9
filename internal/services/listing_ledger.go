// internal/services/listing_ledger.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/utils"
)

// listingRules carries the per-contract vocabulary of the shared listing
// ledger: revert reasons and event names differ between the marketplace and
// the exchange, the state machine does not.
type listingRules struct {
	kind           models.ContractKind
	notSeller      string
	zeroPrice      string
	notListed      string
	cancelledEvent string
	priceEvent     string
	soldEvent      string
	itemArg        string
}

type ListingFilter struct {
	Contract   string
	Seller     string
	ActiveOnly bool
}

func findListing(db *gorm.DB, contract string, itemID uint64) (*models.Listing, error) {
	var listing models.Listing
	err := db.Where("contract = ? AND item_id = ?", contract, itemID).Take(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &listing, nil
}

// activeListingOf loads a listing and requires caller to be its seller.
func (r listingRules) activeListingOf(db *gorm.DB, contract string, itemID uint64, caller string) (*models.Listing, error) {
	listing, err := findListing(db, contract, itemID)
	if err != nil {
		return nil, err
	}
	if listing == nil || listing.Seller != caller {
		return nil, fail(ErrUnauthorized, r.notSeller)
	}
	if !listing.IsListed {
		return nil, fail(ErrNotListed, r.notListed)
	}
	return listing, nil
}

func (t *Tx) cancelListing(r listingRules, contract *models.Contract, itemID uint64, caller string) error {
	listing, err := r.activeListingOf(t.db, contract.Address, itemID, caller)
	if err != nil {
		return err
	}
	if err := t.db.Model(listing).Update("is_listed", false).Error; err != nil {
		return err
	}
	t.Emit(contract.Address, r.kind, r.cancelledEvent, models.JSONB{
		r.itemArg: itemID, "seller": caller,
	})
	return nil
}

func (t *Tx) updateListingPrice(r listingRules, contract *models.Contract, itemID uint64, caller string, price models.Amount) error {
	listing, err := r.activeListingOf(t.db, contract.Address, itemID, caller)
	if err != nil {
		return err
	}
	if price.IsZero() {
		return fail(ErrInvalidArgument, r.zeroPrice)
	}
	if err := t.db.Model(listing).Update("price", price).Error; err != nil {
		return err
	}
	t.Emit(contract.Address, r.kind, r.priceEvent, models.JSONB{
		r.itemArg: itemID, "seller": caller, "newPrice": price.String(),
	})
	return nil
}

// settle pulls the price from the buyer, routes it according to the
// contract's proceeds policy and closes the listing. Delivery of the asset is
// the caller's job.
func (t *Tx) settle(r listingRules, contract *models.Contract, itemID uint64, buyer string) (*models.Listing, error) {
	listing, err := findListing(t.db, contract.Address, itemID)
	if err != nil {
		return nil, err
	}
	if listing == nil || !listing.IsListed {
		return nil, fail(ErrNotListed, r.notListed)
	}
	payee := contract.Address
	if contract.ProceedsPolicy == models.ProceedsSeller {
		payee = listing.Seller
	}
	if err := t.transferFrom(contract.PaymentToken, contract.Address, buyer, payee, listing.Price, "Insufficient allowance"); err != nil {
		return nil, err
	}

	listing.IsListed = false
	listing.Buyer = buyer
	if err := t.db.Model(listing).Updates(map[string]interface{}{"is_listed": false, "buyer": buyer}).Error; err != nil {
		return nil, err
	}
	t.Emit(contract.Address, r.kind, r.soldEvent, models.JSONB{
		r.itemArg: itemID, "seller": listing.Seller, "buyer": buyer, "price": listing.Price.String(),
	})
	return listing, nil
}

func queryListings(ctx context.Context, db *gorm.DB, filter ListingFilter, params utils.PaginationParams) ([]models.Listing, int64, error) {
	query := db.WithContext(ctx).Model(&models.Listing{}).Where("contract = ?", filter.Contract)
	if filter.Seller != "" {
		query = query.Where("seller = ?", filter.Seller)
	}
	if filter.ActiveOnly {
		query = query.Where("is_listed = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	var listings []models.Listing
	query = utils.ApplySort(query, params, []string{"item_id", "created_at", "updated_at"})
	if err := utils.ApplyPagination(query, params).Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get listings: %w", err)
	}
	return listings, total, nil
}
