// internal/models/listing.go
package models

// Listing is a sale record in a listing ledger. It is keyed by (contract,
// item id): the NFT token id on the marketplace, the listing id on the
// exchange. Records are never deleted; a terminated listing keeps its seller
// and last price with IsListed=false.
type Listing struct {
	BaseModel
	Contract  string `json:"contract" gorm:"size:42;not null;uniqueIndex:idx_listings_contract_item"`
	ItemID    uint64 `json:"item_id" gorm:"not null;uniqueIndex:idx_listings_contract_item"`
	AssetLink string `json:"asset_link,omitempty" gorm:"type:text"`
	Seller    string `json:"seller" gorm:"size:42;not null;index"`
	Price     Amount `json:"price" gorm:"not null"`
	IsListed  bool   `json:"is_listed" gorm:"not null;default:false;index"`
	Buyer     string `json:"buyer,omitempty" gorm:"size:42"`
}
