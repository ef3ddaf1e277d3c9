// internal/models/nft.go
package models

// NFT is a uniquely numbered asset minted by a marketplace contract. URI is
// immutable once set.
type NFT struct {
	BaseModel
	Contract string `json:"contract" gorm:"size:42;not null;uniqueIndex:idx_nfts_contract_token"`
	TokenID  uint64 `json:"token_id" gorm:"not null;uniqueIndex:idx_nfts_contract_token"`
	URI      string `json:"uri" gorm:"type:text;not null"`
	Holder   string `json:"holder" gorm:"size:42;not null;index"`
	Minter   string `json:"minter" gorm:"size:42;not null"`
}
