// internal/models/factory.go
package models

// CreatedToken indexes one token deployed through the factory. Sequence is the
// factory's creation nonce and fixes the global and per-creator order.
type CreatedToken struct {
	BaseModel
	Factory       string `json:"factory" gorm:"size:42;not null;index"`
	Sequence      uint64 `json:"sequence" gorm:"not null;index"`
	TokenAddress  string `json:"token_address" gorm:"uniqueIndex;size:42;not null"`
	Creator       string `json:"creator" gorm:"size:42;not null;index"`
	Name          string `json:"name" gorm:"size:100;not null"`
	Symbol        string `json:"symbol" gorm:"size:20;not null"`
	InitialSupply Amount `json:"initial_supply" gorm:"not null"`
	FeePaid       Amount `json:"fee_paid" gorm:"not null"`
}
