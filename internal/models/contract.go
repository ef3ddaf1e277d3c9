// internal/models/contract.go
package models

// Contract is the on-ledger record of one deployed contract. Counter holds the
// last issued sequential id (NFT token id, exchange listing id, or factory
// creation nonce) and is never decremented.
type Contract struct {
	BaseModel
	Address        string         `json:"address" gorm:"uniqueIndex;size:42;not null"`
	Kind           ContractKind   `json:"kind" gorm:"type:varchar(32);uniqueIndex;not null"`
	Name           string         `json:"name" gorm:"size:100;not null"`
	Owner          string         `json:"owner" gorm:"size:42;not null;index"`
	Paused         bool           `json:"paused" gorm:"not null;default:false"`
	PaymentToken   string         `json:"payment_token" gorm:"size:42;not null"`
	ProceedsPolicy ProceedsPolicy `json:"proceeds_policy,omitempty" gorm:"type:varchar(20)"`
	Counter        uint64         `json:"counter" gorm:"not null;default:0"`
}
