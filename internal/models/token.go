// internal/models/token.go
package models

// Token is a fungible token instance held in the ledger. Kpay is one of them;
// factory-created tokens are the others.
type Token struct {
	BaseModel
	Address     string `json:"address" gorm:"uniqueIndex;size:42;not null"`
	Name        string `json:"name" gorm:"size:100;not null"`
	Symbol      string `json:"symbol" gorm:"size:20;not null"`
	Decimals    uint8  `json:"decimals" gorm:"not null;default:18"`
	TotalSupply Amount `json:"total_supply" gorm:"not null"`
	Owner       string `json:"owner" gorm:"size:42;not null"`
}

type TokenBalance struct {
	BaseModel
	TokenAddress string `json:"token_address" gorm:"size:42;not null;uniqueIndex:idx_token_balances_token_holder"`
	Holder       string `json:"holder" gorm:"size:42;not null;uniqueIndex:idx_token_balances_token_holder;index"`
	Amount       Amount `json:"amount" gorm:"not null"`
}

type TokenAllowance struct {
	BaseModel
	TokenAddress string `json:"token_address" gorm:"size:42;not null;uniqueIndex:idx_token_allowances_key"`
	Owner        string `json:"owner" gorm:"size:42;not null;uniqueIndex:idx_token_allowances_key"`
	Spender      string `json:"spender" gorm:"size:42;not null;uniqueIndex:idx_token_allowances_key"`
	Amount       Amount `json:"amount" gorm:"not null"`
}
