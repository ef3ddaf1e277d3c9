// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Base model with common fields. Ledger records are never deleted, so there is
// no soft-delete column.
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}

	return json.Unmarshal(bytes, j)
}

func (JSONB) GormDataType() string {
	return "json"
}

func (JSONB) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

// Enums
type AccountRole string

const (
	AccountRoleUser  AccountRole = "user"
	AccountRoleAdmin AccountRole = "admin"
)

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
)

type ContractKind string

const (
	ContractKindMarketplace ContractKind = "nft_marketplace"
	ContractKindExchange    ContractKind = "asset_exchange"
	ContractKindFactory     ContractKind = "token_factory"
	ContractKindScheduler   ContractKind = "purchase_scheduler"

	// ContractKindToken tags events emitted by token ledgers. Tokens have no
	// contracts row.
	ContractKindToken ContractKind = "token"
)

func (k ContractKind) Valid() bool {
	switch k {
	case ContractKindMarketplace, ContractKindExchange, ContractKindFactory, ContractKindScheduler:
		return true
	}
	return false
}

// ProceedsPolicy decides where a buyer's payment goes when a listing settles.
type ProceedsPolicy string

const (
	ProceedsTreasury ProceedsPolicy = "treasury"
	ProceedsSeller   ProceedsPolicy = "seller"
)

func (p ProceedsPolicy) Valid() bool {
	return p == ProceedsTreasury || p == ProceedsSeller
}

// ZeroAddress is the burn/mint counterparty and never a valid account.
const ZeroAddress = "0x0000000000000000000000000000000000000000"
