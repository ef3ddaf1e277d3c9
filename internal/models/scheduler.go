// internal/models/scheduler.go
package models

import "time"

// PurchaseOrder is the single recurring-buy intent of one owner. A cancelled
// order keeps its row with every field reset.
type PurchaseOrder struct {
	BaseModel
	Contract         string     `json:"contract" gorm:"size:42;not null;uniqueIndex:idx_purchase_orders_owner"`
	Owner            string     `json:"owner" gorm:"size:42;not null;uniqueIndex:idx_purchase_orders_owner"`
	TokenAddress     string     `json:"token_address" gorm:"size:42;not null"`
	PurchaseInterval uint64     `json:"purchase_interval" gorm:"not null;default:0"`
	KpayAmount       Amount     `json:"kpay_amount" gorm:"not null"`
	LastExecutedAt   *time.Time `json:"last_executed_at"`
	ExecutionCount   uint64     `json:"execution_count" gorm:"not null;default:0"`
}

func (o *PurchaseOrder) Active() bool {
	return o != nil && !o.KpayAmount.IsZero()
}
