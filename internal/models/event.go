// internal/models/event.go
package models

// ContractEvent is one emitted event. Sequence is global and strictly
// increasing in commit order.
type ContractEvent struct {
	BaseModel
	Sequence     uint64       `json:"sequence" gorm:"uniqueIndex;not null"`
	Contract     string       `json:"contract" gorm:"size:42;not null;index"`
	ContractKind ContractKind `json:"contract_kind" gorm:"type:varchar(32);index"`
	Name         string       `json:"name" gorm:"size:64;not null;index"`
	Args         JSONB        `json:"args"`
}

type AuditLog struct {
	BaseModel
	Actor      string `json:"actor" gorm:"size:42;index"`
	Action     string `json:"action" gorm:"size:100;not null;index"`
	Resource   string `json:"resource" gorm:"size:50;not null;index"`
	ResourceID string `json:"resource_id" gorm:"size:66;index"`
	Request    JSONB  `json:"request"`
	Status     int    `json:"status"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"type:text"`
}
