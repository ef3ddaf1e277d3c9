// internal/models/account.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Account struct {
	BaseModel
	Address     string        `json:"address" gorm:"uniqueIndex;size:42;not null"`
	APIKeyHash  string        `json:"-" gorm:"size:255;not null"`
	Role        AccountRole   `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	Status      AccountStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	Label       string        `json:"label,omitempty" gorm:"size:100"`
	LastLoginAt *time.Time    `json:"last_login_at"`
}

func (a *Account) SetAPIKey(key string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.APIKeyHash = string(hashed)
	return nil
}

func (a *Account) CheckAPIKey(key string) error {
	return bcrypt.CompareHashAndPassword([]byte(a.APIKeyHash), []byte(key))
}
