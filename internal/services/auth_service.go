// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/config"
	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/utils"
)

// ErrInvalidCredentials is returned by Login; it never says which half of the
// credentials was wrong.
var ErrInvalidCredentials = errors.New("invalid address or API key")

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type LoginRequest struct {
	Address string `json:"address" validate:"required,address"`
	APIKey  string `json:"api_key" validate:"required"`
}

type RegisterRequest struct {
	Label string `json:"label" validate:"max=100"`
}

type AuthResponse struct {
	Account     *models.Account `json:"account"`
	APIKey      string          `json:"api_key,omitempty"`
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
	}
}

// Register creates a fresh account on a random address. The API key is
// returned once and only its hash is stored.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	address, err := RandomAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to generate address: %w", err)
	}
	apiKey, err := utils.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}

	account := &models.Account{
		Address: address,
		Role:    models.AccountRoleUser,
		Status:  models.AccountStatusActive,
		Label:   req.Label,
	}
	if err := account.SetAPIKey(apiKey); err != nil {
		return nil, fmt.Errorf("failed to hash API key: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"address":         account.Address,
		"key_fingerprint": utils.KeyFingerprint(apiKey),
	}).Info("account registered")

	resp, err := s.issue(account)
	if err != nil {
		return nil, err
	}
	resp.APIKey = apiKey
	return resp, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	address, err := NormalizeAddress(req.Address)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var account models.Account
	if err := s.db.WithContext(ctx).Where("address = ?", address).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if account.Status == models.AccountStatusSuspended {
		return nil, fail(ErrUnauthorized, "account is suspended")
	}
	if err := account.CheckAPIKey(req.APIKey); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	account.LastLoginAt = &now
	s.db.WithContext(ctx).Model(&account).Update("last_login_at", now)

	return s.issue(&account)
}

func (s *AuthService) GetAccount(ctx context.Context, address string) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).Where("address = ?", address).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(ErrNotFound, "account not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &account, nil
}

func (s *AuthService) issue(account *models.Account) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(account.Address, string(account.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &AuthResponse{
		Account:     account,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}
