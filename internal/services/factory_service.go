// internal/services/factory_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/utils"
)

// FactoryService creates fungible tokens for a fixed fee paid in the
// factory's payment token.
type FactoryService struct {
	db          *gorm.DB
	chain       *Chain
	creationFee models.Amount
}

type CreateTokenRequest struct {
	Name          string        `json:"name" validate:"max=100"`
	Symbol        string        `json:"symbol" validate:"max=20"`
	InitialSupply models.Amount `json:"initial_supply"`
}

func NewFactoryService(db *gorm.DB, chain *Chain, creationFee models.Amount) *FactoryService {
	return &FactoryService{db: db, chain: chain, creationFee: creationFee}
}

func (s *FactoryService) CreationFee() models.Amount {
	return s.creationFee
}

func (s *FactoryService) CreateToken(ctx context.Context, caller string, req *CreateTokenRequest) (*models.CreatedToken, error) {
	name := strings.TrimSpace(req.Name)
	symbol := strings.TrimSpace(req.Symbol)
	if name == "" || symbol == "" {
		return nil, fail(ErrInvalidArgument, "Name and symbol are required")
	}

	var created *models.CreatedToken
	_, err := s.chain.Execute(ctx, "createToken", func(tx *Tx) error {
		factory, err := loadContract(tx.DB(), models.ContractKindFactory)
		if err != nil {
			return err
		}
		if err := requireNotPaused(factory); err != nil {
			return err
		}

		allowed, err := allowanceOf(tx.DB(), factory.PaymentToken, caller, factory.Address)
		if err != nil {
			return err
		}
		if allowed.LessThan(s.creationFee) {
			return fail(ErrInsufficientAllowance, "ERC20InsufficientAllowance")
		}
		if !s.creationFee.IsZero() {
			if err := tx.transferFrom(factory.PaymentToken, factory.Address, caller, factory.Address, s.creationFee, "ERC20InsufficientAllowance"); err != nil {
				return err
			}
		}

		// the nonce is taken before it is advanced, so the first token is
		// derived from nonce 0
		nonce := factory.Counter
		if _, err := nextID(tx.DB(), factory); err != nil {
			return err
		}
		address := DeriveAddress(factory.Address, nonce)
		token, err := tx.createToken(address, name, symbol, utils.DefaultDecimals, caller, req.InitialSupply)
		if err != nil {
			return err
		}

		created = &models.CreatedToken{
			Factory:       factory.Address,
			Sequence:      nonce,
			TokenAddress:  token.Address,
			Creator:       caller,
			Name:          name,
			Symbol:        symbol,
			InitialSupply: req.InitialSupply,
			FeePaid:       s.creationFee,
		}
		if err := tx.DB().Create(created).Error; err != nil {
			return fmt.Errorf("failed to record created token: %w", err)
		}

		tx.Emit(factory.Address, factory.Kind, "TokenCreated", models.JSONB{
			"tokenAddress":  token.Address,
			"name":          name,
			"symbol":        symbol,
			"initialSupply": req.InitialSupply.String(),
			"creator":       caller,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetAllTokens lists every created token address in creation order.
func (s *FactoryService) GetAllTokens(ctx context.Context) ([]string, error) {
	return s.addresses(ctx, "")
}

func (s *FactoryService) GetUserTokens(ctx context.Context, creator string) ([]string, error) {
	creator, err := NormalizeAddress(creator)
	if err != nil {
		return nil, err
	}
	return s.addresses(ctx, creator)
}

func (s *FactoryService) GetUserTokenCount(ctx context.Context, creator string) (int, error) {
	tokens, err := s.GetUserTokens(ctx, creator)
	if err != nil {
		return 0, err
	}
	return len(tokens), nil
}

func (s *FactoryService) addresses(ctx context.Context, creator string) ([]string, error) {
	records, err := s.CreatedTokens(ctx, creator)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.TokenAddress
	}
	return out, nil
}

// CreatedTokens returns the full records, optionally for one creator.
func (s *FactoryService) CreatedTokens(ctx context.Context, creator string) ([]models.CreatedToken, error) {
	db := s.db.WithContext(ctx)
	factory, err := loadContract(db, models.ContractKindFactory)
	if err != nil {
		return nil, err
	}
	query := db.Where("factory = ?", factory.Address)
	if creator != "" {
		query = query.Where("creator = ?", creator)
	}
	var records []models.CreatedToken
	if err := query.Order("sequence asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get created tokens: %w", err)
	}
	return records, nil
}

// SetKpayToken repoints the fee token. Past records keep the fee they paid.
func (s *FactoryService) SetKpayToken(ctx context.Context, caller, token string) error {
	token, err := accountAddress(token)
	if err != nil {
		return err
	}
	_, err = s.chain.Execute(ctx, "setKpayToken", func(tx *Tx) error {
		factory, err := loadContract(tx.DB(), models.ContractKindFactory)
		if err != nil {
			return err
		}
		if err := requireOwner(factory, caller, "OwnableUnauthorizedAccount"); err != nil {
			return err
		}
		if _, err := findToken(tx.DB(), token); err != nil {
			return fail(ErrInvalidArgument, "Unknown token "+token)
		}
		previous := factory.PaymentToken
		if err := tx.DB().Model(factory).Update("payment_token", token).Error; err != nil {
			return err
		}
		tx.Emit(factory.Address, factory.Kind, "KpayTokenUpdated", models.JSONB{
			"oldToken": previous, "newToken": token,
		})
		return nil
	})
	return err
}

// WithdrawFees sends the whole balance of the current fee token to the
// administrator.
func (s *FactoryService) WithdrawFees(ctx context.Context, caller string) (models.Amount, error) {
	var withdrawn models.Amount
	_, err := s.chain.Execute(ctx, "withdrawFees", func(tx *Tx) error {
		factory, err := loadContract(tx.DB(), models.ContractKindFactory)
		if err != nil {
			return err
		}
		if err := requireOwner(factory, caller, "OwnableUnauthorizedAccount"); err != nil {
			return err
		}
		withdrawn, err = tx.withdrawAll(factory)
		return err
	})
	if err != nil {
		return models.Amount{}, err
	}
	return withdrawn, nil
}
