// internal/services/deploy.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/config"
	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/utils"
)

// Deployment nonces of the administrator. Addresses derived from them are
// stable across restarts.
const (
	nonceKpay uint64 = iota
	nonceMarketplace
	nonceExchange
	nonceFactory
	nonceScheduler
)

type Deployment struct {
	Kpay        string `json:"kpay"`
	Marketplace string `json:"nft_marketplace"`
	Exchange    string `json:"asset_exchange"`
	Factory     string `json:"token_factory"`
	Scheduler   string `json:"purchase_scheduler"`
}

// Deploy creates the Kpay token and the four contracts if they are missing.
// Running it again is a no-op.
func Deploy(ctx context.Context, chain *Chain, ledger config.LedgerConfig, admin string) (*Deployment, error) {
	admin, err := accountAddress(admin)
	if err != nil {
		return nil, err
	}

	d := &Deployment{
		Kpay:        DeriveAddress(admin, nonceKpay),
		Marketplace: DeriveAddress(admin, nonceMarketplace),
		Exchange:    DeriveAddress(admin, nonceExchange),
		Factory:     DeriveAddress(admin, nonceFactory),
		Scheduler:   DeriveAddress(admin, nonceScheduler),
	}

	contracts := []models.Contract{
		{Address: d.Marketplace, Kind: models.ContractKindMarketplace, Name: "NFTMarketplace", ProceedsPolicy: ledger.MarketplaceProceeds},
		{Address: d.Exchange, Kind: models.ContractKindExchange, Name: "DigitalAssetExchange", ProceedsPolicy: ledger.ExchangeProceeds},
		{Address: d.Factory, Kind: models.ContractKindFactory, Name: "TokenFactory"},
		{Address: d.Scheduler, Kind: models.ContractKindScheduler, Name: "AutomatedTokenPurchase"},
	}

	_, err = chain.Execute(ctx, "deploy", func(tx *Tx) error {
		if _, err := findToken(tx.DB(), d.Kpay); errors.Is(err, ErrNotFound) {
			name, symbol := ledger.KpayName, ledger.KpaySymbol
			if name == "" {
				name, symbol = "Kpay", "KPAY"
			}
			if _, err := tx.createToken(d.Kpay, name, symbol, utils.DefaultDecimals, admin, ledger.InitialSupply); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, c := range contracts {
			var existing models.Contract
			err := tx.DB().Where("kind = ?", c.Kind).Take(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("database error: %w", err)
			}
			c.Owner = admin
			c.PaymentToken = d.Kpay
			if err := tx.DB().Create(&c).Error; err != nil {
				return fmt.Errorf("failed to deploy %s: %w", c.Kind, err)
			}
			tx.Emit(c.Address, c.Kind, "OwnershipTransferred", models.JSONB{
				"previousOwner": models.ZeroAddress, "newOwner": admin,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
