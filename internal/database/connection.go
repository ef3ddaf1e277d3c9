// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/kpay-backend/internal/config"
	"github.com/javajoker/kpay-backend/internal/models"
)

var DB *gorm.DB

// GormConfig maps DB_LOG_LEVEL onto the GORM logger.
func GormConfig(level string) *gorm.Config {
	mode := logger.Warn
	switch level {
	case "silent":
		mode = logger.Silent
	case "error":
		mode = logger.Error
	case "info":
		mode = logger.Info
	}
	return &gorm.Config{Logger: logger.Default.LogMode(mode)}
}

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), GormConfig(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.Account{},
		&models.Contract{},
		&models.Token{},
		&models.TokenBalance{},
		&models.TokenAllowance{},
		&models.NFT{},
		&models.Listing{},
		&models.CreatedToken{},
		&models.PurchaseOrder{},
		&models.ContractEvent{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		createIndexes(db)
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_listings_contract_active ON listings(contract, is_listed, item_id)",
		"CREATE INDEX IF NOT EXISTS idx_nfts_contract_holder ON nfts(contract, holder, token_id)",
		"CREATE INDEX IF NOT EXISTS idx_created_tokens_factory_creator ON created_tokens(factory, creator, sequence)",
		"CREATE INDEX IF NOT EXISTS idx_contract_events_contract_name ON contract_events(contract, name, sequence)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_actor_action ON audit_logs(actor, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
		}
	}
}

// SeedInitialData creates the administrator account if it is missing.
func SeedInitialData(db *gorm.DB, admin config.AdminConfig) error {
	logrus.Info("Seeding initial data...")

	var count int64
	if err := db.Model(&models.Account{}).Where("address = ?", admin.Address).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	if count == 0 {
		account := &models.Account{
			Address: admin.Address,
			Role:    models.AccountRoleAdmin,
			Status:  models.AccountStatusActive,
			Label:   "administrator",
		}
		if err := account.SetAPIKey(admin.APIKey); err != nil {
			return fmt.Errorf("failed to set admin API key: %w", err)
		}
		if err := db.Create(account).Error; err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}
		logrus.WithField("address", admin.Address).Info("Administrator account created")
	}

	logrus.Info("Initial data seeding completed")
	return nil
}
