// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/utils"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Ledger      LedgerConfig
	AMQP        AMQPConfig
	Metadata    MetadataConfig
	AWS         AWSConfig
	Admin       AdminConfig
	RateLimit   RateLimitConfig
	I18n        I18nConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	ReadTimeout    int
	WriteTimeout   int
	IdleTimeout    int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

// LedgerConfig carries the economic constants. Human amounts are in whole
// KPAY; the parsed base-unit values are filled by Validate.
type LedgerConfig struct {
	KpayName            string
	KpaySymbol          string
	KpayInitialSupply   string
	FactoryCreationFee  string
	MarketplaceProceeds models.ProceedsPolicy
	ExchangeProceeds    models.ProceedsPolicy

	InitialSupply models.Amount
	CreationFee   models.Amount
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type MetadataConfig struct {
	IPFSGateway  string
	CacheTTL     int // in seconds
	FetchTimeout int // in seconds
	MaxBytes     int64
	// AllowedHosts may resolve to private or loopback addresses.
	AllowedHosts []string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

type AdminConfig struct {
	Address string
	APIKey  string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type I18nConfig struct {
	DefaultLocale string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:    getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "kpay"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24),
		},
		Ledger: LedgerConfig{
			KpayName:            getEnv("KPAY_NAME", "Kpay"),
			KpaySymbol:          getEnv("KPAY_SYMBOL", "KPAY"),
			KpayInitialSupply:   getEnv("KPAY_INITIAL_SUPPLY", "10000"),
			FactoryCreationFee:  getEnv("FACTORY_CREATION_FEE", "100"),
			MarketplaceProceeds: models.ProceedsPolicy(getEnv("MARKETPLACE_PROCEEDS_POLICY", string(models.ProceedsTreasury))),
			ExchangeProceeds:    models.ProceedsPolicy(getEnv("EXCHANGE_PROCEEDS_POLICY", string(models.ProceedsTreasury))),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "contract_events"),
		},
		Metadata: MetadataConfig{
			IPFSGateway:  getEnv("IPFS_GATEWAY", "https://ipfs.io/ipfs/"),
			CacheTTL:     getEnvAsInt("METADATA_CACHE_TTL", 600),
			FetchTimeout: getEnvAsInt("METADATA_FETCH_TIMEOUT", 10),
			MaxBytes:     int64(getEnvAsInt("METADATA_MAX_BYTES", 1<<20)),
			AllowedHosts: getEnvAsList("METADATA_ALLOWED_HOSTS", nil),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		},
		Admin: AdminConfig{
			Address: strings.ToLower(getEnv("ADMIN_ADDRESS", "0x00000000000000000000000000000000000000a1")),
			APIKey:  getEnv("ADMIN_API_KEY", "kp_admin_change_me"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == defaultJWTSecret && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Admin.APIKey == "kp_admin_change_me" && c.Environment == "production" {
		return fmt.Errorf("admin API key must be changed in production")
	}

	if len(c.Admin.Address) != 42 || !strings.HasPrefix(c.Admin.Address, "0x") || c.Admin.Address == models.ZeroAddress {
		return fmt.Errorf("ADMIN_ADDRESS must be a non-zero 0x-prefixed 20-byte address")
	}

	return c.Ledger.parse()
}

func (l *LedgerConfig) parse() error {
	var err error
	if l.InitialSupply, err = utils.ParseUnits(l.KpayInitialSupply, utils.DefaultDecimals); err != nil {
		return fmt.Errorf("KPAY_INITIAL_SUPPLY: %w", err)
	}
	if l.CreationFee, err = utils.ParseUnits(l.FactoryCreationFee, utils.DefaultDecimals); err != nil {
		return fmt.Errorf("FACTORY_CREATION_FEE: %w", err)
	}
	if !l.MarketplaceProceeds.Valid() {
		return fmt.Errorf("MARKETPLACE_PROCEEDS_POLICY must be treasury or seller, got %q", l.MarketplaceProceeds)
	}
	if !l.ExchangeProceeds.Valid() {
		return fmt.Errorf("EXCHANGE_PROCEEDS_POLICY must be treasury or seller, got %q", l.ExchangeProceeds)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
