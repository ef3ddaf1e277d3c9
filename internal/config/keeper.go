// internal/config/keeper.go
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// KeeperConfig is the configuration of the external purchase trigger. It is
// read through viper so it can come from the environment or a config file.
type KeeperConfig struct {
	APIURL         string `mapstructure:"KEEPER_API_URL"`
	Address        string `mapstructure:"KEEPER_ADDRESS"`
	APIKey         string `mapstructure:"KEEPER_API_KEY"`
	Schedule       string `mapstructure:"KEEPER_SCHEDULE"`
	RequestTimeout int    `mapstructure:"KEEPER_REQUEST_TIMEOUT"` // in seconds
	LogLevel       string `mapstructure:"KEEPER_LOG_LEVEL"`
}

func LoadKeeperConfig() (*KeeperConfig, error) {
	viper.SetDefault("KEEPER_API_URL", "http://localhost:8080/v1")
	viper.SetDefault("KEEPER_SCHEDULE", "") // empty: derive from the order interval
	viper.SetDefault("KEEPER_REQUEST_TIMEOUT", 15)
	viper.SetDefault("KEEPER_LOG_LEVEL", "info")
	viper.AutomaticEnv()

	_ = viper.BindEnv("KEEPER_API_URL")
	_ = viper.BindEnv("KEEPER_ADDRESS")
	_ = viper.BindEnv("KEEPER_API_KEY")
	_ = viper.BindEnv("KEEPER_SCHEDULE")
	_ = viper.BindEnv("KEEPER_REQUEST_TIMEOUT")
	_ = viper.BindEnv("KEEPER_LOG_LEVEL")

	var cfg KeeperConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Address == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("KEEPER_ADDRESS and KEEPER_API_KEY are required")
	}

	return &cfg, nil
}
