// Package config loads the application configuration: the shared bot
// core settings plus database and shop sections.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/keybot/core/config"
	coredatabase "github.com/m3rciful/keybot/core/database"
)

// ShopConfig holds storefront settings shown to buyers.
type ShopConfig struct {
	// Requisites is the payment destination text shown after tariff selection.
	Requisites string `yaml:"requisites" envconfig:"SHOP_REQUISITES"`
	// SupportURL, when set, adds a support contact button to the main menu.
	SupportURL string `yaml:"support_url" envconfig:"SHOP_SUPPORT_URL"`
	// PaymentComment is the comment buyers are asked to attach to transfers.
	PaymentComment string `yaml:"payment_comment" envconfig:"SHOP_PAYMENT_COMMENT"`
}

// Config is the full application configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Shop     ShopConfig          `yaml:"shop"`
}

// CoreConfig exposes the embedded core section for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads configuration from a YAML file with environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Database.Host) == "" {
		cfg.Database.Host = "localhost"
	}
	if strings.TrimSpace(cfg.Database.Port) == "" {
		cfg.Database.Port = "5432"
	}
	if strings.TrimSpace(cfg.Database.SSLMode) == "" {
		cfg.Database.SSLMode = "disable"
	}
	if strings.TrimSpace(cfg.Database.User) == "" {
		return fmt.Errorf("database.user is required")
	}
	if strings.TrimSpace(cfg.Database.Name) == "" {
		return fmt.Errorf("database.name is required")
	}

	if strings.TrimSpace(cfg.Shop.Requisites) == "" {
		return fmt.Errorf("shop.requisites is required")
	}
	if strings.TrimSpace(cfg.Shop.PaymentComment) == "" {
		cfg.Shop.PaymentComment = "order"
	}
	return nil
}
