package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/gravitas-games/armory/pkg/inventory"
	"gopkg.in/yaml.v3"
)

// Config holds all server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	JWT       JWTConfig       `yaml:"jwt"`
	Redis     RedisConfig     `yaml:"redis"`
	Session   SessionConfig   `yaml:"session"`
	Inventory InventoryConfig `yaml:"inventory"`
	Reload    ReloadConfig    `yaml:"reload"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host     string `yaml:"host" env:"ARMORY_HOST"`
	Port     int    `yaml:"port" env:"ARMORY_PORT"`
	TickRate int    `yaml:"tick_rate" env:"ARMORY_TICK_RATE"` // Hz
}

// JWTConfig holds JWT authentication settings
type JWTConfig struct {
	Issuer              string `yaml:"issuer" env:"ARMORY_JWT_ISSUER"`
	PublicKeyURL        string `yaml:"public_key_url" env:"ARMORY_JWT_PUBLIC_KEY_URL"`
	PublicKeyRefreshHrs int    `yaml:"public_key_refresh_hours" env:"ARMORY_JWT_REFRESH_HOURS"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address         string `yaml:"address" env:"ARMORY_REDIS_ADDRESS"`
	Password        string `yaml:"password" env:"ARMORY_REDIS_PASSWORD"`
	DB              int    `yaml:"db" env:"ARMORY_REDIS_DB"`
	BlacklistPrefix string `yaml:"blacklist_prefix" env:"ARMORY_REDIS_BLACKLIST_PREFIX"`
}

// SessionConfig holds game session settings
type SessionConfig struct {
	MaxPlayers int `yaml:"max_players" env:"ARMORY_MAX_PLAYERS"`
	MaxHealth  int `yaml:"max_health" env:"ARMORY_MAX_HEALTH"`
}

// StarterItem is granted to every actor when its inventory is created.
type StarterItem struct {
	Item     string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
	// Region is "inventory" (default) or "equipped".
	Region string `yaml:"region"`
}

// InventoryConfig sizes each actor's storage and names the item catalog.
type InventoryConfig struct {
	InventorySize int           `yaml:"inventory_size" env:"ARMORY_INVENTORY_SIZE"`
	EquippedSize  int           `yaml:"equipped_size" env:"ARMORY_EQUIPPED_SIZE"`
	CatalogPath   string        `yaml:"catalog_path" env:"ARMORY_CATALOG_PATH"`
	StarterItems  []StarterItem `yaml:"starter_items"`
}

// Sizes converts the configured capacities for the inventory engine.
func (c InventoryConfig) Sizes() inventory.Sizes {
	return inventory.Sizes{Inventory: c.InventorySize, Equipped: c.EquippedSize}
}

// ReloadConfig holds timed reload settings
type ReloadConfig struct {
	// TopUpPercent of a weapon's ammo capacity is granted on every manual
	// reload. Zero disables top-ups.
	TopUpPercent int `yaml:"top_up_percent" env:"ARMORY_RELOAD_TOP_UP_PERCENT"`
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"ARMORY_LOG_LEVEL"`
	Format string `yaml:"format" env:"ARMORY_LOG_FORMAT"` // "text" or "json"
}

// Load reads configuration from a YAML file, then applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseEnv overrides target fields from the environment. Unset variables
// leave the current value alone.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.TickRate == 0 {
		cfg.Server.TickRate = 20
	}
	if cfg.JWT.PublicKeyRefreshHrs == 0 {
		cfg.JWT.PublicKeyRefreshHrs = 24
	}
	if cfg.Session.MaxPlayers == 0 {
		cfg.Session.MaxPlayers = 100
	}
	if cfg.Session.MaxHealth == 0 {
		cfg.Session.MaxHealth = 100
	}
	if cfg.Inventory.InventorySize == 0 && cfg.Inventory.EquippedSize == 0 {
		sizes := inventory.DefaultSizes()
		cfg.Inventory.InventorySize = sizes.Inventory
		cfg.Inventory.EquippedSize = sizes.Equipped
	}
	for i := range cfg.Inventory.StarterItems {
		if cfg.Inventory.StarterItems[i].Region == "" {
			cfg.Inventory.StarterItems[i].Region = inventory.RegionInventory.String()
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate reports every setting that cannot work.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Server.TickRate < 0 {
		errs = append(errs, fmt.Errorf("server.tick_rate must be positive, got %d", cfg.Server.TickRate))
	}
	if cfg.Inventory.InventorySize < 0 || cfg.Inventory.EquippedSize < 0 {
		errs = append(errs, errors.New("inventory sizes must not be negative"))
	}
	if p := cfg.Reload.TopUpPercent; p < 0 || p > 100 {
		errs = append(errs, fmt.Errorf("reload.top_up_percent must be within 0..100, got %d", p))
	}
	for i, s := range cfg.Inventory.StarterItems {
		if s.Item == "" {
			errs = append(errs, fmt.Errorf("inventory.starter_items[%d]: item must not be empty", i))
		}
		if s.Quantity <= 0 {
			errs = append(errs, fmt.Errorf("inventory.starter_items[%d]: quantity must be positive", i))
		}
		if _, ok := inventory.ParseRegion(s.Region); !ok {
			errs = append(errs, fmt.Errorf("inventory.starter_items[%d]: unknown region %q", i, s.Region))
		}
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
