// Package config loads the crafting bot configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
	craftsync "github.com/RedVerrask/Discord-bot-sub000/internal/crafting/sync"
)

// EnvPrefix prefixes environment overrides: storage.backend is read from
// CRAFTING_STORAGE_BACKEND.
const EnvPrefix = "CRAFTING"

// Config holds all configuration for the application.
type Config struct {
	Storage     docstore.Options        `mapstructure:"storage"`
	Catalog     CatalogConfig           `mapstructure:"catalog"`
	Professions ProfessionsConfig       `mapstructure:"professions"`
	Crafting    CraftingConfig          `mapstructure:"crafting"`
	Scrape      craftsync.ScrapeOptions `mapstructure:"scrape"`
	Log         LogConfig               `mapstructure:"log"`
}

// CatalogConfig controls catalog loading and search.
type CatalogConfig struct {
	// File is a raw catalog imported at startup when set.
	File        string `mapstructure:"file"`
	SearchLimit int    `mapstructure:"search_limit"`
	CacheSize   int    `mapstructure:"cache_size"`
}

// ProfessionsConfig controls the profession ledger.
type ProfessionsConfig struct {
	MaxPerUser int               `mapstructure:"max_per_user"`
	Aliases    map[string]string `mapstructure:"aliases"`
}

// CraftingConfig controls learning rules.
type CraftingConfig struct {
	EnforceTiers bool `mapstructure:"enforce_tiers"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// New returns a viper instance with defaults and environment overrides.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile, or config.yaml from the working directory when
// configFile is empty, and decodes the result. A missing default config
// file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.sqlite_path", "data/crafting.db")
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.key_prefix", "crafting:")

	v.SetDefault("catalog.file", "")
	v.SetDefault("catalog.search_limit", 25)
	v.SetDefault("catalog.cache_size", 256)

	v.SetDefault("professions.max_per_user", 2)
	v.SetDefault("professions.aliases", map[string]string{})

	v.SetDefault("crafting.enforce_tiers", false)

	v.SetDefault("scrape.urls", []string{})
	v.SetDefault("scrape.row_selector", craftsync.DefaultRowSelector)
	v.SetDefault("scrape.timeout", 30*time.Second)
	v.SetDefault("scrape.requests_per_second", 1)
	v.SetDefault("scrape.workers", 2)

	v.SetDefault("log.level", "info")
}
