// Package config loads server configuration from config.yaml, .env and QI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	corenumerator "quickinvoice/internal/core/numerator"
)

// EnvPrefix prefixes every environment override, e.g. QI_SERVER_ADDRESS.
const EnvPrefix = "QI"

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Configuration struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Logging   LoggingConfig   `mapstructure:"logging" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Numbering NumberingConfig `mapstructure:"numbering" validate:"required"`
	Currency  CurrencyConfig  `mapstructure:"currency" validate:"required"`
	Render    RenderConfig    `mapstructure:"render" validate:"required"`
	Orders    OrdersConfig    `mapstructure:"orders"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	PublicBaseURL   string        `mapstructure:"public_base_url" validate:"required,url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	Compression     bool          `mapstructure:"compression"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory postgres"`
}

type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns" validate:"gte=0"`
	MinConns        int32         `mapstructure:"min_conns" validate:"gte=0"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

type NumberingConfig struct {
	Prefix         string        `mapstructure:"prefix" validate:"required,alphanum"`
	PadWidth       int           `mapstructure:"pad_width" validate:"gte=1,lte=12"`
	Strategy       string        `mapstructure:"strategy" validate:"omitempty,oneof=atomic cas compare_and_swap"`
	MaxRetries     uint64        `mapstructure:"max_retries" validate:"gte=1"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff" validate:"gt=0"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff" validate:"gt=0"`
}

type CurrencyConfig struct {
	Symbol string `mapstructure:"symbol" validate:"required"`
}

type RenderConfig struct {
	ProductName        string `mapstructure:"product_name" validate:"required"`
	FallbackSellerName string `mapstructure:"fallback_seller_name" validate:"required"`
	FontPath           string `mapstructure:"font_path" validate:"omitempty,file"`
	NotesWidth         uint   `mapstructure:"notes_width" validate:"gte=20"`
	Timezone           string `mapstructure:"timezone" validate:"required"`
}

type OrdersConfig struct {
	// StatusPolicy: "permissive", "forward_only" or "cel:<expression over from, to>"
	StatusPolicy string `mapstructure:"status_policy"`
}

// NumeratorConfig converts the numbering section.
func (c NumberingConfig) NumeratorConfig() (corenumerator.Config, error) {
	strategy, err := corenumerator.ParseStrategy(c.Strategy)
	if err != nil {
		return corenumerator.Config{}, err
	}
	return corenumerator.Config{
		Prefix:         c.Prefix,
		PadWidth:       c.PadWidth,
		Strategy:       strategy,
		MaxRetries:     c.MaxRetries,
		InitialBackoff: c.InitialBackoff,
		MaxBackoff:     c.MaxBackoff,
	}, nil
}

// Location resolves the render timezone.
func (c RenderConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func setDefaults(v *viper.Viper) {
	num := corenumerator.DefaultConfig()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.public_base_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.compression", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)

	v.SetDefault("storage.driver", DriverMemory)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", time.Hour)
	v.SetDefault("postgres.migrate", true)

	v.SetDefault("numbering.prefix", num.Prefix)
	v.SetDefault("numbering.pad_width", num.PadWidth)
	v.SetDefault("numbering.strategy", num.Strategy.String())
	v.SetDefault("numbering.max_retries", num.MaxRetries)
	v.SetDefault("numbering.initial_backoff", num.InitialBackoff)
	v.SetDefault("numbering.max_backoff", num.MaxBackoff)

	v.SetDefault("currency.symbol", "GH¢")

	v.SetDefault("render.product_name", "QuickInvoice GH")
	v.SetDefault("render.fallback_seller_name", "My Business")
	v.SetDefault("render.font_path", "")
	v.SetDefault("render.notes_width", 90)
	v.SetDefault("render.timezone", "UTC")

	v.SetDefault("orders.status_policy", "permissive")
}

// Load reads configuration. Precedence: environment, .env, config.yaml, defaults.
// Extra search paths for config.yaml may be given; a missing file is not an error.
func Load(searchPaths ...string) (*Configuration, error) {
	// Existing environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/quickinvoice")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field rules.
func (c Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Storage.Driver == DriverPostgres && strings.TrimSpace(c.Postgres.DSN) == "" {
		return errors.New("invalid config: postgres.dsn is required when storage.driver is postgres")
	}
	if c.Numbering.MaxBackoff < c.Numbering.InitialBackoff {
		return errors.New("invalid config: numbering.max_backoff must not be below numbering.initial_backoff")
	}
	if _, err := c.Render.Location(); err != nil {
		return fmt.Errorf("invalid config: render.timezone: %w", err)
	}
	return nil
}
