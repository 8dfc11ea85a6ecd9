// Package config provides configuration management for librakeep
package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/librakeep/librakeep/pkg/errors"
)

// Config holds the full process configuration. Values are read once at
// startup and never mutated at runtime.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`

	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Lending  LendingConfig  `mapstructure:"lending" yaml:"lending"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// DatabaseConfig holds persistence settings
type DatabaseConfig struct {
	Type string `mapstructure:"type" yaml:"type" validate:"oneof=sqlite"`
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

// AuthConfig holds token issuance settings
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" yaml:"jwt_secret" validate:"required,min=16"`
	JWTExpiry time.Duration `mapstructure:"jwt_expiry" yaml:"jwt_expiry" validate:"min=1m"`
}

// LendingConfig holds the borrow policy values
type LendingConfig struct {
	// MaxBorrowDays is the loan period added to the borrow date to
	// compute the due date.
	MaxBorrowDays int `mapstructure:"max_borrow_days" yaml:"max_borrow_days" validate:"min=1"`
	// FinePerDay is the amount charged per full or partial day overdue.
	FinePerDay int64 `mapstructure:"fine_per_day" yaml:"fine_per_day" validate:"min=0"`
	// SweepInterval controls how often the background overdue sweep runs.
	// Zero disables the background sweeper.
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// Load reads configuration from an optional YAML file and LIBRAKEEP_*
// environment variables, applying defaults for everything unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LIBRAKEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigInvalidError("failed to read config file: " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigInvalidError("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in defaults without reading any source.
// Intended for tests.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always unmarshal cleanly.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "./data/librakeep.db")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiry", 7*24*time.Hour)

	v.SetDefault("lending.max_borrow_days", 14)
	v.SetDefault("lending.fine_per_day", 5)
	v.SetDefault("lending.sweep_interval", time.Hour)
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.NewConfigInvalidError(err.Error())
	}
	return nil
}
