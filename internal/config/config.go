// Package config loads runtime settings for the rpn CLI and the HTTP API.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix namespaces environment overrides, e.g. RPN_VERBOSE=true.
const EnvPrefix = "RPN"

// Keys shared by flags, environment variables and the .env file.
const (
	KeyVerbose       = "verbose"
	KeyFile          = "file"
	KeyStrict        = "strict"
	KeyLogLevel      = "log-level"
	KeyNoColor       = "no-color"
	KeyAddr          = "addr"
	KeyServiceName   = "service-name"
	KeyMaxBatchLines = "max-batch-lines"
)

// Config represents the application configuration
type Config struct {
	// Verbose prints the remaining tokens and stack after every token
	Verbose bool `mapstructure:"verbose"`

	// File to read formulas from (empty means standard input)
	File string `mapstructure:"file"`

	// Strict makes the CLI exit non-zero when any line failed to evaluate
	Strict bool `mapstructure:"strict"`

	// LogLevel is a zap level name (debug, info, warn, error)
	LogLevel string `mapstructure:"log-level"`

	// NoColor disables coloured error output
	NoColor bool `mapstructure:"no-color"`

	// Addr is the HTTP listen address for the API server
	Addr string `mapstructure:"addr"`

	// ServiceName is used when OTEL_SERVICE_NAME is unset
	ServiceName string `mapstructure:"service-name"`

	// MaxBatchLines caps the number of lines accepted by the batch endpoint
	MaxBatchLines int `mapstructure:"max-batch-lines"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Verbose:       false,
		File:          "",
		Strict:        false,
		LogLevel:      "warn",
		NoColor:       false,
		Addr:          ":8080",
		ServiceName:   "rpn-calculator",
		MaxBatchLines: 1000,
	}
}

// SetDefaults registers DefaultConfig values on v and enables RPN_* env lookup.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault(KeyVerbose, d.Verbose)
	v.SetDefault(KeyFile, d.File)
	v.SetDefault(KeyStrict, d.Strict)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyNoColor, d.NoColor)
	v.SetDefault(KeyAddr, d.Addr)
	v.SetDefault(KeyServiceName, d.ServiceName)
	v.SetDefault(KeyMaxBatchLines, d.MaxBatchLines)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads a validated Config from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Verbose:       v.GetBool(KeyVerbose),
		File:          v.GetString(KeyFile),
		Strict:        v.GetBool(KeyStrict),
		LogLevel:      v.GetString(KeyLogLevel),
		NoColor:       v.GetBool(KeyNoColor),
		Addr:          v.GetString(KeyAddr),
		ServiceName:   v.GetString(KeyServiceName),
		MaxBatchLines: v.GetInt(KeyMaxBatchLines),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that flags and env vars cannot constrain.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.MaxBatchLines <= 0 {
		return fmt.Errorf("max-batch-lines must be positive, got %d", c.MaxBatchLines)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("invalid log-level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// LoadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func LoadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}
