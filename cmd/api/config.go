package main

import (
	"fmt"

	"github.com/spf13/viper"

	"rpn-calculator/internal/config"
)

// loadConfig reads .env (when present) and RPN_* environment variables.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
