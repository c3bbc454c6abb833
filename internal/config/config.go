// Package config provides Viper-based hierarchical configuration management:
// defaults, then an optional config.yaml, then FINANZAS_-prefixed environment
// variables.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sebascrugu/finanzas-email-tracker/internal/logging"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Reglas struct {
		Categorias string `mapstructure:"categorias" yaml:"categorias"`
		Comercios  string `mapstructure:"comercios" yaml:"comercios"`
		Ruido      string `mapstructure:"ruido" yaml:"ruido"`
	} `mapstructure:"reglas" yaml:"reglas"`
}

// LoadEnv loads a .env file when present. Missing files are fine.
func LoadEnv() {
	_ = godotenv.Load()
}

// InitializeConfig initializes Viper configuration with hierarchical loading.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("reglas.categorias", "categorias.yaml")
	v.SetDefault("reglas.comercios", "comercios.yaml")
	v.SetDefault("reglas.ruido", "ruido.yaml")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.finanzas-email-tracker")
	v.AddConfigPath(".finanzas-email-tracker")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FINANZAS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Invalid config file is worth surfacing but not fatal; defaults
			// and environment variables still apply.
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// ConfigureLogging builds the application logger from the configuration.
func (c *Config) ConfigureLogging() logging.Logger {
	logger := logging.NewLogrusAdapter(c.Log.Level, c.Log.Format)
	logging.SetDefaultLogger(logger)
	return logger
}
