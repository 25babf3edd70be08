// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fjacquet/budget-cli/internal/dateutils"
	"fjacquet/budget-cli/internal/importer"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Store struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"store" yaml:"store"`

	Categories struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"categories" yaml:"categories"`

	Render struct {
		Exclusions []string `mapstructure:"exclusions" yaml:"exclusions"`
	} `mapstructure:"render" yaml:"render"`

	Report struct {
		Period        string `mapstructure:"period" yaml:"period"`
		MovingAverage int    `mapstructure:"moving_average" yaml:"moving_average"`
		Format        string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"report" yaml:"report"`

	Accounts map[string]importer.Account `mapstructure:"accounts" yaml:"accounts"`
}

// AccountList returns the configured accounts with their map keys stamped
// as names, in no particular order.
func (c *Config) AccountList() []importer.Account {
	accounts := make([]importer.Account, 0, len(c.Accounts))
	for name, acct := range c.Accounts {
		acct.Name = name
		accounts = append(accounts, acct)
	}
	return accounts
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.budget-cli")
	v.AddConfigPath(".budget-cli")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("BUDGET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// Config file not found or invalid is OK, we'll use defaults and env vars
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Store defaults
	v.SetDefault("store.path", "budget.db")

	// Category defaults
	v.SetDefault("categories.file", "categories.yaml")

	// Render defaults
	v.SetDefault("render.exclusions", []string{})

	// Report defaults
	v.SetDefault("report.period", dateutils.PeriodMonth)
	v.SetDefault("report.moving_average", 0)
	v.SetDefault("report.format", "csv")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate report settings
	switch config.Report.Period {
	case dateutils.PeriodDay, dateutils.PeriodWeek, dateutils.PeriodMonth, dateutils.PeriodYear:
	default:
		return fmt.Errorf("invalid report period: %s (must be day, week, month, or year)", config.Report.Period)
	}
	if config.Report.MovingAverage < 0 {
		return fmt.Errorf("report.moving_average must not be negative, got: %d", config.Report.MovingAverage)
	}
	if config.Report.Format != "csv" && config.Report.Format != "json" {
		return fmt.Errorf("invalid report format: %s (must be 'csv' or 'json')", config.Report.Format)
	}

	// Validate accounts
	for name, acct := range config.Accounts {
		if acct.Folder == "" {
			return fmt.Errorf("account %s: folder is required", name)
		}
	}

	return nil
}
