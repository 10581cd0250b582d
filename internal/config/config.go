// Package config loads application configuration from an optional
// config.yaml and METRICSYNC_* environment variables.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Visible  VisibleConfig  `yaml:"visible" mapstructure:"visible"`
	Affinity AffinityConfig `yaml:"affinity" mapstructure:"affinity"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// VisibleConfig holds Visible.vc API credentials.
type VisibleConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Token     string `yaml:"token" mapstructure:"token"`
	CompanyID string `yaml:"company_id" mapstructure:"company_id"`
}

// AffinityConfig holds Affinity CRM API credentials.
type AffinityConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Token   string `yaml:"token" mapstructure:"token"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("METRICSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Credential keys get empty defaults so viper picks them up
	// from the environment even when no config file registers them.
	v.SetDefault("visible.base_url", "https://api.visible.vc")
	v.SetDefault("visible.token", "")
	v.SetDefault("visible.company_id", "")
	v.SetDefault("affinity.base_url", "https://api.affinity.co")
	v.SetDefault("affinity.token", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that everything a sync run needs is present.
func (c *Config) Validate() error {
	var missing []string
	if c.Visible.Token == "" {
		missing = append(missing, "visible.token is required")
	}
	if c.Visible.CompanyID == "" {
		missing = append(missing, "visible.company_id is required")
	}
	if c.Affinity.Token == "" {
		missing = append(missing, "affinity.token is required")
	}
	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
