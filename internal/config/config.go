// Package config loads application configuration from file and environment
// and initializes the global logger.
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
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Anomaly    AnomalyConfig    `yaml:"anomaly" mapstructure:"anomaly"`
	Playbook   PlaybookConfig   `yaml:"playbook" mapstructure:"playbook"`
	Fixture    FixtureConfig    `yaml:"fixture" mapstructure:"fixture"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// ScoringConfig holds the health-score weights and the worker count used
// when scoring a portfolio concurrently. Weights must sum to ~1.0.
type ScoringConfig struct {
	NPSWeight     float64 `yaml:"nps_weight" mapstructure:"nps_weight"`
	UsageWeight   float64 `yaml:"usage_weight" mapstructure:"usage_weight"`
	TicketWeight  float64 `yaml:"ticket_weight" mapstructure:"ticket_weight"`
	BillingWeight float64 `yaml:"billing_weight" mapstructure:"billing_weight"`
	Workers       int     `yaml:"workers" mapstructure:"workers"`
}

// AnomalyConfig holds the usage anomaly detector thresholds.
type AnomalyConfig struct {
	Window    int     `yaml:"window" mapstructure:"window"`
	DropRatio float64 `yaml:"drop_ratio" mapstructure:"drop_ratio"`
	Floor     float64 `yaml:"floor" mapstructure:"floor"`
}

// PlaybookConfig configures the recommender.
type PlaybookConfig struct {
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
}

// FixtureConfig configures the deterministic demo account generator.
type FixtureConfig struct {
	Seed  int64 `yaml:"seed" mapstructure:"seed"`
	Count int   `yaml:"count" mapstructure:"count"`
}

// SalesforceConfig holds Salesforce JWT auth settings for the CRM source.
type SalesforceConfig struct {
	ClientID string  `yaml:"client_id" mapstructure:"client_id"`
	Username string  `yaml:"username" mapstructure:"username"`
	KeyPath  string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string  `yaml:"login_url" mapstructure:"login_url"`
	RPS      float64 `yaml:"rps" mapstructure:"rps"`
}

// NotionConfig holds the Notion integration token and target database for
// playbook export.
type NotionConfig struct {
	Token      string  `yaml:"token" mapstructure:"token"`
	PlaybookDB string  `yaml:"playbook_db" mapstructure:"playbook_db"`
	RPS        float64 `yaml:"rps" mapstructure:"rps"`
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
	v.SetEnvPrefix("HEALTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "health.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("scoring.nps_weight", 0.30)
	v.SetDefault("scoring.usage_weight", 0.30)
	v.SetDefault("scoring.ticket_weight", 0.20)
	v.SetDefault("scoring.billing_weight", 0.20)
	v.SetDefault("scoring.workers", 8)
	v.SetDefault("anomaly.window", 7)
	v.SetDefault("anomaly.drop_ratio", 0.7)
	v.SetDefault("anomaly.floor", 50)
	v.SetDefault("fixture.seed", 42)
	v.SetDefault("fixture.count", 50)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.rps", 5)
	v.SetDefault("notion.rps", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
