// Package config loads service configuration from defaults, an optional
// config file, a .env file and SMEERP_* environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	JWT      JWTConfig
	Report   ReportConfig
	Currency CurrencyConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return ":" + c.Port
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

type LogConfig struct {
	Level       string
	Development bool
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// ReportConfig controls the stock ledger.
type ReportConfig struct {
	// PageSize is the number of detail lines rendered per product before a
	// load-more line.
	PageSize int
}

// CurrencyConfig identifies the home currency used for zero tests.
type CurrencyConfig struct {
	Code          string
	DecimalPlaces int32
}

type WorkerConfig struct {
	PollInterval    time.Duration
	BatchSize       int
	MaxRetries      int
	CleanupInterval time.Duration
	Retention       time.Duration
	// MetricsAddr serves /metrics; empty disables it.
	MetricsAddr string
}

const envPrefix = "SMEERP"

// Load reads configuration. configPath may be empty; a missing .env or
// config file is not an error.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("jwt.issuer", "smeerp")

	v.SetDefault("report.page_size", 80)

	v.SetDefault("currency.code", "USD")
	v.SetDefault("currency.decimal_places", 2)

	v.SetDefault("worker.poll_interval", 5*time.Second)
	v.SetDefault("worker.batch_size", 100)
	v.SetDefault("worker.max_retries", 5)
	v.SetDefault("worker.cleanup_interval", time.Hour)
	v.SetDefault("worker.retention", 7*24*time.Hour)
	v.SetDefault("worker.metrics_addr", ":9091")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("database.url"),
			MaxConns: v.GetInt32("database.max_conns"),
			MinConns: v.GetInt32("database.min_conns"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Report: ReportConfig{
			PageSize: v.GetInt("report.page_size"),
		},
		Currency: CurrencyConfig{
			Code:          v.GetString("currency.code"),
			DecimalPlaces: v.GetInt32("currency.decimal_places"),
		},
		Worker: WorkerConfig{
			PollInterval:    v.GetDuration("worker.poll_interval"),
			BatchSize:       v.GetInt("worker.batch_size"),
			MaxRetries:      v.GetInt("worker.max_retries"),
			CleanupInterval: v.GetDuration("worker.cleanup_interval"),
			Retention:       v.GetDuration("worker.retention"),
			MetricsAddr:     v.GetString("worker.metrics_addr"),
		},
	}
}

// Validate checks required settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.Report.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("report.page_size must be positive, got %d", c.Report.PageSize))
	}
	if c.Currency.DecimalPlaces < 0 {
		errs = append(errs, fmt.Errorf("currency.decimal_places must not be negative, got %d", c.Currency.DecimalPlaces))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
