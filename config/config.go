// Package config loads runtime configuration from environment variables and
// an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	ServerHost string `mapstructure:"server_host"`
	ServerPort string `mapstructure:"server_port"`

	// Catalog database. Driver is "postgres" or "sqlite"; empty disables
	// the database and the engine serves the built-in fallback catalog.
	DatabaseDriver string `mapstructure:"database_driver"`
	DatabaseDSN    string `mapstructure:"database_dsn"`

	// Result cache. When RedisAddr and RedisURL are both empty an
	// in-process cache is used.
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisURL      string        `mapstructure:"redis_url"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`

	// Solver limits
	SolveTimeLimit time.Duration `mapstructure:"solve_time_limit"`

	// Audit sink. An S3 bucket takes precedence over the local directory.
	AuditDir      string `mapstructure:"audit_dir"`
	AuditS3Bucket string `mapstructure:"audit_s3_bucket"`
	AuditS3Prefix string `mapstructure:"audit_s3_prefix"`
	AWSRegion     string `mapstructure:"aws_region"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`
	LogLevel       string   `mapstructure:"log_level"`
}

// Load reads configuration from OPTIMIZER_* environment variables, with an
// optional optimizer.yaml in the working directory as a base layer.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8080")
	v.SetDefault("database_driver", "")
	v.SetDefault("database_dsn", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl", 2*time.Minute)
	v.SetDefault("solve_time_limit", 3*time.Second)
	v.SetDefault("audit_dir", ".optimizer-audit")
	v.SetDefault("audit_s3_bucket", "")
	v.SetDefault("audit_s3_prefix", "optimizer-audit")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("optimizer")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("optimizer")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	if c.DatabaseDriver != "" && c.DatabaseDSN == "" {
		return errors.New("database_dsn is required when database_driver is set")
	}
	if c.SolveTimeLimit <= 0 {
		return errors.New("solve_time_limit must be positive")
	}
	if c.CacheTTL < 0 {
		return errors.New("cache_ttl must not be negative")
	}
	return nil
}

// Addr is the host:port the HTTP server binds.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}
