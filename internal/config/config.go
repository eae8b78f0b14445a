package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	Telegram    TelegramConfig  `mapstructure:"telegram"`
	Forecast    ForecastConfig  `mapstructure:"forecast"`
	Generator   GeneratorConfig `mapstructure:"generator"`
	Security    SecurityConfig  `mapstructure:"security"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	DatabaseURL string `mapstructure:"database_url"`
	MaxConns    int    `mapstructure:"max_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	LogLevel       string `mapstructure:"log_level"`
}

type TelegramConfig struct {
	BotToken       string `mapstructure:"bot_token"`
	ChatID         int64  `mapstructure:"chat_id"`
	DigestInterval string `mapstructure:"digest_interval"`
}

// ForecastConfig holds the default method parameters applied when a request
// does not override them.
type ForecastConfig struct {
	Window   int     `mapstructure:"window"`
	Alpha    float64 `mapstructure:"alpha"`
	Beta     float64 `mapstructure:"beta"`
	Gamma    float64 `mapstructure:"gamma"`
	Period   int     `mapstructure:"period"`
	Horizon  int     `mapstructure:"horizon"`
	CacheTTL string  `mapstructure:"cache_ttl"`
}

// GeneratorConfig controls the synthetic demo series seeded into an empty
// database at startup.
type GeneratorConfig struct {
	Enabled bool  `mapstructure:"enabled"`
	Seed    int64 `mapstructure:"seed"`
	Weeks   int   `mapstructure:"weeks"`
}

type SecurityConfig struct {
	JWTSecret         string `mapstructure:"jwt_secret" json:"-" yaml:"-"`
	JWTExpiry         string `mapstructure:"jwt_expiry"`
	BcryptCost        int    `mapstructure:"bcrypt_cost"`
	AdminPasswordHash string `mapstructure:"admin_password_hash" json:"-" yaml:"-"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind specific environment variables
	if err := viper.BindEnv("security.jwt_secret", "JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind JWT_SECRET environment variable: %w", err)
	}
	if err := viper.BindEnv("security.admin_password_hash", "ADMIN_PASSWORD_HASH"); err != nil {
		return nil, fmt.Errorf("failed to bind ADMIN_PASSWORD_HASH environment variable: %w", err)
	}
	if err := viper.BindEnv("database.database_url", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind DATABASE_URL environment variable: %w", err)
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	environment := strings.ToLower(config.Environment)

	// Validate JWT secret in non-development environments
	if environment != "development" && config.Security.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required in non-development environments")
	}

	// Validate JWT expiry duration
	if config.Security.JWTExpiry != "" {
		if _, err := time.ParseDuration(config.Security.JWTExpiry); err != nil {
			return nil, fmt.Errorf("invalid JWT expiry duration: %w", err)
		}
	}

	// Validate bcrypt cost parameter
	if config.Security.BcryptCost < bcrypt.MinCost || config.Security.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, config.Security.BcryptCost)
	}

	if err := validateForecast(config.Forecast); err != nil {
		return nil, err
	}

	if config.Telegram.DigestInterval != "" {
		if _, err := time.ParseDuration(config.Telegram.DigestInterval); err != nil {
			return nil, fmt.Errorf("invalid digest interval: %w", err)
		}
	}

	// Update config with normalized environment
	config.Environment = environment

	return &config, nil
}

func validateForecast(cfg ForecastConfig) error {
	for name, value := range map[string]float64{
		"alpha": cfg.Alpha,
		"beta":  cfg.Beta,
		"gamma": cfg.Gamma,
	} {
		if value <= 0 || value >= 1 {
			return fmt.Errorf("forecast %s must be in (0,1), got %g", name, value)
		}
	}
	if cfg.Window < 1 {
		return fmt.Errorf("forecast window must be at least 1, got %d", cfg.Window)
	}
	if cfg.Period < 1 {
		return fmt.Errorf("forecast period must be at least 1, got %d", cfg.Period)
	}
	if cfg.Horizon < 1 {
		return fmt.Errorf("forecast horizon must be at least 1, got %d", cfg.Horizon)
	}
	if cfg.CacheTTL != "" {
		if _, err := time.ParseDuration(cfg.CacheTTL); err != nil {
			return fmt.Errorf("invalid forecast cache TTL: %w", err)
		}
	}
	return nil
}

// CacheTTLDuration returns the parsed forecast cache TTL, defaulting to
// fifteen minutes when unset or invalid.
func (c ForecastConfig) CacheTTLDuration() time.Duration {
	if c.CacheTTL == "" {
		return 15 * time.Minute
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// JWTExpiryDuration returns the parsed token lifetime, defaulting to one day
// when unset or invalid.
func (c SecurityConfig) JWTExpiryDuration() time.Duration {
	if c.JWTExpiry == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(c.JWTExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// DigestIntervalDuration returns the parsed digest interval, defaulting to
// weekly when unset or invalid.
func (c TelegramConfig) DigestIntervalDuration() time.Duration {
	if c.DigestInterval == "" {
		return 7 * 24 * time.Hour
	}
	d, err := time.ParseDuration(c.DigestInterval)
	if err != nil {
		return 7 * 24 * time.Hour
	}
	return d
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Set database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "weekcast")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.database_url", "")
	viper.SetDefault("database.max_conns", 25)

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.otlp_endpoint", "")
	viper.SetDefault("telemetry.service_name", "weekcast")
	viper.SetDefault("telemetry.service_version", "1.0.0")
	viper.SetDefault("telemetry.log_level", "info")

	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", 0)
	viper.SetDefault("telegram.digest_interval", "168h")

	// Forecast defaults
	viper.SetDefault("forecast.window", 8)
	viper.SetDefault("forecast.alpha", 0.35)
	viper.SetDefault("forecast.beta", 0.15)
	viper.SetDefault("forecast.gamma", 0.25)
	viper.SetDefault("forecast.period", 52)
	viper.SetDefault("forecast.horizon", 12)
	viper.SetDefault("forecast.cache_ttl", "15m")

	// Generator
	viper.SetDefault("generator.enabled", true)
	viper.SetDefault("generator.seed", 424242)
	viper.SetDefault("generator.weeks", 156)

	// Security
	viper.SetDefault("security.jwt_secret", "")
	viper.SetDefault("security.jwt_expiry", "24h")
	viper.SetDefault("security.bcrypt_cost", 12)
	viper.SetDefault("security.admin_password_hash", "")
}
