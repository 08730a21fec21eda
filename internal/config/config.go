package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	HTTP     HTTPConfig
	JWT      JWTConfig
	Log      LogConfig
	Audit    AuditConfig
	Orders   OrderConfig
}

type AppConfig struct {
	Env string
}

type DatabaseConfig struct {
	URL string
}

type HTTPConfig struct {
	Port           string
	AllowedOrigins string // comma-separated
	MaxBodyBytes   int64
}

type JWTConfig struct {
	Secret string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// AuditConfig controls the asynchronous timeline recorder.
// An empty AMQPURL disables the RabbitMQ sink.
type AuditConfig struct {
	AMQPURL  string
	Exchange string
	Buffer   int
}

// OrderConfig holds defaults applied by the order engine.
type OrderConfig struct {
	InvoiceDueDays int
	DefaultVatRate decimal.Decimal
}

// Load reads configuration. Priority (highest first):
//  1. environment variables with the PORTAL_ prefix (PORTAL_DATABASE_URL, ...)
//  2. unprefixed legacy variables DATABASE_URL, SERVER_PORT, ALLOWED_ORIGINS, JWT_SECRET
//  3. config.yaml in . or ./config
//  4. built-in defaults
//
// A .env file in the working directory, if present, is loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for key, legacy := range map[string]string{
		"database.url":         "DATABASE_URL",
		"http.port":            "SERVER_PORT",
		"http.allowed_origins": "ALLOWED_ORIGINS",
		"jwt.secret":           "JWT_SECRET",
	} {
		_ = v.BindEnv(key, "PORTAL_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy)
	}

	vat, err := decimal.NewFromString(v.GetString("orders.default_vat_rate"))
	if err != nil {
		return nil, fmt.Errorf("invalid orders.default_vat_rate: %w", err)
	}

	cfg := &Config{
		App: AppConfig{Env: v.GetString("app.env")},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
		HTTP: HTTPConfig{
			Port:           v.GetString("http.port"),
			AllowedOrigins: v.GetString("http.allowed_origins"),
			MaxBodyBytes:   v.GetInt64("http.max_body_bytes"),
		},
		JWT: JWTConfig{Secret: v.GetString("jwt.secret")},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Audit: AuditConfig{
			AMQPURL:  v.GetString("audit.amqp_url"),
			Exchange: v.GetString("audit.exchange"),
			Buffer:   v.GetInt("audit.buffer"),
		},
		Orders: OrderConfig{
			InvoiceDueDays: v.GetInt("orders.invoice_due_days"),
			DefaultVatRate: vat,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.allowed_origins", "")
	v.SetDefault("http.max_body_bytes", 1<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("audit.exchange", "order_timeline")
	v.SetDefault("audit.buffer", 256)
	v.SetDefault("orders.invoice_due_days", 14)
	v.SetDefault("orders.default_vat_rate", "25")
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if c.Orders.InvoiceDueDays < 0 {
		return fmt.Errorf("orders.invoice_due_days must not be negative")
	}
	if c.Audit.Buffer <= 0 {
		return fmt.Errorf("audit.buffer must be positive")
	}
	if c.IsProduction() && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	return nil
}

// IsProduction reports whether the app runs with app.env=production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
