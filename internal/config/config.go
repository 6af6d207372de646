package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers understood by the database package.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds the process configuration. It is read once at start-up.
type Config struct {
	AppPort   string
	LogLevel  string
	LogFormat string

	StorageDriver   string
	Postgres        Postgres
	SQLitePath      string
	ConnectAttempts int
	ConnectBackoff  time.Duration

	VerifyPurchaseUser bool

	RabbitMQ RabbitMQ
}

// Postgres holds the connection parameters of the Postgres backend.
type Postgres struct {
	User     string
	Password string
	DB       string
	Host     string
	Port     int
	SSLMode  string
}

// DSN renders the parameters as a postgres:// URL.
func (p Postgres) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.DB,
		RawQuery: url.Values{"sslmode": []string{p.SSLMode}}.Encode(),
	}
	return u.String()
}

// RabbitMQ holds the optional event broker settings. An empty URL disables publishing.
type RabbitMQ struct {
	URL     string
	Queue   string
	Consume bool
}

// Enabled reports whether a broker URL is configured.
func (r RabbitMQ) Enabled() bool {
	return r.URL != ""
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.SetDefault("STORAGE_DRIVER", DriverPostgres)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "fastapi_db")
	v.SetDefault("POSTGRES_HOST", "db")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "purchaselog.db")
	v.SetDefault("DB_CONNECT_ATTEMPTS", 30)
	v.SetDefault("DB_CONNECT_BACKOFF", time.Second)

	v.SetDefault("PURCHASES_VERIFY_USER", false)

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "purchase_events")
	v.SetDefault("RABBITMQ_CONSUME", false)
}

// Load reads the configuration from v, falling back to the defaults and
// the process environment.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:   v.GetString("APP_PORT"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),

		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		Postgres: Postgres{
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			DB:       v.GetString("POSTGRES_DB"),
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetInt("POSTGRES_PORT"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
		},
		SQLitePath:      v.GetString("SQLITE_PATH"),
		ConnectAttempts: v.GetInt("DB_CONNECT_ATTEMPTS"),
		ConnectBackoff:  v.GetDuration("DB_CONNECT_BACKOFF"),

		VerifyPurchaseUser: v.GetBool("PURCHASES_VERIFY_USER"),

		RabbitMQ: RabbitMQ{
			URL:     v.GetString("RABBITMQ_URL"),
			Queue:   v.GetString("RABBITMQ_QUEUE"),
			Consume: v.GetBool("RABBITMQ_CONSUME"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("DB_CONNECT_ATTEMPTS must be at least 1, got %d", c.ConnectAttempts)
	}
	if c.ConnectBackoff < 0 {
		return fmt.Errorf("DB_CONNECT_BACKOFF must not be negative, got %s", c.ConnectBackoff)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}
	if c.RabbitMQ.Enabled() && c.RabbitMQ.Queue == "" {
		return fmt.Errorf("RABBITMQ_QUEUE is required when RABBITMQ_URL is set")
	}
	return nil
}
