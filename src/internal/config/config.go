package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=cashflow_ledger;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultChannelID = "CashflowApp"
const defaultChannelKey = "CashflowKey001"

type Config struct {
	StoreDriver       string        `toml:"store_driver"`
	DatabaseDSN       string        `toml:"database_dsn"`
	SQLitePath        string        `toml:"sqlite_path"`
	MigrationsDir     string        `toml:"migrations_dir"`
	HTTPAddr          string        `toml:"http_addr"`
	ChannelID         string        `toml:"channel_id"`
	ChannelKey        string        `toml:"channel_key"`
	MaxCommitAttempts int           `toml:"max_commit_attempts"`
	RetryBackoff      time.Duration `toml:"-"`
	RetryBackoffRaw   string        `toml:"retry_backoff"`
	RabbitMQURI       string        `toml:"rabbitmq_uri"`
	EventsQueue       string        `toml:"events_queue"`
	MovementsQueue    string        `toml:"movements_queue"`
	MongoURI          string        `toml:"mongo_uri"`
	MongoDatabase     string        `toml:"mongo_database"`
	MetricsEnabled    bool          `toml:"metrics_enabled"`
}

func Default() Config {
	return Config{
		StoreDriver:       StoreMemory,
		DatabaseDSN:       defaultConnectionString,
		SQLitePath:        filepath.Join("data", "cashflow.db"),
		MigrationsDir:     filepath.Join("src", "migrations"),
		HTTPAddr:          ":8080",
		ChannelID:         defaultChannelID,
		ChannelKey:        defaultChannelKey,
		MaxCommitAttempts: 5,
		RetryBackoffRaw:   "5ms",
		EventsQueue:       "cashflow.events",
		MovementsQueue:    "cashflow.movements",
		MongoDatabase:     "cashflow",
		MetricsEnabled:    true,
	}
}

// Load layers defaults, the TOML file named by CONFIG_FILE and environment
// variables, in that order. Blank environment values are ignored.
func Load() (Config, error) {
	cfg := Default()

	if path := env("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config file %q: %w", path, err)
		}
	}

	overrideString(&cfg.StoreDriver, "STORE_DRIVER")
	overrideString(&cfg.DatabaseDSN, "DATABASE_DSN")
	overrideString(&cfg.SQLitePath, "SQLITE_PATH")
	overrideString(&cfg.MigrationsDir, "MIGRATIONS_DIR")
	overrideString(&cfg.HTTPAddr, "HTTP_ADDR")
	overrideString(&cfg.ChannelID, "CHANNEL_ID")
	overrideString(&cfg.ChannelKey, "CHANNEL_KEY")
	overrideString(&cfg.RetryBackoffRaw, "RETRY_BACKOFF")
	overrideString(&cfg.RabbitMQURI, "RABBITMQ_URI")
	overrideString(&cfg.EventsQueue, "EVENTS_QUEUE")
	overrideString(&cfg.MovementsQueue, "MOVEMENTS_QUEUE")
	overrideString(&cfg.MongoURI, "MONGO_URI")
	overrideString(&cfg.MongoDatabase, "MONGO_DATABASE")

	if raw := env("MAX_COMMIT_ATTEMPTS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("MAX_COMMIT_ATTEMPTS must be an integer: %w", err)
		}
		cfg.MaxCommitAttempts = n
	}
	if raw := env("METRICS_ENABLED"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("METRICS_ENABLED must be a boolean: %w", err)
		}
		cfg.MetricsEnabled = enabled
	}

	backoff, err := time.ParseDuration(strings.TrimSpace(cfg.RetryBackoffRaw))
	if err != nil {
		return Config{}, fmt.Errorf("retry backoff %q: %w", cfg.RetryBackoffRaw, err)
	}
	cfg.RetryBackoff = backoff

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.DatabaseDSN = normalizeConnectionString(cfg.DatabaseDSN)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("store driver %q is not one of memory, postgres, sqlite", c.StoreDriver)
	}
	if c.MaxCommitAttempts <= 0 {
		return fmt.Errorf("max commit attempts must be greater than zero, got %d", c.MaxCommitAttempts)
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff must not be negative, got %s", c.RetryBackoff)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("http address is required")
	}

	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func overrideString(target *string, key string) {
	if value := env(key); value != "" {
		*target = value
	}
}

// normalizeConnectionString turns an ADO.NET style connection string into
// libpq key/value form. URLs and strings already in libpq form pass through.
func normalizeConnectionString(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "postgres://") || strings.HasPrefix(trimmed, "postgresql://") || !strings.Contains(trimmed, ";") {
		return trimmed
	}

	parts := strings.Split(trimmed, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host", "server":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username", "user id":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode", "ssl mode":
			hasSSLMode = true
			out = append(out, "sslmode="+strings.ToLower(val))
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return trimmed
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
