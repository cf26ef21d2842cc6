package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "STORE_DRIVER", "DATABASE_DSN", "SQLITE_PATH", "MIGRATIONS_DIR", "HTTP_ADDR",
		"CHANNEL_ID", "CHANNEL_KEY", "MAX_COMMIT_ATTEMPTS", "RETRY_BACKOFF", "RABBITMQ_URI",
		"EVENTS_QUEUE", "MOVEMENTS_QUEUE", "MONGO_URI", "MONGO_DATABASE", "METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("expected memory store, got %q", cfg.StoreDriver)
	}
	if cfg.MaxCommitAttempts != 5 || cfg.RetryBackoff != 5*time.Millisecond {
		t.Fatalf("expected 5 attempts with 5ms backoff, got %d / %s", cfg.MaxCommitAttempts, cfg.RetryBackoff)
	}
	if cfg.DatabaseDSN != "host=localhost port=5432 dbname=cashflow_ledger user=postgres password=postgres connect_timeout=30 statement_timeout=30s sslmode=disable" {
		t.Fatalf("unexpected normalized dsn %q", cfg.DatabaseDSN)
	}
}

func TestLoadFileThenEnvironment(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "cashflow.toml")
	content := `
store_driver = "sqlite"
sqlite_path = "/tmp/ledger.db"
max_commit_attempts = 8
retry_backoff = "20ms"
metrics_enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_COMMIT_ATTEMPTS", " 3 ")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != StoreSQLite || cfg.SQLitePath != "/tmp/ledger.db" {
		t.Fatalf("expected sqlite settings from file, got %+v", cfg)
	}
	if cfg.MaxCommitAttempts != 3 {
		t.Fatalf("expected env to override attempts, got %d", cfg.MaxCommitAttempts)
	}
	if cfg.RetryBackoff != 20*time.Millisecond || cfg.MetricsEnabled {
		t.Fatalf("expected file backoff and metrics off, got %s / %v", cfg.RetryBackoff, cfg.MetricsEnabled)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected env http addr, got %q", cfg.HTTPAddr)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"STORE_DRIVER":        "redis",
		"MAX_COMMIT_ATTEMPTS": "zero",
		"RETRY_BACKOFF":       "soon",
		"METRICS_ENABLED":     "maybe",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestNormalizeConnectionStringPassesThroughURLs(t *testing.T) {
	url := "postgres://user:pass@db:5432/ledger?sslmode=require"
	if got := normalizeConnectionString(url); got != url {
		t.Fatalf("expected url unchanged, got %q", got)
	}
}
