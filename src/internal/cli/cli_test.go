package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/repository/sqlite"
	"github.com/api-sage/cashflow-ledger/src/internal/config"
	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"serve", "migrate", "movement"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestAppServesHealthAndMetricsOnMemoryStore(t *testing.T) {
	cfg := config.Default()
	cfg.RetryBackoff = time.Millisecond

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	handler := a.handler()
	for _, path := range []string{"/health", "/metrics"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/clients/any", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAppRejectsUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.StoreDriver = "cassandra"

	_, err := newApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestMigrateMemoryIsNoop(t *testing.T) {
	assert.NoError(t, migrate(context.Background(), config.Default()))
}

func TestMovementCommandAppliesAgainstSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_DRIVER", config.StoreSQLite)
	t.Setenv("SQLITE_PATH", path)

	ctx := context.Background()
	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	now := time.Now().UTC()
	_, err = store.Create(ctx, domain.Account{
		ID:               "acc-cli",
		Name:             "Caio",
		Email:            "caio@example.com",
		Balance:          decimal.Zero,
		Savings:          decimal.Zero,
		CreditUsed:       decimal.Zero,
		LoanTotal:        decimal.Zero,
		InstallmentValue: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"movement", "--account", "acc-cli", "--type", "entry", "--amount", "12.345"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.ExecuteContext(ctx))

	var resp models.MovementResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "12.35", resp.Client.Balance)
	assert.Equal(t, "deposit", resp.Transaction.Type)
	assert.Equal(t, 1, resp.Attempts)
}
