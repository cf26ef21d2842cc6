package router_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/events"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/controller"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/middleware"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/router"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/repository/memory"
	"github.com/api-sage/cashflow-ledger/src/internal/commons"
	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/api-sage/cashflow-ledger/src/internal/metrics"
	"github.com/api-sage/cashflow-ledger/src/internal/usecase/engine"
	"github.com/api-sage/cashflow-ledger/src/internal/usecase/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	channelID  = "CashflowApp"
	channelKey = "CashflowKey001"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewStore()
	eng := engine.New(store, engine.Options{Backoff: time.Microsecond})
	m := metrics.New()

	handler := router.New(
		router.Options{
			AuthMiddleware: middleware.BasicAuth(channelID, channelKey),
			MetricsHandler: m.Handler(),
		},
		controller.NewClientController(services.NewClientService(store)),
		controller.NewMovementController(
			services.NewMovementService(eng, store, m),
			services.NewTransactionService(store, store),
		),
	)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.SetBasicAuth(channelID, channelKey)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) commons.Response[T] {
	t.Helper()
	var out commons.Response[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createClient(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := do(t, srv, http.MethodPost, "/clients", models.CreateClientRequest{
		Name:           "Ana Souza",
		Email:          "ana@example.com",
		TransactionPin: "1234",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode[models.ClientResponse](t, resp)
	require.NotNil(t, body.Data)
	return body.Data.ID
}

func TestHealthAndSwaggerArePublic(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	docs, err := srv.Client().Get(srv.URL + "/swagger/openapi.json")
	require.NoError(t, err)
	defer docs.Body.Close()
	assert.Equal(t, http.StatusOK, docs.StatusCode)
	var spec map[string]any
	require.NoError(t, json.NewDecoder(docs.Body).Decode(&spec))
	assert.Contains(t, spec["paths"], "/clients/{id}/movements")
}

func TestClientRoutesRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/clients/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMovementLifecycle(t *testing.T) {
	srv := newTestServer(t)
	id := createClient(t, srv)

	resp := do(t, srv, http.MethodPost, "/clients/"+id+"/movements", models.SubmitMovementRequest{
		Type: "deposit", Amount: "100.00", TransactionPin: "1234",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/clients/"+id+"/movements", models.SubmitMovementRequest{
		Type: "loan_origination", Amount: "300.00", Installments: 3, TransactionPin: "1234",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	loan := decode[models.MovementResponse](t, resp)
	assert.Equal(t, "100.00", loan.Data.Client.Balance)
	assert.Equal(t, "300.00", loan.Data.Client.CreditUsed)

	resp = do(t, srv, http.MethodPost, "/clients/"+id+"/movements", models.SubmitMovementRequest{
		Type: "loan_origination", Amount: "50.00", Installments: 1, TransactionPin: "1234",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	conflict := decode[models.MovementResponse](t, resp)
	assert.Equal(t, "ACTIVE_LOAN_CONFLICT", conflict.Code)

	resp = do(t, srv, http.MethodPost, "/clients/"+id+"/movements", models.SubmitMovementRequest{
		Type: "withdrawal", Amount: "500.00", TransactionPin: "1234",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/clients/"+id+"/transactions?limit=10", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decode[models.TransactionListResponse](t, resp)
	require.Len(t, history.Data.Transactions, 2)
	assert.Equal(t, "loan_origination", history.Data.Transactions[0].Type)
}

func TestMovementIdempotencyHeader(t *testing.T) {
	srv := newTestServer(t)
	id := createClient(t, srv)
	headers := map[string]string{"Idempotency-Key": "dep-1"}
	req := models.SubmitMovementRequest{Type: "deposit", Amount: "25", TransactionPin: "1234"}

	first := do(t, srv, http.MethodPost, "/clients/"+id+"/movements", req, headers)
	require.Equal(t, http.StatusCreated, first.StatusCode)
	second := do(t, srv, http.MethodPost, "/clients/"+id+"/movements", req, headers)
	require.Equal(t, http.StatusOK, second.StatusCode)

	replay := decode[models.MovementResponse](t, second)
	assert.True(t, replay.Data.Replayed)
	assert.Equal(t, "25.00", replay.Data.Client.Balance)
}

func TestMovementErrors(t *testing.T) {
	srv := newTestServer(t)
	id := createClient(t, srv)

	resp := do(t, srv, http.MethodPost, "/clients/unknown/movements", models.SubmitMovementRequest{
		Type: "deposit", Amount: "1",
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/clients/"+id+"/movements", models.SubmitMovementRequest{
		Type: "refund", Amount: "1", TransactionPin: "1234",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/clients/"+id+"/movements", models.SubmitMovementRequest{
		Type: "deposit", Amount: "1", TransactionPin: "9999",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/clients/"+id+"/transactions?limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFindClientByEmail(t *testing.T) {
	srv := newTestServer(t)
	id := createClient(t, srv)

	resp := do(t, srv, http.MethodGet, "/clients?email=ana@example.com", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[models.ClientResponse](t, resp)
	assert.Equal(t, id, body.Data.ID)

	resp = do(t, srv, http.MethodPost, "/clients", models.CreateClientRequest{
		Name: "Other", Email: "ana@example.com", TransactionPin: "1234",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := createClient(t, srv)
	do(t, srv, http.MethodPost, "/clients/"+id+"/movements", models.SubmitMovementRequest{
		Type: "deposit", Amount: "5", TransactionPin: "1234",
	}, nil)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEventStreamOutlivesRequestTimeout(t *testing.T) {
	broker := events.NewBroker(4)
	t.Cleanup(broker.Close)

	handler := router.New(router.Options{
		AuthMiddleware: middleware.BasicAuth(channelID, channelKey),
		RequestTimeout: 100 * time.Millisecond,
		Streams:        []router.RouteRegistrar{controller.NewEventController(broker)},
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/clients/acc-1/events", nil)
	require.NoError(t, err)
	req.SetBasicAuth(channelID, channelKey)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	time.Sleep(300 * time.Millisecond)
	require.NoError(t, broker.Publish(ctx, events.Event{
		Type:      events.TransactionAppended,
		AccountID: "acc-1",
		Account:   domain.Account{ID: "acc-1"},
	}))

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: transaction.appended\n", line)
}
