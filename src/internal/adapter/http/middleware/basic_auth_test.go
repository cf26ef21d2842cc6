package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithCredentials(id, key string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/clients/abc", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(id+":"+key)))
	return req
}

func TestBasicAuth_AllowsValidCredentials(t *testing.T) {
	rr := httptest.NewRecorder()
	BasicAuth("CashflowApp", "CashflowKey001")(okHandler()).ServeHTTP(rr, requestWithCredentials("CashflowApp", "CashflowKey001"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestBasicAuth_RejectsInvalidCredentials(t *testing.T) {
	rr := httptest.NewRecorder()
	BasicAuth("CashflowApp", "CashflowKey001")(okHandler()).ServeHTTP(rr, requestWithCredentials("CashflowApp", "WrongKey"))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if rr.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("expected WWW-Authenticate challenge")
	}
}

func TestBasicAuth_RejectsMissingHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	BasicAuth("CashflowApp", "CashflowKey001")(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestBasicAuth_FailsClosedWithoutConfiguration(t *testing.T) {
	rr := httptest.NewRecorder()
	BasicAuth("", "")(okHandler()).ServeHTTP(rr, requestWithCredentials("", ""))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
}
