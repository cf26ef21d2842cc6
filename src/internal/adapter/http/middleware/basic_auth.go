package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/api-sage/cashflow-ledger/src/internal/commons"
	"github.com/api-sage/cashflow-ledger/src/internal/logger"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const realm = `Basic realm="cashflow", charset="UTF-8"`

// BasicAuth admits requests carrying the configured channel id and key.
func BasicAuth(channelID, channelKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fields := logger.Fields{
				"method":    r.Method,
				"path":      r.URL.Path,
				"requestId": chimiddleware.GetReqID(r.Context()),
			}

			if channelID == "" || channelKey == "" {
				logger.Error("basic auth middleware missing server configuration", nil, fields)
				writeError(w, http.StatusInternalServerError, "server auth configuration is missing")
				return
			}

			id, key, ok := r.BasicAuth()
			if !ok || !secureEqual(id, channelID) || !secureEqual(key, channelKey) {
				fields["credentials"] = "invalid_or_missing"
				logger.Info("basic auth middleware unauthorized request", fields)
				w.Header().Set("WWW-Authenticate", realm)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(commons.ErrorResponse[struct{}](message))
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
