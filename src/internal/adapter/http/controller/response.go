package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidPin):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrActiveLoanConflict),
		errors.Is(err, domain.ErrExcessivePayment):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
