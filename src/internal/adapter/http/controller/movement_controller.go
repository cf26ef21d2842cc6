package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/cashflow-ledger/src/internal/commons"
	"github.com/api-sage/cashflow-ledger/src/internal/logger"
	"github.com/go-chi/chi/v5"
)

const idempotencyKeyHeader = "Idempotency-Key"

type MovementService interface {
	SubmitMovement(ctx context.Context, accountID string, req models.SubmitMovementRequest) (commons.Response[models.MovementResponse], error)
}

type TransactionService interface {
	ListTransactions(ctx context.Context, accountID string, limit int) (commons.Response[models.TransactionListResponse], error)
}

type MovementController struct {
	movements    MovementService
	transactions TransactionService
}

func NewMovementController(movements MovementService, transactions TransactionService) *MovementController {
	return &MovementController{movements: movements, transactions: transactions}
}

func (c *MovementController) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Post("/clients/{id}/movements", c.SubmitMovement)
		r.Get("/clients/{id}/transactions", c.ListTransactions)
	})
}

func (c *MovementController) SubmitMovement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SubmitMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(r, map[string]any{"body": "invalid_json"})
		logError(r, err, logger.Fields{"stage": "decode_request"})
		resp := commons.ErrorResponse[models.MovementResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, resp)
		logResponse(r, http.StatusBadRequest, resp, start)
		return
	}
	if key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader)); key != "" {
		req.IdempotencyKey = key
	}
	logRequest(r, req)

	resp, err := c.movements.SubmitMovement(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		status := statusFor(err)
		logError(r, err, logger.Fields{"stage": "submit_movement", "status": status})
		writeJSON(w, status, resp)
		logResponse(r, status, resp, start)
		return
	}

	status := http.StatusCreated
	if resp.Data != nil && resp.Data.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
	logResponse(r, status, resp, start)
}

func (c *MovementController) ListTransactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			resp := commons.ErrorResponse[models.TransactionListResponse]("limit must be an integer")
			writeJSON(w, http.StatusBadRequest, resp)
			logResponse(r, http.StatusBadRequest, resp, start)
			return
		}
		limit = parsed
	}

	resp, err := c.transactions.ListTransactions(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		status := statusFor(err)
		logError(r, err, logger.Fields{"stage": "list_transactions", "status": status})
		writeJSON(w, status, resp)
		logResponse(r, status, resp, start)
		return
	}

	writeJSON(w, http.StatusOK, resp)
	logResponse(r, http.StatusOK, resp, start)
}
