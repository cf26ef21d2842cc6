package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/cashflow-ledger/src/internal/commons"
	"github.com/api-sage/cashflow-ledger/src/internal/logger"
	"github.com/go-chi/chi/v5"
)

type ClientService interface {
	CreateClient(ctx context.Context, req models.CreateClientRequest) (commons.Response[models.ClientResponse], error)
	GetClient(ctx context.Context, id string) (commons.Response[models.ClientResponse], error)
	FindClientByEmail(ctx context.Context, email string) (commons.Response[models.ClientResponse], error)
}

type ClientController struct {
	service ClientService
}

func NewClientController(service ClientService) *ClientController {
	return &ClientController{service: service}
}

func (c *ClientController) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Post("/clients", c.CreateClient)
		r.Get("/clients", c.FindClientByEmail)
		r.Get("/clients/{id}", c.GetClient)
	})
}

func (c *ClientController) CreateClient(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(r, map[string]any{"body": "invalid_json"})
		logError(r, err, logger.Fields{"stage": "decode_request"})
		resp := commons.ErrorResponse[models.ClientResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, resp)
		logResponse(r, http.StatusBadRequest, resp, start)
		return
	}
	logRequest(r, req)

	resp, err := c.service.CreateClient(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		logError(r, err, logger.Fields{"stage": "create_client", "status": status})
		writeJSON(w, status, resp)
		logResponse(r, status, resp, start)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
	logResponse(r, http.StatusCreated, resp, start)
}

func (c *ClientController) GetClient(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	resp, err := c.service.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := statusFor(err)
		logError(r, err, logger.Fields{"stage": "get_client", "status": status})
		writeJSON(w, status, resp)
		logResponse(r, status, resp, start)
		return
	}

	writeJSON(w, http.StatusOK, resp)
	logResponse(r, http.StatusOK, resp, start)
}

func (c *ClientController) FindClientByEmail(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		resp := commons.ErrorResponse[models.ClientResponse]("email query parameter is required")
		writeJSON(w, http.StatusBadRequest, resp)
		logResponse(r, http.StatusBadRequest, resp, start)
		return
	}

	resp, err := c.service.FindClientByEmail(r.Context(), email)
	if err != nil {
		status := statusFor(err)
		logError(r, err, logger.Fields{"stage": "find_client", "status": status})
		writeJSON(w, status, resp)
		logResponse(r, status, resp, start)
		return
	}

	writeJSON(w, http.StatusOK, resp)
	logResponse(r, http.StatusOK, resp, start)
}
