package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/events"
	"github.com/api-sage/cashflow-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/cashflow-ledger/src/internal/commons"
	"github.com/api-sage/cashflow-ledger/src/internal/logger"
	"github.com/go-chi/chi/v5"
)

type EventSubscriber interface {
	Subscribe(accountID string) (<-chan events.Event, func())
}

// EventController streams account changes as server-sent events.
type EventController struct {
	subscriber EventSubscriber
	keepAlive  time.Duration
}

func NewEventController(subscriber EventSubscriber) *EventController {
	return &EventController{subscriber: subscriber, keepAlive: 15 * time.Second}
}

func (c *EventController) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Get("/clients/{id}/events", c.Stream)
	})
}

func (c *EventController) Stream(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	accountID := strings.TrimSpace(chi.URLParam(r, "id"))
	flusher, ok := w.(http.Flusher)
	if !ok {
		resp := commons.ErrorResponse[struct{}]("streaming is not supported")
		writeJSON(w, http.StatusInternalServerError, resp)
		logResponse(r, http.StatusInternalServerError, resp, start)
		return
	}

	stream, cancel := c.subscriber.Subscribe(accountID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(c.keepAlive)
	defer ticker.Stop()

	sent := 0
	defer func() {
		logger.Info("event stream closed", logger.Fields{
			"accountId":  accountID,
			"sent":       sent,
			"durationMs": time.Since(start).Milliseconds(),
		})
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, ok := <-stream:
			if !ok {
				return
			}
			payload, err := json.Marshal(models.NewEventResponse(event))
			if err != nil {
				logError(r, err, logger.Fields{"stage": "encode_event"})
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
				return
			}
			flusher.Flush()
			sent++
		}
	}
}
