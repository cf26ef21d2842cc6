package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func registerSwaggerRoutes(r chi.Router) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	r.Get("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	r.Get("/swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Cashflow Ledger API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Cashflow Ledger API",
    "version": "1.0.0"
  },
  "paths": {
    "/clients": {
      "post": {
        "summary": "Register a client",
        "security": [{"BasicAuth": []}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["name", "email", "transactionPin"],
                "properties": {
                  "name": {"type": "string"},
                  "email": {"type": "string", "format": "email"},
                  "phone": {"type": "string"},
                  "transactionPin": {"type": "string", "pattern": "^[0-9]{4,6}$"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Client created with zero balances"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"},
          "409": {"description": "Email already registered"},
          "500": {"description": "Server error"}
        }
      },
      "get": {
        "summary": "Find a client by email",
        "security": [{"BasicAuth": []}],
        "parameters": [
          {"name": "email", "in": "query", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"description": "Client snapshot"},
          "400": {"description": "Missing email"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Client not found"}
        }
      }
    },
    "/clients/{id}": {
      "get": {
        "summary": "Get a client snapshot",
        "security": [{"BasicAuth": []}],
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"description": "Client snapshot with loan progress"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Client not found"}
        }
      }
    },
    "/clients/{id}/movements": {
      "post": {
        "summary": "Apply a movement to a client account",
        "security": [{"BasicAuth": []}],
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}},
          {"name": "Idempotency-Key", "in": "header", "required": false, "schema": {"type": "string", "maxLength": 128}}
        ],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["type", "amount"],
                "properties": {
                  "type": {
                    "type": "string",
                    "enum": ["deposit", "withdrawal", "loan_origination", "installment_payment", "savings_transfer", "entry", "credit_use", "payment"]
                  },
                  "amount": {"type": "string", "example": "150.00"},
                  "description": {"type": "string", "maxLength": 255},
                  "installments": {"type": "integer", "minimum": 1},
                  "transactionPin": {"type": "string"},
                  "idempotencyKey": {"type": "string", "maxLength": 128}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Idempotent replay of an earlier movement"},
          "201": {"description": "Movement applied"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized or invalid transaction pin"},
          "404": {"description": "Client not found"},
          "409": {"description": "Concurrency conflict after retries"},
          "422": {"description": "Insufficient funds, active loan or excessive payment"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/clients/{id}/transactions": {
      "get": {
        "summary": "List transaction records, newest first",
        "security": [{"BasicAuth": []}],
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}},
          {"name": "limit", "in": "query", "required": false, "schema": {"type": "integer", "default": 50, "maximum": 500}}
        ],
        "responses": {
          "200": {"description": "Transaction history"},
          "400": {"description": "Invalid limit"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Client not found"}
        }
      }
    },
    "/clients/{id}/events": {
      "get": {
        "summary": "Stream account changes as server-sent events",
        "security": [{"BasicAuth": []}],
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"description": "text/event-stream of account.changed and transaction.appended events"},
          "401": {"description": "Unauthorized"}
        }
      }
    },
    "/health": {
      "get": {
        "summary": "Liveness probe",
        "responses": {"200": {"description": "Service is up"}}
      }
    }
  },
  "components": {
    "securitySchemes": {
      "BasicAuth": {
        "type": "http",
        "scheme": "basic"
      }
    }
  }
}`
