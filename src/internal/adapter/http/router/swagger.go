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
  <title>Account Transfer Service API Docs</title>
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
    "title": "Account Transfer Service API",
    "version": "1.0.0"
  },
  "paths": {
    "/health": {
      "get": {
        "summary": "Liveness probe",
        "responses": {
          "200": {"description": "Service is up"}
        }
      }
    },
    "/accounts": {
      "post": {
        "summary": "Create account",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["name"],
                "properties": {
                  "id": {"type": "string"},
                  "name": {"type": "string"},
                  "initialBalance": {"type": "string", "example": "100.00"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Created"},
          "400": {"description": "Validation error"},
          "500": {"description": "Server error"}
        }
      },
      "get": {
        "summary": "List accounts",
        "responses": {
          "200": {"description": "Accounts fetched"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/accounts/{id}": {
      "get": {
        "summary": "Get account by id",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"description": "Account fetched"},
          "404": {"description": "Account not found"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/transfers/execute": {
      "post": {
        "summary": "Move funds between two accounts",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["sourceAccountId", "destAccountId", "amount"],
                "properties": {
                  "sourceAccountId": {"type": "string"},
                  "destAccountId": {"type": "string"},
                  "amount": {"type": "string", "example": "30.00"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Transfer applied, empty body"},
          "400": {"description": "Validation error"},
          "404": {"description": "Source or destination account not found"},
          "409": {"description": "Insufficient funds"},
          "503": {"description": "Account lock wait timed out"},
          "500": {"description": "Persistence failure"}
        }
      }
    },
    "/transfers/account/{id}": {
      "get": {
        "summary": "List transfers touching an account in insertion order",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {
            "description": "Transfers, possibly empty",
            "content": {
              "application/json": {
                "schema": {"type": "array", "items": {"$ref": "#/components/schemas/Transfer"}}
              }
            }
          },
          "500": {"description": "Server error"}
        }
      }
    },
    "/transfers/{id}": {
      "get": {
        "summary": "Get transfer by id",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {
            "description": "Transfer fetched",
            "content": {
              "application/json": {
                "schema": {"$ref": "#/components/schemas/Transfer"}
              }
            }
          },
          "404": {"description": "Transfer not found"},
          "500": {"description": "Server error"}
        }
      }
    }
  },
  "components": {
    "schemas": {
      "Transfer": {
        "type": "object",
        "properties": {
          "id": {"type": "string", "format": "uuid"},
          "sourceAccountId": {"type": "string"},
          "destAccountId": {"type": "string"},
          "amount": {"type": "string"},
          "status": {"type": "string", "enum": ["PENDING", "SUCCESS", "ERROR"]},
          "detail": {"type": "string"},
          "createdAt": {"type": "string", "format": "date-time"},
          "updatedAt": {"type": "string", "format": "date-time"}
        }
      }
    }
  }
}`
