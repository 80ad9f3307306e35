package router

import (
	"net/http"

	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

func New(accountController RouteRegistrar, transferController RouteRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	registerSwaggerRoutes(r)

	if accountController != nil {
		accountController.RegisterRoutes(r)
	}
	if transferController != nil {
		transferController.RegisterRoutes(r)
	}

	return r
}
