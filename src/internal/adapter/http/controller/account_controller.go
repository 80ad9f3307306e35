package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/models"
	"github.com/api-sage/account-transfer-service/src/internal/commons"
	"github.com/api-sage/account-transfer-service/src/internal/logger"
	"github.com/api-sage/account-transfer-service/src/internal/usecase/service_interfaces"
	"github.com/go-chi/chi/v5"
)

type AccountController struct {
	service service_interfaces.AccountService
}

func NewAccountController(service service_interfaces.AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", c.createAccount)
		r.Get("/", c.listAccounts)
		r.Get("/{id}", c.getAccount)
	})
}

func (c *AccountController) createAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()).
			WithRequestID(middleware.RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateAccount(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusFor(err)
		response = response.WithRequestID(middleware.RequestIDFromContext(r.Context()))
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusFor(err)
		response = response.WithRequestID(middleware.RequestIDFromContext(r.Context()))
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *AccountController) listAccounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.ListAccounts(r.Context())
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusFor(err)
		response = response.WithRequestID(middleware.RequestIDFromContext(r.Context()))
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, map[string]any{"count": len(*response.Data)}, start)
}
