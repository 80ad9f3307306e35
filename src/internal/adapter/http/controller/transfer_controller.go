package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/models"
	"github.com/api-sage/account-transfer-service/src/internal/commons"
	"github.com/api-sage/account-transfer-service/src/internal/usecase/service_interfaces"
	"github.com/go-chi/chi/v5"
)

type TransferController struct {
	service service_interfaces.TransferService
}

func NewTransferController(service service_interfaces.TransferService) *TransferController {
	return &TransferController{service: service}
}

func (c *TransferController) RegisterRoutes(r chi.Router) {
	r.Route("/transfers", func(r chi.Router) {
		r.Post("/execute", c.execute)
		r.Get("/account/{id}", c.findByAccount)
		r.Get("/{id}", c.get)
	})
}

func (c *TransferController) execute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ExecuteTransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[struct{}]("invalid request body", err.Error()).
			WithRequestID(middleware.RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		response := commons.ErrorResponse[struct{}]("validation failed", err.Error()).
			WithRequestID(middleware.RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	transfer, err := c.service.ExecuteTransfer(r.Context(), req.ToDomain())
	if err != nil {
		writeError(w, r, err, start)
		return
	}

	// Success carries no body.
	w.WriteHeader(http.StatusOK)
	logResponse(r, http.StatusOK, map[string]any{"transferId": transfer.ID}, start)
}

func (c *TransferController) findByAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	transfers, err := c.service.FindByAccountID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, start)
		return
	}

	response := models.NewTransferResponses(transfers)
	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, map[string]any{"count": len(response)}, start)
}

func (c *TransferController) get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	transfer, err := c.service.GetTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, start)
		return
	}

	response := models.NewTransferResponse(transfer)
	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
