package models

import (
	"encoding/json"
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

// ExecuteTransferRequest binds a full transfer body. id, status and detail are
// assigned by the ledger, so whatever the client sends for them is discarded.
type ExecuteTransferRequest struct {
	ID              json.RawMessage `json:"id,omitempty"`
	SourceAccountID string          `json:"sourceAccountId" validate:"required,max=64"`
	DestAccountID   string          `json:"destAccountId" validate:"required,max=64,nefield=SourceAccountID"`
	Amount          decimal.Decimal `json:"amount" validate:"positive_decimal,amount_scale"`
	Status          json.RawMessage `json:"status,omitempty"`
	Detail          json.RawMessage `json:"detail,omitempty"`
}

func (r ExecuteTransferRequest) Validate() error {
	return ValidateStruct(r)
}

func (r ExecuteTransferRequest) ToDomain() domain.Transfer {
	return domain.Transfer{
		SourceAccountID: r.SourceAccountID,
		DestAccountID:   r.DestAccountID,
		Amount:          r.Amount,
	}
}

type TransferResponse struct {
	ID              string          `json:"id"`
	SourceAccountID string          `json:"sourceAccountId"`
	DestAccountID   string          `json:"destAccountId"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	Detail          string          `json:"detail"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

func NewTransferResponse(t domain.Transfer) TransferResponse {
	return TransferResponse{
		ID:              t.ID,
		SourceAccountID: t.SourceAccountID,
		DestAccountID:   t.DestAccountID,
		Amount:          t.Amount,
		Status:          string(t.Status),
		Detail:          t.Detail,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.Format(time.RFC3339),
	}
}

// NewTransferResponses never returns nil so an empty history encodes as [].
func NewTransferResponses(transfers []domain.Transfer) []TransferResponse {
	out := make([]TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, NewTransferResponse(t))
	}
	return out
}
