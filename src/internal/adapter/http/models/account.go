package models

import (
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	ID             string          `json:"id,omitempty" validate:"max=64"`
	Name           string          `json:"name" validate:"required,max=128"`
	InitialBalance decimal.Decimal `json:"initialBalance" validate:"nonnegative_decimal,amount_scale"`
}

func (r CreateAccountRequest) Validate() error {
	return ValidateStruct(r)
}

type AccountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

func NewAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
}
