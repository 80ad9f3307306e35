package service_interfaces

import (
	"context"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
)

type TransferService interface {
	ExecuteTransfer(ctx context.Context, req domain.Transfer) (domain.Transfer, error)
	FindByAccountID(ctx context.Context, accountID string) ([]domain.Transfer, error)
	GetTransfer(ctx context.Context, id string) (domain.Transfer, error)
}
