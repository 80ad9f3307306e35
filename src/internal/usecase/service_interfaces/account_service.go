package service_interfaces

import (
	"context"

	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/models"
	"github.com/api-sage/account-transfer-service/src/internal/commons"
)

type AccountService interface {
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
	GetAccount(ctx context.Context, id string) (commons.Response[models.AccountResponse], error)
	ListAccounts(ctx context.Context) (commons.Response[[]models.AccountResponse], error)
}
