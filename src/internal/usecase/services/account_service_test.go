package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/models"
	"github.com/api-sage/account-transfer-service/src/internal/adapter/repository/memory"
	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/api-sage/account-transfer-service/src/internal/domain/mocks"
	"github.com/api-sage/account-transfer-service/src/internal/usecase/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAccountServiceCreateAccountValidationError(t *testing.T) {
	svc := services.NewAccountService(nil)

	resp, err := svc.CreateAccount(context.Background(), models.CreateAccountRequest{})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, resp.Success)
	assert.Equal(t, "validation failed", resp.Message)
}

func TestAccountServiceCreateGetAndList(t *testing.T) {
	svc := services.NewAccountService(memory.NewAccountRepository(fixedClock{now: completedAt}))
	ctx := context.Background()

	created, err := svc.CreateAccount(ctx, models.CreateAccountRequest{
		ID:             "acc-1",
		Name:           " alice ",
		InitialBalance: decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.Data)
	assert.Equal(t, "alice", created.Data.Name)

	_, err = svc.CreateAccount(ctx, models.CreateAccountRequest{ID: "acc-1", Name: "again"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := svc.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, got.Data.Balance.Equal(decimal.RequireFromString("12.5")))

	_, err = svc.GetAccount(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, *list.Data, 1)
}

func TestAccountServiceGetAccountStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAccountRepository(ctrl)
	repo.EXPECT().FindByID(gomock.Any(), "acc-1").Return(domain.Account{}, errors.New("connection refused"))

	resp, err := services.NewAccountService(repo).GetAccount(context.Background(), "acc-1")
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, "failed to get account", resp.Message)
}
