package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/account-transfer-service/src/internal/adapter/http/models"
	"github.com/api-sage/account-transfer-service/src/internal/commons"
	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/api-sage/account-transfer-service/src/internal/logger"
	"github.com/api-sage/account-transfer-service/src/internal/usecase/service_interfaces"
)

var _ service_interfaces.AccountService = (*AccountService)(nil)

type AccountService struct {
	accountRepo domain.AccountRepository
}

func NewAccountService(accountRepo domain.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

func (s *AccountService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service create account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("account service create account validation failed", err, nil)
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	created, err := s.accountRepo.Create(ctx, domain.Account{
		ID:      strings.TrimSpace(req.ID),
		Name:    strings.TrimSpace(req.Name),
		Balance: req.InitialBalance,
	})
	if err != nil {
		logger.Error("account service create account repository failed", err, logger.Fields{
			"accountId": req.ID,
		})
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			return commons.ErrorResponse[models.AccountResponse]("validation failed", "account id already exists"), fmt.Errorf("%w: %w", domain.ErrValidation, err)
		case errors.Is(err, domain.ErrValidation):
			return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
		}
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	logger.Info("account service create account success", logger.Fields{
		"accountId": created.ID,
	})

	return commons.SuccessResponse("account created successfully", models.NewAccountResponse(created)), nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (commons.Response[models.AccountResponse], error) {
	id = strings.TrimSpace(id)
	if id == "" {
		err := fmt.Errorf("%w: account id is required", domain.ErrValidation)
		return commons.ErrorResponse[models.AccountResponse]("validation failed", "account id is required"), err
	}

	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
		}
		logger.Error("account service get account failed", err, logger.Fields{
			"accountId": id,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to get account", "Unable to fetch account right now"), fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	return commons.SuccessResponse("account fetched successfully", models.NewAccountResponse(account)), nil
}

func (s *AccountService) ListAccounts(ctx context.Context) (commons.Response[[]models.AccountResponse], error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		logger.Error("account service list accounts failed", err, nil)
		return commons.ErrorResponse[[]models.AccountResponse]("failed to list accounts", "Unable to fetch accounts right now"), fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	response := make([]models.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		response = append(response, models.NewAccountResponse(account))
	}

	return commons.SuccessResponse("accounts fetched successfully", response), nil
}
