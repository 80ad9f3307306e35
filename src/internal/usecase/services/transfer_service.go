package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/api-sage/account-transfer-service/src/internal/logger"
	"github.com/api-sage/account-transfer-service/src/internal/usecase/service_interfaces"
)

var _ service_interfaces.TransferService = (*TransferService)(nil)

// TransferService runs the validate, lock, check, mutate and record pipeline.
// Balances of two accounts are only ever written while both account locks are held.
type TransferService struct {
	accounts  domain.AccountRepository
	transfers domain.TransferRepository
	locks     domain.LockCoordinator
	uow       domain.UnitOfWork
	clock     domain.Clock
}

func NewTransferService(
	accounts domain.AccountRepository,
	transfers domain.TransferRepository,
	locks domain.LockCoordinator,
	uow domain.UnitOfWork,
	clock domain.Clock,
) *TransferService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &TransferService{
		accounts:  accounts,
		transfers: transfers,
		locks:     locks,
		uow:       uow,
		clock:     clock,
	}
}

// ExecuteTransfer moves req.Amount from req.SourceAccountID to req.DestAccountID.
// The id, status and detail of req are ignored. On success the returned transfer
// carries status SUCCESS and the completion time as its detail.
func (s *TransferService) ExecuteTransfer(ctx context.Context, req domain.Transfer) (domain.Transfer, error) {
	sourceID := strings.TrimSpace(req.SourceAccountID)
	destID := strings.TrimSpace(req.DestAccountID)

	logger.Info("transfer service execute request", logger.Fields{
		"sourceAccountId": sourceID,
		"destAccountId":   destID,
		"amount":          req.Amount,
	})

	if err := validateTransfer(sourceID, destID, req); err != nil {
		logger.Warn("transfer service execute validation failed", logger.Fields{
			"reason": err.Error(),
		})
		return domain.Transfer{}, err
	}

	req.SourceAccountID, req.DestAccountID = sourceID, destID
	ids := req.AccountIDs()
	lease, err := s.locks.Lock(ctx, ids)
	if err != nil {
		logger.Error("transfer service acquire locks failed", err, logger.Fields{
			"accounts": ids,
		})
		if errors.Is(err, domain.ErrLockTimeout) {
			return domain.Transfer{}, err
		}
		return domain.Transfer{}, fmt.Errorf("%w: acquire account locks: %w", domain.ErrLockTimeout, err)
	}
	defer func() {
		// Release even if the caller's context is already done.
		if unlockErr := s.locks.Unlock(context.WithoutCancel(ctx), lease); unlockErr != nil {
			logger.Error("transfer service release locks failed", unlockErr, logger.Fields{
				"accounts": ids,
			})
		}
	}()

	source, err := s.loadAccount(ctx, sourceID, "source")
	if err != nil {
		return domain.Transfer{}, err
	}
	if !source.CanDebit(req.Amount) {
		logger.Warn("transfer service insufficient funds", logger.Fields{
			"sourceAccountId": sourceID,
			"amount":          req.Amount,
		})
		return domain.Transfer{}, fmt.Errorf("%w: account %s cannot cover %s", domain.ErrInsufficientFunds, sourceID, req.Amount)
	}
	dest, err := s.loadAccount(ctx, destID, "destination")
	if err != nil {
		return domain.Transfer{}, err
	}

	pending, err := s.transfers.Insert(ctx, domain.Transfer{
		SourceAccountID: sourceID,
		DestAccountID:   destID,
		Amount:          req.Amount,
	})
	if err != nil {
		logger.Error("transfer service record intent failed", err, logger.Fields{
			"sourceAccountId": sourceID,
			"destAccountId":   destID,
		})
		return domain.Transfer{}, fmt.Errorf("%w: record transfer: %w", domain.ErrPersistence, err)
	}

	source.Balance = source.Balance.Sub(req.Amount)
	dest.Balance = dest.Balance.Add(req.Amount)

	completedAt := s.clock.Now().UTC().Format(time.RFC3339)
	err = s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.accounts.Modify(txCtx, []domain.Account{source, dest}); err != nil {
			return fmt.Errorf("apply balances: %w", err)
		}
		if err := s.transfers.UpdateStatus(txCtx, pending.ID, domain.TransferStatusSuccess, completedAt); err != nil {
			return fmt.Errorf("mark transfer success: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("transfer service apply failed", err, logger.Fields{
			"transferId": pending.ID,
		})
		s.markFailed(ctx, pending.ID, err)
		return domain.Transfer{}, fmt.Errorf("%w: transfer %s: %w", domain.ErrPersistence, pending.ID, err)
	}

	pending.Status = domain.TransferStatusSuccess
	pending.Detail = completedAt

	logger.Info("transfer service execute success", logger.Fields{
		"transferId":      pending.ID,
		"sourceAccountId": sourceID,
		"destAccountId":   destID,
		"amount":          req.Amount,
	})

	return pending, nil
}

// FindByAccountID lists every transfer touching the account in insertion order.
// It takes no locks.
func (s *TransferService) FindByAccountID(ctx context.Context, accountID string) ([]domain.Transfer, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, fmt.Errorf("%w: account id is required", domain.ErrValidation)
	}

	transfers, err := s.transfers.FindByAccountID(ctx, accountID)
	if err != nil {
		logger.Error("transfer service find by account failed", err, logger.Fields{
			"accountId": accountID,
		})
		return nil, fmt.Errorf("%w: list transfers: %w", domain.ErrPersistence, err)
	}
	if transfers == nil {
		transfers = []domain.Transfer{}
	}

	return transfers, nil
}

func (s *TransferService) GetTransfer(ctx context.Context, id string) (domain.Transfer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Transfer{}, fmt.Errorf("%w: transfer id is required", domain.ErrValidation)
	}

	transfer, err := s.transfers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Transfer{}, fmt.Errorf("%w: transfer %s", domain.ErrNotFound, id)
		}
		logger.Error("transfer service get transfer failed", err, logger.Fields{
			"transferId": id,
		})
		return domain.Transfer{}, fmt.Errorf("%w: get transfer: %w", domain.ErrPersistence, err)
	}

	return transfer, nil
}

func validateTransfer(sourceID, destID string, req domain.Transfer) error {
	var errs []string
	if sourceID == "" {
		errs = append(errs, "sourceAccountId is required")
	}
	if destID == "" {
		errs = append(errs, "destAccountId is required")
	}
	if !req.Amount.IsPositive() {
		errs = append(errs, "amount must be greater than zero")
	}
	if !domain.FitsAmountScale(req.Amount) {
		errs = append(errs, fmt.Sprintf("amount cannot have more than %d decimal places", domain.AmountScale))
	}
	if sourceID != "" && sourceID == destID {
		errs = append(errs, "sourceAccountId and destAccountId cannot be the same")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(errs, "; "))
	}
	return nil
}

func (s *TransferService) loadAccount(ctx context.Context, id, role string) (domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err == nil {
		return account, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("transfer service account not found", logger.Fields{
			"accountId": id,
			"role":      role,
		})
		return domain.Account{}, fmt.Errorf("%w: %s account %s", domain.ErrNotFound, role, id)
	}

	logger.Error("transfer service load account failed", err, logger.Fields{
		"accountId": id,
		"role":      role,
	})
	return domain.Account{}, fmt.Errorf("%w: load %s account: %w", domain.ErrPersistence, role, err)
}

// markFailed records the ERROR outcome outside the rolled back transaction.
// A failure here is logged only so the original error reaches the caller.
func (s *TransferService) markFailed(ctx context.Context, transferID string, cause error) {
	err := s.transfers.UpdateStatus(context.WithoutCancel(ctx), transferID, domain.TransferStatusError, cause.Error())
	if err != nil {
		logger.Error("transfer service record failure status failed", err, logger.Fields{
			"transferId": transferID,
			"cause":      cause.Error(),
		})
	}
}
