package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/api-sage/account-transfer-service/src/internal/logger"
	"github.com/google/uuid"
)

var _ domain.TransferRepository = (*TransferRepository)(nil)

type TransferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

const transferColumns = `id, source_account_id, dest_account_id, amount, status, detail, created_at, updated_at`

func (r *TransferRepository) Insert(ctx context.Context, transfer domain.Transfer) (domain.Transfer, error) {
	transfer.ID = uuid.NewString()
	transfer.Status = domain.TransferStatusPending
	transfer.Detail = ""

	logger.Info("transfer repository insert", logger.Fields{
		"transferId":      transfer.ID,
		"sourceAccountId": transfer.SourceAccountID,
		"destAccountId":   transfer.DestAccountID,
		"amount":          transfer.Amount,
	})

	const query = `
INSERT INTO transfers (
	id,
	source_account_id,
	dest_account_id,
	amount,
	status,
	detail
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at, updated_at`

	if err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		transfer.ID,
		transfer.SourceAccountID,
		transfer.DestAccountID,
		transfer.Amount,
		transfer.Status,
		transfer.Detail,
	).Scan(&transfer.CreatedAt, &transfer.UpdatedAt); err != nil {
		logger.Error("transfer repository insert failed", err, logger.Fields{
			"transferId": transfer.ID,
		})
		return domain.Transfer{}, fmt.Errorf("insert transfer: %w", err)
	}

	logger.Info("transfer repository insert success", logger.Fields{
		"transferId": transfer.ID,
	})

	return transfer, nil
}

func (r *TransferRepository) UpdateStatus(ctx context.Context, id string, status domain.TransferStatus, detail string) error {
	logger.Info("transfer repository update status", logger.Fields{
		"transferId": id,
		"status":     status,
	})

	if !status.IsTerminal() {
		return fmt.Errorf("update transfer %s to %s: %w", id, status, domain.ErrInvalidStatusTransition)
	}

	const query = `
UPDATE transfers
SET status = $2::varchar,
    detail = $3,
    updated_at = NOW()
WHERE id = $1
  AND status = 'PENDING'`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, status, detail)
	if err != nil {
		logger.Error("transfer repository update status failed", err, logger.Fields{
			"transferId": id,
			"status":     status,
		})
		return fmt.Errorf("update transfer status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transfer status rows affected: %w", err)
	}
	if rows == 0 {
		existing, getErr := r.FindByID(ctx, id)
		if getErr != nil {
			return fmt.Errorf("update transfer %s: %w", id, getErr)
		}
		return fmt.Errorf("update transfer %s from %s to %s: %w", id, existing.Status, status, domain.ErrInvalidStatusTransition)
	}

	logger.Info("transfer repository update status success", logger.Fields{
		"transferId": id,
		"status":     status,
	})
	return nil
}

func (r *TransferRepository) FindByID(ctx context.Context, id string) (domain.Transfer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Transfer{}, domain.ErrNotFound
	}

	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	transfer, err := scanTransfer(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transfer{}, domain.ErrNotFound
		}
		logger.Error("transfer repository get failed", err, logger.Fields{
			"transferId": id,
		})
		return domain.Transfer{}, fmt.Errorf("get transfer: %w", err)
	}

	return transfer, nil
}

func (r *TransferRepository) FindByAccountID(ctx context.Context, accountID string) ([]domain.Transfer, error) {
	query := `SELECT ` + transferColumns + `
FROM transfers
WHERE source_account_id = $1
   OR dest_account_id = $1
ORDER BY seq`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, accountID)
	if err != nil {
		logger.Error("transfer repository find by account failed", err, logger.Fields{
			"accountId": accountID,
		})
		return nil, fmt.Errorf("find transfers by account: %w", err)
	}
	defer rows.Close()

	transfers := make([]domain.Transfer, 0)
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}

	return transfers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (domain.Transfer, error) {
	var (
		transfer domain.Transfer
		detail   sql.NullString
	)

	if err := row.Scan(
		&transfer.ID,
		&transfer.SourceAccountID,
		&transfer.DestAccountID,
		&transfer.Amount,
		&transfer.Status,
		&detail,
		&transfer.CreatedAt,
		&transfer.UpdatedAt,
	); err != nil {
		return domain.Transfer{}, err
	}

	transfer.Detail = detail.String
	return transfer, nil
}
