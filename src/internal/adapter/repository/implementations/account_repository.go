package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/api-sage/account-transfer-service/src/internal/logger"
	"github.com/google/uuid"
)

var _ domain.AccountRepository = (*AccountRepository)(nil)

type AccountRepository struct {
	db  *sql.DB
	uow *UnitOfWork
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db, uow: NewUnitOfWork(db)}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	if strings.TrimSpace(account.ID) == "" {
		account.ID = uuid.NewString()
	}

	logger.Info("account repository create", logger.Fields{
		"accountId": account.ID,
		"balance":   account.Balance,
	})

	const query = `
INSERT INTO accounts (id, name, balance)
VALUES ($1, $2, $3)
RETURNING created_at, updated_at`

	if err := conn(ctx, r.db).QueryRowContext(ctx, query, account.ID, account.Name, account.Balance).
		Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, fmt.Errorf("%w: account %s", domain.ErrDuplicate, account.ID)
		}
		if isCheckViolation(err) {
			return domain.Account{}, fmt.Errorf("%w: balance cannot be negative", domain.ErrValidation)
		}
		logger.Error("account repository create failed", err, logger.Fields{
			"accountId": account.ID,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	logger.Info("account repository create success", logger.Fields{
		"accountId": account.ID,
	})

	return account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `
SELECT id, name, balance, created_at, updated_at
FROM accounts
WHERE id = $1`

	var account domain.Account
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Name,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("account repository record not found", logger.Fields{
				"accountId": id,
			})
			return domain.Account{}, domain.ErrNotFound
		}
		logger.Error("account repository get failed", err, logger.Fields{
			"accountId": id,
		})
		return domain.Account{}, fmt.Errorf("get account by id: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	const query = `
SELECT id, name, balance, created_at, updated_at
FROM accounts
ORDER BY id`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		logger.Error("account repository list failed", err, nil)
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.Name, &account.Balance, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// Modify writes every balance inside one transaction, joining the caller's
// unit of work when there is one.
func (r *AccountRepository) Modify(ctx context.Context, accounts []domain.Account) error {
	logger.Info("account repository modify", logger.Fields{
		"accounts": len(accounts),
	})

	return r.uow.WithinTx(ctx, func(ctx context.Context) error {
		const query = `
UPDATE accounts
SET balance = $2::numeric,
    updated_at = NOW()
WHERE id = $1`

		for _, account := range accounts {
			if _, err := execRequiredRows(ctx, conn(ctx, r.db), query, account.ID, account.Balance); err != nil {
				if isCheckViolation(err) {
					err = fmt.Errorf("balance would become negative: %w", err)
				}
				logger.Error("account repository modify failed", err, logger.Fields{
					"accountId": account.ID,
				})
				return fmt.Errorf("modify account %s: %w", account.ID, err)
			}
		}
		return nil
	})
}

func execRequiredRows(ctx context.Context, exec executor, query string, args ...any) (int64, error) {
	result, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("execute statement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}
	if rows == 0 {
		return 0, domain.ErrNotFound
	}
	return rows, nil
}
