package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testClock = fixedClock{now: time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)}

func seedAccounts(t *testing.T, repo *AccountRepository, balances map[string]string) {
	t.Helper()
	for id, balance := range balances {
		_, err := repo.Create(context.Background(), domain.Account{
			ID:      id,
			Name:    "account " + id,
			Balance: decimal.RequireFromString(balance),
		})
		require.NoError(t, err)
	}
}

func TestAccountRepositoryCreateAndFind(t *testing.T) {
	repo := NewAccountRepository(testClock)
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.Account{Name: "generated", Balance: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, testClock.now, created.CreatedAt)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, found.Balance.Equal(decimal.NewFromInt(10)))

	_, err = repo.Create(ctx, domain.Account{ID: created.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountRepositoryModifyIsAllOrNothing(t *testing.T) {
	repo := NewAccountRepository(testClock)
	ctx := context.Background()
	seedAccounts(t, repo, map[string]string{"A": "100"})

	err := repo.Modify(ctx, []domain.Account{
		{ID: "A", Balance: decimal.NewFromInt(70)},
		{ID: "missing", Balance: decimal.NewFromInt(30)},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	a, err := repo.FindByID(ctx, "A")
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(decimal.NewFromInt(100)), "A must be untouched, got %s", a.Balance)
}

func TestAccountRepositoryListIsSorted(t *testing.T) {
	repo := NewAccountRepository(testClock)
	seedAccounts(t, repo, map[string]string{"c": "1", "a": "2", "b": "3"})

	accounts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "a", accounts[0].ID)
	assert.Equal(t, "c", accounts[2].ID)
}

func TestTransferRepositoryLifecycle(t *testing.T) {
	repo := NewTransferRepository(testClock)
	ctx := context.Background()

	inserted, err := repo.Insert(ctx, domain.Transfer{
		SourceAccountID: "A",
		DestAccountID:   "B",
		Amount:          decimal.NewFromInt(30),
		Status:          domain.TransferStatusSuccess,
		Detail:          "ignored",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, inserted.ID)
	assert.Equal(t, domain.TransferStatusPending, inserted.Status)
	assert.Empty(t, inserted.Detail)

	require.NoError(t, repo.UpdateStatus(ctx, inserted.ID, domain.TransferStatusSuccess, "done"))

	err = repo.UpdateStatus(ctx, inserted.ID, domain.TransferStatusError, "late")
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	stored, err := repo.FindByID(ctx, inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferStatusSuccess, stored.Status)
	assert.Equal(t, "done", stored.Detail)

	err = repo.UpdateStatus(ctx, "missing", domain.TransferStatusError, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransferRepositoryFindByAccountIDKeepsInsertionOrder(t *testing.T) {
	repo := NewTransferRepository(testClock)
	ctx := context.Background()

	first, _ := repo.Insert(ctx, domain.Transfer{SourceAccountID: "A", DestAccountID: "B", Amount: decimal.NewFromInt(1)})
	_, _ = repo.Insert(ctx, domain.Transfer{SourceAccountID: "C", DestAccountID: "D", Amount: decimal.NewFromInt(2)})
	third, _ := repo.Insert(ctx, domain.Transfer{SourceAccountID: "B", DestAccountID: "A", Amount: decimal.NewFromInt(3)})

	rows, err := repo.FindByAccountID(ctx, "A")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.Equal(t, third.ID, rows[1].ID)

	empty, err := repo.FindByAccountID(ctx, "Z")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	accounts := NewAccountRepository(testClock)
	transfers := NewTransferRepository(testClock)
	uow := NewUnitOfWork()
	ctx := context.Background()
	seedAccounts(t, accounts, map[string]string{"A": "100", "B": "50"})

	pending, err := transfers.Insert(ctx, domain.Transfer{SourceAccountID: "A", DestAccountID: "B", Amount: decimal.NewFromInt(30)})
	require.NoError(t, err)

	boom := errors.New("status write failed")
	err = uow.WithinTx(ctx, func(ctx context.Context) error {
		if err := accounts.Modify(ctx, []domain.Account{
			{ID: "A", Balance: decimal.NewFromInt(70)},
			{ID: "B", Balance: decimal.NewFromInt(80)},
		}); err != nil {
			return err
		}
		if err := transfers.UpdateStatus(ctx, pending.ID, domain.TransferStatusSuccess, "ok"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	a, _ := accounts.FindByID(ctx, "A")
	b, _ := accounts.FindByID(ctx, "B")
	assert.True(t, a.Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, b.Balance.Equal(decimal.NewFromInt(50)))

	row, _ := transfers.FindByID(ctx, pending.ID)
	assert.Equal(t, domain.TransferStatusPending, row.Status)
}

func TestUnitOfWorkCommits(t *testing.T) {
	accounts := NewAccountRepository(testClock)
	uow := NewUnitOfWork()
	ctx := context.Background()
	seedAccounts(t, accounts, map[string]string{"A": "100"})

	err := uow.WithinTx(ctx, func(ctx context.Context) error {
		return accounts.Modify(ctx, []domain.Account{{ID: "A", Balance: decimal.NewFromInt(1)}})
	})
	require.NoError(t, err)

	a, _ := accounts.FindByID(ctx, "A")
	assert.True(t, a.Balance.Equal(decimal.NewFromInt(1)))
}

func TestUnitOfWorkRollsBackOnPanic(t *testing.T) {
	accounts := NewAccountRepository(testClock)
	uow := NewUnitOfWork()
	ctx := context.Background()
	seedAccounts(t, accounts, map[string]string{"A": "100"})

	assert.Panics(t, func() {
		_ = uow.WithinTx(ctx, func(ctx context.Context) error {
			_ = accounts.Modify(ctx, []domain.Account{{ID: "A", Balance: decimal.NewFromInt(1)}})
			panic("crash mid-apply")
		})
	})

	a, _ := accounts.FindByID(ctx, "A")
	assert.True(t, a.Balance.Equal(decimal.NewFromInt(100)))
}
