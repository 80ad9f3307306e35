package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/api-sage/account-transfer-service/src/internal/logger"
	"github.com/google/uuid"
)

var _ domain.AccountRepository = (*AccountRepository)(nil)

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	clock    domain.Clock
}

func NewAccountRepository(clock domain.Clock) *AccountRepository {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &AccountRepository{
		accounts: make(map[string]domain.Account),
		clock:    clock,
	}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	if strings.TrimSpace(account.ID) == "" {
		account.ID = uuid.NewString()
	}
	if account.Balance.IsNegative() {
		return domain.Account{}, fmt.Errorf("%w: balance cannot be negative", domain.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; exists {
		return domain.Account{}, fmt.Errorf("%w: account %s", domain.ErrDuplicate, account.ID)
	}

	now := r.clock.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.accounts[account.ID] = account

	id := account.ID
	recordUndo(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.accounts, id)
	})

	logger.Debug("memory account repository create success", logger.Fields{
		"accountId": account.ID,
	})

	return account, nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return account, nil
}

func (r *AccountRepository) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *AccountRepository) Modify(ctx context.Context, accounts []domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := make([]domain.Account, 0, len(accounts))
	for _, account := range accounts {
		current, ok := r.accounts[account.ID]
		if !ok {
			return fmt.Errorf("modify account %s: %w", account.ID, domain.ErrNotFound)
		}
		if account.Balance.IsNegative() {
			return fmt.Errorf("modify account %s: balance would become negative", account.ID)
		}
		previous = append(previous, current)
	}

	now := r.clock.Now()
	for _, account := range accounts {
		current := r.accounts[account.ID]
		current.Balance = account.Balance
		current.UpdatedAt = now
		r.accounts[account.ID] = current
	}

	recordUndo(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, prev := range previous {
			r.accounts[prev.ID] = prev
		}
	})

	return nil
}
