package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/google/uuid"
)

var _ domain.TransferRepository = (*TransferRepository)(nil)

// TransferRepository keeps the ledger in insertion order.
type TransferRepository struct {
	mu    sync.RWMutex
	rows  []domain.Transfer
	index map[string]int
	clock domain.Clock
}

func NewTransferRepository(clock domain.Clock) *TransferRepository {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &TransferRepository{
		index: make(map[string]int),
		clock: clock,
	}
}

func (r *TransferRepository) Insert(ctx context.Context, transfer domain.Transfer) (domain.Transfer, error) {
	now := r.clock.Now()
	transfer.ID = uuid.NewString()
	transfer.Status = domain.TransferStatusPending
	transfer.Detail = ""
	transfer.CreatedAt = now
	transfer.UpdatedAt = now

	r.mu.Lock()
	r.index[transfer.ID] = len(r.rows)
	r.rows = append(r.rows, transfer)
	r.mu.Unlock()

	id := transfer.ID
	recordUndo(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		pos, ok := r.index[id]
		if !ok {
			return
		}
		r.rows = append(r.rows[:pos], r.rows[pos+1:]...)
		delete(r.index, id)
		for i := pos; i < len(r.rows); i++ {
			r.index[r.rows[i].ID] = i
		}
	})

	return transfer, nil
}

func (r *TransferRepository) UpdateStatus(ctx context.Context, id string, status domain.TransferStatus, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[id]
	if !ok {
		return fmt.Errorf("update transfer %s: %w", id, domain.ErrNotFound)
	}

	current := r.rows[pos]
	if !current.Status.CanTransitionTo(status) {
		return fmt.Errorf("update transfer %s from %s to %s: %w", id, current.Status, status, domain.ErrInvalidStatusTransition)
	}

	previous := current
	current.Status = status
	current.Detail = detail
	current.UpdatedAt = r.clock.Now()
	r.rows[pos] = current

	recordUndo(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if p, ok := r.index[previous.ID]; ok {
			r.rows[p] = previous
		}
	})

	return nil
}

func (r *TransferRepository) FindByID(_ context.Context, id string) (domain.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[id]
	if !ok {
		return domain.Transfer{}, domain.ErrNotFound
	}
	return r.rows[pos], nil
}

func (r *TransferRepository) FindByAccountID(_ context.Context, accountID string) ([]domain.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Transfer, 0)
	for _, row := range r.rows {
		if row.Involves(accountID) {
			out = append(out, row)
		}
	}
	return out, nil
}
