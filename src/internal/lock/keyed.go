package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/api-sage/account-transfer-service/src/internal/logger"
	"github.com/google/uuid"
)

var (
	ErrEmptyKey = errors.New("lock key cannot be empty")
	ErrNotHeld  = errors.New("lock was not held")
)

var _ domain.LockCoordinator = (*KeyedCoordinator)(nil)

type slot struct {
	sem   chan struct{}
	owner string
}

// KeyedCoordinator serializes work per account id inside one process. Each id
// maps to a one-slot semaphore created on first use; entries live as long as
// the coordinator.
type KeyedCoordinator struct {
	mu      sync.Mutex
	slots   map[string]*slot
	timeout time.Duration
}

// NewKeyedCoordinator builds a coordinator whose Lock waits at most timeout for
// the full id set. A zero timeout waits until ctx is done.
func NewKeyedCoordinator(timeout time.Duration) *KeyedCoordinator {
	return &KeyedCoordinator{
		slots:   make(map[string]*slot),
		timeout: timeout,
	}
}

func (c *KeyedCoordinator) Lock(ctx context.Context, ids []string) (domain.Lease, error) {
	ordered, err := Order(ids)
	if err != nil {
		return domain.Lease{}, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	token := uuid.NewString()
	acquired := make([]string, 0, len(ordered))
	for _, id := range ordered {
		s := c.slot(id)
		select {
		case s.sem <- struct{}{}:
			c.mu.Lock()
			s.owner = token
			c.mu.Unlock()
			acquired = append(acquired, id)
		case <-ctx.Done():
			c.release(acquired, token)
			logger.Warn("keyed lock acquisition gave up", logger.Fields{
				"accountId": id,
				"accounts":  ordered,
			})
			return domain.Lease{}, fmt.Errorf("%w: account %s: %w", domain.ErrLockTimeout, id, ctx.Err())
		}
	}

	return domain.Lease{IDs: ordered, Token: token}, nil
}

func (c *KeyedCoordinator) Unlock(_ context.Context, lease domain.Lease) error {
	ordered, err := Order(lease.IDs)
	if err != nil {
		return err
	}

	var errs []error
	for i := len(ordered) - 1; i >= 0; i-- {
		if !c.releaseOwned(ordered[i], lease.Token) {
			errs = append(errs, fmt.Errorf("%w: account %s", ErrNotHeld, ordered[i]))
		}
	}

	return errors.Join(errs...)
}

// Size reports how many ids have a lock entry.
func (c *KeyedCoordinator) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

func (c *KeyedCoordinator) slot(id string) *slot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[id]
	if !ok {
		s = &slot{sem: make(chan struct{}, 1)}
		c.slots[id] = s
	}
	return s
}

func (c *KeyedCoordinator) release(ids []string, token string) {
	for i := len(ids) - 1; i >= 0; i-- {
		c.releaseOwned(ids[i], token)
	}
}

// releaseOwned frees id only when the hold belongs to token.
func (c *KeyedCoordinator) releaseOwned(id, token string) bool {
	c.mu.Lock()
	s, ok := c.slots[id]
	if !ok || token == "" || s.owner != token {
		c.mu.Unlock()
		return false
	}
	s.owner = ""
	c.mu.Unlock()

	<-s.sem
	return true
}

// Order deduplicates ids and sorts them lexically. Every coordinator acquires
// in this order so that two callers sharing ids can never wait on each other
// in a cycle.
func Order(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, ErrEmptyKey
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	sort.Strings(out)
	return out, nil
}
