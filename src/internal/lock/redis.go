package lock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/api-sage/account-transfer-service/src/internal/logger"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	goredislib "github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "transfer:lock:account:"

var (
	ErrNilRedisClient   = errors.New("redis client is nil")
	ErrInvalidLockLease = errors.New("lock expiry and retry delay must be greater than zero")
)

var _ domain.LockCoordinator = (*RedisCoordinator)(nil)

type RedisOptions struct {
	// Timeout bounds the whole Lock call. Zero waits until ctx is done.
	Timeout time.Duration
	// Expiry is the lease on each key; a crashed holder frees the account after it.
	Expiry     time.Duration
	RetryDelay time.Duration
	KeyPrefix  string
}

type holdKey struct {
	token string
	id    string
}

// RedisCoordinator holds per-account locks in redis so that several service
// instances sharing one database serialize on the same accounts.
type RedisCoordinator struct {
	redsync *redsync.Redsync
	opts    RedisOptions

	mu   sync.Mutex
	held map[holdKey]*redsync.Mutex
}

func NewRedisCoordinator(client goredislib.UniversalClient, opts RedisOptions) (*RedisCoordinator, error) {
	if client == nil {
		return nil, ErrNilRedisClient
	}
	if opts.Expiry <= 0 || opts.RetryDelay <= 0 {
		return nil, ErrInvalidLockLease
	}
	if strings.TrimSpace(opts.KeyPrefix) == "" {
		opts.KeyPrefix = defaultKeyPrefix
	}

	return &RedisCoordinator{
		redsync: redsync.New(goredis.NewPool(client)),
		opts:    opts,
		held:    make(map[holdKey]*redsync.Mutex),
	}, nil
}

func (c *RedisCoordinator) Lock(ctx context.Context, ids []string) (domain.Lease, error) {
	ordered, err := Order(ids)
	if err != nil {
		return domain.Lease{}, err
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	token := uuid.NewString()
	acquired := make([]string, 0, len(ordered))
	for _, id := range ordered {
		mutex := c.redsync.NewMutex(
			c.opts.KeyPrefix+id,
			redsync.WithExpiry(c.opts.Expiry),
			redsync.WithTries(c.tries()),
			redsync.WithRetryDelay(c.opts.RetryDelay),
		)

		if err := mutex.LockContext(ctx); err != nil {
			c.release(context.WithoutCancel(ctx), acquired, token)

			if isContention(ctx, err) {
				logger.Warn("redis lock acquisition gave up", logger.Fields{
					"accountId": id,
					"accounts":  ordered,
				})
				return domain.Lease{}, fmt.Errorf("%w: account %s: %w", domain.ErrLockTimeout, id, err)
			}

			logger.Error("redis lock acquisition failed", err, logger.Fields{
				"accountId": id,
			})
			return domain.Lease{}, fmt.Errorf("acquire lock for account %s: %w", id, err)
		}

		c.mu.Lock()
		c.held[holdKey{token: token, id: id}] = mutex
		c.mu.Unlock()
		acquired = append(acquired, id)
	}

	return domain.Lease{IDs: ordered, Token: token}, nil
}

func (c *RedisCoordinator) Unlock(ctx context.Context, lease domain.Lease) error {
	ordered, err := Order(lease.IDs)
	if err != nil {
		return err
	}

	var errs []error
	for i := len(ordered) - 1; i >= 0; i-- {
		if err := c.unlockOne(ctx, ordered[i], lease.Token); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (c *RedisCoordinator) unlockOne(ctx context.Context, id, token string) error {
	key := holdKey{token: token, id: id}

	c.mu.Lock()
	mutex, ok := c.held[key]
	delete(c.held, key)
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: account %s", ErrNotHeld, id)
	}

	// redsync only deletes the key while it still carries this mutex's value,
	// so a lapsed lease never frees a later holder's lock.
	released, err := mutex.UnlockContext(ctx)
	if released {
		return nil
	}
	if err == nil || isLeaseLost(err) {
		logger.Warn("redis lock expired before release", logger.Fields{
			"accountId": id,
		})
		return fmt.Errorf("%w: account %s: lease expired", ErrNotHeld, id)
	}

	logger.Error("redis lock release failed", err, logger.Fields{
		"accountId": id,
	})
	return fmt.Errorf("release lock for account %s: %w", id, err)
}

func (c *RedisCoordinator) release(ctx context.Context, ids []string, token string) {
	for i := len(ids) - 1; i >= 0; i-- {
		_ = c.unlockOne(ctx, ids[i], token)
	}
}

func (c *RedisCoordinator) tries() int {
	if c.opts.Timeout <= 0 {
		return math.MaxInt32
	}
	return int(c.opts.Timeout/c.opts.RetryDelay) + 1
}

func isContention(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, redsync.ErrFailed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "lock already taken") || strings.Contains(msg, "failed to acquire lock")
}

func isLeaseLost(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "already expired") || strings.Contains(msg, "lock already taken")
}
