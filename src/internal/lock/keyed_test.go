package lock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestOrderSortsAndDeduplicates(t *testing.T) {
	got, err := Order([]string{"b", "a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	_, err = Order([]string{"a", ""})
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestKeyedCoordinatorLockUnlock(t *testing.T) {
	c := NewKeyedCoordinator(time.Second)
	ctx := context.Background()

	lease, err := c.Lock(ctx, []string{"B", "A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, lease.IDs)
	assert.NotEmpty(t, lease.Token)
	require.NoError(t, c.Unlock(ctx, lease))

	// Released locks can be taken again.
	lease, err = c.Lock(ctx, []string{"A", "B"})
	require.NoError(t, err)
	require.NoError(t, c.Unlock(ctx, lease))
}

func TestKeyedCoordinatorUnlockWithoutLock(t *testing.T) {
	c := NewKeyedCoordinator(time.Second)

	err := c.Unlock(context.Background(), domain.Lease{IDs: []string{"A"}, Token: "t"})
	assert.ErrorIs(t, err, ErrNotHeld)
}

func TestKeyedCoordinatorUnlockOnlyReleasesOwnLease(t *testing.T) {
	c := NewKeyedCoordinator(50 * time.Millisecond)
	ctx := context.Background()

	held, err := c.Lock(ctx, []string{"A"})
	require.NoError(t, err)

	// A lease for the same id from another caller must not free the hold.
	stale := domain.Lease{IDs: []string{"A"}, Token: "someone-else"}
	require.ErrorIs(t, c.Unlock(ctx, stale), ErrNotHeld)

	_, err = c.Lock(ctx, []string{"A"})
	require.ErrorIs(t, err, domain.ErrLockTimeout, "A must still be held")

	require.NoError(t, c.Unlock(ctx, held))
	require.ErrorIs(t, c.Unlock(ctx, held), ErrNotHeld, "second release of the same lease")
}

func TestKeyedCoordinatorTimeoutReleasesPartialHolds(t *testing.T) {
	c := NewKeyedCoordinator(50 * time.Millisecond)
	ctx := context.Background()

	holdB, err := c.Lock(ctx, []string{"B"})
	require.NoError(t, err)

	// A is acquired first, then B times out; A must be released again.
	_, err = c.Lock(ctx, []string{"A", "B"})
	require.ErrorIs(t, err, domain.ErrLockTimeout)

	holdA, err := c.Lock(ctx, []string{"A"})
	require.NoError(t, err)
	require.NoError(t, c.Unlock(ctx, holdA))
	require.NoError(t, c.Unlock(ctx, holdB))
}

func TestKeyedCoordinatorHonoursContextCancellation(t *testing.T) {
	c := NewKeyedCoordinator(0)
	_, err := c.Lock(context.Background(), []string{"A"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Lock(ctx, []string{"A"})
		errCh <- err
	}()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, domain.ErrLockTimeout)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("lock did not observe cancellation")
	}
}

func TestKeyedCoordinatorOppositeOrderDoesNotDeadlock(t *testing.T) {
	c := NewKeyedCoordinator(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var inside int32
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 200; i++ {
		ids := []string{"A", "B"}
		if i%2 == 1 {
			ids = []string{"B", "A"}
		}
		g.Go(func() error {
			lease, err := c.Lock(gctx, ids)
			if err != nil {
				return err
			}
			if n := atomic.AddInt32(&inside, 1); n != 1 {
				return fmt.Errorf("%d holders inside critical section", n)
			}
			atomic.AddInt32(&inside, -1)
			return c.Unlock(gctx, lease)
		})
	}

	require.NoError(t, g.Wait())
}

func TestKeyedCoordinatorDisjointKeysDoNotBlock(t *testing.T) {
	c := NewKeyedCoordinator(time.Second)
	ctx := context.Background()

	held, err := c.Lock(ctx, []string{"A", "B"})
	require.NoError(t, err)
	defer func() { _ = c.Unlock(ctx, held) }()

	type result struct {
		lease domain.Lease
		err   error
	}
	done := make(chan result, 1)
	go func() {
		lease, err := c.Lock(ctx, []string{"C", "D"})
		done <- result{lease: lease, err: err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		require.NoError(t, c.Unlock(ctx, res.lease))
	case <-time.After(500 * time.Millisecond):
		t.Fatal("disjoint lock set was blocked")
	}
}

func TestKeyedCoordinatorCreatesOneEntryPerKey(t *testing.T) {
	c := NewKeyedCoordinator(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	var counter int64
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := c.Lock(ctx, []string{"shared"})
			if !assert.NoError(t, err) {
				return
			}
			// Non-atomic read-modify-write guarded only by the lock.
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
			assert.NoError(t, c.Unlock(ctx, lease))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), counter)
	assert.Equal(t, 1, c.Size())
}
