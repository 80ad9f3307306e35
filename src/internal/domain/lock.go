package domain

import "context"

// Lease is the set of holds granted by one Lock call. Unlock releases exactly
// these holds, so a holder whose hold already lapsed cannot free a later
// holder's lock on the same account.
type Lease struct {
	// IDs are the held account ids in acquisition order.
	IDs   []string
	Token string
}

// LockCoordinator grants exclusive per-account holds. Implementations acquire
// ids in one global order regardless of the order they are passed in.
type LockCoordinator interface {
	Lock(ctx context.Context, ids []string) (Lease, error)
	Unlock(ctx context.Context, lease Lease) error
}
