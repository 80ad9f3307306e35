package domain

import "context"

// AccountRepository is the account store. It performs no locking: callers that
// modify more than one account must hold the LockCoordinator locks for all of them.
type AccountRepository interface {
	Create(ctx context.Context, account Account) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
	List(ctx context.Context) ([]Account, error)
	// Modify persists the in-memory balances of every given account. Either all
	// balances are written or none are.
	Modify(ctx context.Context, accounts []Account) error
}
