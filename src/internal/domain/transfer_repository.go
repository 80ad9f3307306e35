package domain

import "context"

// TransferRepository is the transfer ledger: append-only rows with a status that
// moves from PENDING to a terminal value exactly once.
type TransferRepository interface {
	// Insert assigns a fresh id, forces PENDING and returns the stored row.
	Insert(ctx context.Context, transfer Transfer) (Transfer, error)
	UpdateStatus(ctx context.Context, id string, status TransferStatus, detail string) error
	FindByID(ctx context.Context, id string) (Transfer, error)
	// FindByAccountID returns every transfer where the account is source or
	// destination, in insertion order.
	FindByAccountID(ctx context.Context, accountID string) ([]Transfer, error)
}
