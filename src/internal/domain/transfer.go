package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places stored for amounts and balances.
const AmountScale int32 = 4

// FitsAmountScale reports whether d is representable with AmountScale decimal
// places. Trailing zeros beyond the scale are accepted.
func FitsAmountScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}

type TransferStatus string

const (
	TransferStatusPending TransferStatus = "PENDING"
	TransferStatusSuccess TransferStatus = "SUCCESS"
	TransferStatusError   TransferStatus = "ERROR"
)

func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusSuccess || s == TransferStatusError
}

func (s TransferStatus) IsValid() bool {
	return s == TransferStatusPending || s.IsTerminal()
}

// CanTransitionTo allows PENDING->SUCCESS and PENDING->ERROR only.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	return s == TransferStatusPending && next.IsTerminal()
}

type Transfer struct {
	ID              string
	SourceAccountID string
	DestAccountID   string
	Amount          decimal.Decimal
	Status          TransferStatus
	Detail          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AccountIDs returns the two accounts the transfer touches, source first.
func (t Transfer) AccountIDs() []string {
	return []string{t.SourceAccountID, t.DestAccountID}
}

// Involves reports whether accountID is the source or the destination.
func (t Transfer) Involves(accountID string) bool {
	return t.SourceAccountID == accountID || t.DestAccountID == accountID
}
