package domain

import "context"

// UnitOfWork runs fn so that every repository write made with the ctx it
// receives is committed together or not at all.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
