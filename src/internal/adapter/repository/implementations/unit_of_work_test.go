package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPQErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	check := &pq.Error{Code: "23514"}

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isCheckViolation(unique))
	assert.True(t, isCheckViolation(check))
	assert.False(t, isUniqueViolation(errors.New("plain")))
}

func TestConnPrefersContextTransaction(t *testing.T) {
	db := &sql.DB{}
	assert.Same(t, db, conn(context.Background(), db))

	tx := &sql.Tx{}
	ctx := context.WithValue(context.Background(), txKey{}, tx)
	assert.Same(t, tx, conn(ctx, db))
}
