package implementations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/account-transfer-service/src/internal/logger"
	_ "github.com/lib/pq"
)

const pingRetryDelay = time.Second

// Open connects to PostgreSQL and retries the ping until ctx is done, so the
// service can start alongside its database.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	// A transfer holds one connection for the length of its unit of work.
	db.SetMaxOpenConns(30)
	db.SetMaxIdleConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(15 * time.Minute)

	for attempt := 1; ; attempt++ {
		err := db.PingContext(ctx)
		if err == nil {
			return db, nil
		}

		logger.Warn("postgres not reachable yet", logger.Fields{
			"attempt": attempt,
			"error":   err,
		})

		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres after %d attempts: %w", attempt, err)
		case <-time.After(pingRetryDelay):
		}
	}
}
