package conn

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mstgnz/eventpay/infra/logger"
)

// Options tunes the connection pool and the startup retry loop
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	Attempts        int
	RetryDelay      time.Duration
}

// DefaultOptions mirror the settings used for the postgres deployment
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		Attempts:        5,
		RetryDelay:      2 * time.Second,
	}
}

// Open opens a database/sql handle and pings it, retrying while the
// server is not reachable yet
func Open(ctx context.Context, driver, dsn string, opts Options) (*sql.DB, error) {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		database, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", driver, err)
		}

		database.SetMaxOpenConns(opts.MaxOpenConns)
		database.SetMaxIdleConns(opts.MaxIdleConns)
		database.SetConnMaxLifetime(opts.ConnMaxLifetime)
		database.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = database.PingContext(pingCtx)
		cancel()
		if err == nil {
			logger.Info("DB connected", logger.LogContext{Fields: map[string]any{"driver": driver, "attempt": attempt}})
			return database, nil
		}

		lastErr = err
		database.Close()
		logger.Warn(fmt.Sprintf("Attempt %d: failed to ping %s: %v", attempt, driver, err))

		if attempt < opts.Attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(opts.RetryDelay):
			}
		}
	}

	return nil, fmt.Errorf("connect %s after %d attempts: %w", driver, opts.Attempts, lastErr)
}

// Close closes db and logs the outcome
func Close(db *sql.DB) error {
	if err := db.Close(); err != nil {
		logger.Error("Failed to close database connection", err)
		return err
	}
	logger.Info("DB connection closed")
	return nil
}
