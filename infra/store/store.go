// Package store persists payments, orders and registrations.
//
// Uniqueness is enforced by the backend: a payment is keyed by its gateway
// payment id and a registration by its merchant order id. Inserts that hit
// an existing key return ErrDuplicate, which callers use as the idempotency
// signal instead of reading first.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mstgnz/eventpay/infra/config"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// Store is implemented by every storage backend
type Store interface {
	// InsertPayment fails with ErrDuplicate when the payment id exists
	InsertPayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)

	CreateOrder(ctx context.Context, o *Order) error
	FindOrderByMerchantID(ctx context.Context, merchantOrderID string) (*Order, error)
	SaveOrder(ctx context.Context, o *Order) error

	// CreateRegistration inserts only if no registration exists for the
	// same merchant order id or order id, returning ErrDuplicate otherwise
	CreateRegistration(ctx context.Context, r *Registration) error
	GetRegistration(ctx context.Context, merchantOrderID string) (*Registration, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open returns the backend selected by cfg.StorageDriver
func Open(ctx context.Context, cfg *config.AppConfig) (Store, error) {
	switch cfg.StorageDriver {
	case "mongo", "mongodb":
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "sqlite", "sqlite3":
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	case "postgres":
		return NewPostgresStore(ctx, cfg.PostgresDSN())
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("store: unknown storage driver %q", cfg.StorageDriver)
	}
}
