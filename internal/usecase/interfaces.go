package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/saldo/internal/domain"
)

// LedgerStore defines data access for account balances.
type LedgerStore interface {
	// Get returns the account, inserting it at the default balance if it is unknown.
	Get(ctx context.Context, id string) (*domain.Account, error)
	// Update runs fn against a copy of the account (provisioning it first if
	// needed) and commits the copy only when fn returns nil. The lookup, fn and
	// the commit happen under one lock.
	Update(ctx context.Context, id string, fn func(account *domain.Account) error) (*domain.Account, error)
	// Snapshot returns a copy of every account ordered by ID.
	Snapshot(ctx context.Context) ([]*domain.Account, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// DebitRecorder receives the outcome of every debit attempt.
type DebitRecorder interface {
	RecordDebit(kind DebitKind, amount decimal.Decimal)
	RecordDebitError(kind DebitKind, reason string)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
