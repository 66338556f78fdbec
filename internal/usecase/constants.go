package usecase

import "time"

const (
	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// DebitKind distinguishes the two ways a balance can be debited.
type DebitKind string

const (
	DebitPayment    DebitKind = "payment"
	DebitWithdrawal DebitKind = "withdrawal"
)
