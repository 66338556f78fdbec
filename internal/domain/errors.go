package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// Request errors
	ErrInvalidRequest = errors.New("account and amount are required")
	ErrInvalidAmount  = errors.New("amount must be a positive integer")

	// Balance errors
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// InsufficientFundsError reports the balance that was available when a debit
// was rejected.
type InsufficientFundsError struct {
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return ErrInsufficientFunds.Error() + ": available " + e.Available.String()
}

// Unwrap lets errors.Is match ErrInsufficientFunds.
func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}
