package domain

import (
	"github.com/shopspring/decimal"
)

// DefaultBalance is assigned to any account the ledger has not seen before.
const DefaultBalance int64 = 100000

// Account represents a single ledger entry: an identifier and its balance.
type Account struct {
	ID      string
	Balance decimal.Decimal
}

// NewAccount creates an account with the given balance in minor units.
func NewAccount(id string, balance int64) *Account {
	return &Account{ID: id, Balance: decimal.NewFromInt(balance)}
}

// SeedBalances returns the balances the ledger starts with.
func SeedBalances() map[string]int64 {
	return map[string]int64{
		"usuario1": 10000,
		"usuario2": 15000,
		"usuario3": 5000,
	}
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if amount.GreaterThan(a.Balance) {
		return &InsufficientFundsError{Available: a.Balance}
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// Clone returns a copy that can be mutated without touching the original.
func (a *Account) Clone() *Account {
	return &Account{ID: a.ID, Balance: a.Balance}
}
