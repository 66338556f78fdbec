package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/saldo/internal/domain"
	"github.com/iho/saldo/internal/usecase"
)

// LedgerStore implements usecase.LedgerStore on a map guarded by a single mutex.
// Entries are added lazily and never removed.
type LedgerStore struct {
	mu             sync.Mutex
	balances       map[string]decimal.Decimal
	defaultBalance decimal.Decimal
}

// NewLedgerStore creates a LedgerStore seeded with the given balances.
func NewLedgerStore(seed map[string]int64, defaultBalance int64) *LedgerStore {
	balances := make(map[string]decimal.Decimal, len(seed))
	for id, balance := range seed {
		balances[id] = decimal.NewFromInt(balance)
	}

	return &LedgerStore{
		balances:       balances,
		defaultBalance: decimal.NewFromInt(defaultBalance),
	}
}

// Get returns the account, inserting it at the default balance if it is unknown.
func (s *LedgerStore) Get(ctx context.Context, id string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return &domain.Account{ID: id, Balance: s.getOrInsert(id)}, nil
}

// Update applies fn to a copy of the account and commits it if fn succeeds.
func (s *LedgerStore) Update(ctx context.Context, id string, fn func(account *domain.Account) error) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account := &domain.Account{ID: id, Balance: s.getOrInsert(id)}
	if err := fn(account); err != nil {
		return nil, err
	}

	s.balances[id] = account.Balance

	return account.Clone(), nil
}

// Snapshot returns every account ordered by ID.
func (s *LedgerStore) Snapshot(ctx context.Context) ([]*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	accounts := make([]*domain.Account, 0, len(s.balances))
	for id, balance := range s.balances {
		accounts = append(accounts, &domain.Account{ID: id, Balance: balance})
	}
	s.mu.Unlock()

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})

	return accounts, nil
}

// getOrInsert must be called with mu held.
func (s *LedgerStore) getOrInsert(id string) decimal.Decimal {
	balance, ok := s.balances[id]
	if !ok {
		balance = s.defaultBalance
		s.balances[id] = balance
	}
	return balance
}

var _ usecase.LedgerStore = (*LedgerStore)(nil)
