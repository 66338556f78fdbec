package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/iho/saldo/internal/domain"
	"github.com/iho/saldo/internal/usecase"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.DebitsTotal == nil || m.DebitAmount == nil || m.DebitErrors == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.RecordDebit(usecase.DebitPayment, decimal.NewFromInt(10))

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestRecordDebit(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordDebit(usecase.DebitWithdrawal, decimal.NewFromInt(40000))
	m.RecordDebit(usecase.DebitWithdrawal, decimal.NewFromInt(1))
	m.RecordDebitError(usecase.DebitPayment, "insufficient_funds")

	if got := testutil.ToFloat64(m.DebitsTotal.WithLabelValues("withdrawal")); got != 2 {
		t.Fatalf("expected 2 withdrawals, got %v", got)
	}
	if got := testutil.ToFloat64(m.DebitsTotal.WithLabelValues("payment")); got != 0 {
		t.Fatalf("expected 0 payments, got %v", got)
	}
	if got := testutil.ToFloat64(m.DebitErrors.WithLabelValues("payment", "insufficient_funds")); got != 1 {
		t.Fatalf("expected 1 rejected payment, got %v", got)
	}
}

type staticSnapshot struct {
	accounts []*domain.Account
	err      error
}

func (s staticSnapshot) Snapshot(ctx context.Context) ([]*domain.Account, error) {
	return s.accounts, s.err
}

func TestLedgerCollector(t *testing.T) {
	collector := NewLedgerCollector(staticSnapshot{accounts: []*domain.Account{
		domain.NewAccount("usuario1", 10000),
		domain.NewAccount("usuario2", 15000),
		domain.NewAccount("usuario3", 5000),
	}})

	expected := `
# HELP saldo_ledger_accounts Number of accounts in the ledger
# TYPE saldo_ledger_accounts gauge
saldo_ledger_accounts 3
# HELP saldo_ledger_balance_total Sum of all account balances in minor units
# TYPE saldo_ledger_balance_total gauge
saldo_ledger_balance_total 30000
`
	if err := testutil.CollectAndCompare(collector, strings.NewReader(expected)); err != nil {
		t.Fatalf("unexpected collector output: %v", err)
	}
}

func TestLedgerCollectorSnapshotError(t *testing.T) {
	collector := NewLedgerCollector(staticSnapshot{err: errors.New("boom")})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	if _, err := registry.Gather(); err == nil {
		t.Fatal("expected gather to report the snapshot error")
	}
}
