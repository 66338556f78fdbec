package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/saldo/internal/domain"
	"github.com/iho/saldo/internal/usecase"
)

// Metrics holds the ledger's Prometheus metrics and implements usecase.DebitRecorder.
type Metrics struct {
	DebitsTotal *prometheus.CounterVec
	DebitAmount *prometheus.HistogramVec
	DebitErrors *prometheus.CounterVec
}

// New creates and registers the debit metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DebitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saldo_debits_total",
				Help: "Total number of committed debits by kind",
			},
			[]string{"kind"},
		),
		DebitAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "saldo_debit_amount",
				Help:    "Debited amounts in minor units",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"kind"},
		),
		DebitErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saldo_debit_errors_total",
				Help: "Total number of rejected debits by kind and reason",
			},
			[]string{"kind", "reason"},
		),
	}
}

// RecordDebit counts a committed debit.
func (m *Metrics) RecordDebit(kind usecase.DebitKind, amount decimal.Decimal) {
	m.DebitsTotal.WithLabelValues(string(kind)).Inc()
	m.DebitAmount.WithLabelValues(string(kind)).Observe(amount.InexactFloat64())
}

// RecordDebitError counts a rejected debit.
func (m *Metrics) RecordDebitError(kind usecase.DebitKind, reason string) {
	m.DebitErrors.WithLabelValues(string(kind), reason).Inc()
}

// Snapshotter is the part of usecase.LedgerStore the collector reads.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]*domain.Account, error)
}

// LedgerCollector exports ledger-wide gauges computed at scrape time.
type LedgerCollector struct {
	store    Snapshotter
	timeout  time.Duration
	accounts *prometheus.Desc
	balance  *prometheus.Desc
}

// NewLedgerCollector creates a collector over store.
func NewLedgerCollector(store Snapshotter) *LedgerCollector {
	return &LedgerCollector{
		store:   store,
		timeout: 2 * time.Second,
		accounts: prometheus.NewDesc(
			"saldo_ledger_accounts",
			"Number of accounts in the ledger",
			nil, nil,
		),
		balance: prometheus.NewDesc(
			"saldo_ledger_balance_total",
			"Sum of all account balances in minor units",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *LedgerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.accounts
	ch <- c.balance
}

// Collect implements prometheus.Collector.
func (c *LedgerCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	accounts, err := c.store.Snapshot(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.accounts, err)
		return
	}

	total := decimal.Zero
	for _, acc := range accounts {
		total = total.Add(acc.Balance)
	}

	ch <- prometheus.MustNewConstMetric(c.accounts, prometheus.GaugeValue, float64(len(accounts)))
	ch <- prometheus.MustNewConstMetric(c.balance, prometheus.GaugeValue, total.InexactFloat64())
}

var _ usecase.DebitRecorder = (*Metrics)(nil)
