package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/saldo/internal/adapter/repository/memory"
	"github.com/iho/saldo/internal/domain"
	"github.com/iho/saldo/internal/usecase"
	"github.com/iho/saldo/internal/usecase/mocks"
)

type fixedIDGenerator struct{ id string }

func (g fixedIDGenerator) Generate() string { return g.id }

func newBalanceUseCase() (*usecase.BalanceUseCase, *memory.LedgerStore) {
	store := memory.NewLedgerStore(domain.SeedBalances(), domain.DefaultBalance)
	uc := usecase.NewBalanceUseCase(store, fixedIDGenerator{id: "op-1"}, nil, zerolog.Nop())
	return uc, store
}

func balanceOf(t *testing.T, store *memory.LedgerStore, id string) decimal.Decimal {
	t.Helper()
	acc, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return acc.Balance
}

func TestBalanceUseCase_GetBalance(t *testing.T) {
	tests := []struct {
		name      string
		accountID string
		expected  int64
	}{
		{"seed usuario1", "usuario1", 10000},
		{"seed usuario2", "usuario2", 15000},
		{"seed usuario3", "usuario3", 5000},
		{"unknown account", "alguien", 100000},
		{"any string", "con espacios y ñ", 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := newBalanceUseCase()

			acc, err := uc.GetBalance(context.Background(), tt.accountID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !acc.Balance.Equal(decimal.NewFromInt(tt.expected)) {
				t.Errorf("expected balance %d, got %s", tt.expected, acc.Balance)
			}
		})
	}
}

func TestBalanceUseCase_ProcessPayment(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.PaymentInput
		expectErr   error
		expectFinal string
	}{
		{
			name:        "debits the balance",
			input:       usecase.PaymentInput{AccountID: "usuario1", Amount: json.RawMessage("2500")},
			expectFinal: "7500",
		},
		{
			name:        "debits the full balance",
			input:       usecase.PaymentInput{AccountID: "usuario3", Amount: json.RawMessage("5000")},
			expectFinal: "0",
		},
		{
			name:        "missing account",
			input:       usecase.PaymentInput{Amount: json.RawMessage("100")},
			expectErr:   domain.ErrInvalidRequest,
			expectFinal: "",
		},
		{
			name:        "missing amount",
			input:       usecase.PaymentInput{AccountID: "usuario1"},
			expectErr:   domain.ErrInvalidRequest,
			expectFinal: "10000",
		},
		{
			name:        "null amount",
			input:       usecase.PaymentInput{AccountID: "usuario1", Amount: json.RawMessage("null")},
			expectErr:   domain.ErrInvalidRequest,
			expectFinal: "10000",
		},
		{
			name:        "non numeric amount",
			input:       usecase.PaymentInput{AccountID: "usuario1", Amount: json.RawMessage(`"mil"`)},
			expectErr:   domain.ErrInvalidRequest,
			expectFinal: "10000",
		},
		{
			name:        "insufficient funds",
			input:       usecase.PaymentInput{AccountID: "usuario3", Amount: json.RawMessage("5001")},
			expectErr:   domain.ErrInsufficientFunds,
			expectFinal: "5000",
		},
		{
			name:        "negative amount is accepted",
			input:       usecase.PaymentInput{AccountID: "usuario1", Amount: json.RawMessage("-500")},
			expectFinal: "10500",
		},
		{
			name:        "fractional amount is accepted",
			input:       usecase.PaymentInput{AccountID: "usuario1", Amount: json.RawMessage("0.5")},
			expectFinal: "9999.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store := newBalanceUseCase()

			result, err := uc.ProcessPayment(context.Background(), tt.input)

			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if result.OperationID != "op-1" {
					t.Errorf("expected operation ID op-1, got %q", result.OperationID)
				}
				if result.NewBalance.String() != tt.expectFinal {
					t.Errorf("expected new balance %s, got %s", tt.expectFinal, result.NewBalance)
				}
			}

			if tt.expectFinal != "" {
				if got := balanceOf(t, store, tt.input.AccountID); got.String() != tt.expectFinal {
					t.Errorf("expected stored balance %s, got %s", tt.expectFinal, got)
				}
			}
		})
	}
}

func TestBalanceUseCase_ProcessWithdrawal(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.WithdrawalInput
		expectErr   error
		expectFinal int64
	}{
		{
			name:        "debits the balance",
			input:       usecase.WithdrawalInput{AccountID: "usuario2", Amount: json.RawMessage("5000")},
			expectFinal: 10000,
		},
		{
			name:        "missing amount",
			input:       usecase.WithdrawalInput{AccountID: "usuario2"},
			expectErr:   domain.ErrInvalidRequest,
			expectFinal: 15000,
		},
		{
			name:        "zero amount",
			input:       usecase.WithdrawalInput{AccountID: "usuario2", Amount: json.RawMessage("0")},
			expectErr:   domain.ErrInvalidAmount,
			expectFinal: 15000,
		},
		{
			name:        "negative amount",
			input:       usecase.WithdrawalInput{AccountID: "usuario2", Amount: json.RawMessage("-10")},
			expectErr:   domain.ErrInvalidAmount,
			expectFinal: 15000,
		},
		{
			name:        "fractional amount",
			input:       usecase.WithdrawalInput{AccountID: "usuario2", Amount: json.RawMessage("10.5")},
			expectErr:   domain.ErrInvalidAmount,
			expectFinal: 15000,
		},
		{
			name:        "string amount",
			input:       usecase.WithdrawalInput{AccountID: "usuario2", Amount: json.RawMessage(`"10"`)},
			expectErr:   domain.ErrInvalidAmount,
			expectFinal: 15000,
		},
		{
			name:        "exceeds balance",
			input:       usecase.WithdrawalInput{AccountID: "usuario2", Amount: json.RawMessage("15001")},
			expectErr:   domain.ErrInsufficientFunds,
			expectFinal: 15000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store := newBalanceUseCase()

			result, err := uc.ProcessWithdrawal(context.Background(), tt.input)

			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !result.NewBalance.Equal(decimal.NewFromInt(tt.expectFinal)) {
					t.Errorf("expected new balance %d, got %s", tt.expectFinal, result.NewBalance)
				}
			}

			if got := balanceOf(t, store, tt.input.AccountID); !got.Equal(decimal.NewFromInt(tt.expectFinal)) {
				t.Errorf("expected stored balance %d, got %s", tt.expectFinal, got)
			}
		})
	}
}

func TestBalanceUseCase_WithdrawalReportsAvailableBalance(t *testing.T) {
	uc, _ := newBalanceUseCase()

	_, err := uc.ProcessWithdrawal(context.Background(), usecase.WithdrawalInput{
		AccountID: "usuario3",
		Amount:    json.RawMessage("6000"),
	})

	var insufficient *domain.InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected *domain.InsufficientFundsError, got %v", err)
	}
	if !insufficient.Available.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected available 5000, got %s", insufficient.Available)
	}
}

func TestBalanceUseCase_InvalidAmountDoesNotProvision(t *testing.T) {
	uc, store := newBalanceUseCase()

	_, err := uc.ProcessWithdrawal(context.Background(), usecase.WithdrawalInput{
		AccountID: "nuevo",
		Amount:    json.RawMessage("-1"),
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	accounts, err := store.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected ledger to stay at 3 accounts, got %d", len(accounts))
	}
}

func TestBalanceUseCase_SequentialOperations(t *testing.T) {
	uc, _ := newBalanceUseCase()
	ctx := context.Background()

	acc, err := uc.GetBalance(ctx, "secuencia")
	if err != nil || !acc.Balance.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("expected 100000, got %v (err=%v)", acc, err)
	}

	withdrawal, err := uc.ProcessWithdrawal(ctx, usecase.WithdrawalInput{AccountID: "secuencia", Amount: json.RawMessage("40000")})
	if err != nil {
		t.Fatalf("withdrawal failed: %v", err)
	}
	if !withdrawal.NewBalance.Equal(decimal.NewFromInt(60000)) {
		t.Fatalf("expected 60000 after withdrawal, got %s", withdrawal.NewBalance)
	}

	payment, err := uc.ProcessPayment(ctx, usecase.PaymentInput{AccountID: "secuencia", Amount: json.RawMessage("10000")})
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if !payment.NewBalance.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected 50000 after payment, got %s", payment.NewBalance)
	}

	acc, err = uc.GetBalance(ctx, "secuencia")
	if err != nil || !acc.Balance.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected 50000, got %v (err=%v)", acc, err)
	}
}

func TestBalanceUseCase_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	uc, store := newBalanceUseCase()
	ctx := context.Background()

	// usuario3 holds 5000: at most 50 withdrawals of 100 can succeed.
	var wg sync.WaitGroup
	var succeeded, rejected atomic.Int32
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.ProcessWithdrawal(ctx, usecase.WithdrawalInput{AccountID: "usuario3", Amount: json.RawMessage("100")})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrInsufficientFunds):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded.Load() != 50 || rejected.Load() != 30 {
		t.Fatalf("expected 50 successes and 30 rejections, got %d and %d", succeeded.Load(), rejected.Load())
	}
	if got := balanceOf(t, store, "usuario3"); !got.IsZero() {
		t.Fatalf("expected balance 0, got %s", got)
	}
}

func TestBalanceUseCase_RecordsOutcomes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := memory.NewLedgerStore(domain.SeedBalances(), domain.DefaultBalance)
	idGen := mocks.NewMockIDGenerator(ctrl)
	recorder := mocks.NewMockDebitRecorder(ctrl)

	idGen.EXPECT().Generate().Return("01HZX0000000000000000000000")
	recorder.EXPECT().RecordDebit(usecase.DebitWithdrawal, gomock.Cond(func(x any) bool {
		return x.(decimal.Decimal).Equal(decimal.NewFromInt(100))
	}))
	recorder.EXPECT().RecordDebitError(usecase.DebitPayment, "insufficient_funds")

	uc := usecase.NewBalanceUseCase(store, idGen, recorder, zerolog.Nop())
	ctx := context.Background()

	result, err := uc.ProcessWithdrawal(ctx, usecase.WithdrawalInput{AccountID: "usuario1", Amount: json.RawMessage("100")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OperationID != "01HZX0000000000000000000000" {
		t.Errorf("unexpected operation ID %q", result.OperationID)
	}

	if _, err := uc.ProcessPayment(ctx, usecase.PaymentInput{AccountID: "usuario3", Amount: json.RawMessage("999999")}); err == nil {
		t.Fatal("expected insufficient funds")
	}
}

func TestBalanceUseCase_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storeErr := errors.New("store unavailable")
	store := mocks.NewMockLedgerStore(ctrl)
	store.EXPECT().Update(gomock.Any(), "usuario1", gomock.Any()).Return(nil, storeErr)

	recorder := mocks.NewMockDebitRecorder(ctrl)
	recorder.EXPECT().RecordDebitError(usecase.DebitPayment, "internal")

	uc := usecase.NewBalanceUseCase(store, mocks.NewMockIDGenerator(ctrl), recorder, zerolog.Nop())

	_, err := uc.ProcessPayment(context.Background(), usecase.PaymentInput{AccountID: "usuario1", Amount: json.RawMessage("1")})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestRejectionReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrInvalidRequest, "invalid_request"},
		{domain.ErrInvalidAmount, "invalid_amount"},
		{&domain.InsufficientFundsError{Available: decimal.NewFromInt(1)}, "insufficient_funds"},
		{errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		if got := usecase.RejectionReason(tt.err); got != tt.want {
			t.Errorf("RejectionReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
