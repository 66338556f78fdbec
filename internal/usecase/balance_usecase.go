package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/saldo/internal/domain"
)

// BalanceUseCase handles balance queries and debits.
type BalanceUseCase struct {
	ledger   LedgerStore
	idGen    IDGenerator
	recorder DebitRecorder
	logger   zerolog.Logger
}

// NewBalanceUseCase creates a new BalanceUseCase. recorder may be nil.
func NewBalanceUseCase(ledger LedgerStore, idGen IDGenerator, recorder DebitRecorder, logger zerolog.Logger) *BalanceUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &BalanceUseCase{
		ledger:   ledger,
		idGen:    idGen,
		recorder: recorder,
		logger:   logger,
	}
}

// PaymentInput represents input for a payment. Amount is the raw JSON value.
type PaymentInput struct {
	AccountID string
	Amount    json.RawMessage
}

// WithdrawalInput represents input for a withdrawal. Amount is the raw JSON value.
type WithdrawalInput struct {
	AccountID string
	Amount    json.RawMessage
}

// DebitResult describes a committed debit.
type DebitResult struct {
	OperationID string
	AccountID   string
	Amount      decimal.Decimal
	NewBalance  decimal.Decimal
}

// GetBalance returns the account, provisioning it at the default balance.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, accountID string) (*domain.Account, error) {
	return uc.ledger.Get(ctx, accountID)
}

// ProcessPayment debits a payment. The amount only has to be a number: sign and
// scale are not checked, unlike ProcessWithdrawal.
func (uc *BalanceUseCase) ProcessPayment(ctx context.Context, input PaymentInput) (*DebitResult, error) {
	if input.AccountID == "" || domain.IsMissing(input.Amount) {
		return nil, uc.reject(DebitPayment, input.AccountID, domain.ErrInvalidRequest)
	}

	amount, err := domain.ParseAmount(input.Amount)
	if err != nil {
		return nil, uc.reject(DebitPayment, input.AccountID, err)
	}

	return uc.debit(ctx, DebitPayment, input.AccountID, amount)
}

// ProcessWithdrawal debits a withdrawal of a positive whole amount.
func (uc *BalanceUseCase) ProcessWithdrawal(ctx context.Context, input WithdrawalInput) (*DebitResult, error) {
	if input.AccountID == "" || domain.IsMissing(input.Amount) {
		return nil, uc.reject(DebitWithdrawal, input.AccountID, domain.ErrInvalidRequest)
	}

	amount, err := domain.ParseWholeAmount(input.Amount)
	if err != nil {
		return nil, uc.reject(DebitWithdrawal, input.AccountID, err)
	}

	return uc.debit(ctx, DebitWithdrawal, input.AccountID, amount)
}

func (uc *BalanceUseCase) debit(ctx context.Context, kind DebitKind, accountID string, amount decimal.Decimal) (*DebitResult, error) {
	account, err := uc.ledger.Update(ctx, accountID, func(acc *domain.Account) error {
		if err := acc.ValidateDebit(amount); err != nil {
			return err
		}
		acc.Balance = acc.ApplyDebit(amount)
		return nil
	})
	if err != nil {
		return nil, uc.reject(kind, accountID, err)
	}

	result := &DebitResult{
		OperationID: uc.idGen.Generate(),
		AccountID:   account.ID,
		Amount:      amount,
		NewBalance:  account.Balance,
	}

	uc.recorder.RecordDebit(kind, amount)
	uc.logger.Info().
		Str("operation_id", result.OperationID).
		Str("kind", string(kind)).
		Str("account_id", accountID).
		Str("amount", amount.String()).
		Str("new_balance", result.NewBalance.String()).
		Msg("debit applied")

	return result, nil
}

func (uc *BalanceUseCase) reject(kind DebitKind, accountID string, err error) error {
	reason := RejectionReason(err)
	uc.recorder.RecordDebitError(kind, reason)

	event := uc.logger.Debug()
	if reason == "internal" {
		event = uc.logger.Error()
	}
	event.Err(err).
		Str("kind", string(kind)).
		Str("account_id", accountID).
		Str("reason", reason).
		Msg("debit rejected")

	return err
}

// RejectionReason classifies a debit error for metrics and logs.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "internal"
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordDebit(DebitKind, decimal.Decimal) {}
func (nopRecorder) RecordDebitError(DebitKind, string) {}
