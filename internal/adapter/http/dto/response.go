package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/iho/saldo/internal/domain"
	"github.com/iho/saldo/internal/usecase"
)

// Client-facing error messages.
const (
	MsgFieldsRequired    = "Se requieren 'usuario' y 'monto'."
	MsgInsufficientFunds = "Saldo insuficiente."
	MsgInvalidAmount     = "El monto debe ser un número entero positivo."
	MsgExceedsBalance    = "El monto excede el saldo disponible."
	MsgInternal          = "internal server error"
)

// BalanceResponse is returned by GET /saldo/{usuario}.
type BalanceResponse struct {
	Usuario string      `json:"usuario"`
	Saldo   json.Number `json:"saldo"`
}

// PaymentResponse is returned by POST /pago.
type PaymentResponse struct {
	Usuario     string      `json:"usuario"`
	MontoPagado json.Number `json:"monto_pagado"`
	NuevoSaldo  json.Number `json:"nuevo_saldo"`
}

// WithdrawalResponse is returned by POST /retiro.
type WithdrawalResponse struct {
	Usuario       string      `json:"usuario"`
	MontoRetirado json.Number `json:"monto_retirado"`
	NuevoSaldo    json.Number `json:"nuevo_saldo"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error           string       `json:"error"`
	SaldoDisponible *json.Number `json:"saldo_disponible,omitempty"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}

// Number renders a decimal as a bare JSON number.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// BalanceFromDomain converts a domain account to a response.
func BalanceFromDomain(a *domain.Account) *BalanceResponse {
	return &BalanceResponse{
		Usuario: a.ID,
		Saldo:   Number(a.Balance),
	}
}

// PaymentFromResult converts a debit result to a payment response.
func PaymentFromResult(r *usecase.DebitResult) *PaymentResponse {
	return &PaymentResponse{
		Usuario:     r.AccountID,
		MontoPagado: Number(r.Amount),
		NuevoSaldo:  Number(r.NewBalance),
	}
}

// WithdrawalFromResult converts a debit result to a withdrawal response.
func WithdrawalFromResult(r *usecase.DebitResult) *WithdrawalResponse {
	return &WithdrawalResponse{
		Usuario:       r.AccountID,
		MontoRetirado: Number(r.Amount),
		NuevoSaldo:    Number(r.NewBalance),
	}
}

// ExceedsBalance builds the withdrawal rejection that reports the available balance.
func ExceedsBalance(available decimal.Decimal) ErrorResponse {
	n := Number(available)
	return ErrorResponse{
		Error:           MsgExceedsBalance,
		SaldoDisponible: &n,
	}
}
