package dto

import (
	"encoding/json"

	"github.com/iho/saldo/internal/usecase"
)

// DebitRequest is the body shared by /pago and /retiro.
// Monto stays raw so each operation can apply its own validation.
type DebitRequest struct {
	Usuario string          `json:"usuario"`
	Monto   json.RawMessage `json:"monto"`
}

// ToPaymentInput converts to use case input.
func (r *DebitRequest) ToPaymentInput() usecase.PaymentInput {
	return usecase.PaymentInput{
		AccountID: r.Usuario,
		Amount:    r.Monto,
	}
}

// ToWithdrawalInput converts to use case input.
func (r *DebitRequest) ToWithdrawalInput() usecase.WithdrawalInput {
	return usecase.WithdrawalInput{
		AccountID: r.Usuario,
		Amount:    r.Monto,
	}
}
