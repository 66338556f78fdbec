package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/saldo/internal/adapter/http/dto"
	"github.com/iho/saldo/internal/domain"
)

// OperationIDHeader carries the ID assigned to a committed debit.
const OperationIDHeader = "X-Operation-ID"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, resp dto.ErrorResponse) {
	writeJSON(w, status, resp)
}

// decodeDebitRequest decodes the body of /pago and /retiro. Any decoding
// failure is reported as a missing-fields request.
func decodeDebitRequest(r *http.Request) (*dto.DebitRequest, error) {
	var req dto.DebitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, domain.ErrInvalidRequest
	}
	return &req, nil
}

// paymentError maps payment errors to a status code and body.
func paymentError(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, dto.ErrorResponse{Error: dto.MsgFieldsRequired}
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, dto.ErrorResponse{Error: dto.MsgInsufficientFunds}
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Error: dto.MsgInternal}
	}
}

// withdrawalError maps withdrawal errors to a status code and body.
func withdrawalError(err error) (int, dto.ErrorResponse) {
	var insufficient *domain.InsufficientFundsError

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, dto.ErrorResponse{Error: dto.MsgFieldsRequired}
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, dto.ErrorResponse{Error: dto.MsgInvalidAmount}
	case errors.As(err, &insufficient):
		return http.StatusBadRequest, dto.ExceedsBalance(insufficient.Available)
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Error: dto.MsgInternal}
	}
}
