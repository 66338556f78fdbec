package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iho/saldo/internal/adapter/http/dto"
	"github.com/iho/saldo/internal/domain"
	"github.com/iho/saldo/internal/usecase"
)

var errEncodedSlash = errors.New("encoded slash in account ID")

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	GetBalance(ctx context.Context, accountID string) (*domain.Account, error)
	ProcessPayment(ctx context.Context, input usecase.PaymentInput) (*usecase.DebitResult, error)
	ProcessWithdrawal(ctx context.Context, input usecase.WithdrawalInput) (*usecase.DebitResult, error)
}

// BalanceHandler handles balance-related HTTP requests.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// Get returns the balance of an account, provisioning it if unseen.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := usuarioParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	account, err := h.balanceUC.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, dto.ErrorResponse{Error: dto.MsgInternal})
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(account))
}

// Pay debits a payment.
func (h *BalanceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	req, err := decodeDebitRequest(r)
	if err != nil {
		status, resp := paymentError(err)
		writeError(w, status, resp)
		return
	}

	result, err := h.balanceUC.ProcessPayment(r.Context(), req.ToPaymentInput())
	if err != nil {
		status, resp := paymentError(err)
		writeError(w, status, resp)
		return
	}

	w.Header().Set(OperationIDHeader, result.OperationID)
	writeJSON(w, http.StatusOK, dto.PaymentFromResult(result))
}

// Withdraw debits a withdrawal.
func (h *BalanceHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	req, err := decodeDebitRequest(r)
	if err != nil {
		status, resp := withdrawalError(err)
		writeError(w, status, resp)
		return
	}

	result, err := h.balanceUC.ProcessWithdrawal(r.Context(), req.ToWithdrawalInput())
	if err != nil {
		status, resp := withdrawalError(err)
		writeError(w, status, resp)
		return
	}

	w.Header().Set(OperationIDHeader, result.OperationID)
	writeJSON(w, http.StatusOK, dto.WithdrawalFromResult(result))
}

// usuarioParam returns the decoded account ID. chi matches on RawPath when it
// is set, leaving escapes in the parameter. A decoded slash would not have
// matched the route.
func usuarioParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "usuario")
	if r.URL.RawPath == "" {
		return id, nil
	}

	id, err := url.PathUnescape(id)
	if err != nil {
		return "", err
	}
	if strings.Contains(id, "/") {
		return "", errEncodedSlash
	}
	return id, nil
}
