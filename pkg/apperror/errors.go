package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"checked-ledger/pkg/safemath"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger Business Logic (PAY) ----

func ErrInsufficientFunds() *AppError {
	return Wrap("PAY_001", "Insufficient balance in wallet", http.StatusPaymentRequired, safemath.ErrInsufficientFunds)
}

func ErrInvalidAmount() *AppError {
	return New("PAY_002", "Invalid amount", http.StatusBadRequest)
}

func ErrDuplicateTransaction() *AppError {
	return New("PAY_003", "Duplicate transaction", http.StatusConflict)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInvalidRefund() *AppError {
	return New("PAY_006", "Original transaction not eligible for refund", http.StatusBadRequest)
}

func ErrRefundAmountExceedsOriginal() *AppError {
	return New("PAY_007", "Refund amount exceeds original transaction amount", http.StatusBadRequest)
}

// ---- Arithmetic (ARITH) ----

func ErrArithmeticOverflow(err error) *AppError {
	return Wrap("ARITH_001", "Arithmetic overflow", http.StatusUnprocessableEntity, err)
}

func ErrInvalidScale() *AppError {
	return Wrap("ARITH_002", "Rate scale must be positive", http.StatusBadRequest, safemath.ErrZeroScale)
}

// FromArithmetic maps a safemath failure to its AppError. Errors that are not
// safemath sentinels are wrapped as internal errors.
func FromArithmetic(err error) *AppError {
	switch {
	case errors.Is(err, safemath.ErrInsufficientFunds):
		return ErrInsufficientFunds()
	case errors.Is(err, safemath.ErrZeroScale):
		return ErrInvalidScale()
	case errors.Is(err, safemath.ErrArithmeticOverflow):
		return ErrArithmeticOverflow(err)
	default:
		return InternalError(err)
	}
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_002-style validation error.
func Validation(message string) *AppError {
	return New("PAY_002", message, http.StatusBadRequest)
}
