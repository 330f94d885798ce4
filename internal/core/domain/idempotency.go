package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// IdempotencyLog represents a cached transaction result to prevent double-processing.
type IdempotencyLog struct {
	Key           string    `json:"key"` // Format: "wallet_id:reference_id"
	TransactionID uuid.UUID `json:"transaction_id"`
	ResponseJSON  []byte    `json:"response_json"`
	CreatedAt     time.Time `json:"created_at"`
}

// BuildIdempotencyKey constructs the key for a wallet-scoped reference.
func BuildIdempotencyKey(walletID uuid.UUID, referenceID string) string {
	return walletID.String() + ":" + referenceID
}

// BuildRefundIdempotencyKey constructs the key for refund idempotency.
func BuildRefundIdempotencyKey(walletID uuid.UUID, originalReferenceID string) string {
	return walletID.String() + ":refund:" + originalReferenceID
}

// BuildRewardIdempotencyKey constructs the key for a reward accrual period.
func BuildRewardIdempotencyKey(walletID uuid.UUID, period string) string {
	return walletID.String() + ":reward:" + period
}

// ErrIdempotencyKeyTaken is returned when another request committed the same
// idempotency key first.
var ErrIdempotencyKeyTaken = errors.New("idempotency key already recorded")
