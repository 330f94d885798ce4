package domain

import (
	"errors"
	"strings"
	"time"

	"checked-ledger/pkg/safemath"

	"github.com/google/uuid"
)

// TransactionType represents the kind of balance movement.
type TransactionType string

const (
	TransactionTypePayment TransactionType = "PAYMENT"
	TransactionTypeRefund  TransactionType = "REFUND"
	TransactionTypeTopup   TransactionType = "TOPUP"
	TransactionTypeReward  TransactionType = "REWARD"
)

// Prefixes of reference IDs the ledger generates itself. Client references
// must not start with one of them.
const (
	RefundReferencePrefix = "REFUND-"
	TopupReferencePrefix  = "TOPUP-"
	RewardReferencePrefix = "REWARD-"
)

var reservedReferencePrefixes = []string{RefundReferencePrefix, TopupReferencePrefix, RewardReferencePrefix}

// IsReservedReference reports whether referenceID falls in the namespace of
// ledger-generated references. The match is case-insensitive.
func IsReservedReference(referenceID string) bool {
	upper := strings.ToUpper(referenceID)
	for _, p := range reservedReferencePrefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}

// ErrDuplicateReference is returned by the transaction store when the
// (wallet_id, reference_id) pair already exists.
var ErrDuplicateReference = errors.New("transaction reference already exists")

// IsDebit reports whether the transaction type reduces the wallet balance.
func (t TransactionType) IsDebit() bool {
	return t == TransactionTypePayment
}

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "PENDING"
	TransactionStatusSuccess  TransactionStatus = "SUCCESS"
	TransactionStatusFailed   TransactionStatus = "FAILED"
	TransactionStatusReversed TransactionStatus = "REVERSED"
)

// Transaction represents an immutable ledger entry. Amount and Fee are in the
// currency's smallest unit. RateBps is the rate that produced Fee (payments)
// or Amount (rewards).
type Transaction struct {
	ID                    uuid.UUID         `json:"id"`
	ReferenceID           string            `json:"reference_id"`
	WalletID              uuid.UUID         `json:"wallet_id"`
	Amount                uint64            `json:"amount"`
	Fee                   uint64            `json:"fee"`
	RateBps               uint64            `json:"rate_bps"`
	TransactionType       TransactionType   `json:"transaction_type"`
	Status                TransactionStatus `json:"status"`
	ClientIP              string            `json:"client_ip,omitempty"`
	ExtraData             *string           `json:"extra_data,omitempty"`
	OriginalTransactionID *uuid.UUID        `json:"original_transaction_id,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	ProcessedAt           *time.Time        `json:"processed_at,omitempty"`
}

// Total returns Amount + Fee, the value that moved on the wallet balance.
func (t *Transaction) Total() (uint64, error) {
	return safemath.Add(t.Amount, t.Fee)
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess ||
		t.Status == TransactionStatusFailed ||
		t.Status == TransactionStatusReversed
}

// IsRefundable returns true if this transaction can be refunded.
func (t *Transaction) IsRefundable() bool {
	return t.TransactionType == TransactionTypePayment &&
		t.Status == TransactionStatusSuccess
}
