package ports

import (
	"context"
	"time"

	"checked-ledger/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// BalanceCipher seals wallet balances at rest (AES-256-GCM).
type BalanceCipher interface {
	SealBalance(balance uint64) (string, error)
	OpenBalance(sealed string) (uint64, error)
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// LedgerService moves value on wallet balances. Every balance change goes
// through checked arithmetic; a failure aborts the whole operation.
type LedgerService interface {
	ProcessPayment(ctx context.Context, req PaymentRequest) (*domain.Transaction, error)
	ProcessRefund(ctx context.Context, req RefundRequest) (*domain.Transaction, error)
	ProcessTopup(ctx context.Context, req TopupRequest) (*domain.Transaction, error)
	AccrueReward(ctx context.Context, req RewardRequest) (*domain.Transaction, error)
}

// PaymentRequest debits Amount plus the configured fee from a wallet.
type PaymentRequest struct {
	WalletID    uuid.UUID
	ReferenceID string
	Amount      uint64
	ClientIP    string
	ExtraData   *string
}

// RefundRequest credits back (part of) a previous payment.
type RefundRequest struct {
	WalletID            uuid.UUID
	OriginalReferenceID string
	Amount              *uint64 // nil = full refund
	Reason              string
	ClientIP            string
}

// TopupRequest credits a wallet.
type TopupRequest struct {
	WalletID uuid.UUID
	Amount   uint64
}

// RewardRequest accrues the reward rate on the current balance, once per Period.
type RewardRequest struct {
	WalletID uuid.UUID
	Period   string
}

// WalletService manages wallets and read-only balance queries.
type WalletService interface {
	CreateWallet(ctx context.Context, req CreateWalletRequest) (*domain.Wallet, error)
	GetBalance(ctx context.Context, walletID uuid.UUID) (*WalletBalance, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error)
}

// CreateWalletRequest holds input for wallet creation.
type CreateWalletRequest struct {
	OwnerID  uuid.UUID
	Currency string
}

// WalletBalance is the decrypted balance of a wallet.
type WalletBalance struct {
	WalletID uuid.UUID
	Balance  uint64
	Currency string
}

// RateService quotes amount * rate / scale without touching any wallet.
type RateService interface {
	Quote(amount, rate, scale uint64) (*RateQuote, error)
}

// RateQuote is the result of a rate computation.
type RateQuote struct {
	Amount      uint64
	Rate        uint64
	Scale       uint64
	Result      uint64
	Remainder   uint64 // (Amount * Rate) mod Scale, dropped by the floor
	RatePercent string // Rate / Scale * 100 as an exact decimal
}
