package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"checked-ledger/internal/core/domain"
	"checked-ledger/internal/core/ports"
	"checked-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type walletService struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	cipher     ports.BalanceCipher
	log        zerolog.Logger
}

// NewWalletService creates a new wallet service.
func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	cipher ports.BalanceCipher,
	log zerolog.Logger,
) ports.WalletService {
	return &walletService{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		cipher:     cipher,
		log:        log,
	}
}

func (s *walletService) CreateWallet(ctx context.Context, req ports.CreateWalletRequest) (*domain.Wallet, error) {
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return nil, apperror.Validation("currency must be a 3-letter code")
	}

	sealed, err := s.cipher.SealBalance(0)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt initial balance: %w", err))
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:               uuid.New(),
		OwnerID:          req.OwnerID,
		Currency:         currency,
		EncryptedBalance: sealed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("owner_id", req.OwnerID.String()).
		Str("currency", currency).
		Msg("wallet created")

	return wallet, nil
}

func (s *walletService) GetBalance(ctx context.Context, walletID uuid.UUID) (*ports.WalletBalance, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	balance, err := s.cipher.OpenBalance(wallet.EncryptedBalance)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("decrypt balance: %w", err))
	}

	return &ports.WalletBalance{
		WalletID: wallet.ID,
		Balance:  balance,
		Currency: wallet.Currency,
	}, nil
}

func (s *walletService) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	txs, err := s.txRepo.ListByWallet(ctx, walletID, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txs, nil
}
