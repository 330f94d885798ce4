package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"checked-ledger/internal/core/domain"
	"checked-ledger/internal/core/ports"
	"checked-ledger/pkg/apperror"
	"checked-ledger/pkg/safemath"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// DefaultIdempotencyTTL is used when the ledger config leaves the TTL unset.
const DefaultIdempotencyTTL = 24 * time.Hour

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	txRepo     ports.TransactionRepository
	walletRepo ports.WalletRepository
	idempRepo  ports.IdempotencyRepository
	idempCache ports.IdempotencyCache
	cipher     ports.BalanceCipher
	transactor ports.DBTransactor
	fees       domain.FeeSchedule
	idempTTL   time.Duration
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	cipher ports.BalanceCipher,
	transactor ports.DBTransactor,
	fees domain.FeeSchedule,
	idempTTL time.Duration,
	log zerolog.Logger,
) *LedgerServiceImpl {
	if idempTTL <= 0 {
		idempTTL = DefaultIdempotencyTTL
	}
	return &LedgerServiceImpl{
		txRepo:     txRepo,
		walletRepo: walletRepo,
		idempRepo:  idempRepo,
		idempCache: idempCache,
		cipher:     cipher,
		transactor: transactor,
		fees:       fees,
		idempTTL:   idempTTL,
		log:        log,
	}
}

// ProcessPayment debits amount + fee from the wallet under a row lock.
func (s *LedgerServiceImpl) ProcessPayment(ctx context.Context, req ports.PaymentRequest) (*domain.Transaction, error) {
	if req.Amount == 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if domain.IsReservedReference(req.ReferenceID) {
		return nil, apperror.Validation("reference_id uses a reserved prefix")
	}

	idempKey := domain.BuildIdempotencyKey(req.WalletID, req.ReferenceID)
	if txn, err := s.replay(ctx, idempKey); err != nil || txn != nil {
		return txn, err
	}

	fee, err := s.fees.Fee(req.Amount)
	if err != nil {
		return nil, s.rejected("fee", err, req.WalletID, req.Amount, s.fees.FeeRateBps)
	}
	total, err := safemath.Add(req.Amount, fee)
	if err != nil {
		return nil, s.rejected("payment total", err, req.WalletID, req.Amount, fee)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, balance, err := s.lockWallet(ctx, dbTx, req.WalletID)
	if err != nil {
		return nil, err
	}

	newBalance, err := safemath.Debit(balance, total)
	if err != nil {
		return nil, s.rejected("debit", err, wallet.ID, balance, total)
	}
	s.log.Debug().
		Str("wallet_id", wallet.ID.String()).
		Uint64("balance", balance).
		Uint64("amount", req.Amount).
		Uint64("fee", fee).
		Uint64("new_balance", newBalance).
		Msg("debit computed")

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:              uuid.New(),
		ReferenceID:     req.ReferenceID,
		WalletID:        wallet.ID,
		Amount:          req.Amount,
		Fee:             fee,
		RateBps:         s.fees.FeeRateBps,
		TransactionType: domain.TransactionTypePayment,
		Status:          domain.TransactionStatusSuccess,
		ClientIP:        req.ClientIP,
		ExtraData:       req.ExtraData,
		CreatedAt:       now,
		ProcessedAt:     &now,
	}

	if err := s.persist(ctx, dbTx, wallet.ID, newBalance, txn); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, dbTx, idempKey, txn); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Uint64("amount", txn.Amount).
		Uint64("fee", txn.Fee).
		Msg("payment processed successfully")

	return txn, nil
}

// ProcessRefund credits back a payment and the matching share of its fee.
func (s *LedgerServiceImpl) ProcessRefund(ctx context.Context, req ports.RefundRequest) (*domain.Transaction, error) {
	idempKey := domain.BuildRefundIdempotencyKey(req.WalletID, req.OriginalReferenceID)
	if txn, err := s.replay(ctx, idempKey); err != nil || txn != nil {
		return txn, err
	}

	origTx, err := s.txRepo.GetByReference(ctx, req.WalletID, req.OriginalReferenceID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find original tx: %w", err))
	}
	if origTx == nil {
		return nil, apperror.ErrNotFound("original transaction")
	}
	if !origTx.IsRefundable() {
		return nil, apperror.ErrInvalidRefund()
	}

	refundExists, err := s.txRepo.CheckRefundExists(ctx, origTx.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check refund exists: %w", err))
	}
	if refundExists {
		return nil, apperror.ErrDuplicateTransaction()
	}

	refundAmount := origTx.Amount
	if req.Amount != nil {
		if *req.Amount == 0 {
			return nil, apperror.ErrInvalidAmount()
		}
		if *req.Amount > origTx.Amount {
			return nil, apperror.ErrRefundAmountExceedsOriginal()
		}
		refundAmount = *req.Amount
	}

	refundFee, err := domain.RefundFee(origTx.Fee, refundAmount, origTx.Amount)
	if err != nil {
		return nil, s.rejected("refund fee", err, req.WalletID, origTx.Fee, refundAmount)
	}
	credit, err := safemath.Add(refundAmount, refundFee)
	if err != nil {
		return nil, s.rejected("refund total", err, req.WalletID, refundAmount, refundFee)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, balance, err := s.lockWallet(ctx, dbTx, origTx.WalletID)
	if err != nil {
		return nil, err
	}

	newBalance, err := safemath.Credit(balance, credit)
	if err != nil {
		return nil, s.rejected("refund credit", err, wallet.ID, balance, credit)
	}
	s.log.Debug().
		Str("wallet_id", wallet.ID.String()).
		Uint64("balance", balance).
		Uint64("amount", refundAmount).
		Uint64("fee", refundFee).
		Uint64("new_balance", newBalance).
		Msg("refund credit computed")

	now := time.Now().UTC()
	reason := req.Reason
	txn := &domain.Transaction{
		ID:                    uuid.New(),
		ReferenceID:           domain.RefundReferencePrefix + req.OriginalReferenceID,
		WalletID:              wallet.ID,
		Amount:                refundAmount,
		Fee:                   refundFee,
		RateBps:               origTx.RateBps,
		TransactionType:       domain.TransactionTypeRefund,
		Status:                domain.TransactionStatusSuccess,
		ClientIP:              req.ClientIP,
		ExtraData:             &reason,
		OriginalTransactionID: &origTx.ID,
		CreatedAt:             now,
		ProcessedAt:           &now,
	}

	if err := s.persist(ctx, dbTx, wallet.ID, newBalance, txn); err != nil {
		return nil, err
	}
	if err := s.txRepo.UpdateStatus(ctx, dbTx, origTx.ID, domain.TransactionStatusReversed); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reverse original tx: %w", err))
	}
	if err := s.commit(ctx, dbTx, idempKey, txn); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("original_tx_id", origTx.ID.String()).
		Uint64("refund_amount", refundAmount).
		Uint64("refund_fee", refundFee).
		Msg("refund processed successfully")

	return txn, nil
}

// ProcessTopup credits a wallet. A credit past the 64-bit range is rejected.
func (s *LedgerServiceImpl) ProcessTopup(ctx context.Context, req ports.TopupRequest) (*domain.Transaction, error) {
	if req.Amount == 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, balance, err := s.lockWallet(ctx, dbTx, req.WalletID)
	if err != nil {
		return nil, err
	}

	newBalance, err := safemath.Credit(balance, req.Amount)
	if err != nil {
		return nil, s.rejected("topup credit", err, wallet.ID, balance, req.Amount)
	}
	s.log.Debug().
		Str("wallet_id", wallet.ID.String()).
		Uint64("balance", balance).
		Uint64("amount", req.Amount).
		Uint64("new_balance", newBalance).
		Msg("topup credit computed")

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:              uuid.New(),
		ReferenceID:     domain.TopupReferencePrefix + uuid.NewString(),
		WalletID:        wallet.ID,
		Amount:          req.Amount,
		TransactionType: domain.TransactionTypeTopup,
		Status:          domain.TransactionStatusSuccess,
		CreatedAt:       now,
		ProcessedAt:     &now,
	}

	if err := s.persist(ctx, dbTx, wallet.ID, newBalance, txn); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, dbTx, "", txn); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Uint64("amount", req.Amount).
		Msg("topup processed successfully")

	return txn, nil
}

// AccrueReward credits floor(balance * RewardRateBps / Scale), at most once
// per wallet and period.
func (s *LedgerServiceImpl) AccrueReward(ctx context.Context, req ports.RewardRequest) (*domain.Transaction, error) {
	if req.Period == "" {
		return nil, apperror.Validation("period is required")
	}

	idempKey := domain.BuildRewardIdempotencyKey(req.WalletID, req.Period)
	if txn, err := s.replay(ctx, idempKey); err != nil || txn != nil {
		return txn, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, balance, err := s.lockWallet(ctx, dbTx, req.WalletID)
	if err != nil {
		return nil, err
	}

	reward, err := s.fees.Reward(balance)
	if err != nil {
		return nil, s.rejected("reward", err, wallet.ID, balance, s.fees.RewardRateBps)
	}
	if reward == 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	newBalance, err := safemath.Credit(balance, reward)
	if err != nil {
		return nil, s.rejected("reward credit", err, wallet.ID, balance, reward)
	}
	s.log.Debug().
		Str("wallet_id", wallet.ID.String()).
		Uint64("balance", balance).
		Uint64("rate_bps", s.fees.RewardRateBps).
		Uint64("reward", reward).
		Uint64("new_balance", newBalance).
		Msg("reward computed")

	now := time.Now().UTC()
	period := req.Period
	txn := &domain.Transaction{
		ID:              uuid.New(),
		ReferenceID:     domain.RewardReferencePrefix + req.Period,
		WalletID:        wallet.ID,
		Amount:          reward,
		RateBps:         s.fees.RewardRateBps,
		TransactionType: domain.TransactionTypeReward,
		Status:          domain.TransactionStatusSuccess,
		ExtraData:       &period,
		CreatedAt:       now,
		ProcessedAt:     &now,
	}

	if err := s.persist(ctx, dbTx, wallet.ID, newBalance, txn); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, dbTx, idempKey, txn); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Str("period", req.Period).
		Uint64("reward", reward).
		Msg("reward accrued")

	return txn, nil
}

// replay returns the stored result for key, checking Redis first and then the
// database. A nil transaction with a nil error means the key is unused.
func (s *LedgerServiceImpl) replay(ctx context.Context, key string) (*domain.Transaction, error) {
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return s.unmarshalCachedTransaction(cached)
	}

	idempLog, err := s.idempRepo.Get(ctx, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if idempLog != nil {
		return s.unmarshalCachedTransaction(idempLog.ResponseJSON)
	}
	return nil, nil
}

// lockWallet takes the row lock and returns the wallet with its opened balance.
func (s *LedgerServiceImpl) lockWallet(ctx context.Context, dbTx pgx.Tx, walletID uuid.UUID) (*domain.Wallet, uint64, error) {
	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, walletID)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, 0, apperror.ErrNotFound("wallet")
	}

	balance, err := s.cipher.OpenBalance(wallet.EncryptedBalance)
	if err != nil {
		return nil, 0, apperror.ErrEncryptionFailure(fmt.Errorf("decrypt balance: %w", err))
	}
	return wallet, balance, nil
}

// persist writes the new balance and the ledger entry inside dbTx.
func (s *LedgerServiceImpl) persist(ctx context.Context, dbTx pgx.Tx, walletID uuid.UUID, newBalance uint64, txn *domain.Transaction) error {
	sealed, err := s.cipher.SealBalance(newBalance)
	if err != nil {
		return apperror.ErrEncryptionFailure(fmt.Errorf("encrypt new balance: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, walletID, sealed); err != nil {
		return apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			return apperror.ErrDuplicateTransaction()
		}
		return apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}
	return nil
}

// commit records the idempotency log (when key is set), commits dbTx and
// then caches the response in Redis on a best-effort basis.
func (s *LedgerServiceImpl) commit(ctx context.Context, dbTx pgx.Tx, key string, txn *domain.Transaction) error {
	var respJSON []byte
	if key != "" {
		var err error
		respJSON, err = json.Marshal(txn)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("marshal response: %w", err))
		}
		entry := &domain.IdempotencyLog{
			Key:           key,
			TransactionID: txn.ID,
			ResponseJSON:  respJSON,
			CreatedAt:     txn.CreatedAt,
		}
		if err := s.idempRepo.Create(ctx, dbTx, entry); err != nil {
			if errors.Is(err, domain.ErrIdempotencyKeyTaken) {
				return apperror.ErrDuplicateTransaction()
			}
			return apperror.InternalError(fmt.Errorf("save idempotency log: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if key == "" {
		return nil
	}
	if err := s.idempCache.Set(ctx, key, respJSON, s.idempTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache idempotency in redis")
	}
	return nil
}

// rejected logs a failed balance computation with its operands and maps the
// error to its API code.
func (s *LedgerServiceImpl) rejected(op string, err error, walletID uuid.UUID, a, b uint64) error {
	s.log.Warn().
		Err(err).
		Str("op", op).
		Str("wallet_id", walletID.String()).
		Uint64("lhs", a).
		Uint64("rhs", b).
		Msg("balance computation rejected")
	return apperror.FromArithmetic(err)
}

// unmarshalCachedTransaction deserializes a cached transaction.
func (s *LedgerServiceImpl) unmarshalCachedTransaction(data []byte) (*domain.Transaction, error) {
	txn := &domain.Transaction{}
	if err := json.Unmarshal(data, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached tx: %w", err))
	}
	return txn, nil
}
