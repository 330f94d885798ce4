package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checked-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// uniqueViolation is the SQLSTATE Postgres reports for a unique constraint hit.
const uniqueViolation = "23505"

const txColumnList = `id, reference_id, wallet_id, amount, fee, rate_bps, transaction_type, status,
		client_ip, extra_data, original_transaction_id, created_at, processed_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + txColumnList + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.ReferenceID, t.WalletID,
		numericFromUint64(t.Amount), numericFromUint64(t.Fee), numericFromUint64(t.RateBps),
		t.TransactionType, t.Status, t.ClientIP, t.ExtraData, t.OriginalTransactionID,
		t.CreatedAt, t.ProcessedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert transaction %s: %w", t.ReferenceID, domain.ErrDuplicateReference)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + txColumnList + ` FROM transactions WHERE id = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByReference fetches a transaction by wallet ID and reference ID.
func (r *TransactionRepo) GetByReference(ctx context.Context, walletID uuid.UUID, referenceID string) (*domain.Transaction, error) {
	query := `SELECT ` + txColumnList + ` FROM transactions WHERE wallet_id = $1 AND reference_id = $2`

	return r.scanOne(r.pool.QueryRow(ctx, query, walletID, referenceID))
}

// UpdateStatus updates a transaction's status within a database transaction.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) error {
	now := time.Now()
	query := `UPDATE transactions SET status = $1, processed_at = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, status, now, id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

// CheckRefundExists checks if a refund already exists for a given original transaction.
func (r *TransactionRepo) CheckRefundExists(ctx context.Context, originalTxID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM transactions WHERE original_transaction_id = $1 AND transaction_type = 'REFUND' AND status != 'FAILED')`

	var exists bool
	err := r.pool.QueryRow(ctx, query, originalTxID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check refund exists: %w", err)
	}
	return exists, nil
}

// ListByWallet returns the newest transactions of a wallet, at most limit rows.
func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + txColumnList + ` FROM transactions
		WHERE wallet_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// scanOne scans a single-row result; a missing row yields nil, nil.
func (r *TransactionRepo) scanOne(row pgx.Row) (*domain.Transaction, error) {
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var amount, fee, rateBps pgtype.Numeric
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.ReferenceID, &t.WalletID,
		&amount, &fee, &rateBps,
		&t.TransactionType, &t.Status, &t.ClientIP, &t.ExtraData, &t.OriginalTransactionID,
		&t.CreatedAt, &t.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}

	if t.Amount, err = uint64FromNumeric(amount); err != nil {
		return nil, fmt.Errorf("amount of %s: %w", t.ID, err)
	}
	if t.Fee, err = uint64FromNumeric(fee); err != nil {
		return nil, fmt.Errorf("fee of %s: %w", t.ID, err)
	}
	if t.RateBps, err = uint64FromNumeric(rateBps); err != nil {
		return nil, fmt.Errorf("rate of %s: %w", t.ID, err)
	}
	return t, nil
}
