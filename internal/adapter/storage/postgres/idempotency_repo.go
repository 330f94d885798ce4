package postgres

import (
	"context"
	"errors"
	"fmt"

	"checked-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository.
type IdempotencyRepo struct {
	pool Pool
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(pool Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

// Create records the response for a key within a database transaction. If the
// key is already present it returns domain.ErrIdempotencyKeyTaken, which makes
// the caller roll back instead of applying the operation twice.
func (r *IdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.IdempotencyLog) error {
	query := `INSERT INTO idempotency_logs (key, transaction_id, response_json, created_at)
		VALUES ($1, $2, $3, $4) ON CONFLICT (key) DO NOTHING`

	tag, err := tx.Exec(ctx, query, entry.Key, entry.TransactionID, entry.ResponseJSON, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert idempotency log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("key %q: %w", entry.Key, domain.ErrIdempotencyKeyTaken)
	}
	return nil
}

// Get fetches an idempotency log by key. A missing key yields nil, nil.
func (r *IdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	query := `SELECT key, transaction_id, response_json, created_at FROM idempotency_logs WHERE key = $1`

	entry := &domain.IdempotencyLog{}
	err := r.pool.QueryRow(ctx, query, key).Scan(&entry.Key, &entry.TransactionID, &entry.ResponseJSON, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency log: %w", err)
	}
	return entry, nil
}
