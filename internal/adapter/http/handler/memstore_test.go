package handler_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"checked-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// memStore is an in-memory stand-in for PostgreSQL. Writes made through a
// memTx are applied on Commit and discarded on Rollback. GetByIDForUpdate
// holds a per-wallet lock until the owning transaction ends, like
// SELECT ... FOR UPDATE.
type memStore struct {
	mu           sync.Mutex
	wallets      map[uuid.UUID]domain.Wallet
	transactions map[uuid.UUID]domain.Transaction
	order        map[uuid.UUID]int
	seq          int
	idempotency  map[string]domain.IdempotencyLog

	lockMu sync.Mutex
	locks  map[uuid.UUID]*sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		wallets:      make(map[uuid.UUID]domain.Wallet),
		transactions: make(map[uuid.UUID]domain.Transaction),
		order:        make(map[uuid.UUID]int),
		idempotency:  make(map[string]domain.IdempotencyLog),
		locks:        make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *memStore) rowLock(id uuid.UUID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Begin implements ports.DBTransactor.
func (s *memStore) Begin(ctx context.Context) (pgx.Tx, error) {
	return &memTx{store: s}, nil
}

// memTx implements the parts of pgx.Tx the ledger service calls.
type memTx struct {
	pgx.Tx
	store  *memStore
	writes []func()
	held   []*sync.Mutex
	done   bool
}

func asMemTx(tx pgx.Tx) *memTx {
	mt, ok := tx.(*memTx)
	if !ok {
		panic("memstore: foreign transaction")
	}
	return mt
}

func (t *memTx) stage(fn func()) { t.writes = append(t.writes, fn) }

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.store.mu.Lock()
	for _, w := range t.writes {
		w()
	}
	t.store.mu.Unlock()
	t.finish()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.finish()
	return nil
}

func (t *memTx) finish() {
	t.done = true
	t.writes = nil
	for _, l := range t.held {
		l.Unlock()
	}
	t.held = nil
}

// --- wallets ---

type memWalletRepo struct{ s *memStore }

func (r memWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.wallets[w.ID] = *w
	return nil
}

func (r memWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r memWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	mt := asMemTx(tx)
	l := r.s.rowLock(id)
	l.Lock()
	mt.held = append(mt.held, l)
	return r.GetByID(ctx, id)
}

func (r memWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, encryptedBalance string) error {
	r.s.mu.Lock()
	_, ok := r.s.wallets[walletID]
	r.s.mu.Unlock()
	if !ok {
		return errors.New("wallet not found")
	}
	asMemTx(tx).stage(func() {
		w := r.s.wallets[walletID]
		w.EncryptedBalance = encryptedBalance
		r.s.wallets[walletID] = w
	})
	return nil
}

// --- transactions ---

type memTransactionRepo struct{ s *memStore }

// Create enforces UNIQUE (wallet_id, reference_id) against committed rows.
// Writers hold the wallet row lock, so no concurrent commit can race it.
func (r memTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.s.mu.Lock()
	for _, existing := range r.s.transactions {
		if existing.WalletID == t.WalletID && existing.ReferenceID == t.ReferenceID {
			r.s.mu.Unlock()
			return domain.ErrDuplicateReference
		}
	}
	r.s.mu.Unlock()

	row := *t
	asMemTx(tx).stage(func() {
		r.s.seq++
		r.s.order[row.ID] = r.s.seq
		r.s.transactions[row.ID] = row
	})
	return nil
}

func (r memTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r memTransactionRepo) GetByReference(ctx context.Context, walletID uuid.UUID, referenceID string) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.WalletID == walletID && t.ReferenceID == referenceID {
			return &t, nil
		}
	}
	return nil, nil
}

func (r memTransactionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) error {
	asMemTx(tx).stage(func() {
		t := r.s.transactions[id]
		t.Status = status
		r.s.transactions[id] = t
	})
	return nil
}

func (r memTransactionRepo) CheckRefundExists(ctx context.Context, originalTxID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.TransactionType == domain.TransactionTypeRefund &&
			t.OriginalTransactionID != nil && *t.OriginalTransactionID == originalTxID {
			return true, nil
		}
	}
	return false, nil
}

func (r memTransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range r.s.transactions {
		if t.WalletID == walletID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.order[out[i].ID] > r.s.order[out[j].ID]
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- idempotency ---

type memIdempotencyRepo struct{ s *memStore }

func (r memIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error {
	r.s.mu.Lock()
	_, taken := r.s.idempotency[log.Key]
	r.s.mu.Unlock()
	if taken {
		return domain.ErrIdempotencyKeyTaken
	}
	row := *log
	asMemTx(tx).stage(func() {
		r.s.idempotency[row.Key] = row
	})
	return nil
}

func (r memIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.idempotency[key]
	if !ok {
		return nil, nil
	}
	return &l, nil
}
