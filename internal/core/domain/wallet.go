package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds an owner's balance in one currency. The balance is stored
// encrypted and is only ever changed through the checked ledger operations.
type Wallet struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	Currency         string    `json:"currency"`
	EncryptedBalance string    `json:"-"` // AES-256 encrypted, never expose raw
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
