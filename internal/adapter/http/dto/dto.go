package dto

// Amounts are unsigned 64-bit integers in the currency's smallest unit.
// encoding/json decodes them exactly; negative, fractional and out-of-range
// values fail binding.

// CreateWalletRequest is the request body for wallet creation.
type CreateWalletRequest struct {
	OwnerID  string `json:"owner_id" binding:"required,uuid"`
	Currency string `json:"currency" binding:"required,len=3,alpha"`
}

// WalletResponse is the response body for a created wallet.
type WalletResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"created_at"`
}

// PaymentRequest is the request body for payment processing.
type PaymentRequest struct {
	ReferenceID string  `json:"reference_id" binding:"required,max=100,safe_id"`
	Amount      uint64  `json:"amount" binding:"required,gt=0"`
	ExtraData   *string `json:"extra_data,omitempty" binding:"omitempty,max=1000"`
}

// RefundRequest is the request body for refund processing. A nil Amount
// refunds the whole original payment.
type RefundRequest struct {
	OriginalReferenceID string  `json:"original_reference_id" binding:"required,max=100,safe_id"`
	Amount              *uint64 `json:"amount,omitempty" binding:"omitempty,gt=0"`
	Reason              string  `json:"reason" binding:"required,max=255"`
}

// TopupRequest is the request body for wallet topup.
type TopupRequest struct {
	Amount uint64 `json:"amount" binding:"required,gt=0"`
}

// RewardRequest is the request body for reward accrual.
type RewardRequest struct {
	Period string `json:"period" binding:"required,max=32,safe_id"`
}

// TransactionResponse is the response body for transaction results.
type TransactionResponse struct {
	ID                    string  `json:"id"`
	ReferenceID           string  `json:"reference_id"`
	WalletID              string  `json:"wallet_id"`
	Amount                uint64  `json:"amount"`
	Fee                   uint64  `json:"fee"`
	RateBps               uint64  `json:"rate_bps"`
	TransactionType       string  `json:"transaction_type"`
	Status                string  `json:"status"`
	OriginalTransactionID *string `json:"original_transaction_id,omitempty"`
	CreatedAt             string  `json:"created_at"`
	ProcessedAt           *string `json:"processed_at,omitempty"`
}

// WalletBalanceResponse is the response for balance query.
type WalletBalanceResponse struct {
	WalletID string `json:"wallet_id"`
	Balance  uint64 `json:"balance"`
	Currency string `json:"currency"`
}

// TransactionListQuery holds query parameters for the transaction list.
type TransactionListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// TransactionListResponse wraps a wallet's transaction list.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Count int                   `json:"count"`
}

// RateQuoteQuery holds query parameters for a rate quote. A missing scale
// means basis points; an explicit scale=0 is rejected.
type RateQuoteQuery struct {
	Amount uint64  `form:"amount"`
	Rate   uint64  `form:"rate"`
	Scale  *uint64 `form:"scale"`
}

// RateQuoteResponse is the response for a rate quote.
type RateQuoteResponse struct {
	Amount      uint64 `json:"amount"`
	Rate        uint64 `json:"rate"`
	Scale       uint64 `json:"scale"`
	Result      uint64 `json:"result"`
	Remainder   uint64 `json:"remainder"`
	RatePercent string `json:"rate_percent"`
}
