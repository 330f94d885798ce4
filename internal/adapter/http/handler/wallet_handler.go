package handler

import (
	"checked-ledger/internal/adapter/http/dto"
	"checked-ledger/internal/core/domain"
	"checked-ledger/internal/core/ports"
	"checked-ledger/pkg/apperror"
	"checked-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet lifecycle and credit endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
	ledgerSvc ports.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, ledgerSvc ports.LedgerService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc, ledgerSvc: ledgerSvc}
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		response.Error(c, apperror.Validation("owner_id must be a UUID"))
		return
	}

	wallet, err := h.walletSvc.CreateWallet(c.Request.Context(), ports.CreateWalletRequest{
		OwnerID:  ownerID,
		Currency: req.Currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.WalletResponse{
		ID:        wallet.ID.String(),
		OwnerID:   wallet.OwnerID.String(),
		Currency:  wallet.Currency,
		CreatedAt: wallet.CreatedAt.Format(timeLayout),
	})
}

// GetBalance handles GET /api/v1/wallets/:id/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletBalanceResponse{
		WalletID: balance.WalletID.String(),
		Balance:  balance.Balance,
		Currency: balance.Currency,
	})
}

// ListTransactions handles GET /api/v1/wallets/:id/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	var q dto.TransactionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txs, err := h.walletSvc.ListTransactions(c.Request.Context(), walletID, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, len(txs))
	for i := range txs {
		items[i] = toTransactionResponse(&txs[i])
	}
	response.OK(c, dto.TransactionListResponse{Items: items, Count: len(items)})
}

// Topup handles POST /api/v1/wallets/:id/topup.
func (h *WalletHandler) Topup(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	var req dto.TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.ledgerSvc.ProcessTopup(c.Request.Context(), ports.TopupRequest{
		WalletID: walletID,
		Amount:   req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(result))
}

// AccrueReward handles POST /api/v1/wallets/:id/rewards.
func (h *WalletHandler) AccrueReward(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	var req dto.RewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.ledgerSvc.AccrueReward(c.Request.Context(), ports.RewardRequest{
		WalletID: walletID,
		Period:   req.Period,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(result))
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

// walletIDParam parses the :id path segment, writing a 400 on failure.
func walletIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("wallet id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:              tx.ID.String(),
		ReferenceID:     tx.ReferenceID,
		WalletID:        tx.WalletID.String(),
		Amount:          tx.Amount,
		Fee:             tx.Fee,
		RateBps:         tx.RateBps,
		TransactionType: string(tx.TransactionType),
		Status:          string(tx.Status),
		CreatedAt:       tx.CreatedAt.Format(timeLayout),
	}
	if tx.OriginalTransactionID != nil {
		s := tx.OriginalTransactionID.String()
		resp.OriginalTransactionID = &s
	}
	if tx.ProcessedAt != nil {
		s := tx.ProcessedAt.Format(timeLayout)
		resp.ProcessedAt = &s
	}
	return resp
}
