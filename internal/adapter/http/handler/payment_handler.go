package handler

import (
	"checked-ledger/internal/adapter/http/dto"
	"checked-ledger/internal/core/ports"
	"checked-ledger/pkg/apperror"
	"checked-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment and refund endpoints.
type PaymentHandler struct {
	ledgerSvc ports.LedgerService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ledgerSvc ports.LedgerService) *PaymentHandler {
	return &PaymentHandler{ledgerSvc: ledgerSvc}
}

// ProcessPayment handles POST /api/v1/wallets/:id/payments.
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.ledgerSvc.ProcessPayment(c.Request.Context(), ports.PaymentRequest{
		WalletID:    walletID,
		ReferenceID: req.ReferenceID,
		Amount:      req.Amount,
		ClientIP:    c.ClientIP(),
		ExtraData:   req.ExtraData,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(result))
}

// ProcessRefund handles POST /api/v1/wallets/:id/refunds.
func (h *PaymentHandler) ProcessRefund(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}

	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.ledgerSvc.ProcessRefund(c.Request.Context(), ports.RefundRequest{
		WalletID:            walletID,
		OriginalReferenceID: req.OriginalReferenceID,
		Amount:              req.Amount,
		Reason:              req.Reason,
		ClientIP:            c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(result))
}
