package handler

import (
	"checked-ledger/internal/adapter/http/dto"
	"checked-ledger/internal/core/ports"
	"checked-ledger/pkg/apperror"
	"checked-ledger/pkg/response"
	"checked-ledger/pkg/safemath"

	"github.com/gin-gonic/gin"
)

// RateHandler serves rate quotes.
type RateHandler struct {
	rateSvc ports.RateService
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rateSvc ports.RateService) *RateHandler {
	return &RateHandler{rateSvc: rateSvc}
}

// Quote handles GET /api/v1/rates/quote?amount=&rate=&scale=.
func (h *RateHandler) Quote(c *gin.Context) {
	var q dto.RateQuoteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	scale := uint64(safemath.BasisPointsScale)
	if q.Scale != nil {
		scale = *q.Scale
	}

	quote, err := h.rateSvc.Quote(q.Amount, q.Rate, scale)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.RateQuoteResponse{
		Amount:      quote.Amount,
		Rate:        quote.Rate,
		Scale:       quote.Scale,
		Result:      quote.Result,
		Remainder:   quote.Remainder,
		RatePercent: quote.RatePercent,
	})
}
