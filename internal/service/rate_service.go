package service

import (
	"math/big"

	"checked-ledger/internal/core/ports"
	"checked-ledger/pkg/apperror"
	"checked-ledger/pkg/safemath"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// percentPlaces is the precision of RateQuote.RatePercent.
const percentPlaces = 6

var hundred = decimal.NewFromInt(100)

type rateService struct {
	log zerolog.Logger
}

// NewRateService creates a rate quoting service.
func NewRateService(log zerolog.Logger) ports.RateService {
	return &rateService{log: log}
}

// Quote computes floor(amount * rate / scale) and the remainder dropped by
// the floor. No wallet is read or written.
func (s *rateService) Quote(amount, rate, scale uint64) (*ports.RateQuote, error) {
	result, rem, err := safemath.ApplyRateWithRemainder(amount, rate, scale)
	if err != nil {
		s.log.Warn().
			Err(err).
			Uint64("amount", amount).
			Uint64("rate", rate).
			Uint64("scale", scale).
			Msg("rate quote rejected")
		return nil, apperror.FromArithmetic(err)
	}

	return &ports.RateQuote{
		Amount:      amount,
		Rate:        rate,
		Scale:       scale,
		Result:      result,
		Remainder:   rem,
		RatePercent: ratePercent(rate, scale),
	}, nil
}

// ratePercent renders rate / scale * 100, rounded to percentPlaces.
func ratePercent(rate, scale uint64) string {
	r := decimal.NewFromBigInt(new(big.Int).SetUint64(rate), 0)
	sc := decimal.NewFromBigInt(new(big.Int).SetUint64(scale), 0)
	return r.Mul(hundred).DivRound(sc, percentPlaces).String()
}
