package service

import (
	"math"
	"testing"

	"checked-ledger/pkg/safemath"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateService_Quote(t *testing.T) {
	svc := NewRateService(zerolog.Nop())

	tests := []struct {
		name        string
		amount      uint64
		rate        uint64
		scale       uint64
		result      uint64
		remainder   uint64
		ratePercent string
	}{
		{"half of odd amount", 9999, 5000, 10000, 4999, 5000, "50"},
		{"25 bps", 1000000, 25, 10000, 2500, 0, "0.25"},
		{"fee below one unit", 399, 25, 10000, 0, 9975, "0.25"},
		{"full rate", 12345, 10000, 10000, 12345, 0, "100"},
		{"thirds", 10, 1, 3, 3, 1, "33.333333"},
		{"large product", math.MaxUint64, 5000, 10000, math.MaxUint64 / 2, 5000, "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := svc.Quote(tt.amount, tt.rate, tt.scale)
			require.NoError(t, err)
			assert.Equal(t, tt.amount, q.Amount)
			assert.Equal(t, tt.rate, q.Rate)
			assert.Equal(t, tt.scale, q.Scale)
			assert.Equal(t, tt.result, q.Result)
			assert.Equal(t, tt.remainder, q.Remainder)
			assert.Equal(t, tt.ratePercent, q.RatePercent)
		})
	}
}

func TestRateService_Quote_Overflow(t *testing.T) {
	svc := NewRateService(zerolog.Nop())

	q, err := svc.Quote(math.MaxUint64, math.MaxUint64, 10000)
	assert.Nil(t, q)
	assertAppError(t, err, "ARITH_001")
	assert.ErrorIs(t, err, safemath.ErrArithmeticOverflow)
}

func TestRateService_Quote_ZeroScale(t *testing.T) {
	svc := NewRateService(zerolog.Nop())

	_, err := svc.Quote(100, 25, 0)
	assertAppError(t, err, "ARITH_002")
}
