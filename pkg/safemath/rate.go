package safemath

import "math/bits"

// BasisPointsScale is the scale of a rate expressed in basis points (10000 = 100%).
const BasisPointsScale uint64 = 10_000

// ApplyRate returns floor(amount * rate / scale).
//
// The product is formed in full at 128 bits before the single division, so no
// remainder is discarded ahead of the scaling. ErrArithmeticOverflow is
// returned when the quotient does not fit back into 64 bits, ErrZeroScale
// when scale is zero.
func ApplyRate(amount, rate, scale uint64) (uint64, error) {
	quo, _, err := ApplyRateWithRemainder(amount, rate, scale)
	return quo, err
}

// ApplyRateWithRemainder is ApplyRate that also returns the remainder
// (amount * rate) mod scale, i.e. the part truncated by the floor.
func ApplyRateWithRemainder(amount, rate, scale uint64) (quo, rem uint64, err error) {
	if scale == 0 {
		return 0, 0, ErrZeroScale
	}

	hi, lo := bits.Mul64(amount, rate)
	// The quotient fits in 64 bits iff hi < scale. bits.Div64 panics otherwise.
	if hi >= scale {
		return 0, 0, ErrArithmeticOverflow
	}

	quo, rem = bits.Div64(hi, lo, scale)
	return quo, rem, nil
}

// ApplyBasisPoints returns floor(amount * rateBps / 10000).
func ApplyBasisPoints(amount, rateBps uint64) (uint64, error) {
	return ApplyRate(amount, rateBps, BasisPointsScale)
}
