package domain

import (
	"fmt"

	"checked-ledger/pkg/safemath"
)

// FeeSchedule holds the rates applied by the ledger. Rates are parts per
// Scale, so with Scale = safemath.BasisPointsScale they are basis points.
type FeeSchedule struct {
	FeeRateBps    uint64
	RewardRateBps uint64
	Scale         uint64
}

// Fee returns floor(amount * FeeRateBps / Scale).
func (s FeeSchedule) Fee(amount uint64) (uint64, error) {
	fee, err := safemath.ApplyRate(amount, s.FeeRateBps, s.Scale)
	if err != nil {
		return 0, fmt.Errorf("fee on %d: %w", amount, err)
	}
	return fee, nil
}

// Reward returns floor(balance * RewardRateBps / Scale).
func (s FeeSchedule) Reward(balance uint64) (uint64, error) {
	reward, err := safemath.ApplyRate(balance, s.RewardRateBps, s.Scale)
	if err != nil {
		return 0, fmt.Errorf("reward on %d: %w", balance, err)
	}
	return reward, nil
}

// RefundFee returns the share of originalFee owed back when refundAmount of
// originalAmount is refunded: floor(originalFee * refundAmount / originalAmount).
// A full refund returns the whole fee.
func RefundFee(originalFee, refundAmount, originalAmount uint64) (uint64, error) {
	if refundAmount > originalAmount {
		return 0, fmt.Errorf("refund %d of %d: %w", refundAmount, originalAmount, safemath.ErrArithmeticOverflow)
	}
	fee, err := safemath.ApplyRate(originalFee, refundAmount, originalAmount)
	if err != nil {
		return 0, fmt.Errorf("refund fee: %w", err)
	}
	return fee, nil
}
