package safemath

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Debit returns balance - amount, or ErrInsufficientFunds when amount > balance.
// The result is never larger than balance.
func Debit(balance, amount uint64) (uint64, error) {
	diff, borrow := bits.Sub64(balance, amount, 0)
	if borrow != 0 {
		return 0, ErrInsufficientFunds
	}
	return diff, nil
}

// DebitOf is Debit for any unsigned width.
func DebitOf[T constraints.Unsigned](balance, amount T) (T, error) {
	if amount > balance {
		return 0, ErrInsufficientFunds
	}
	return balance - amount, nil
}

// Credit returns balance + amount, or ErrArithmeticOverflow on carry out.
func Credit(balance, amount uint64) (uint64, error) {
	sum, carry := bits.Add64(balance, amount, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

// Add sums amounts, failing with ErrArithmeticOverflow if any partial sum
// carries out of 64 bits.
func Add(amounts ...uint64) (uint64, error) {
	var total uint64
	for _, a := range amounts {
		var err error
		if total, err = Credit(total, a); err != nil {
			return 0, err
		}
	}
	return total, nil
}
