package safemath

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrArithmeticOverflow is returned when a result cannot be represented
	// in the target width.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrZeroScale is returned by the rate functions for a zero divisor.
	ErrZeroScale = fmt.Errorf("%w: zero scale", ErrArithmeticOverflow)
)
