package postgres

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// Amount columns are NUMERIC(20,0): BIGINT cannot hold the upper half of the
// uint64 range.

var errAmountOutOfRange = errors.New("numeric value does not fit uint64")

var bigTen = big.NewInt(10)

func numericFromUint64(v uint64) pgtype.Numeric {
	return pgtype.Numeric{Int: new(big.Int).SetUint64(v), Valid: true}
}

// uint64FromNumeric decodes an amount column. Negative, fractional and
// oversized values are rejected, never truncated.
func uint64FromNumeric(n pgtype.Numeric) (uint64, error) {
	if !n.Valid {
		return 0, fmt.Errorf("null amount: %w", errAmountOutOfRange)
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return 0, fmt.Errorf("non-finite amount: %w", errAmountOutOfRange)
	}
	if n.Int == nil {
		return 0, nil
	}

	v := new(big.Int).Set(n.Int)
	switch {
	case n.Exp > 0:
		v.Mul(v, new(big.Int).Exp(bigTen, big.NewInt(int64(n.Exp)), nil))
	case n.Exp < 0:
		div := new(big.Int).Exp(bigTen, big.NewInt(int64(-n.Exp)), nil)
		var rem big.Int
		v.QuoRem(v, div, &rem)
		if rem.Sign() != 0 {
			return 0, fmt.Errorf("fractional amount %s: %w", n.Int, errAmountOutOfRange)
		}
	}

	if v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("amount %s: %w", v, errAmountOutOfRange)
	}
	return v.Uint64(), nil
}
