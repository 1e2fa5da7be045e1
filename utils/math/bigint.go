package math

import (
	"math/big"
)

// MaxU128 is the largest amount representable on-chain. Reserve balances and
// swap amounts are u64 or u128 natively; any intermediate that exceeds this
// bound indicates a broken invariant, not a large trade.
var MaxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// FitsU128 reports whether x is a valid unsigned 128-bit amount.
func FitsU128(x *big.Int) bool {
	return x.Sign() >= 0 && x.Cmp(MaxU128) <= 0
}

// U128 creates an amount from a uint64.
func U128(x uint64) *big.Int {
	return new(big.Int).SetUint64(x)
}

// Clone returns a copy of x, treating nil as zero.
func Clone(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}

// MulDiv computes (x * num) / den with flooring division.
// den must be non-zero; callers validate fee denominators at load time.
func MulDiv(x *big.Int, num, den uint64) *big.Int {
	out := new(big.Int).Mul(x, new(big.Int).SetUint64(num))
	return out.Quo(out, new(big.Int).SetUint64(den))
}

// IsZero returns true if x is zero.
func IsZero(x *big.Int) bool {
	return x.Sign() == 0
}
