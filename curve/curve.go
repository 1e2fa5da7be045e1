// Package curve implements the pricing laws of supported AMM pools as pure
// functions over reserve balances. All arithmetic is carried out on big.Int
// values bounded to unsigned 128 bits, mirroring the on-chain programs.
package curve

import (
	"errors"
	"math/big"

	"github.com/soldexlabs/arbiter/utils/math"
)

// Kind discriminates the pricing law encoded in a pool definition.
type Kind uint8

const (
	ConstantProduct Kind = 0
	ConstantPrice   Kind = 1
	Stable          Kind = 2
	Offset          Kind = 3
)

var (
	// ErrInvalidCurveParameters is returned when a reserve is zero or a fee
	// schedule is degenerate. Callers are expected to check liveness first.
	ErrInvalidCurveParameters = errors.New("curve: invalid parameters")

	// ErrArithmeticOverflow is returned when an intermediate exceeds the
	// unsigned 128-bit range. A wrapped amount could manufacture a false
	// profitable cycle, so this is never silently truncated.
	ErrArithmeticOverflow = errors.New("curve: arithmetic overflow")

	// ErrConvergenceFailure is returned when the stable-swap solver does not
	// stabilize within the iteration bound.
	ErrConvergenceFailure = errors.New("curve: solver did not converge")

	// ErrUnsupportedCurveType is returned for curve discriminators the engine
	// does not price. The affected pool is excluded from the graph.
	ErrUnsupportedCurveType = errors.New("curve: unsupported curve type")
)

// Fees is the trade fee schedule of an AMM pool. The trade fee is taken from
// the input amount before the invariant is applied; the owner fee, when
// present, is taken from the gross output.
type Fees struct {
	TradeFeeNumerator        uint64
	TradeFeeDenominator      uint64
	OwnerTradeFeeNumerator   uint64
	OwnerTradeFeeDenominator uint64
}

// TradeFee returns the fee withheld from amountIn.
func (f Fees) TradeFee(amountIn *big.Int) *big.Int {
	if f.TradeFeeNumerator == 0 || f.TradeFeeDenominator == 0 {
		return new(big.Int)
	}
	return math.MulDiv(amountIn, f.TradeFeeNumerator, f.TradeFeeDenominator)
}

// OwnerFee returns the fee withheld from the gross output amount.
func (f Fees) OwnerFee(amountOut *big.Int) *big.Int {
	if f.OwnerTradeFeeNumerator == 0 || f.OwnerTradeFeeDenominator == 0 {
		return new(big.Int)
	}
	return math.MulDiv(amountOut, f.OwnerTradeFeeNumerator, f.OwnerTradeFeeDenominator)
}

// Quote prices amountIn against the given reserves under the selected curve.
func Quote(kind Kind, amountIn, reserveIn, reserveOut *big.Int, fees Fees, amp uint64) (*big.Int, error) {
	switch kind {
	case ConstantProduct:
		return ConstantProductQuote(amountIn, reserveIn, reserveOut, fees)
	case Stable:
		return StableQuote(amountIn, reserveIn, reserveOut, amp, fees)
	default:
		return nil, ErrUnsupportedCurveType
	}
}

// ConstantProductQuote computes the output of a swap against an x*y=k pool:
//
//	amountOut = reserveOut - (reserveIn * reserveOut) / (reserveIn + amountInAfterFee)
func ConstantProductQuote(amountIn, reserveIn, reserveOut *big.Int, fees Fees) (*big.Int, error) {
	if math.IsZero(reserveIn) || math.IsZero(reserveOut) {
		return nil, ErrInvalidCurveParameters
	}
	if !math.FitsU128(amountIn) || !math.FitsU128(reserveIn) || !math.FitsU128(reserveOut) {
		return nil, ErrArithmeticOverflow
	}

	afterFee := new(big.Int).Sub(math.Clone(amountIn), fees.TradeFee(amountIn))

	newReserveIn := new(big.Int).Add(reserveIn, afterFee)
	if !math.FitsU128(newReserveIn) {
		return nil, ErrArithmeticOverflow
	}

	invariant := new(big.Int).Mul(reserveIn, reserveOut)
	gross := new(big.Int).Sub(reserveOut, invariant.Quo(invariant, newReserveIn))

	out := gross.Sub(gross, fees.OwnerFee(gross))
	if out.Sign() < 0 {
		out.SetInt64(0)
	}
	return out, nil
}
