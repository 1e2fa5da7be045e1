package curve

import (
	"math/big"

	"github.com/soldexlabs/arbiter/utils/math"
)

// maxSolverIterations bounds both Newton solves. The on-chain programs
// converge in well under this for any sane amplification coefficient.
const maxSolverIterations = 128

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// StableQuote computes the output of a swap against a stable-curve pool.
// The invariant is sum-dominant near the peg and product-dominant away from
// it, parameterized by the amplification coefficient amp.
func StableQuote(amountIn, reserveIn, reserveOut *big.Int, amp uint64, fees Fees) (*big.Int, error) {
	if math.IsZero(reserveIn) || math.IsZero(reserveOut) || amp == 0 {
		return nil, ErrInvalidCurveParameters
	}
	if !math.FitsU128(amountIn) || !math.FitsU128(reserveIn) || !math.FitsU128(reserveOut) {
		return nil, ErrArithmeticOverflow
	}

	afterFee := new(big.Int).Sub(math.Clone(amountIn), fees.TradeFee(amountIn))

	d, err := computeD(amp, reserveIn, reserveOut)
	if err != nil {
		return nil, err
	}

	newReserveIn := new(big.Int).Add(reserveIn, afterFee)
	if !math.FitsU128(newReserveIn) {
		return nil, ErrArithmeticOverflow
	}

	newReserveOut, err := computeY(amp, newReserveIn, d)
	if err != nil {
		return nil, err
	}

	gross := new(big.Int).Sub(reserveOut, newReserveOut)
	if gross.Sign() < 0 {
		gross.SetInt64(0)
	}

	out := gross.Sub(gross, fees.OwnerFee(gross))
	if out.Sign() < 0 {
		out.SetInt64(0)
	}
	return out, nil
}

// computeD solves for the stable-swap invariant D given the two balances,
// using Newton iteration with Ann = amp * n^n for n = 2.
func computeD(amp uint64, x, y *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(x, y)
	if sum.Sign() == 0 {
		return new(big.Int), nil
	}

	ann := new(big.Int).SetUint64(amp * 4)
	d := math.Clone(sum)

	for i := 0; i < maxSolverIterations; i++ {
		// dP = D^(n+1) / (n^n * x * y)
		dp := math.Clone(d)
		dp.Mul(dp, d).Quo(dp, new(big.Int).Mul(x, two))
		dp.Mul(dp, d).Quo(dp, new(big.Int).Mul(y, two))

		prev := math.Clone(d)

		// D = (Ann*S + 2*dP) * D / ((Ann-1)*D + 3*dP)
		num := new(big.Int).Mul(ann, sum)
		num.Add(num, new(big.Int).Mul(dp, two))
		num.Mul(num, d)

		den := new(big.Int).Sub(ann, one)
		den.Mul(den, d)
		den.Add(den, new(big.Int).Mul(dp, three))

		d.Quo(num, den)

		if converged(d, prev) {
			return d, nil
		}
	}
	return nil, ErrConvergenceFailure
}

// computeY solves for the post-trade balance of the output side given the
// new input-side balance x and invariant d.
func computeY(amp uint64, x, d *big.Int) (*big.Int, error) {
	ann := new(big.Int).SetUint64(amp * 4)

	// c = D^3 / (4 * x * Ann) computed incrementally to stay in range.
	c := math.Clone(d)
	c.Mul(c, d).Quo(c, new(big.Int).Mul(x, two))
	c.Mul(c, d).Quo(c, new(big.Int).Mul(ann, two))

	b := new(big.Int).Quo(d, ann)
	b.Add(b, x)

	y := math.Clone(d)
	for i := 0; i < maxSolverIterations; i++ {
		prev := math.Clone(y)

		// y = (y^2 + c) / (2y + b - D)
		num := new(big.Int).Mul(y, y)
		num.Add(num, c)

		den := new(big.Int).Mul(y, two)
		den.Add(den, b)
		den.Sub(den, d)

		y.Quo(num, den)

		if converged(y, prev) {
			return y, nil
		}
	}
	return nil, ErrConvergenceFailure
}

func converged(cur, prev *big.Int) bool {
	diff := new(big.Int).Sub(cur, prev)
	return diff.CmpAbs(one) <= 0
}
