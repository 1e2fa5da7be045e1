package orderbook

import (
	"errors"
	"math/bits"
)

// ErrAmountOverflow reports amount arithmetic exceeding the uint64 range. A
// wrapped amount could manufacture a phantom fill, so matching fails instead.
var ErrAmountOverflow = errors.New("orderbook: amount arithmetic overflow")

// FeeTier is a taker fee schedule in parts of Denominator. Maker rebates do
// not apply to simulated market orders and are not modeled.
type FeeTier struct {
	TakerNumerator   uint64
	TakerDenominator uint64
}

// DefaultFeeTier mirrors the base tier of the reference market: 22 bps taker.
var DefaultFeeTier = FeeTier{TakerNumerator: 22, TakerDenominator: 10_000}

// TakerFee returns the fee charged on a filled native amount.
func (f FeeTier) TakerFee(amount uint64) (uint64, error) {
	if f.TakerDenominator == 0 {
		return 0, nil
	}
	return mulDiv(amount, f.TakerNumerator, f.TakerDenominator)
}

// RemoveTakerFee returns the largest amount x such that x plus its taker fee
// does not exceed amount.
func (f FeeTier) RemoveTakerFee(amount uint64) (uint64, error) {
	if f.TakerDenominator == 0 {
		return amount, nil
	}
	den, carry := bits.Add64(f.TakerDenominator, f.TakerNumerator, 0)
	if carry != 0 {
		return 0, ErrAmountOverflow
	}
	return mulDiv(amount, f.TakerDenominator, den)
}

// mulDiv computes a*b/den through a 128-bit intermediate, failing only when
// the quotient itself does not fit.
func mulDiv(a, b, den uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		return 0, ErrAmountOverflow
	}
	q, _ := bits.Div64(hi, lo, den)
	return q, nil
}

func mulCheck(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrAmountOverflow
	}
	return lo, nil
}

func addCheck(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrAmountOverflow
	}
	return sum, nil
}

// Lots carries the minimum tradable increments of a market.
type Lots struct {
	Base  uint64
	Quote uint64
}

// Fill is the result of matching a market order.
type Fill struct {
	// AmountOut is the native amount received, net of taker fees.
	AmountOut uint64
	// Unfilled is the native input remainder the book could not absorb.
	Unfilled uint64
}

// Match simulates filling a market order of amountIn native units against
// the book. The book is mutated (liquidity is consumed), so callers pass a
// Clone of the venue snapshot. Lot sizes must be non-zero. Amount arithmetic
// that would wrap uint64 returns ErrAmountOverflow rather than a wrapped
// fill.
func Match(side Side, amountIn uint64, book *Book, fees FeeTier, lots Lots) (Fill, error) {
	if side == Bid {
		return matchBid(amountIn, book, fees, lots)
	}
	return matchAsk(amountIn, book, fees, lots)
}

// matchBid spends quote currency against the ask side, accumulating base.
func matchBid(amountIn uint64, book *Book, fees FeeTier, lots Lots) (Fill, error) {
	net, err := fees.RemoveTakerFee(amountIn)
	if err != nil {
		return Fill{}, err
	}
	maxQuoteLots := net / lots.Quote
	quoteLotsRemaining := maxQuoteLots

	var baseOut uint64
	for {
		best, ok := book.BestAsk()
		if !ok {
			break
		}
		tradeQty := best.Quantity
		if budget := quoteLotsRemaining / best.Price; budget < tradeQty {
			tradeQty = budget
		}
		if tradeQty == 0 {
			// Best ask is too expensive for the remaining budget.
			break
		}

		// tradeQty*price is clamped to the remaining budget above, so only
		// the base-side accumulation can overflow.
		quoteLotsRemaining -= tradeQty * best.Price
		out, err := mulCheck(tradeQty, lots.Base)
		if err != nil {
			return Fill{}, err
		}
		if baseOut, err = addCheck(baseOut, out); err != nil {
			return Fill{}, err
		}
		book.reduceBest(Ask, tradeQty)
	}

	filled := (maxQuoteLots - quoteLotsRemaining) * lots.Quote
	takerFee, err := fees.TakerFee(filled)
	if err != nil {
		return Fill{}, err
	}
	return Fill{
		AmountOut: baseOut,
		Unfilled:  amountIn - filled - takerFee,
	}, nil
}

// matchAsk sells base into the bid side, accumulating quote net of fees.
func matchAsk(amountIn uint64, book *Book, fees FeeTier, lots Lots) (Fill, error) {
	unfilledLots := amountIn / lots.Base

	var quoteLotsAccum uint64
	for {
		best, ok := book.BestBid()
		if !ok {
			break
		}
		tradeQty := best.Quantity
		if unfilledLots < tradeQty {
			tradeQty = unfilledLots
		}
		if tradeQty == 0 {
			break
		}

		unfilledLots -= tradeQty
		gross, err := mulCheck(tradeQty, best.Price)
		if err != nil {
			return Fill{}, err
		}
		if quoteLotsAccum, err = addCheck(quoteLotsAccum, gross); err != nil {
			return Fill{}, err
		}
		book.reduceBest(Bid, tradeQty)
	}

	grossQuote, err := mulCheck(quoteLotsAccum, lots.Quote)
	if err != nil {
		return Fill{}, err
	}
	takerFee, err := fees.TakerFee(grossQuote)
	if err != nil {
		return Fill{}, err
	}
	return Fill{
		AmountOut: grossQuote - takerFee,
		Unfilled:  unfilledLots * lots.Base,
	}, nil
}
