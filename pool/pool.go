// Package pool implements the uniform quoting contract over every supported
// venue kind. A Pool is a closed tagged union: adding a venue kind without
// extending the dispatch in Quote, CanTrade and Refresh is a loud failure,
// which keeps the cycle search venue-agnostic.
package pool

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/soldexlabs/arbiter/curve"
	"github.com/soldexlabs/arbiter/orderbook"
	"github.com/soldexlabs/arbiter/types"
	"github.com/soldexlabs/arbiter/utils/math"
)

// Kind discriminates the venue variants.
type Kind uint8

const (
	KindConstantProduct Kind = iota
	KindStable
	KindOrderBook
)

func (k Kind) String() string {
	switch k {
	case KindConstantProduct:
		return "constant-product"
	case KindStable:
		return "stable"
	case KindOrderBook:
		return "order-book"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Pool is a tradable market between exactly two tokens. Exactly one of the
// amm / market variants is populated, selected by kind.
type Pool struct {
	kind    Kind
	address solana.PublicKey
	name    string

	// mints in canonical (byte-sorted) order, with their decimal scales.
	mint0, mint1   solana.PublicKey
	scale0, scale1 uint8

	// AMM variant.
	vaults    map[solana.PublicKey]solana.PublicKey
	reserves  map[solana.PublicKey]*big.Int
	fees      curve.Fees
	curveKind curve.Kind
	amp       uint64

	// Order-book variant. baseMint/quoteMint keep the market's own
	// orientation; mint0/mint1 above stay canonical for identity.
	baseMint, quoteMint solana.PublicKey
	marketAcc           solana.PublicKey
	bidsAcc, asksAcc    solana.PublicKey
	feeTier             orderbook.FeeTier
	lots                orderbook.Lots
	book                *orderbook.Book

	live bool
}

// NewAmm builds a constant-product or stable pool from its definition.
func NewAmm(def *AmmDefinition) (*Pool, error) {
	if len(def.TokenIDs) != 2 || def.TokenIDs[0].Equals(def.TokenIDs[1]) {
		return nil, fmt.Errorf("%w: need two distinct mints, got %v",
			ErrInvalidDefinition, def.TokenIDs)
	}

	var kind Kind
	switch curve.Kind(def.CurveType) {
	case curve.ConstantProduct:
		kind = KindConstantProduct
	case curve.Stable:
		kind = KindStable
		if def.Amp == 0 {
			return nil, fmt.Errorf("%w: stable pool without amplification", ErrInvalidDefinition)
		}
	default:
		return nil, fmt.Errorf("%w: curve type %d", curve.ErrUnsupportedCurveType, def.CurveType)
	}

	if def.Fees.TraderFee.Numerator != 0 && def.Fees.TraderFee.Denominator == 0 {
		return nil, fmt.Errorf("%w: trade fee with zero denominator", ErrInvalidDefinition)
	}
	if def.Fees.OwnerFee.Numerator != 0 && def.Fees.OwnerFee.Denominator == 0 {
		return nil, fmt.Errorf("%w: owner fee with zero denominator", ErrInvalidDefinition)
	}

	p := &Pool{
		kind:    kind,
		address: def.Address,
		name:    def.Name,
		vaults:  make(map[solana.PublicKey]solana.PublicKey, 2),
		fees: curve.Fees{
			TradeFeeNumerator:        def.Fees.TraderFee.Numerator,
			TradeFeeDenominator:      def.Fees.TraderFee.Denominator,
			OwnerTradeFeeNumerator:   def.Fees.OwnerFee.Numerator,
			OwnerTradeFeeDenominator: def.Fees.OwnerFee.Denominator,
		},
		curveKind: curve.Kind(def.CurveType),
		amp:       def.Amp,
	}
	p.mint0, p.mint1 = sortMints(def.TokenIDs[0], def.TokenIDs[1])

	for i, mint := range []solana.PublicKey{p.mint0, p.mint1} {
		info, ok := def.Tokens[mint.String()]
		if !ok {
			return nil, fmt.Errorf("%w: no token info for mint %s", ErrInvalidDefinition, mint)
		}
		p.vaults[mint] = info.Addr
		if i == 0 {
			p.scale0 = info.Scale
		} else {
			p.scale1 = info.Scale
		}
	}
	return p, nil
}

// NewMarket builds an order-book pool from its definition.
func NewMarket(def *MarketDefinition) (*Pool, error) {
	if def.BaseMint.Equals(def.QuoteMint) {
		return nil, fmt.Errorf("%w: base and quote mint are identical", ErrInvalidDefinition)
	}

	p := &Pool{
		kind:      KindOrderBook,
		address:   def.OwnAddress,
		name:      def.Name,
		baseMint:  def.BaseMint,
		quoteMint: def.QuoteMint,
		marketAcc: def.OwnAddress,
		bidsAcc:   def.Bids,
		asksAcc:   def.Asks,
		feeTier: orderbook.FeeTier{
			TakerNumerator:   def.TakerFeeBps,
			TakerDenominator: 10_000,
		},
	}
	p.mint0, p.mint1 = sortMints(def.BaseMint, def.QuoteMint)
	if p.mint0.Equals(def.BaseMint) {
		p.scale0, p.scale1 = def.BaseScale, def.QuoteScale
	} else {
		p.scale0, p.scale1 = def.QuoteScale, def.BaseScale
	}
	return p, nil
}

// Address returns the venue's own account address, its identity for
// deduplication and execution.
func (p *Pool) Address() solana.PublicKey { return p.address }

// Kind returns the venue variant.
func (p *Pool) Kind() Kind { return p.kind }

// Name returns the human label from the definition, or the kind.
func (p *Pool) Name() string {
	if p.name != "" {
		return p.name
	}
	return p.kind.String()
}

// Mints returns the pool's two mints in canonical byte order. Quoting is
// direction-sensitive; the canonical order exists for identity only.
func (p *Pool) Mints() (solana.PublicKey, solana.PublicKey) {
	return p.mint0, p.mint1
}

// Scale returns the decimal scale of one of the pool's mints.
func (p *Pool) Scale(mint solana.PublicKey) (uint8, error) {
	switch {
	case mint.Equals(p.mint0):
		return p.scale0, nil
	case mint.Equals(p.mint1):
		return p.scale1, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidMint, mint)
	}
}

// HasMint reports whether mint is one of the pool's two tokens.
func (p *Pool) HasMint(mint solana.PublicKey) bool {
	return mint.Equals(p.mint0) || mint.Equals(p.mint1)
}

// UpdateAccounts declares the accounts whose payloads Refresh expects, in
// the order it expects them.
func (p *Pool) UpdateAccounts() []solana.PublicKey {
	switch p.kind {
	case KindConstantProduct, KindStable:
		return []solana.PublicKey{p.vaults[p.mint0], p.vaults[p.mint1]}
	case KindOrderBook:
		return []solana.PublicKey{p.marketAcc, p.bidsAcc, p.asksAcc}
	default:
		panic(fmt.Sprintf("pool: unhandled kind %v", p.kind))
	}
}

// Live reports whether the last refresh succeeded.
func (p *Pool) Live() bool { return p.live }

// CanTrade reports whether a swap of mintIn for mintOut can currently fill:
// both mints belong to the pool, the last refresh succeeded, and the state
// needed for this direction has liquidity. For an order book only the side
// opposing the order must be populated, so one direction can be tradable
// while the other is not.
func (p *Pool) CanTrade(mintIn, mintOut solana.PublicKey) bool {
	if !p.live || !p.HasMint(mintIn) || !p.HasMint(mintOut) || mintIn.Equals(mintOut) {
		return false
	}
	switch p.kind {
	case KindConstantProduct, KindStable:
		for _, reserve := range p.reserves {
			if math.IsZero(reserve) {
				return false
			}
		}
		return true
	case KindOrderBook:
		if mintIn.Equals(p.quoteMint) {
			return p.book.CanFill(orderbook.Bid)
		}
		return p.book.CanFill(orderbook.Ask)
	default:
		panic(fmt.Sprintf("pool: unhandled kind %v", p.kind))
	}
}

// Quote converts amountIn of mintIn into the expected amount of mintOut
// under the pool's pricing law, fees included. It never mutates venue state:
// order-book matching runs on a cloned snapshot.
func (p *Pool) Quote(amountIn *big.Int, mintIn, mintOut solana.PublicKey) (*big.Int, error) {
	if !p.HasMint(mintIn) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMint, mintIn)
	}
	if !p.HasMint(mintOut) || mintIn.Equals(mintOut) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMint, mintOut)
	}

	switch p.kind {
	case KindConstantProduct, KindStable:
		if p.reserves == nil {
			return nil, fmt.Errorf("%w: reserves not refreshed", ErrMissingAccount)
		}
		return curve.Quote(
			p.curveKind,
			amountIn,
			p.reserves[mintIn],
			p.reserves[mintOut],
			p.fees,
			p.amp,
		)
	case KindOrderBook:
		return p.quoteBook(amountIn, mintIn)
	default:
		panic(fmt.Sprintf("pool: unhandled kind %v", p.kind))
	}
}

func (p *Pool) quoteBook(amountIn *big.Int, mintIn solana.PublicKey) (*big.Int, error) {
	if p.book == nil {
		return nil, fmt.Errorf("%w: book not refreshed", ErrMissingAccount)
	}
	if !amountIn.IsUint64() {
		return nil, curve.ErrArithmeticOverflow
	}

	side := orderbook.Ask
	if mintIn.Equals(p.quoteMint) {
		side = orderbook.Bid
	}

	fill, err := orderbook.Match(side, amountIn.Uint64(), p.book.Clone(), p.feeTier, p.lots)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(fill.AmountOut), nil
}

// Refresh wholesale-replaces the pool's reserves or book from a batch of
// raw account payloads, ordered as declared by UpdateAccounts. Any failure
// marks the pool not-live and is reported to the caller, who excludes the
// pool from the current graph generation without aborting the batch.
func (p *Pool) Refresh(accounts []*types.Account) error {
	p.live = false

	want := len(p.UpdateAccounts())
	if len(accounts) != want {
		return fmt.Errorf("%w: got %d accounts, want %d", ErrMissingAccount, len(accounts), want)
	}
	for i, acc := range accounts {
		if acc == nil || len(acc.Data) == 0 {
			return fmt.Errorf("%w: account %d of %d", ErrMissingAccount, i, want)
		}
	}

	switch p.kind {
	case KindConstantProduct, KindStable:
		amount0, err := decodeVaultAmount(accounts[0].Data)
		if err != nil {
			return err
		}
		amount1, err := decodeVaultAmount(accounts[1].Data)
		if err != nil {
			return err
		}
		p.reserves = map[solana.PublicKey]*big.Int{
			p.mint0: math.U128(amount0),
			p.mint1: math.U128(amount1),
		}
	case KindOrderBook:
		state, err := decodeMarketState(accounts[0].Data)
		if err != nil {
			return err
		}
		bids, err := decodeBookSide(accounts[1].Data)
		if err != nil {
			return err
		}
		asks, err := decodeBookSide(accounts[2].Data)
		if err != nil {
			return err
		}
		p.lots = orderbook.Lots{Base: state.BaseLotSize, Quote: state.QuoteLotSize}
		book := &orderbook.Book{Bids: bids, Asks: asks}
		book.Normalize()
		p.book = book
	default:
		panic(fmt.Sprintf("pool: unhandled kind %v", p.kind))
	}

	p.live = true
	return nil
}

func sortMints(a, b solana.PublicKey) (solana.PublicKey, solana.PublicKey) {
	if bytes.Compare(a.Bytes(), b.Bytes()) <= 0 {
		return a, b
	}
	return b, a
}
