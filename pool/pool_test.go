package pool

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soldexlabs/arbiter/curve"
	"github.com/soldexlabs/arbiter/orderbook"
	"github.com/soldexlabs/arbiter/types"
)

var (
	usdcMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	solMint  = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	usdtMint = solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
)

func testKey(tag byte) solana.PublicKey {
	var b [32]byte
	for i := range b {
		b[i] = tag
	}
	return solana.PublicKeyFromBytes(b[:])
}

// vaultPayload builds an SPL token account payload holding amount.
func vaultPayload(amount uint64) []byte {
	data := make([]byte, splTokenAccountSize)
	binary.LittleEndian.PutUint64(data[64:], amount)
	return data
}

// marketPayload builds a market-state payload with the given lot sizes.
func marketPayload(baseLot, quoteLot uint64) []byte {
	data := make([]byte, 24)
	binary.LittleEndian.PutUint64(data[8:], baseLot)
	binary.LittleEndian.PutUint64(data[16:], quoteLot)
	return data
}

// bookSidePayload builds a book-side payload from (id, price, quantity) rows.
func bookSidePayload(orders ...[3]uint64) []byte {
	data := make([]byte, 4+24*len(orders))
	binary.LittleEndian.PutUint32(data, uint32(len(orders)))
	off := 4
	for _, o := range orders {
		binary.LittleEndian.PutUint64(data[off:], o[0])
		binary.LittleEndian.PutUint64(data[off+8:], o[1])
		binary.LittleEndian.PutUint64(data[off+16:], o[2])
		off += 24
	}
	return data
}

func testAmmDefinition(curveType uint8) *AmmDefinition {
	return &AmmDefinition{
		Address:  testKey(0xA0),
		Name:     "usdc-sol",
		TokenIDs: []solana.PublicKey{usdcMint, solMint},
		Tokens: map[string]TokenInfo{
			usdcMint.String(): {Mint: usdcMint, Scale: 6, Addr: testKey(0xA1)},
			solMint.String():  {Mint: solMint, Scale: 9, Addr: testKey(0xA2)},
		},
		CurveType: curveType,
		Amp:       100,
	}
}

func refreshedAmm(t *testing.T, reserve0, reserve1 uint64) *Pool {
	t.Helper()
	p, err := NewAmm(testAmmDefinition(0))
	require.NoError(t, err)

	accs := []*types.Account{
		{Pubkey: p.UpdateAccounts()[0], Data: vaultPayload(reserve0)},
		{Pubkey: p.UpdateAccounts()[1], Data: vaultPayload(reserve1)},
	}
	require.NoError(t, p.Refresh(accs))
	return p
}

func TestNewAmmValidation(t *testing.T) {
	def := testAmmDefinition(0)
	def.TokenIDs = []solana.PublicKey{usdcMint, usdcMint}
	_, err := NewAmm(def)
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	def = testAmmDefinition(1)
	_, err = NewAmm(def)
	assert.ErrorIs(t, err, curve.ErrUnsupportedCurveType)

	def = testAmmDefinition(2)
	def.Amp = 0
	_, err = NewAmm(def)
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestMintsCanonicalOrder(t *testing.T) {
	p, err := NewAmm(testAmmDefinition(0))
	require.NoError(t, err)

	m0, m1 := p.Mints()
	def := testAmmDefinition(0)
	def.TokenIDs = []solana.PublicKey{solMint, usdcMint} // reversed
	q, err := NewAmm(def)
	require.NoError(t, err)

	q0, q1 := q.Mints()
	assert.Equal(t, m0, q0)
	assert.Equal(t, m1, q1)
}

func TestAmmQuote(t *testing.T) {
	p := refreshedAmm(t, 1_000_000_000, 5_000_000_000)
	m0, m1 := p.Mints()

	out, err := p.Quote(big.NewInt(1_000_000), m0, m1)
	require.NoError(t, err)
	assert.Equal(t, int64(4_995_005), out.Int64())

	// Direction matters.
	back, err := p.Quote(big.NewInt(1_000_000), m1, m0)
	require.NoError(t, err)
	assert.NotEqual(t, out.Int64(), back.Int64())
}

func TestQuoteInvalidMint(t *testing.T) {
	p := refreshedAmm(t, 1_000_000_000, 5_000_000_000)
	m0, _ := p.Mints()

	_, err := p.Quote(big.NewInt(1), usdtMint, m0)
	assert.ErrorIs(t, err, ErrInvalidMint)

	_, err = p.Quote(big.NewInt(1), m0, m0)
	assert.ErrorIs(t, err, ErrInvalidMint)
}

func TestRefreshMissingAccount(t *testing.T) {
	p, err := NewAmm(testAmmDefinition(0))
	require.NoError(t, err)

	err = p.Refresh([]*types.Account{{Data: vaultPayload(1)}, nil})
	assert.ErrorIs(t, err, ErrMissingAccount)
	assert.False(t, p.Live())

	err = p.Refresh([]*types.Account{{Data: vaultPayload(1)}})
	assert.ErrorIs(t, err, ErrMissingAccount)
}

func TestRefreshMalformedAccount(t *testing.T) {
	p, err := NewAmm(testAmmDefinition(0))
	require.NoError(t, err)

	err = p.Refresh([]*types.Account{
		{Data: []byte{1, 2, 3}},
		{Data: vaultPayload(1)},
	})
	assert.ErrorIs(t, err, ErrMalformedAccountData)
	assert.False(t, p.Live())
}

func TestCanTradeZeroReserve(t *testing.T) {
	p := refreshedAmm(t, 0, 5_000_000_000)
	m0, m1 := p.Mints()
	assert.False(t, p.CanTrade(m0, m1))
	assert.False(t, p.CanTrade(m1, m0))

	p = refreshedAmm(t, 1, 1)
	assert.True(t, p.CanTrade(m0, m1))
	assert.False(t, p.CanTrade(m0, usdtMint))
}

func testMarketDefinition() *MarketDefinition {
	return &MarketDefinition{
		OwnAddress:  testKey(0xB0),
		Name:        "sol-usdc",
		BaseMint:    solMint,
		QuoteMint:   usdcMint,
		BaseScale:   9,
		QuoteScale:  6,
		Bids:        testKey(0xB1),
		Asks:        testKey(0xB2),
		TakerFeeBps: 22,
	}
}

func refreshedMarket(t *testing.T, bids, asks []byte) *Pool {
	t.Helper()
	p, err := NewMarket(testMarketDefinition())
	require.NoError(t, err)

	accs := []*types.Account{
		{Data: marketPayload(1_000, 100)},
		{Data: bids},
		{Data: asks},
	}
	require.NoError(t, p.Refresh(accs))
	return p
}

func TestMarketQuoteBid(t *testing.T) {
	p := refreshedMarket(t,
		bookSidePayload([3]uint64{20, 7, 800}, [3]uint64{21, 6, 5_000}),
		bookSidePayload([3]uint64{11, 6, 2_000}, [3]uint64{10, 5, 1_500}),
	)

	// Spending quote (USDC) walks the asks.
	out, err := p.Quote(big.NewInt(1_000_000), usdcMint, solMint)
	require.NoError(t, err)
	assert.Equal(t, int64(1_913_000), out.Int64())

	// Quoting is side-effect free: the same quote twice returns the same fill.
	again, err := p.Quote(big.NewInt(1_000_000), usdcMint, solMint)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestMarketQuoteAsk(t *testing.T) {
	p := refreshedMarket(t,
		bookSidePayload([3]uint64{20, 7, 800}, [3]uint64{21, 6, 5_000}),
		bookSidePayload([3]uint64{10, 5, 1_500}),
	)

	out, err := p.Quote(big.NewInt(2_000_000), solMint, usdcMint)
	require.NoError(t, err)
	assert.Equal(t, int64(1_277_184), out.Int64())
}

func TestMarketQuoteOverflow(t *testing.T) {
	p, err := NewMarket(testMarketDefinition())
	require.NoError(t, err)
	require.NoError(t, p.Refresh([]*types.Account{
		{Data: marketPayload(1, 1)},
		{Data: bookSidePayload([3]uint64{1, 1<<34 + 1, 1 << 30})},
		{Data: bookSidePayload()},
	}))

	// Selling base into a bid worth more than 2^64 quote units fails loudly
	// instead of wrapping into a tiny fill.
	_, err = p.Quote(big.NewInt(1<<30), solMint, usdcMint)
	assert.ErrorIs(t, err, orderbook.ErrAmountOverflow)
}

func TestMarketCanTradePerDirection(t *testing.T) {
	// Bids populated, asks empty: only base->quote fillable.
	p := refreshedMarket(t,
		bookSidePayload([3]uint64{20, 7, 800}),
		bookSidePayload(),
	)
	assert.True(t, p.CanTrade(solMint, usdcMint))
	assert.False(t, p.CanTrade(usdcMint, solMint))
}

func TestMarketRefreshMalformed(t *testing.T) {
	p, err := NewMarket(testMarketDefinition())
	require.NoError(t, err)

	// Count claims more orders than the payload holds.
	bad := bookSidePayload([3]uint64{1, 2, 3})
	binary.LittleEndian.PutUint32(bad, 9)

	err = p.Refresh([]*types.Account{
		{Data: marketPayload(1_000, 100)},
		{Data: bad},
		{Data: bookSidePayload()},
	})
	assert.ErrorIs(t, err, ErrMalformedAccountData)

	// Zero lot size is malformed market state.
	err = p.Refresh([]*types.Account{
		{Data: marketPayload(0, 100)},
		{Data: bookSidePayload()},
		{Data: bookSidePayload()},
	})
	assert.ErrorIs(t, err, ErrMalformedAccountData)
}
