package pool

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/soldexlabs/arbiter/orderbook"
)

// splTokenAccountSize is the fixed size of an SPL token account.
const splTokenAccountSize = 165

// splTokenAccountLayout is the decoded prefix of an SPL token account; the
// vault balance lives in Amount.
type splTokenAccountLayout struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

func decodeVaultAmount(data []byte) (uint64, error) {
	if len(data) < splTokenAccountSize {
		return 0, fmt.Errorf("%w: token account is %d bytes, want %d",
			ErrMalformedAccountData, len(data), splTokenAccountSize)
	}
	var layout splTokenAccountLayout
	if err := bin.NewBinDecoder(data).Decode(&layout); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedAccountData, err)
	}
	return layout.Amount, nil
}

// marketStateLayout is the decoded prefix of a market account: lot sizes are
// read from chain state rather than trusted from the venue definition.
type marketStateLayout struct {
	AccountFlags uint64
	BaseLotSize  uint64
	QuoteLotSize uint64
}

func decodeMarketState(data []byte) (*marketStateLayout, error) {
	var layout marketStateLayout
	if err := bin.NewBinDecoder(data).Decode(&layout); err != nil {
		return nil, fmt.Errorf("%w: market state: %v", ErrMalformedAccountData, err)
	}
	if layout.BaseLotSize == 0 || layout.QuoteLotSize == 0 {
		return nil, fmt.Errorf("%w: zero lot size", ErrMalformedAccountData)
	}
	return &layout, nil
}

// bookOrderLayout is one resting order in a book-side account.
type bookOrderLayout struct {
	OrderID  uint64
	Price    uint64
	Quantity uint64
}

// decodeBookSide decodes a book-side account: a little-endian uint32 order
// count followed by that many fixed-size order records.
func decodeBookSide(data []byte) ([]orderbook.Order, error) {
	dec := bin.NewBinDecoder(data)
	count, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("%w: book side header: %v", ErrMalformedAccountData, err)
	}

	orders := make([]orderbook.Order, 0, count)
	for i := uint32(0); i < count; i++ {
		var o bookOrderLayout
		if err := dec.Decode(&o); err != nil {
			return nil, fmt.Errorf("%w: book order %d: %v", ErrMalformedAccountData, i, err)
		}
		orders = append(orders, orderbook.Order{
			ID:       o.OrderID,
			Price:    o.Price,
			Quantity: o.Quantity,
		})
	}
	return orders, nil
}
