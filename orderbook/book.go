// Package orderbook models a snapshot of an order-book market and simulates
// market-order matching against it. Matching always runs on a working copy of
// the book, so quoting is reproducible and never touches live venue state.
package orderbook

import "sort"

// Side identifies the direction of a market order. A Bid spends the quote
// currency to buy base; an Ask spends base to receive quote.
type Side uint8

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// Order is a resting order on one side of the book. Price is expressed in
// quote lots per base lot; Quantity in base lots.
type Order struct {
	ID       uint64
	Price    uint64
	Quantity uint64
}

// Book is a snapshot of both sides of a market. Asks are kept sorted by
// ascending price, bids by descending price, so the best order on either
// side is always at index zero.
type Book struct {
	Bids []Order
	Asks []Order
}

// Normalize sorts both sides into matching order. Called after a refresh;
// matching assumes sorted sides.
func (b *Book) Normalize() {
	sort.SliceStable(b.Asks, func(i, j int) bool { return b.Asks[i].Price < b.Asks[j].Price })
	sort.SliceStable(b.Bids, func(i, j int) bool { return b.Bids[i].Price > b.Bids[j].Price })
}

// Clone returns a deep working copy. The matcher consumes liquidity from the
// copy and discards it at the end of the quote.
func (b *Book) Clone() *Book {
	cp := &Book{
		Bids: make([]Order, len(b.Bids)),
		Asks: make([]Order, len(b.Asks)),
	}
	copy(cp.Bids, b.Bids)
	copy(cp.Asks, b.Asks)
	return cp
}

// BestAsk returns the lowest-priced resting ask.
func (b *Book) BestAsk() (Order, bool) {
	if len(b.Asks) == 0 {
		return Order{}, false
	}
	return b.Asks[0], true
}

// BestBid returns the highest-priced resting bid.
func (b *Book) BestBid() (Order, bool) {
	if len(b.Bids) == 0 {
		return Order{}, false
	}
	return b.Bids[0], true
}

// CanFill reports whether the side opposing a market order has liquidity:
// a Bid needs at least one resting ask, an Ask at least one resting bid.
func (b *Book) CanFill(side Side) bool {
	if side == Bid {
		return len(b.Asks) > 0
	}
	return len(b.Bids) > 0
}

// TotalQuantity sums resting base-lot quantity on one side.
func (b *Book) TotalQuantity(side Side) uint64 {
	var orders []Order
	if side == Bid {
		orders = b.Bids
	} else {
		orders = b.Asks
	}
	var total uint64
	for _, o := range orders {
		total += o.Quantity
	}
	return total
}

// reduceBest decrements the best order on the given side by qty, removing it
// once fully consumed. qty must not exceed the order's quantity.
func (b *Book) reduceBest(side Side, qty uint64) {
	if side == Bid {
		b.Bids[0].Quantity -= qty
		if b.Bids[0].Quantity == 0 {
			b.Bids = b.Bids[1:]
		}
		return
	}
	b.Asks[0].Quantity -= qty
	if b.Asks[0].Quantity == 0 {
		b.Asks = b.Asks[1:]
	}
}
