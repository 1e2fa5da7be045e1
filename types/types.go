package types

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// Account is a raw on-chain account payload delivered by a refresh batch.
// A nil entry in a refresh slice means the account was absent from the batch.
type Account struct {
	Pubkey solana.PublicKey
	Owner  solana.PublicKey
	Data   []byte
}

// SwapLeg is one hop of a cycle: the pool traded through, the direction, and
// the amounts carried across it.
type SwapLeg struct {
	Pool      solana.PublicKey
	MintIn    solana.PublicKey
	MintOut   solana.PublicKey
	AmountIn  *big.Int
	AmountOut *big.Int
}

// Opportunity is a closed, profitable, deduplicated cycle. It carries enough
// information for an execution layer to reconstruct the exact swap sequence
// without querying the search core again.
type Opportunity struct {
	// Tokens is the ordered token-index path, starting and ending at the
	// base token.
	Tokens []int
	// Legs holds one entry per hop, in order.
	Legs []*SwapLeg
	// AmountIn is the original notional committed to the cycle.
	AmountIn *big.Int
	// AmountOut is the final amount returned at cycle close.
	AmountOut *big.Int
	// Profit is AmountOut - AmountIn.
	Profit *big.Int
	// Fingerprint identifies the ordered pool sequence for deduplication.
	Fingerprint uint64
}

// Hops returns the cycle length in hops.
func (o *Opportunity) Hops() int {
	return len(o.Legs)
}

// Pools returns the ordered pool addresses used by the cycle.
func (o *Opportunity) Pools() []solana.PublicKey {
	pools := make([]solana.PublicKey, len(o.Legs))
	for i, leg := range o.Legs {
		pools[i] = leg.Pool
	}
	return pools
}
