// Package chain adapts the Solana JSON-RPC client to the account fetching
// contract the refresher expects.
package chain

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/soldexlabs/arbiter/types"
)

// Fetcher loads raw account payloads over JSON-RPC.
type Fetcher struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

// NewFetcher dials an RPC endpoint. State is read at confirmed commitment;
// quotes computed on finalized data lag the market by too many slots to act
// on.
func NewFetcher(endpoint string) *Fetcher {
	return &Fetcher{
		client:     rpc.New(endpoint),
		commitment: rpc.CommitmentConfirmed,
	}
}

// FetchAccounts fetches the keys in one multiple-accounts request. The
// result matches keys in length and order; accounts that do not exist come
// back nil.
func (f *Fetcher) FetchAccounts(ctx context.Context, keys []solana.PublicKey) ([]*types.Account, error) {
	result, err := f.client.GetMultipleAccountsWithOpts(ctx, keys, &rpc.GetMultipleAccountsOpts{
		Commitment: f.commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("getMultipleAccounts: %w", err)
	}
	if len(result.Value) != len(keys) {
		return nil, fmt.Errorf("getMultipleAccounts: got %d accounts for %d keys",
			len(result.Value), len(keys))
	}

	out := make([]*types.Account, len(keys))
	for i, acc := range result.Value {
		if acc == nil {
			continue
		}
		out[i] = &types.Account{
			Pubkey: keys[i],
			Owner:  acc.Owner,
			Data:   acc.Data.GetBinary(),
		}
	}
	return out, nil
}
