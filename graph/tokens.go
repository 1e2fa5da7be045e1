// Package graph indexes which token pairs are tradable and through which
// pools. Tokens are interned into a dense index space as pools are loaded;
// the graph itself is rebuilt per state refresh and handed to searches as an
// immutable snapshot.
package graph

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// TokenRegistry assigns dense indices to mints in order of first observation
// and keeps the reverse mapping. Indices are stable for the lifetime of a
// search session.
type TokenRegistry struct {
	mints  []solana.PublicKey
	index  map[solana.PublicKey]int
	scales map[solana.PublicKey]uint8
}

// NewTokenRegistry creates an empty registry.
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		index:  make(map[solana.PublicKey]int),
		scales: make(map[solana.PublicKey]uint8),
	}
}

// Intern returns the index of mint, assigning the next free index on first
// observation.
func (r *TokenRegistry) Intern(mint solana.PublicKey, scale uint8) int {
	if idx, ok := r.index[mint]; ok {
		return idx
	}
	idx := len(r.mints)
	r.mints = append(r.mints, mint)
	r.index[mint] = idx
	r.scales[mint] = scale
	return idx
}

// Index resolves a mint to its dense index. The boolean is false for mints
// never observed while loading pools.
func (r *TokenRegistry) Index(mint solana.PublicKey) (int, bool) {
	idx, ok := r.index[mint]
	return idx, ok
}

// Mint returns the mint at a dense index.
func (r *TokenRegistry) Mint(idx int) (solana.PublicKey, error) {
	if idx < 0 || idx >= len(r.mints) {
		return solana.PublicKey{}, fmt.Errorf("token index %d out of range (%d tokens)", idx, len(r.mints))
	}
	return r.mints[idx], nil
}

// Scale returns the decimal scale recorded for mint.
func (r *TokenRegistry) Scale(mint solana.PublicKey) (uint8, bool) {
	s, ok := r.scales[mint]
	return s, ok
}

// Len returns the number of interned tokens.
func (r *TokenRegistry) Len() int { return len(r.mints) }
