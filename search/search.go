// Package search explores the venue graph from a base token, composing pool
// quotes hop by hop, and reports closed, profitable, deduplicated cycles.
// A search is a pure function of its graph snapshot and inputs: it holds no
// suspension points, touches no shared state beyond the caller's fingerprint
// set, and always runs to completion over the bounded graph.
package search

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/soldexlabs/arbiter/graph"
	"github.com/soldexlabs/arbiter/pool"
	"github.com/soldexlabs/arbiter/types"
	"github.com/soldexlabs/arbiter/utils/math"
	"github.com/soldexlabs/arbiter/utils/metrics"
)

// quoteCacheSize bounds the per-snapshot memoization cache. Entries are tiny
// (a string key and a big.Int); the cache exists because the DFS re-quotes
// the same pool at the same amount whenever branches reconverge.
const quoteCacheSize = 16_384

// Searcher runs depth-first cycle searches over one immutable graph
// generation. Build a new Searcher after every refresh.
type Searcher struct {
	graph   *graph.Graph
	maxHops int
	log     *zap.Logger
	metrics *metrics.SearchMetrics
	quotes  *lru.Cache
}

// NewSearcher creates a searcher over g with the given hop bound. m may be
// nil when instrumentation is not wanted.
func NewSearcher(g *graph.Graph, maxHops int, log *zap.Logger, m *metrics.SearchMetrics) (*Searcher, error) {
	if maxHops < 1 {
		return nil, fmt.Errorf("search: hop bound must be positive, got %d", maxHops)
	}
	cache, err := lru.New(quoteCacheSize)
	if err != nil {
		return nil, err
	}
	return &Searcher{
		graph:   g,
		maxHops: maxHops,
		log:     log,
		metrics: m,
		quotes:  cache,
	}, nil
}

// Search walks every path of at most maxHops hops from startIdx, carrying
// tradeAmount through pool quotes, and returns every profitable cycle not
// already recorded in seen. Profit is measured against originalAmount, the
// notional before process fees. Quoting errors prune their branch only; the
// search itself fails only if startIdx is not a known token.
func (s *Searcher) Search(startIdx int, tradeAmount, originalAmount *big.Int, seen FingerprintSet) ([]*types.Opportunity, error) {
	if _, err := s.graph.Registry().Mint(startIdx); err != nil {
		return nil, fmt.Errorf("search: start token: %w", err)
	}

	start := time.Now()
	var found []*types.Opportunity
	s.walk(startIdx, startIdx, tradeAmount, originalAmount, []int{startIdx}, nil, seen, &found)

	if s.metrics != nil {
		s.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}
	return found, nil
}

func (s *Searcher) walk(
	startIdx, curIdx int,
	amount, original *big.Int,
	tokens []int,
	legs []*types.SwapLeg,
	seen FingerprintSet,
	found *[]*types.Opportunity,
) {
	registry := s.graph.Registry()
	curMint, err := registry.Mint(curIdx)
	if err != nil {
		return
	}

	for _, next := range s.graph.Neighbors(curIdx) {
		nextMint, err := registry.Mint(next)
		if err != nil {
			continue
		}

		for _, p := range s.graph.Pools(curIdx, next) {
			if usesPool(legs, p.Address()) {
				continue
			}
			if !p.CanTrade(curMint, nextMint) {
				continue
			}

			amountOut, err := s.quote(p, amount, curMint, nextMint)
			if err != nil {
				if s.metrics != nil {
					s.metrics.QuoteErrors.Inc()
				}
				s.log.Debug("Quote failed, pruning branch",
					zap.Stringer("pool", p.Address()),
					zap.Error(err))
				continue
			}
			if amountOut.Sign() == 0 {
				continue
			}

			leg := &types.SwapLeg{
				Pool:      p.Address(),
				MintIn:    curMint,
				MintOut:   nextMint,
				AmountIn:  math.Clone(amount),
				AmountOut: amountOut,
			}

			if next == startIdx {
				// Closing the cycle terminates this branch whether or
				// not it turned a profit.
				if len(legs)+1 >= 2 {
					s.close(appendLegs(legs, leg), appendTokens(tokens, next), original, amountOut, seen, found)
				}
				continue
			}

			if len(legs)+1 < s.maxHops {
				s.walk(startIdx, next, amountOut, original,
					appendTokens(tokens, next), appendLegs(legs, leg), seen, found)
			}
		}
	}
}

// close records a closed cycle as an opportunity if it is profitable and
// not yet fingerprinted.
func (s *Searcher) close(
	legs []*types.SwapLeg,
	tokens []int,
	original, final *big.Int,
	seen FingerprintSet,
	found *[]*types.Opportunity,
) {
	if s.metrics != nil {
		s.metrics.CyclesClosed.Inc()
	}

	profit := new(big.Int).Sub(final, original)
	if profit.Sign() <= 0 {
		return
	}

	pools := make([]solana.PublicKey, len(legs))
	for i, leg := range legs {
		pools[i] = leg.Pool
	}
	fp := Fingerprint(pools)
	if seen.Contains(fp) {
		return
	}
	seen.Add(fp)

	opp := &types.Opportunity{
		Tokens:      tokens,
		Legs:        legs,
		AmountIn:    math.Clone(original),
		AmountOut:   math.Clone(final),
		Profit:      profit,
		Fingerprint: fp,
	}
	*found = append(*found, opp)

	if s.metrics != nil {
		s.metrics.OpportunitiesFound.Inc()
	}
	s.log.Debug("Opportunity found",
		zap.Int("hops", opp.Hops()),
		zap.String("profit", profit.String()))
}

// quote prices amount through p, memoizing on (pool, direction, amount).
// Valid because quoting is pure for the lifetime of one graph generation.
func (s *Searcher) quote(p *pool.Pool, amount *big.Int, mintIn, mintOut solana.PublicKey) (*big.Int, error) {
	key := p.Address().String() + ":" + mintIn.String() + ":" + amount.String()
	if cached, ok := s.quotes.Get(key); ok {
		if s.metrics != nil {
			s.metrics.QuoteCacheHits.Inc()
		}
		// Hand out a copy; cached entries outlive the legs that carry
		// them and a caller-side mutation must not poison the cache.
		return math.Clone(cached.(*big.Int)), nil
	}

	out, err := p.Quote(amount, mintIn, mintOut)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.QuotesComputed.Inc()
	}
	s.quotes.Add(key, math.Clone(out))
	return out, nil
}

// usesPool reports whether addr already appears in the path; a venue is
// never traded twice within one cycle.
func usesPool(legs []*types.SwapLeg, addr solana.PublicKey) bool {
	for _, leg := range legs {
		if leg.Pool.Equals(addr) {
			return true
		}
	}
	return false
}

func appendTokens(tokens []int, next int) []int {
	out := make([]int, len(tokens), len(tokens)+1)
	copy(out, tokens)
	return append(out, next)
}

func appendLegs(legs []*types.SwapLeg, leg *types.SwapLeg) []*types.SwapLeg {
	out := make([]*types.SwapLeg, len(legs), len(legs)+1)
	copy(out, legs)
	return append(out, leg)
}

// BestOpportunity selects the highest-profit opportunity, breaking ties by
// the shorter path. Returns nil for an empty slice. The input is not
// reordered.
func BestOpportunity(opps []*types.Opportunity) *types.Opportunity {
	if len(opps) == 0 {
		return nil
	}
	sorted := make([]*types.Opportunity, len(opps))
	copy(sorted, opps)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Profit.Cmp(sorted[j].Profit); c != 0 {
			return c > 0
		}
		return sorted[i].Hops() < sorted[j].Hops()
	})
	return sorted[0]
}
