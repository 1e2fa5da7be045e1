package search

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/soldexlabs/arbiter/types"
	"github.com/soldexlabs/arbiter/utils/math"
)

// SessionConfig drives one retry-with-shrinking-notional run.
type SessionConfig struct {
	// StartMint is the base token every cycle starts and ends at.
	StartMint solana.PublicKey
	// Notional is the full amount available for the first iteration.
	Notional *big.Int
	// FeePercentage is the process-wide fee applied to the notional before
	// each search iteration, e.g. 0.0005 for 5 bps.
	FeePercentage decimal.Decimal
	// MinSwapAmount stops the halving once the notional drops below it.
	MinSwapAmount *big.Int
	// MaxHalvings bounds the number of search iterations.
	MaxHalvings int
	// MinProfit is the threshold above which an opportunity ends the
	// halving loop early. Zero accepts any profitable cycle.
	MinProfit *big.Int
}

// Session repeatedly searches at a halving notional until an opportunity
// clears the profit threshold or the notional becomes untradable. The
// fingerprint set persists across iterations, so a cycle found at a larger
// notional is never re-reported at a smaller one.
type Session struct {
	searcher *Searcher
	cfg      SessionConfig
	log      *zap.Logger
	seen     FingerprintSet
}

// NewSession creates a session over an already-built searcher.
func NewSession(searcher *Searcher, cfg SessionConfig, log *zap.Logger) (*Session, error) {
	if cfg.Notional == nil || cfg.Notional.Sign() <= 0 {
		return nil, fmt.Errorf("search: session needs a positive notional")
	}
	if cfg.MaxHalvings < 1 {
		return nil, fmt.Errorf("search: session needs at least one iteration")
	}
	if cfg.MinSwapAmount == nil {
		cfg.MinSwapAmount = big.NewInt(1)
	}
	if cfg.MinProfit == nil {
		cfg.MinProfit = new(big.Int)
	}
	return &Session{
		searcher: searcher,
		cfg:      cfg,
		log:      log,
		seen:     NewFingerprintSet(),
	}, nil
}

// Seen exposes the fingerprint set accumulated so far.
func (s *Session) Seen() FingerprintSet { return s.seen }

// Run executes the halving loop and returns every opportunity found across
// iterations. ctx is only consulted between iterations; an individual
// search always runs to completion.
func (s *Session) Run(ctx context.Context) ([]*types.Opportunity, error) {
	registry := s.searcher.graph.Registry()
	startIdx, ok := registry.Index(s.cfg.StartMint)
	if !ok {
		return nil, fmt.Errorf("search: start mint %s not present in any loaded pool", s.cfg.StartMint)
	}

	var all []*types.Opportunity
	notional := math.Clone(s.cfg.Notional)

	for i := 0; i < s.cfg.MaxHalvings; i++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		fee := s.processFee(notional)
		tradeAmount := new(big.Int).Sub(notional, fee)

		s.log.Debug("Searching",
			zap.Int("iteration", i),
			zap.String("notional", notional.String()),
			zap.String("fee", fee.String()))

		opps, err := s.searcher.Search(startIdx, tradeAmount, notional, s.seen)
		if err != nil {
			return all, err
		}
		all = append(all, opps...)

		if best := BestOpportunity(opps); best != nil && best.Profit.Cmp(s.cfg.MinProfit) > 0 {
			s.log.Info("Opportunity cleared threshold",
				zap.Int("hops", best.Hops()),
				zap.String("profit", best.Profit.String()))
			break
		}

		notional.Rsh(notional, 1)
		if notional.Cmp(s.cfg.MinSwapAmount) < 0 {
			break
		}
	}
	return all, nil
}

// processFee computes the configured percentage of the notional using exact
// decimal arithmetic, truncated to base units.
func (s *Session) processFee(notional *big.Int) *big.Int {
	if s.cfg.FeePercentage.IsZero() {
		return new(big.Int)
	}
	return s.cfg.FeePercentage.
		Mul(decimal.NewFromBigInt(notional, 0)).
		Floor().
		BigInt()
}
