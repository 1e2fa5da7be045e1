// Package refresh orchestrates wholesale state refreshes: it gathers every
// pool's declared accounts, fetches them in paced batches through a Fetcher,
// and hands each pool its slice. Network concerns stay behind the Fetcher
// interface; the core never blocks on I/O outside this package.
package refresh

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/soldexlabs/arbiter/pool"
	"github.com/soldexlabs/arbiter/types"
	"github.com/soldexlabs/arbiter/utils/metrics"
)

// DefaultChunkSize is the largest batch a single multiple-accounts request
// can carry on public RPC endpoints.
const DefaultChunkSize = 99

// Fetcher retrieves raw account payloads. The returned slice matches the
// request in length and order; absent accounts come back nil.
type Fetcher interface {
	FetchAccounts(ctx context.Context, keys []solana.PublicKey) ([]*types.Account, error)
}

// Refresher fetches account batches and applies them to pools.
type Refresher struct {
	fetcher   Fetcher
	limiter   *rate.Limiter
	chunkSize int
	log       *zap.Logger
	metrics   *metrics.RefreshMetrics
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithChunkSize overrides the batch size.
func WithChunkSize(n int) Option {
	return func(r *Refresher) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

// WithRateLimit paces fetches at rps requests per second with the given
// burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(r *Refresher) {
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMetrics attaches refresh instrumentation.
func WithMetrics(m *metrics.RefreshMetrics) Option {
	return func(r *Refresher) {
		r.metrics = m
	}
}

// NewRefresher creates a refresher over a fetcher.
func NewRefresher(fetcher Fetcher, log *zap.Logger, opts ...Option) *Refresher {
	r := &Refresher{
		fetcher:   fetcher,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		chunkSize: DefaultChunkSize,
		log:       log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RefreshAll refreshes every pool from freshly fetched account data and
// returns the number of pools that are live afterwards. A pool whose
// accounts are absent or undecodable is left not-live and logged; only a
// failed fetch aborts the batch, since it leaves every pool stale.
func (r *Refresher) RefreshAll(ctx context.Context, pools []*pool.Pool) (int, error) {
	var keys []solana.PublicKey
	counts := make([]int, len(pools))
	for i, p := range pools {
		accounts := p.UpdateAccounts()
		counts[i] = len(accounts)
		keys = append(keys, accounts...)
	}

	fetched, err := r.fetchChunked(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("refresh: fetching %d accounts: %w", len(keys), err)
	}

	live := 0
	offset := 0
	for i, p := range pools {
		batch := fetched[offset : offset+counts[i]]
		offset += counts[i]

		if err := p.Refresh(batch); err != nil {
			if r.metrics != nil {
				r.metrics.PoolFailures.Inc()
			}
			r.log.Warn("Pool refresh failed",
				zap.Stringer("pool", p.Address()),
				zap.String("kind", p.Kind().String()),
				zap.Error(err))
			continue
		}
		live++
	}

	if r.metrics != nil {
		r.metrics.PoolsLive.Set(float64(live))
	}
	r.log.Info("Refresh complete",
		zap.Int("pools", len(pools)),
		zap.Int("live", live),
		zap.Int("accounts", len(keys)))
	return live, nil
}

func (r *Refresher) fetchChunked(ctx context.Context, keys []solana.PublicKey) ([]*types.Account, error) {
	out := make([]*types.Account, 0, len(keys))
	for start := 0; start < len(keys); start += r.chunkSize {
		end := start + r.chunkSize
		if end > len(keys) {
			end = len(keys)
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		batch, err := r.fetcher.FetchAccounts(ctx, keys[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("fetcher returned %d accounts for %d keys", len(batch), end-start)
		}

		if r.metrics != nil {
			r.metrics.BatchesFetched.Inc()
			r.metrics.AccountsLoaded.Add(float64(len(batch)))
		}
		out = append(out, batch...)
	}
	return out, nil
}
