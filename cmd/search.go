package cmd

import (
	"math/big"
	"net/http"

	"github.com/soldexlabs/arbiter/chain"
	"github.com/soldexlabs/arbiter/config"
	"github.com/soldexlabs/arbiter/graph"
	"github.com/soldexlabs/arbiter/pool"
	"github.com/soldexlabs/arbiter/refresh"
	"github.com/soldexlabs/arbiter/search"
	"github.com/soldexlabs/arbiter/utils"
	"github.com/soldexlabs/arbiter/utils/metrics"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Refresh venue state and search for arbitrage cycles",
	Run: func(cmd *cobra.Command, args []string) {
		log := utils.GetLogger()
		ctx := cmd.Context()

		if err := config.LoadEnv(); err != nil {
			log.Warn("Failed to load .env file", zap.Error(err))
		}
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatal("Failed to load config", zap.Error(err))
		}

		startMint, err := solana.PublicKeyFromBase58(cfg.Search.StartMint)
		if err != nil {
			log.Fatal("Invalid start mint", zap.String("mint", cfg.Search.StartMint), zap.Error(err))
		}
		fee, err := cfg.Search.Fee()
		if err != nil {
			log.Fatal("Invalid fee percentage", zap.Error(err))
		}

		reg := prometheus.NewRegistry()
		searchMetrics := metrics.NewSearchMetrics("arbiter", reg)
		refreshMetrics := metrics.NewRefreshMetrics("arbiter", reg)
		if cfg.PrometheusEnabled {
			go serveMetrics(cfg.PrometheusEndpoint, reg, log)
		}

		// Load venue definitions
		var pools []*pool.Pool
		for _, dir := range cfg.PoolDirs {
			kind := pool.DirAmm
			if dir.Kind == "market" {
				kind = pool.DirMarket
			}
			loaded, err := pool.LoadDir(kind, dir.Path, log)
			if err != nil {
				log.Fatal("Failed to load pool definitions",
					zap.String("dir", dir.Path), zap.Error(err))
			}
			pools = append(pools, loaded...)
		}
		log.Info("Loaded venue definitions", zap.Int("pools", len(pools)))

		// Refresh on-chain state
		fetcher := chain.NewFetcher(cfg.RPCEndpoint)
		refresher := refresh.NewRefresher(fetcher, log,
			refresh.WithChunkSize(cfg.ChunkSize),
			refresh.WithRateLimit(cfg.RPCRateLimit.RequestsPerSecond, cfg.RPCRateLimit.BurstSize),
			refresh.WithMetrics(refreshMetrics))
		live, err := refresher.RefreshAll(ctx, pools)
		if err != nil {
			log.Fatal("Failed to refresh pools", zap.Error(err))
		}
		if live == 0 {
			log.Fatal("No pool came up live")
		}

		// Build the venue graph
		registry := graph.NewTokenRegistry()
		g := graph.Build(registry, pools, log)
		log.Info("Built venue graph", zap.Int("tokens", registry.Len()))

		// Search
		searcher, err := search.NewSearcher(g, cfg.Search.MaxHops, log, searchMetrics)
		if err != nil {
			log.Fatal("Failed to create searcher", zap.Error(err))
		}
		session, err := search.NewSession(searcher, search.SessionConfig{
			StartMint:     startMint,
			Notional:      new(big.Int).SetUint64(cfg.Search.Notional),
			FeePercentage: fee,
			MinSwapAmount: new(big.Int).SetUint64(cfg.Search.MinSwapAmount),
			MaxHalvings:   cfg.Search.MaxHalvings,
			MinProfit:     new(big.Int).SetUint64(cfg.Search.MinProfit),
		}, log)
		if err != nil {
			log.Fatal("Failed to create session", zap.Error(err))
		}

		opps, err := session.Run(ctx)
		if err != nil {
			log.Fatal("Search failed", zap.Error(err))
		}
		log.Info("Search finished", zap.Int("opportunities", len(opps)))

		best := search.BestOpportunity(opps)
		if best == nil {
			log.Info("No profitable cycle found")
			return
		}
		log.Info("Best opportunity",
			zap.Int("hops", best.Hops()),
			zap.String("amount_in", best.AmountIn.String()),
			zap.String("amount_out", best.AmountOut.String()),
			zap.String("profit", best.Profit.String()))
		for i, leg := range best.Legs {
			log.Info("Leg",
				zap.Int("hop", i),
				zap.Stringer("pool", leg.Pool),
				zap.Stringer("mint_in", leg.MintIn),
				zap.Stringer("mint_out", leg.MintOut),
				zap.String("amount_in", leg.AmountIn.String()),
				zap.String("amount_out", leg.AmountOut.String()))
		}
	},
}

func serveMetrics(endpoint string, reg *prometheus.Registry, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(endpoint, mux); err != nil {
		log.Error("Metrics server stopped", zap.Error(err))
	}
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
