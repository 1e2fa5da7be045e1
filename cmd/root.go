package cmd

import (
	"context"

	"github.com/soldexlabs/arbiter/utils"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "arbiter",
	Short: "A CLI arbitrage scanner for Solana liquidity venues",
	Long: `A CLI scanner that loads AMM pools and order-book markets, refreshes
their on-chain state and searches the venue graph for profitable
multi-hop arbitrage cycles.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.arbiter.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func initConfig() {
	utils.InitLogger(debug)
}
