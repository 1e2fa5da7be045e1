package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// PoolDir points the loader at a directory of venue definition files of one
// kind.
type PoolDir struct {
	Kind string `json:"kind" yaml:"kind"` // "amm" or "market"
	Path string `json:"path" yaml:"path"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int     `json:"burst_size" yaml:"burst_size"`
}

// SearchConfig holds the session parameters. Amounts are base units of the
// start mint; the fee percentage is a decimal string such as "0.0005".
type SearchConfig struct {
	StartMint     string `json:"start_mint" yaml:"start_mint"`
	Notional      uint64 `json:"notional" yaml:"notional"`
	FeePercentage string `json:"fee_percentage" yaml:"fee_percentage"`
	MinSwapAmount uint64 `json:"min_swap_amount" yaml:"min_swap_amount"`
	MinProfit     uint64 `json:"min_profit" yaml:"min_profit"`
	MaxHops       int    `json:"max_hops" yaml:"max_hops"`
	MaxHalvings   int    `json:"max_halvings" yaml:"max_halvings"`
}

type Config struct {
	// Chain and network settings
	Cluster     string `json:"cluster" yaml:"cluster"`
	RPCEndpoint string `json:"rpc_endpoint" yaml:"rpc_endpoint"`

	// Venue definitions
	PoolDirs []PoolDir `json:"pool_dirs" yaml:"pool_dirs"`

	// Refresh settings
	ChunkSize    int             `json:"chunk_size" yaml:"chunk_size"`
	RPCRateLimit RateLimitConfig `json:"rpc_rate_limit" yaml:"rpc_rate_limit"`

	// Search settings
	Search SearchConfig `json:"search" yaml:"search"`

	// Feature flags
	PrometheusEnabled  bool   `json:"prometheus_enabled" yaml:"prometheus_enabled"`
	PrometheusEndpoint string `json:"prometheus_endpoint" yaml:"prometheus_endpoint"`
}

// USDC is the default start mint.
const USDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func DefaultConfig() *Config {
	return &Config{
		Cluster:     "mainnet-beta",
		RPCEndpoint: "https://api.mainnet-beta.solana.com",
		ChunkSize:   99,
		RPCRateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			BurstSize:         20,
		},
		Search: SearchConfig{
			StartMint:     USDC,
			Notional:      1_000_000_000, // 1000 USDC
			FeePercentage: "0.0005",
			MinSwapAmount: 1_000_000, // 1 USDC
			MinProfit:     0,
			MaxHops:       4,
			MaxHalvings:   5,
		},
		PrometheusEnabled:  false,
		PrometheusEndpoint: ":9090",
	}
}

func (c *Config) ValidateConfig() error {
	var errors []string

	if c.RPCEndpoint == "" {
		errors = append(errors, "rpc_endpoint must be specified")
	}
	if len(c.PoolDirs) == 0 {
		errors = append(errors, "at least one pool directory must be specified")
	}
	for _, dir := range c.PoolDirs {
		if dir.Kind != "amm" && dir.Kind != "market" {
			errors = append(errors, fmt.Sprintf("unknown pool directory kind %q", dir.Kind))
		}
		if dir.Path == "" {
			errors = append(errors, "pool directory without a path")
		}
	}
	if c.ChunkSize <= 0 {
		errors = append(errors, "chunk_size must be positive")
	}
	if c.RPCRateLimit.RequestsPerSecond <= 0 {
		errors = append(errors, "rpc_rate_limit.requests_per_second must be positive")
	}
	if c.RPCRateLimit.BurstSize <= 0 {
		errors = append(errors, "rpc_rate_limit.burst_size must be positive")
	}

	if err := c.Search.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("search config error: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}

func (s *SearchConfig) Validate() error {
	if s.StartMint == "" {
		return fmt.Errorf("start_mint must be specified")
	}
	if s.Notional == 0 {
		return fmt.Errorf("notional must be positive")
	}
	fee, err := s.Fee()
	if err != nil {
		return fmt.Errorf("fee_percentage: %w", err)
	}
	if fee.IsNegative() || fee.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("fee_percentage must be in [0, 1)")
	}
	if s.MaxHops < 2 {
		return fmt.Errorf("max_hops must be at least 2")
	}
	if s.MaxHalvings <= 0 {
		return fmt.Errorf("max_halvings must be positive")
	}
	return nil
}

// Fee parses the configured fee percentage. An empty string means no fee.
func (s *SearchConfig) Fee() (decimal.Decimal, error) {
	if s.FeePercentage == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s.FeePercentage)
}

// LoadConfig reads a config file, JSON or YAML by extension, applies
// environment overrides and validates the result. Missing fields keep their
// defaults.
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".arbiter.json")
	}

	data, err := os.ReadFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(cfgFile)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	config.ApplyEnv()

	if err := config.ValidateConfig(); err != nil {
		return nil, err
	}
	return config, nil
}

func SaveConfig(cfg *Config, cfgFile string) error {
	file, err := os.Create(cfgFile)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "    ")
	return encoder.Encode(cfg)
}
