package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvRPCEndpoint = "ARBITER_RPC_ENDPOINT"
	EnvCluster     = "ARBITER_CLUSTER"
	EnvStartMint   = "ARBITER_START_MINT"
	EnvNotional    = "ARBITER_NOTIONAL"
)

// LoadEnv loads environment variables from a .env file if one exists.
func LoadEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}

// ApplyEnv overrides file-sourced settings with environment variables, which
// is how deployment-specific endpoints reach a shared config file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvRPCEndpoint); v != "" {
		c.RPCEndpoint = v
	}
	if v := os.Getenv(EnvCluster); v != "" {
		c.Cluster = v
	}
	if v := os.Getenv(EnvStartMint); v != "" {
		c.Search.StartMint = v
	}
	if v := os.Getenv(EnvNotional); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			c.Search.Notional = n
		}
	}
}

// GetEnvWithDefault gets an environment variable with a default value.
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
