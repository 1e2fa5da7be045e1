package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"rpc_endpoint": "http://localhost:8899",
		"pool_dirs": [{"kind": "amm", "path": "pools/amm"}],
		"search": {
			"start_mint": "So11111111111111111111111111111111111111112",
			"notional": 5000000,
			"fee_percentage": "0.001",
			"max_hops": 3,
			"max_halvings": 2
		}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8899", cfg.RPCEndpoint)
	assert.Equal(t, uint64(5_000_000), cfg.Search.Notional)
	assert.Equal(t, 3, cfg.Search.MaxHops)

	fee, err := cfg.Search.Fee()
	require.NoError(t, err)
	assert.Equal(t, "0.001", fee.String())

	// Defaults survive for fields the file does not set.
	assert.Equal(t, 99, cfg.ChunkSize)
	assert.Equal(t, "mainnet-beta", cfg.Cluster)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
rpc_endpoint: http://localhost:8899
pool_dirs:
  - kind: market
    path: pools/markets
chunk_size: 50
search:
  start_mint: EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v
  notional: 1000000
  max_hops: 4
  max_halvings: 5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.ChunkSize)
	require.Len(t, cfg.PoolDirs, 1)
	assert.Equal(t, "market", cfg.PoolDirs[0].Kind)
	assert.Equal(t, uint64(1_000_000), cfg.Search.Notional)
}

func TestLoadConfigValidation(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"rpc_endpoint": "",
		"pool_dirs": []
	}`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc_endpoint")
	assert.Contains(t, err.Error(), "pool directory")
}

func TestLoadConfigBadPoolDirKind(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"rpc_endpoint": "http://localhost:8899",
		"pool_dirs": [{"kind": "orderflow", "path": "pools"}]
	}`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSearchConfigValidate(t *testing.T) {
	s := DefaultConfig().Search
	require.NoError(t, s.Validate())

	s.FeePercentage = "1.5"
	assert.Error(t, s.Validate())

	s = DefaultConfig().Search
	s.FeePercentage = "not-a-number"
	assert.Error(t, s.Validate())

	s = DefaultConfig().Search
	s.MaxHops = 1
	assert.Error(t, s.Validate())

	s = DefaultConfig().Search
	s.Notional = 0
	assert.Error(t, s.Validate())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvRPCEndpoint, "http://rpc.example.com")
	t.Setenv(EnvNotional, "123456")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, "http://rpc.example.com", cfg.RPCEndpoint)
	assert.Equal(t, uint64(123_456), cfg.Search.Notional)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
