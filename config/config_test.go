package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "localhost:8080", config.Server.Address)
	assert.Equal(t, "https://api.devnet.solana.com", config.Chain.RPCURL)
	assert.Equal(t, 120*time.Second, config.Media.SignTTL())
	assert.Equal(t, 60*time.Second, config.Media.StreamTTL())
	assert.Equal(t, "dev-secret", config.Media.Secret)

	// Devnet RPC URL implies the devnet asset index.
	assert.True(t, config.AssetIndex.Devnet)

	assert.Nil(t, config.CapabilityStore.Config)
}

func TestLoad_File(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: ":9090"
chain:
  rpcUrl: https://rpc.example.com
  commitment: finalized
assetIndex:
  heliusApiKey: key-123
media:
  signTtlMs: 30000
  streamTtlMs: 15000
  secret: strong-secret
capabilityStore:
  type: memory
`)

	config, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, ":9090", config.Server.Address)
	assert.Equal(t, "https://rpc.example.com", config.Chain.RPCURL)
	assert.Equal(t, "finalized", config.Chain.Commitment)
	assert.Equal(t, "key-123", config.AssetIndex.HeliusAPIKey)
	assert.False(t, config.AssetIndex.Devnet)
	assert.Equal(t, 30*time.Second, config.Media.SignTTL())
	assert.Equal(t, 15*time.Second, config.Media.StreamTTL())
	assert.Equal(t, "strong-secret", config.Media.Secret)

	require.NotNil(t, config.CapabilityStore.Config)

	store, err := config.CapabilityStore.Config.CreateCapabilityStore()
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
chain:
  rpcUrl: https://rpc.example.com
media:
  secret: file-secret
`)

	t.Setenv("SOLANA_RPC_URL", "https://devnet.rpc.example.com")
	t.Setenv("MEDIA_SIGN_SECRET", "env-secret")
	t.Setenv("MEDIA_SIGN_TTL_MS", "45000")
	t.Setenv("MEDIA_STREAM_TTL_MS", "5000")
	t.Setenv("HELIUS_API_KEY", "env-key")
	t.Setenv("HELIUS_DEVNET", "1")

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://devnet.rpc.example.com", config.Chain.RPCURL)
	assert.Equal(t, "env-secret", config.Media.Secret)
	assert.Equal(t, 45*time.Second, config.Media.SignTTL())
	assert.Equal(t, 5*time.Second, config.Media.StreamTTL())
	assert.Equal(t, "env-key", config.AssetIndex.HeliusAPIKey)
	assert.True(t, config.AssetIndex.Devnet)
}

func TestLoad_RedisStore(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		path := writeConfigFile(t, `
capabilityStore:
  type: redis
  config:
    addr: localhost:6379
    keyPrefix: "gate:"
`)

		config, err := Load(path)
		require.NoError(t, err)
		require.NoError(t, config.Validate())

		require.NotNil(t, config.CapabilityStore.Config)

		store, err := config.CapabilityStore.Config.CreateCapabilityStore()
		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("MissingAddr", func(t *testing.T) {
		path := writeConfigFile(t, `
capabilityStore:
  type: redis
`)

		config, err := Load(path)
		require.NoError(t, err)

		assert.Error(t, config.Validate())
	})
}

func TestLoad_UnknownStoreType(t *testing.T) {
	path := writeConfigFile(t, `
capabilityStore:
  type: dynamodb
`)

	_, err := Load(path)

	assert.Error(t, err)
}
