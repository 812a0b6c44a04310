// Package config collects the service configuration from an optional YAML
// file and environment variables. Environment values win over file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config collects all configuration options.
type Config struct {
	Server          Server          `yaml:"server"`
	Chain           Chain           `yaml:"chain"`
	AssetIndex      AssetIndex      `yaml:"assetIndex"`
	Media           Media           `yaml:"media"`
	CapabilityStore CapabilityStore `yaml:"capabilityStore"`
}

// Server configures the HTTP listener.
type Server struct {
	Address string `yaml:"address"`
}

// Chain configures the Solana RPC connection.
type Chain struct {
	RPCURL     string `yaml:"rpcUrl"`
	Commitment string `yaml:"commitment"`
}

// AssetIndex configures the Helius DAS client used by the collection
// fallback. An empty API key disables the fallback.
type AssetIndex struct {
	HeliusAPIKey string `yaml:"heliusApiKey"`
	Devnet       bool   `yaml:"devnet"`
}

// Media configures the protocol windows and the capability MAC secret.
// TTLs are in milliseconds, matching the wire format of intent timestamps
// and capability expiries.
type Media struct {
	SignTTLMs   int64  `yaml:"signTtlMs"`
	StreamTTLMs int64  `yaml:"streamTtlMs"`
	Secret      string `yaml:"secret"`
}

// SignTTL returns the intent freshness window.
func (c Media) SignTTL() time.Duration {
	return time.Duration(c.SignTTLMs) * time.Millisecond
}

// StreamTTL returns the capability lifetime.
func (c Media) StreamTTL() time.Duration {
	return time.Duration(c.StreamTTLMs) * time.Millisecond
}

// Load reads configuration from path (if non-empty) and applies environment
// overrides and defaults.
func Load(path string) (Config, error) {
	var config Config

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(raw, &config); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	config.applyEnv()
	config.applyDefaults()

	return config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SOLANA_RPC_URL"); v != "" {
		c.Chain.RPCURL = v
	}

	if v := os.Getenv("SOLANA_COMMITMENT"); v != "" {
		c.Chain.Commitment = v
	}

	if v := os.Getenv("HELIUS_API_KEY"); v != "" {
		c.AssetIndex.HeliusAPIKey = v
	}

	if os.Getenv("HELIUS_DEVNET") == "1" {
		c.AssetIndex.Devnet = true
	}

	if v := os.Getenv("MEDIA_SIGN_TTL_MS"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Media.SignTTLMs = ms
		}
	}

	if v := os.Getenv("MEDIA_STREAM_TTL_MS"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Media.StreamTTLMs = ms
		}
	}

	if v := os.Getenv("MEDIA_SIGN_SECRET"); v != "" {
		c.Media.Secret = strings.TrimSpace(v)
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost:8080"
	}

	if c.Chain.RPCURL == "" {
		c.Chain.RPCURL = "https://api.devnet.solana.com"
	}

	if c.Media.SignTTLMs == 0 {
		c.Media.SignTTLMs = 120_000
	}

	if c.Media.StreamTTLMs == 0 {
		c.Media.StreamTTLMs = 60_000
	}

	// Known-weak fallback so the demo runs out of the box.
	// Set MEDIA_SIGN_SECRET in any real deployment.
	if c.Media.Secret == "" {
		c.Media.Secret = "dev-secret"
	}

	if strings.Contains(c.Chain.RPCURL, "devnet") {
		c.AssetIndex.Devnet = true
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Chain.RPCURL == "" {
		return fmt.Errorf("chain: rpcUrl is required")
	}

	if c.Media.Secret == "" {
		return fmt.Errorf("media: secret is required")
	}

	if c.Media.SignTTLMs <= 0 {
		return fmt.Errorf("media: signTtlMs must be positive")
	}

	if c.Media.StreamTTLMs <= 0 {
		return fmt.Errorf("media: streamTtlMs must be positive")
	}

	if c.CapabilityStore.Config != nil {
		if err := c.CapabilityStore.Config.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// rawConfig is a general struct to be used by other config structs to unmarshal yaml config first.
type rawConfig struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config"`
}
