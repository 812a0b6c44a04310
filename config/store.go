package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/ibom-labs/media-auth/mediaauth/capability"
)

// CapabilityStore is the configuration for an optional capability.Store
// enforcing single-use redemption. When absent, capabilities stay replayable
// until expiry.
type CapabilityStore struct {
	Config CapabilityStoreFactory
}

func (c *CapabilityStore) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig rawConfig

	err := value.Decode(&rawConfig)
	if err != nil {
		return err
	}

	var config CapabilityStoreFactory

	switch rawConfig.Type {
	case "", "none":
		return nil
	case "memory":
		config = memoryStore{}
	case "redis":
		var factory redisStore

		err := decode(rawConfig.Config, &factory)
		if err != nil {
			return err
		}

		config = factory
	default:
		return fmt.Errorf("unknown capability store type: %s", rawConfig.Type)
	}

	c.Config = config

	return nil
}

// CapabilityStoreFactory creates a new capability.Store.
type CapabilityStoreFactory interface {
	CreateCapabilityStore() (capability.Store, error)
	Validate() error
}

type memoryStore struct{}

func (c memoryStore) CreateCapabilityStore() (capability.Store, error) {
	return capability.NewMemoryStore(), nil
}

func (c memoryStore) Validate() error {
	return nil
}

type redisStore struct {
	Addr      string `mapstructure:"addr"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

func (c redisStore) CreateCapabilityStore() (capability.Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr: c.Addr,
	})

	return capability.NewRedisStore(client, c.KeyPrefix), nil
}

func (c redisStore) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("capability store: redis: addr is required")
	}

	return nil
}

func decode(input any, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}
