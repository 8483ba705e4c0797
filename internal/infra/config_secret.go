package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecretConfig matches the structure of secrets/coingecko.yaml
type SecretConfig struct {
	API struct {
		CoinGecko struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"coingecko"`
	} `yaml:"api"`
}

// LoadSecretConfig loads the provider API key from a separate yaml file.
func LoadSecretConfig(path string) (*SecretConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret config: %w", err)
	}

	var cfg SecretConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse secret config: %w", err)
	}

	return &cfg, nil
}

// ApplySecrets fills the API key from the secret file unless the config
// file or the environment already provided one.
func (c *Config) ApplySecrets(secret *SecretConfig) {
	if secret == nil || c.API.CoinGecko.APIKey != "" {
		return
	}
	c.API.CoinGecko.APIKey = secret.API.CoinGecko.APIKey
}
