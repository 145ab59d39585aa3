// Copyright 2025 Helvetic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"os"
	"strings"
)

// Config holds configuration for the embedding provider.
type Config struct {
	// Host is the base URL for the embedding service API.
	// Example: "https://api.openai.com/v1", or "http://localhost:11434/v1"
	// for a local OpenAI-compatible server.
	Host string

	// Model is the embedding model identifier.
	// Example: "text-embedding-3-small", "embeddinggemma"
	Model string

	// APIKey authenticates against the embedding service. Local
	// OpenAI-compatible servers that skip authentication still need a
	// placeholder value such as "none".
	APIKey string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the embedding service credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// DefaultConfig targets the OpenAI API with text-embedding-3-small and takes
// the credential from the OPENAI_API_KEY environment variable.
func DefaultConfig() *Config {
	return &Config{
		Host:   "https://api.openai.com/v1",
		Model:  "text-embedding-3-small",
		APIKey: os.Getenv("OPENAI_API_KEY"),
	}
}

// NewConfig creates a Config with defaults and applies the provided options.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithModel("embeddinggemma"),
//	    ai.WithAPIKey("none"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts the configuration in canonical form: the host gets a /v1
// suffix if missing, which OpenAI-compatible APIs require.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
}

// Validate normalizes and then checks that the configuration is complete.
// A missing credential is a configuration error, not something to retry.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return ErrMissingHost
	}
	if c.Model == "" {
		return ErrMissingModel
	}
	if c.APIKey == "" {
		return ErrMissingCredential
	}
	return nil
}
