// Copyright 2025 Tom Barlow
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

// Package config defines the launch configuration consumed by the launcher.
//
// The configuration is immutable input: it describes where chain state lives,
// which network to join, how to invoke the node and wallet binaries, and
// whether the launcher should own process signal handling. It is read once at
// startup and never mutated by the launcher.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config is the complete launch configuration.
type Config struct {
	// StateDir is the directory holding chain state and wallet databases.
	// Environment: LAUNCHPAD_STATE_DIR
	StateDir string `yaml:"state_dir"`

	// Network is the network identity to join (e.g. "mainnet", "testnet").
	// Environment: LAUNCHPAD_NETWORK
	Network string `yaml:"network"`

	// Node configures the blockchain node process.
	Node NodeConfig `yaml:"node"`

	// Wallet configures the wallet backend process.
	Wallet WalletConfig `yaml:"wallet"`

	// InstallSignalHandlers controls whether the launcher installs handlers
	// for SIGINT/SIGTERM/SIGHUP that shut both services down. Callers that
	// embed the launcher and own signal handling themselves set this false.
	// Default: true
	InstallSignalHandlers bool `yaml:"install_signal_handlers"`

	// StopTimeout is the default graceful shutdown window per service.
	// Default: 60s
	StopTimeout time.Duration `yaml:"stop_timeout,omitempty"`
}

// NodeConfig configures the blockchain node process.
type NodeConfig struct {
	// Binary is the node executable. Resolved via PATH when not absolute.
	Binary string `yaml:"binary"`

	// ConfigPath is the node's own configuration file, passed through verbatim.
	ConfigPath string `yaml:"config_path,omitempty"`

	// ExtraArgs are appended to the generated command line.
	ExtraArgs []string `yaml:"extra_args,omitempty"`

	// LogFile receives the node's stdout and stderr. Empty discards output.
	LogFile string `yaml:"log_file,omitempty"`
}

// WalletConfig configures the wallet backend process.
type WalletConfig struct {
	// Binary is the wallet backend executable.
	Binary string `yaml:"binary"`

	// Host is the interface the wallet API listens on.
	// Default: 127.0.0.1
	Host string `yaml:"host,omitempty"`

	// Port is the wallet API port. Zero means the launcher allocates a free
	// port before starting the wallet.
	Port int `yaml:"port,omitempty"`

	// ExtraArgs are appended to the generated command line.
	ExtraArgs []string `yaml:"extra_args,omitempty"`

	// LogFile receives the wallet's stdout and stderr. Empty discards output.
	LogFile string `yaml:"log_file,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Network:               "mainnet",
		InstallSignalHandlers: true,
		StopTimeout:           60 * time.Second,
		Wallet: WalletConfig{
			Host: "127.0.0.1",
		},
	}
}

// Load reads a YAML configuration file, applies defaults and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LAUNCHPAD_STATE_DIR"); v != "" {
		c.StateDir = v
	}
	if v := os.Getenv("LAUNCHPAD_NETWORK"); v != "" {
		c.Network = v
	}
}

// applyDefaults fills fields the file left zero-valued.
func (c *Config) applyDefaults() {
	if c.Wallet.Host == "" {
		c.Wallet.Host = "127.0.0.1"
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = 60 * time.Second
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var problems []string

	if c.StateDir == "" {
		problems = append(problems, "state_dir must be set")
	}
	if c.Network == "" {
		problems = append(problems, "network must be set")
	}
	if c.Node.Binary == "" {
		problems = append(problems, "node.binary must be set")
	}
	if c.Wallet.Binary == "" {
		problems = append(problems, "wallet.binary must be set")
	}
	if c.Wallet.Port < 0 || c.Wallet.Port > 65535 {
		problems = append(problems, fmt.Sprintf("wallet.port %d out of range", c.Wallet.Port))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, problems)
	}
	return nil
}
