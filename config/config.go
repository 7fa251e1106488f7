// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Chain parameters: immutable per-Head protocol values that every
//     component on a given Head must agree on (spec.md §3 "ChainContext")
//   - Node settings: runtime configuration, can vary per node
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hydra-onchain/chainwatch/pkg/types"
)

// NetworkType identifies which network a node talks to.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// =============================================================================
// Node Configuration (runtime, per-node settings)
// =============================================================================

// Config holds node-specific runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Chain protocol parameters (spec.md §3 "ChainContext")
	Chain ChainConfig

	// Wallet
	Wallet WalletConfig

	// Logging
	Log LogConfig
}

// ChainConfig holds the immutable per-Head protocol parameters every
// component (TimeHandle, Constructors, ChainSyncHandler, Poster) must
// agree on for the lifetime of a Head.
type ChainConfig struct {
	// ContestationPeriod is the Head's own contestation period, chosen at
	// Init time and carried in the Head's datum thereafter.
	ContestationPeriod types.ContestationPeriod `conf:"chain.contestation_period"`

	// MaxGraceTime bounds how far a requested contestation (or upper
	// validity bound) may exceed the current time before a constructor
	// rejects it (spec.md §3, default 200s).
	MaxGraceTime types.ContestationPeriod `conf:"chain.max_grace_time"`

	// FeeRate is the base-unit-per-byte rate the wallet uses to price
	// transactions (spec.md §4.B, §4.G).
	FeeRate uint64 `conf:"chain.fee_rate"`
}

// WalletConfig holds the internal (fuel) wallet settings.
type WalletConfig struct {
	Enabled  bool   `conf:"wallet.enabled"`
	KeyFile  string `conf:"wallet.keyfile"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.chainwatch
//	macOS:   ~/Library/Application Support/Chainwatch
//	Windows: %APPDATA%\Chainwatch
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chainwatch"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Chainwatch")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Chainwatch")
		}
		return filepath.Join(home, "AppData", "Roaming", "Chainwatch")
	default:
		return filepath.Join(home, ".chainwatch")
	}
}

// ChainDataDir returns the network-specific data directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// LocalStateDir returns the LocalChainState persistence directory
// (spec.md §4.E).
func (c *Config) LocalStateDir() string {
	return filepath.Join(c.ChainDataDir(), "localstate")
}

// EventQueueDir returns the event queue persistence directory
// (spec.md §6).
func (c *Config) EventQueueDir() string {
	return filepath.Join(c.ChainDataDir(), "events")
}

// WalletDir returns the fuel wallet storage directory.
func (c *Config) WalletDir() string {
	return filepath.Join(c.ChainDataDir(), "wallet")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "chainwatch.conf")
}

// secondsToContestationPeriod is a small helper for defaults expressed
// in whole seconds.
func secondsToContestationPeriod(s int64) types.ContestationPeriod {
	return types.ContestationPeriod(time.Duration(s) * time.Second)
}
