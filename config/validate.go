package config

import (
	"fmt"
)

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}

	if cfg.Chain.ContestationPeriod < 0 {
		return fmt.Errorf("chain.contestation_period must not be negative")
	}
	if cfg.Chain.MaxGraceTime <= 0 {
		return fmt.Errorf("chain.max_grace_time must be positive")
	}
	if !cfg.Chain.ContestationPeriod.Valid(cfg.Chain.MaxGraceTime) {
		return fmt.Errorf("chain.contestation_period (%ds) exceeds chain.max_grace_time (%ds)",
			cfg.Chain.ContestationPeriod.Seconds(), cfg.Chain.MaxGraceTime.Seconds())
	}
	if cfg.Chain.FeeRate == 0 {
		return fmt.Errorf("chain.fee_rate must be positive")
	}

	if cfg.Wallet.Enabled && cfg.Wallet.KeyFile == "" {
		return fmt.Errorf("wallet.keyfile is required when wallet.enabled is true")
	}

	return nil
}
