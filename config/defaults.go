package config

// DefaultFeeRate is the default base-unit-per-byte transaction fee rate.
const DefaultFeeRate = 10_000

// DefaultMainnet returns the default node configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Chain: ChainConfig{
			ContestationPeriod: secondsToContestationPeriod(60),
			MaxGraceTime:       secondsToContestationPeriod(200),
			FeeRate:            DefaultFeeRate,
		},
		Wallet: WalletConfig{
			Enabled: false,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default node configuration for testnet.
// Testnet uses a shorter contestation period so end-to-end tests don't
// have to wait out mainnet-scale windows.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Chain.ContestationPeriod = secondsToContestationPeriod(10)
	return cfg
}

// Default returns the default node configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
