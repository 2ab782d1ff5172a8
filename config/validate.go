package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned for malformed or out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks the config for operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("%w: network must be %q or %q", ErrInvalidConfig, Mainnet, Testnet)
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level must be debug, info, warn or error", ErrInvalidConfig)
	}
	for kind := range cfg.Fees.PerCertificate {
		if !kind.Overridable() {
			return fmt.Errorf("%w: %s fee cannot be set separately", ErrInvalidConfig, kind)
		}
	}
	return nil
}
