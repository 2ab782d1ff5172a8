package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Klingon-tech/klingnet-tx/pkg/tx"
)

// LoadFile loads configuration values from a .conf file.
// Format: key = value (one per line, # for comments). A missing file
// yields an empty set.
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: %s line %d: expected key = value", ErrInvalidConfig, path, lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrInvalidConfig, key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key. Unknown keys are ignored.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	case "network":
		cfg.Network = NetworkType(value)
	case "datadir":
		cfg.DataDir = value

	// Fees
	case "fee.constant":
		return parseFee(value, &cfg.Fees.Constant)
	case "fee.coefficient":
		return parseFee(value, &cfg.Fees.Coefficient)
	case "fee.certificate":
		return parseFee(value, &cfg.Fees.Certificate)

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		for _, kind := range tx.OverridableCertificates {
			if key == certificateFeeKey(kind) {
				var fee uint64
				if err := parseFee(value, &fee); err != nil {
					return err
				}
				cfg.Fees.SetCertificateFee(kind, fee)
				return nil
			}
		}
	}
	return nil
}

func parseFee(s string, dst *uint64) error {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	content := `# klingnet-tx configuration
#
# Command-line flags override every value set here.

# Network: mainnet or testnet (selects the address prefix)
network = ` + string(network) + `

# ============================================================================
# Fees
# ============================================================================

# constant + coefficient * (inputs + outputs) + certificate fee
fee.constant = 0
fee.coefficient = 0
fee.certificate = 0

# Per-certificate fees (default: fee.certificate)
# fee.pool_registration =
# fee.stake_delegation =
# fee.owner_stake_delegation =
# fee.vote_plan =
# fee.vote_cast =

# ============================================================================
# Logging
# ============================================================================

log.level = warn
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
