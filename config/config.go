// Package config handles klingnet-tx configuration.
//
// Settings are layered, later layers winning:
//   - Defaults: built in (Default)
//   - Conf file: key = value lines (LoadFile, ApplyFileConfig)
//   - Flags: command-line overrides, applied only when set (ApplyFlags)
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Klingon-tech/klingnet-tx/pkg/tx"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds the runtime configuration of klingnet-tx.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Fees used when finalizing a staged transaction.
	Fees FeeConfig

	// Logging
	Log LogConfig
}

// FeeConfig holds the linear fee schedule.
type FeeConfig struct {
	Constant    uint64 `conf:"fee.constant"`
	Coefficient uint64 `conf:"fee.coefficient"`
	Certificate uint64 `conf:"fee.certificate"`
	// PerCertificate prices individual certificate kinds. Absent or zero
	// entries fall back to Certificate.
	PerCertificate map[tx.CertificateKind]uint64
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// LinearFee returns the immutable fee schedule described by the config.
func (f *FeeConfig) LinearFee() *tx.LinearFee {
	return tx.NewLinearFee(f.Constant, f.Coefficient, f.Certificate, f.PerCertificate)
}

// SetCertificateFee sets the override for one certificate kind.
func (f *FeeConfig) SetCertificateFee(kind tx.CertificateKind, fee uint64) {
	if f.PerCertificate == nil {
		f.PerCertificate = make(map[tx.CertificateKind]uint64)
	}
	f.PerCertificate[kind] = fee
}

// certificateFeeKey returns the conf key of a per-certificate override,
// e.g. fee.owner_stake_delegation.
func certificateFeeKey(kind tx.CertificateKind) string {
	return "fee." + strings.ReplaceAll(kind.String(), "-", "_")
}

// certificateFeeFlag returns the flag name of a per-certificate override,
// e.g. --fee-owner-stake-delegation.
func certificateFeeFlag(kind tx.CertificateKind) string {
	return "fee-" + kind.String()
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingnet
//	macOS:   ~/Library/Application Support/Klingnet
//	Windows: %APPDATA%\Klingnet
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingnet"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Klingnet")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Klingnet")
		}
		return filepath.Join(home, "AppData", "Roaming", "Klingnet")
	default:
		return filepath.Join(home, ".klingnet")
	}
}

// ConfigFile returns the default conf file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "klingnet-tx.conf")
}
