package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Klingon-tech/klingnet-tx/pkg/tx"
)

// Flags holds the global command-line flags.
type Flags struct {
	Network string
	Testnet bool
	DataDir string
	Config  string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool
}

// Register adds the global flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	fs.BoolVar(&f.Testnet, "testnet", false, "Use testnet (shorthand for --network=testnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVarP(&f.Config, "config", "c", "", "Config file path")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")
}

// FeeFlags holds the fee schedule flags of commands that balance.
type FeeFlags struct {
	Constant       uint64
	Coefficient    uint64
	Certificate    uint64
	PerCertificate map[tx.CertificateKind]*uint64
}

// Register adds the fee flags to fs. The same FeeFlags may be registered
// on several commands; only the executed one is parsed.
func (f *FeeFlags) Register(fs *pflag.FlagSet) {
	fs.Uint64Var(&f.Constant, "fee-constant", 0, "Fee per transaction")
	fs.Uint64Var(&f.Coefficient, "fee-coefficient", 0, "Fee per every input and output")
	fs.Uint64Var(&f.Certificate, "fee-certificate", 0, "Fee per certificate")

	if f.PerCertificate == nil {
		f.PerCertificate = make(map[tx.CertificateKind]*uint64, len(tx.OverridableCertificates))
	}
	for _, kind := range tx.OverridableCertificates {
		v, ok := f.PerCertificate[kind]
		if !ok {
			v = new(uint64)
			f.PerCertificate[kind] = v
		}
		usage := fmt.Sprintf("Fee per %s certificate (default: fee-certificate)", strings.ReplaceAll(kind.String(), "-", " "))
		fs.Uint64Var(v, certificateFeeFlag(kind), 0, usage)
	}
}

// ApplyFlags applies the flags that were explicitly set on fs to cfg.
// Either of global and fees may be nil.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet, global *Flags, fees *FeeFlags) {
	if global != nil {
		if fs.Changed("network") {
			cfg.Network = NetworkType(strings.ToLower(global.Network))
		}
		if global.Testnet {
			cfg.Network = Testnet
		}
		if fs.Changed("datadir") {
			cfg.DataDir = global.DataDir
		}
		if fs.Changed("log-level") {
			cfg.Log.Level = global.LogLevel
		}
		if fs.Changed("log-file") {
			cfg.Log.File = global.LogFile
		}
		if fs.Changed("log-json") {
			cfg.Log.JSON = global.LogJSON
		}
	}

	if fees != nil {
		if fs.Changed("fee-constant") {
			cfg.Fees.Constant = fees.Constant
		}
		if fs.Changed("fee-coefficient") {
			cfg.Fees.Coefficient = fees.Coefficient
		}
		if fs.Changed("fee-certificate") {
			cfg.Fees.Certificate = fees.Certificate
		}
		for kind, v := range fees.PerCertificate {
			if fs.Changed(certificateFeeFlag(kind)) {
				cfg.Fees.SetCertificateFee(kind, *v)
			}
		}
	}
}

// Load builds the effective configuration with the following precedence:
// 1. Default values for the selected network
// 2. Config file (--config, or klingnet-tx.conf in the data directory)
// 3. Command-line flags set on fs
//
// A missing config file is not an error.
func Load(fs *pflag.FlagSet, global *Flags, fees *FeeFlags) (*Config, error) {
	network := Mainnet
	if global.Testnet || strings.ToLower(global.Network) == string(Testnet) {
		network = Testnet
	}
	cfg := Default(network)
	if global.DataDir != "" {
		cfg.DataDir = global.DataDir
	}

	configPath := global.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyFlags(cfg, fs, global, fees)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
