package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/Klingon-tech/klingnet-tx/pkg/tx"
)

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "klingnet-tx.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newFlagSet(global *Flags, fees *FeeFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	global.Register(fs)
	fees.Register(fs)
	return fs
}

func TestLoadFile(t *testing.T) {
	path := writeConf(t, `
# comment
network = testnet
fee.constant = 10
log.file = "tx.log"
`)
	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if values["network"] != "testnet" || values["fee.constant"] != "10" {
		t.Errorf("values = %v", values)
	}
	if values["log.file"] != "tx.log" {
		t.Errorf("quotes not stripped: %q", values["log.file"])
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("values = %v", values)
	}
}

func TestLoadFile_BadLine(t *testing.T) {
	path := writeConf(t, "fee.constant 10\n")
	if _, err := LoadFile(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestApplyFileConfig_Fees(t *testing.T) {
	cfg := DefaultMainnet()
	err := ApplyFileConfig(cfg, map[string]string{
		"fee.constant":               "2",
		"fee.coefficient":            "1",
		"fee.certificate":            "100",
		"fee.owner_stake_delegation": "7",
		"fee.vote_cast":              "0",
		"unknown.key":                "ignored",
	})
	if err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	fees := cfg.Fees.LinearFee()
	if fees.Constant() != 2 || fees.Coefficient() != 1 {
		t.Errorf("constant/coefficient = %d/%d", fees.Constant(), fees.Coefficient())
	}
	if got := fees.CertificateFee(tx.CertOwnerStakeDelegation); got != 7 {
		t.Errorf("owner stake delegation fee = %d, want 7", got)
	}
	// A zero override falls back to the default certificate fee.
	if got := fees.CertificateFee(tx.CertVoteCast); got != 100 {
		t.Errorf("vote cast fee = %d, want 100", got)
	}
}

func TestApplyFileConfig_BadNumber(t *testing.T) {
	cfg := DefaultMainnet()
	err := ApplyFileConfig(cfg, map[string]string{"fee.coefficient": "-1"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestApplyFlags_OnlyChanged(t *testing.T) {
	var global Flags
	var fees FeeFlags
	fs := newFlagSet(&global, &fees)
	if err := fs.Parse([]string{"--fee-coefficient=3", "--fee-vote-plan=50", "--log-level=debug"}); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultMainnet()
	cfg.Fees.Constant = 9
	cfg.Fees.Coefficient = 1
	ApplyFlags(cfg, fs, &global, &fees)

	if cfg.Fees.Constant != 9 {
		t.Errorf("unset flag overrode constant: %d", cfg.Fees.Constant)
	}
	if cfg.Fees.Coefficient != 3 {
		t.Errorf("coefficient = %d, want 3", cfg.Fees.Coefficient)
	}
	if cfg.Fees.PerCertificate[tx.CertVotePlan] != 50 {
		t.Errorf("vote plan fee = %d, want 50", cfg.Fees.PerCertificate[tx.CertVotePlan])
	}
	if _, ok := cfg.Fees.PerCertificate[tx.CertStakeDelegation]; ok {
		t.Error("unset override flag recorded")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoad_FlagsWinOverFile(t *testing.T) {
	path := writeConf(t, "fee.constant = 5\nfee.coefficient = 2\nnetwork = testnet\n")

	var global Flags
	var fees FeeFlags
	fs := newFlagSet(&global, &fees)
	if err := fs.Parse([]string{"--config", path, "--fee-constant", "1"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(fs, &global, &fees)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fees.Constant != 1 {
		t.Errorf("constant = %d, want flag value 1", cfg.Fees.Constant)
	}
	if cfg.Fees.Coefficient != 2 {
		t.Errorf("coefficient = %d, want file value 2", cfg.Fees.Coefficient)
	}
	if cfg.Network != Testnet {
		t.Errorf("network = %q, want testnet", cfg.Network)
	}
}

func TestLoad_DefaultConfigInDataDir(t *testing.T) {
	dir := t.TempDir()
	if err := WriteDefaultConfig(filepath.Join(dir, "klingnet-tx.conf"), Testnet); err != nil {
		t.Fatal(err)
	}

	var global Flags
	var fees FeeFlags
	fs := newFlagSet(&global, &fees)
	if err := fs.Parse([]string{"--datadir", dir}); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(fs, &global, &fees)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Network != Testnet || cfg.Log.Level != "warn" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bad network", func(c *Config) { c.Network = "devnet" }, false},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"non-overridable certificate", func(c *Config) { c.Fees.SetCertificateFee(tx.CertPoolRetirement, 1) }, false},
		{"overridable certificate", func(c *Config) { c.Fees.SetCertificateFee(tx.CertVoteCast, 1) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMainnet()
			tt.modify(cfg)
			err := Validate(cfg)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
