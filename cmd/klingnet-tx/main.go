// klingnet-tx finalizes and signs klingnet transactions offline.
//
// A transaction is staged in a JSON file (or piped through stdin/stdout),
// balanced with "finalize", authorized input by input with "make-witness"
// and "add-witness", and locked with "seal".
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-tx/config"
	"github.com/Klingon-tech/klingnet-tx/internal/log"
	"github.com/Klingon-tech/klingnet-tx/pkg/types"
)

// app carries the flags and configuration shared by all commands.
type app struct {
	global config.Flags
	fees   config.FeeFlags
	cfg    *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal("%v", err)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "klingnet-tx",
		Short:             "Offline transaction finalization and witness signing",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	a.global.Register(root.PersistentFlags())

	root.AddCommand(
		a.newStagingCmd(),
		a.finalizeCmd(),
		a.dataForWitnessCmd(),
		a.makeWitnessCmd(),
		a.addWitnessCmd(),
		a.sealCmd(),
		a.infoCmd(),
		a.witnessCmd(),
		a.keygenCmd(),
		a.keyInfoCmd(),
		a.configCmd(),
	)
	return root
}

// setup resolves the configuration for the command being run and applies
// its process-wide parts: logging and the address prefix.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags(), &a.global, &a.fees)
	if err != nil {
		return err
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if cfg.Network == config.Testnet {
		types.SetAddressHRP(types.TestnetHRP)
	} else {
		types.SetAddressHRP(types.MainnetHRP)
	}
	a.cfg = cfg
	log.Logger.Debug().
		Str("command", cmd.Name()).
		Str("network", string(cfg.Network)).
		Msg("Configuration loaded")
	return nil
}

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

// readText reads a whole text argument from path, or stdin for "" and "-".
func readText(path string) (string, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
