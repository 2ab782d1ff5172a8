package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-tx/internal/log"
	"github.com/Klingon-tech/klingnet-tx/internal/output"
	"github.com/Klingon-tech/klingnet-tx/internal/staging"
	"github.com/Klingon-tech/klingnet-tx/pkg/tx"
	"github.com/Klingon-tech/klingnet-tx/pkg/types"
)

// stagingFlag registers --staging on cmd. An empty value means the staged
// transaction is read from stdin and written to stdout.
func stagingFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVar(path, "staging", "", "Staging file (default: stdin, rewritten to stdout)")
}

func (a *app) newStagingCmd() *cobra.Command {
	var flags struct {
		Staging string
		From    string
	}
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Stage a transaction, empty or imported from a JSON draft",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			draft := &tx.Transaction{}
			if flags.From != "" {
				data, err := os.ReadFile(flags.From)
				if err != nil {
					return fmt.Errorf("read draft: %w", err)
				}
				if err := json.Unmarshal(data, draft); err != nil {
					return fmt.Errorf("parse draft %s: %w", flags.From, err)
				}
			}
			if err := staging.New(draft).Store(flags.Staging); err != nil {
				return err
			}
			log.Tx.Info().
				Int("inputs", len(draft.Inputs)).
				Int("outputs", len(draft.Outputs)).
				Str("id", draft.SignDataHash().String()).
				Msg("Transaction staged")
			return nil
		},
	}
	stagingFlag(cmd, &flags.Staging)
	cmd.Flags().StringVar(&flags.From, "from", "", "JSON transaction draft to import")
	return cmd
}

func (a *app) finalizeCmd() *cobra.Command {
	var stagingPath string
	cmd := &cobra.Command{
		Use:   "finalize [CHANGE_ADDRESS]",
		Short: "Balance the staged transaction, sending any surplus to CHANGE_ADDRESS",
		Long: `Balance the staged transaction against the fee schedule.

Without CHANGE_ADDRESS the surplus of inputs over outputs is left to the fee.
With it, a change output is appended when the surplus can pay for it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			policy := tx.Discard()
			if len(args) == 1 {
				addr, err := types.ParseAddress(args[0])
				if err != nil {
					return fmt.Errorf("change address: %w", err)
				}
				policy = tx.ReturnTo(addr)
			}

			s, err := staging.Load(stagingPath)
			if err != nil {
				return err
			}
			if _, err := s.Finalize(a.cfg.Fees.LinearFee(), policy); err != nil {
				return err
			}
			return s.Store(stagingPath)
		},
	}
	stagingFlag(cmd, &stagingPath)
	a.fees.Register(cmd.Flags())
	return cmd
}

func (a *app) dataForWitnessCmd() *cobra.Command {
	var stagingPath string
	cmd := &cobra.Command{
		Use:   "data-for-witness",
		Short: "Print the transaction id that witnesses sign",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			s, err := staging.Load(stagingPath)
			if err != nil {
				return err
			}
			return output.WriteLine("", s.SignDataHash().String())
		},
	}
	stagingFlag(cmd, &stagingPath)
	return cmd
}

func (a *app) addWitnessCmd() *cobra.Command {
	var stagingPath string
	cmd := &cobra.Command{
		Use:   "add-witness WITNESS_FILE",
		Short: "Attach a witness to the next unwitnessed input",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if stagingPath == "" && (args[0] == "" || args[0] == "-") {
				return fmt.Errorf("witness and staged transaction cannot both come from stdin")
			}
			text, err := readText(args[0])
			if err != nil {
				return fmt.Errorf("read witness: %w", err)
			}
			s, err := staging.Load(stagingPath)
			if err != nil {
				return err
			}
			if _, err := s.AddWitness(text); err != nil {
				return err
			}
			return s.Store(stagingPath)
		},
	}
	stagingFlag(cmd, &stagingPath)
	return cmd
}

func (a *app) sealCmd() *cobra.Command {
	var stagingPath string
	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Lock the staged transaction once every input is witnessed",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			s, err := staging.Load(stagingPath)
			if err != nil {
				return err
			}
			if err := s.Seal(); err != nil {
				return err
			}
			return s.Store(stagingPath)
		},
	}
	stagingFlag(cmd, &stagingPath)
	return cmd
}

func (a *app) infoCmd() *cobra.Command {
	var stagingPath string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the state, totals and fees of the staged transaction",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			s, err := staging.Load(stagingPath)
			if err != nil {
				return err
			}
			info, err := s.Info(a.cfg.Fees.LinearFee())
			if err != nil {
				return err
			}
			return output.Write("", 0644, func(w io.Writer) error {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			})
		},
	}
	stagingFlag(cmd, &stagingPath)
	a.fees.Register(cmd.Flags())
	return cmd
}
