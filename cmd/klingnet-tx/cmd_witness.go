package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-tx/internal/keyfile"
	"github.com/Klingon-tech/klingnet-tx/internal/log"
	"github.com/Klingon-tech/klingnet-tx/internal/output"
	"github.com/Klingon-tech/klingnet-tx/pkg/types"
	"github.com/Klingon-tech/klingnet-tx/pkg/witness"
)

type makeWitnessFlags struct {
	Type         string
	GenesisHash  string
	Counter      uint32
	Secret       string
	PasswordFile string
	Passphrase   string
	Account      uint32
	Index        uint32
}

func (a *app) makeWitnessCmd() *cobra.Command {
	var flags makeWitnessFlags
	cmd := &cobra.Command{
		Use:   "make-witness TRANSACTION_ID [OUTPUT]",
		Short: "Sign a transaction id, writing the witness to OUTPUT or stdout",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var counter *uint32
			if cmd.Flags().Changed("account-spending-counter") {
				counter = &flags.Counter
			}
			out := ""
			if len(args) == 2 {
				out = args[1]
			}
			return a.makeWitness(args[0], out, counter, &flags)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&flags.Type, "type", "", "Witness type: utxo, legacy-utxo or account")
	fs.StringVar(&flags.GenesisHash, "genesis-block-hash", "", "Genesis block hash of the target chain (hex)")
	fs.Uint32Var(&flags.Counter, "account-spending-counter", 0, "Spending counter of the account (account witnesses only)")
	fs.StringVar(&flags.Secret, "secret", "", "Signing key file (default: stdin)")
	fs.StringVar(&flags.PasswordFile, "password-file", "", "File holding the password of an encrypted key")
	fs.StringVar(&flags.Passphrase, "mnemonic-passphrase", "", "BIP-39 passphrase of a mnemonic key")
	fs.Uint32Var(&flags.Account, "hd-account", 0, "BIP-44 account of a mnemonic key")
	fs.Uint32Var(&flags.Index, "hd-index", 0, "BIP-44 address index of a mnemonic key")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("genesis-block-hash")
	return cmd
}

// makeWitness validates every argument before the key is read, and wipes
// the key before returning.
func (a *app) makeWitness(txID, out string, counter *uint32, flags *makeWitnessFlags) error {
	defer log.Benchmark("make-witness")()

	kind, err := witness.ParseKind(flags.Type)
	if err != nil {
		return err
	}
	variant, err := witness.NewVariant(kind, counter)
	if err != nil {
		return err
	}
	digest, err := types.HexToHash(txID)
	if err != nil {
		return fmt.Errorf("transaction id: %w", err)
	}
	chainID, err := types.HexToChainID(flags.GenesisHash)
	if err != nil {
		return fmt.Errorf("genesis block hash: %w", err)
	}

	key, err := keyfile.Load(flags.Secret, keyfile.Options{
		Password:   passwordSource(flags.PasswordFile, "Key password: "),
		Passphrase: flags.Passphrase,
		Account:    flags.Account,
		Index:      flags.Index,
	})
	if err != nil {
		return err
	}
	defer key.Zero()

	w, err := witness.Build(variant, chainID, digest, key)
	if err != nil {
		return err
	}
	text, err := witness.Encode(w)
	if err != nil {
		return err
	}
	log.Witness.Info().
		Str("kind", variant.String()).
		Str("tx", digest.String()).
		Msg("Witness created")
	return output.WriteLine(out, text)
}

func (a *app) witnessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "witness",
		Short: "Inspect encoded witnesses",
	}
	cmd.AddCommand(a.witnessDecodeCmd(), a.witnessVerifyCmd())
	return cmd
}

// witnessView is the JSON rendering of a decoded witness.
type witnessView struct {
	Type      string        `json:"type"`
	ChainID   types.ChainID `json:"genesis_block_hash"`
	PublicKey string        `json:"public_key,omitempty"`
	Counter   *uint32       `json:"account_spending_counter,omitempty"`
	Signature string        `json:"signature"`
}

func newWitnessView(w *witness.Witness) witnessView {
	v := witnessView{
		Type:      w.Kind.String(),
		ChainID:   w.ChainID,
		Signature: hex.EncodeToString(w.Signature),
	}
	if len(w.PublicKey) > 0 {
		v.PublicKey = hex.EncodeToString(w.PublicKey)
	}
	if w.Kind == witness.KindAccount {
		c := w.Counter
		v.Counter = &c
	}
	return v
}

func (a *app) witnessDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [WITNESS_FILE]",
		Short: "Print the fields of an encoded witness as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			w, err := readWitness(path)
			if err != nil {
				return err
			}
			return output.Write("", 0644, func(out io.Writer) error {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(newWitnessView(w))
			})
		},
	}
}

func (a *app) witnessVerifyCmd() *cobra.Command {
	var flags struct {
		TxID      string
		PublicKey string
	}
	cmd := &cobra.Command{
		Use:   "verify [WITNESS_FILE]",
		Short: "Check a witness against a transaction id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			digest, err := types.HexToHash(flags.TxID)
			if err != nil {
				return fmt.Errorf("transaction id: %w", err)
			}
			var pub []byte
			if flags.PublicKey != "" {
				if pub, err = hex.DecodeString(flags.PublicKey); err != nil {
					return fmt.Errorf("public key: %w", err)
				}
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			w, err := readWitness(path)
			if err != nil {
				return err
			}
			if err := witness.Verify(w, digest, pub); err != nil {
				return err
			}
			return output.WriteLine("", "ok")
		},
	}
	cmd.Flags().StringVar(&flags.TxID, "transaction-id", "", "Transaction id the witness should sign (hex)")
	cmd.Flags().StringVar(&flags.PublicKey, "public-key", "", "Compressed public key of the signer (hex); optional for legacy-utxo")
	_ = cmd.MarkFlagRequired("transaction-id")
	return cmd
}

func readWitness(path string) (*witness.Witness, error) {
	text, err := readText(path)
	if err != nil {
		return nil, fmt.Errorf("read witness: %w", err)
	}
	return witness.Decode(text)
}
