package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-tx/internal/keyfile"
	"github.com/Klingon-tech/klingnet-tx/internal/log"
	"github.com/Klingon-tech/klingnet-tx/internal/output"
	"github.com/Klingon-tech/klingnet-tx/pkg/crypto"
)

func (a *app) keygenCmd() *cobra.Command {
	var flags struct {
		Format       string
		Output       string
		PasswordFile string
	}
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a signing key",
		Long: `Generate a signing key and write it to --output or stdout.

Formats: hex, bech32, mnemonic (24 words, key at m/44'/8888'/0'/0/0)
and encrypted (keystore JSON, password from --password-file or prompt).
The address of the key is printed on stderr.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			text, key, err := generateKey(flags.Format, flags.PasswordFile)
			if err != nil {
				return err
			}
			defer key.Zero()

			if err := output.WriteLine(flags.Output, text); err != nil {
				return err
			}
			addr := crypto.AddressFromPubKey(key.PublicKey())
			log.Keys.Info().Str("format", flags.Format).Str("address", addr.String()).Msg("Key generated")
			fmt.Fprintf(os.Stderr, "Address: %s\n", addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.Format, "format", "bech32", "Key format: hex, bech32, mnemonic or encrypted")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&flags.PasswordFile, "password-file", "", "File holding the password for --format encrypted")
	return cmd
}

func generateKey(format, passwordFile string) (string, *crypto.PrivateKey, error) {
	if format == "mnemonic" {
		mnemonic, err := keyfile.GenerateMnemonic()
		if err != nil {
			return "", nil, err
		}
		key, err := keyfile.DeriveKey(mnemonic, "", 0, 0)
		if err != nil {
			return "", nil, err
		}
		return mnemonic, key, nil
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return "", nil, err
	}
	var text string
	switch format {
	case "hex":
		text = keyfile.EncodeHex(key)
	case "bech32":
		text, err = keyfile.EncodeBech32(key)
	case "encrypted":
		var pw, doc []byte
		if pw, err = newPassword(passwordFile); err == nil {
			doc, err = keyfile.EncryptKey(key, pw, keyfile.DefaultParams())
			text = string(doc)
		}
	default:
		err = fmt.Errorf("unknown key format %q", format)
	}
	if err != nil {
		key.Zero()
		return "", nil, err
	}
	return text, key, nil
}

func (a *app) keyInfoCmd() *cobra.Command {
	var flags struct {
		Secret       string
		PasswordFile string
		Passphrase   string
		Account      uint32
		Index        uint32
	}
	cmd := &cobra.Command{
		Use:   "key-info",
		Short: "Print the public key and address of a signing key",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
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

			pub := key.PublicKey()
			return output.WriteLine("", fmt.Sprintf("pubkey=%s\naddress=%s",
				hex.EncodeToString(pub), crypto.AddressFromPubKey(pub)))
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&flags.Secret, "secret", "", "Signing key file (default: stdin)")
	fs.StringVar(&flags.PasswordFile, "password-file", "", "File holding the password of an encrypted key")
	fs.StringVar(&flags.Passphrase, "mnemonic-passphrase", "", "BIP-39 passphrase of a mnemonic key")
	fs.Uint32Var(&flags.Account, "hd-account", 0, "BIP-44 account of a mnemonic key")
	fs.Uint32Var(&flags.Index, "hd-index", 0, "BIP-44 address index of a mnemonic key")
	return cmd
}
