// Package keyfile reads the signing key used to build witnesses.
//
// A key source is a file, or standard input when no path is given, holding
// one of:
//   - 64 hex characters (the raw secp256k1 scalar)
//   - a bech32 string with the "kgxsk" prefix
//   - an encrypted keystore document written by EncryptKey
//   - a BIP-39 mnemonic, derived at m/44'/8888'/account'/0/index
package keyfile

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Klingon-tech/klingnet-tx/internal/log"
	"github.com/Klingon-tech/klingnet-tx/pkg/crypto"
	"github.com/Klingon-tech/klingnet-tx/pkg/types"
)

// SecretKeyHRP is the bech32 prefix of an encoded signing key.
const SecretKeyHRP = "kgxsk"

// maxKeyFileSize bounds what is read from a key source.
const maxKeyFileSize = 64 << 10

// ErrKeySource is returned when the signing key cannot be obtained.
var ErrKeySource = errors.New("cannot read signing key")

// Options controls how encrypted and mnemonic sources are opened.
type Options struct {
	// Password is called once when the source is an encrypted keystore.
	Password func() ([]byte, error)
	// Passphrase is the optional BIP-39 passphrase.
	Passphrase string
	// Account and Index select the derived key for mnemonic sources.
	Account uint32
	Index   uint32
}

// Format names a recognized key encoding.
type Format string

const (
	FormatHex      Format = "hex"
	FormatBech32   Format = "bech32"
	FormatKeystore Format = "keystore"
	FormatMnemonic Format = "mnemonic"
)

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

// Load reads and parses the key at path, or from standard input when path
// is empty. Every failure wraps ErrKeySource and names the source.
func Load(path string, opts Options) (*crypto.PrivateKey, error) {
	name := path
	var data []byte
	var err error
	if path == "" {
		name = "<stdin>"
		data, err = io.ReadAll(io.LimitReader(stdin, maxKeyFileSize+1))
	} else {
		data, err = readFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrKeySource, name, err)
	}
	defer zero(data)
	if len(data) > maxKeyFileSize {
		return nil, fmt.Errorf("%w: %s: larger than %d bytes", ErrKeySource, name, maxKeyFileSize)
	}

	key, format, err := Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrKeySource, name, err)
	}
	log.Keys.Debug().
		Str("source", name).
		Str("format", string(format)).
		Str("address", crypto.AddressFromPubKey(key.PublicKey()).String()).
		Msg("Signing key loaded")
	return key, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxKeyFileSize+1))
}

// Parse decodes key material in any supported format.
func Parse(data []byte, opts Options) (*crypto.PrivateKey, Format, error) {
	text := bytes.TrimSpace(data)
	if len(text) == 0 {
		return nil, "", fmt.Errorf("empty key")
	}

	switch format := detect(text); format {
	case FormatKeystore:
		if opts.Password == nil {
			return nil, format, fmt.Errorf("key is encrypted and no password source is configured")
		}
		password, err := opts.Password()
		if err != nil {
			return nil, format, fmt.Errorf("read password: %w", err)
		}
		defer zero(password)
		key, err := decryptKeystore(text, password)
		return key, format, err

	case FormatHex:
		raw := make([]byte, crypto.PrivateKeySize)
		defer zero(raw)
		if _, err := hex.Decode(raw, text); err != nil {
			return nil, format, fmt.Errorf("decode hex: %w", err)
		}
		key, err := crypto.PrivateKeyFromBytes(raw)
		return key, format, err

	case FormatBech32:
		raw, err := types.Bech32DecodeHRP(SecretKeyHRP, string(text))
		if err != nil {
			return nil, format, err
		}
		defer zero(raw)
		key, err := crypto.PrivateKeyFromBytes(raw)
		return key, format, err

	case FormatMnemonic:
		key, err := DeriveKey(string(text), opts.Passphrase, opts.Account, opts.Index)
		return key, format, err

	default:
		return nil, "", fmt.Errorf("unrecognized key format")
	}
}

func detect(text []byte) Format {
	switch {
	case text[0] == '{':
		return FormatKeystore
	case len(text) == 2*crypto.PrivateKeySize && isHex(text):
		return FormatHex
	case bytes.HasPrefix(bytes.ToLower(text), []byte(SecretKeyHRP+"1")):
		return FormatBech32
	case len(bytes.Fields(text)) >= 12:
		return FormatMnemonic
	default:
		return ""
	}
}

func isHex(b []byte) bool {
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// EncodeHex renders the key as 64 hex characters.
func EncodeHex(key *crypto.PrivateKey) string {
	raw := key.Serialize()
	defer zero(raw)
	return hex.EncodeToString(raw)
}

// EncodeBech32 renders the key with the "kgxsk" prefix.
func EncodeBech32(key *crypto.PrivateKey) (string, error) {
	raw := key.Serialize()
	defer zero(raw)
	return types.Bech32Encode(SecretKeyHRP, raw)
}
