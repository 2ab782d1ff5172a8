package witness

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-tx/pkg/crypto"
	"github.com/Klingon-tech/klingnet-tx/pkg/types"
)

// HRP is the bech32 human-readable part of an encoded witness.
const HRP = "witness"

// Codec errors.
var (
	ErrSerialize = errors.New("witness serialization failed")
	ErrEncode    = errors.New("witness encoding failed")
	ErrDecode    = errors.New("witness decoding failed")
)

// MarshalBinary encodes the witness as
//
//	kind(1) | chain_id(32) | kind-specific fields | signature(64)
//
// where the fields are empty for utxo, public_key(33) | zero(32) for
// legacy-utxo and the spending counter (u32 BE) for account.
func (w *Witness) MarshalBinary() ([]byte, error) {
	s, err := lookupScheme(w.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	if len(w.Signature) != crypto.SignatureSize {
		return nil, fmt.Errorf("%w: %s signature is %d bytes, want %d", ErrSerialize, s.name, len(w.Signature), crypto.SignatureSize)
	}
	if s.embedsKey && len(w.PublicKey) != crypto.PublicKeySize {
		return nil, fmt.Errorf("%w: %s public key is %d bytes, want %d", ErrSerialize, s.name, len(w.PublicKey), crypto.PublicKeySize)
	}

	buf := make([]byte, 0, binarySize(s))
	buf = append(buf, byte(w.Kind))
	buf = append(buf, w.ChainID[:]...)
	if s.appendFields != nil {
		buf = s.appendFields(buf, w)
	}
	return append(buf, w.Signature...), nil
}

// UnmarshalBinary decodes the layout written by MarshalBinary.
func (w *Witness) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty", ErrDecode)
	}
	kind := Kind(data[0])
	s, err := lookupScheme(kind)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(data) != binarySize(s) {
		return fmt.Errorf("%w: %s witness is %d bytes, want %d", ErrDecode, s.name, len(data), binarySize(s))
	}

	var out Witness
	out.Kind = kind
	copy(out.ChainID[:], data[1:1+types.HashSize])
	fields := data[1+types.HashSize : 1+types.HashSize+s.fieldsSize]
	if s.parseFields != nil {
		if err := s.parseFields(&out, fields); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrDecode, s.name, err)
		}
	}
	out.Signature = bytes.Clone(data[len(data)-crypto.SignatureSize:])
	*w = out
	return nil
}

func binarySize(s *scheme) int {
	return 1 + types.HashSize + s.fieldsSize + crypto.SignatureSize
}

// Encode renders the witness as a single bech32 string with the "witness"
// human-readable part.
func Encode(w *Witness) (string, error) {
	raw, err := w.MarshalBinary()
	if err != nil {
		return "", err
	}
	s, err := types.Bech32Encode(HRP, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return s, nil
}

// Decode parses a string produced by Encode; surrounding whitespace is
// ignored. A wrong prefix, a bad checksum or a malformed layout all yield
// ErrDecode.
func Decode(s string) (*Witness, error) {
	raw, err := types.Bech32DecodeHRP(HRP, strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	w := new(Witness)
	if err := w.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return w, nil
}
