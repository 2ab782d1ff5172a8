package witness

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-tx/pkg/crypto"
	"github.com/Klingon-tech/klingnet-tx/pkg/types"
)

// Build and verify errors.
var (
	ErrSign             = errors.New("witness signing failed")
	ErrInvalidSignature = errors.New("invalid witness signature")
)

// LegacyTagSize is the length of the zero tag that follows the public key
// in a legacy UTxO witness.
const LegacyTagSize = 32

// Witness authorizes one input of the transaction whose digest it signs.
type Witness struct {
	Kind    Kind
	ChainID types.ChainID
	// PublicKey is carried by legacy UTxO witnesses only.
	PublicKey []byte
	// Counter is the spending counter of account witnesses.
	Counter   uint32
	Signature []byte
}

// scheme holds everything that differs between witness kinds.
type scheme struct {
	name string
	// fieldsSize is the length of the kind-specific fields in the binary
	// encoding, between the chain id and the signature.
	fieldsSize int
	// messageSuffix appends kind-specific data to the signed message.
	messageSuffix func(msg []byte, counter uint32) []byte
	appendFields  func(buf []byte, w *Witness) []byte
	parseFields   func(w *Witness, fields []byte) error
	// embedsKey is set when the public key travels inside the witness.
	embedsKey bool
}

// schemes is indexed by Kind. Adding a kind means adding an entry here.
var schemes = [...]scheme{
	KindUTXO: {
		name: "utxo",
	},
	KindLegacyUTXO: {
		name:         "legacy-utxo",
		fieldsSize:   crypto.PublicKeySize + LegacyTagSize,
		appendFields: appendLegacyFields,
		parseFields:  parseLegacyFields,
		embedsKey:    true,
	},
	KindAccount: {
		name:          "account",
		fieldsSize:    4,
		messageSuffix: binary.BigEndian.AppendUint32,
		appendFields:  func(buf []byte, w *Witness) []byte { return binary.BigEndian.AppendUint32(buf, w.Counter) },
		parseFields: func(w *Witness, fields []byte) error {
			w.Counter = binary.BigEndian.Uint32(fields)
			return nil
		},
	},
}

func appendLegacyFields(buf []byte, w *Witness) []byte {
	buf = append(buf, w.PublicKey...)
	return append(buf, make([]byte, LegacyTagSize)...)
}

func parseLegacyFields(w *Witness, fields []byte) error {
	tag := fields[crypto.PublicKeySize:]
	if !bytes.Equal(tag, make([]byte, LegacyTagSize)) {
		return fmt.Errorf("legacy tag is not zero")
	}
	w.PublicKey = bytes.Clone(fields[:crypto.PublicKeySize])
	return nil
}

func lookupScheme(k Kind) (*scheme, error) {
	if int(k) >= len(schemes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return &schemes[k], nil
}

// SignedMessage returns the bytes a witness of kind commits to. counter is
// ignored by kinds that do not use one.
func SignedMessage(kind Kind, chainID types.ChainID, digest types.Hash, counter uint32) ([]byte, error) {
	s, err := lookupScheme(kind)
	if err != nil {
		return nil, err
	}
	msg := make([]byte, 0, 1+2*types.HashSize+s.fieldsSize)
	msg = append(msg, byte(kind))
	msg = append(msg, chainID[:]...)
	msg = append(msg, digest[:]...)
	if s.messageSuffix != nil {
		msg = s.messageSuffix(msg, counter)
	}
	return msg, nil
}

// Build signs digest for the given variant and chain. The variant is
// checked before the key is used.
func Build(v Variant, chainID types.ChainID, digest types.Hash, key crypto.Signer) (*Witness, error) {
	if !v.valid {
		return nil, fmt.Errorf("%w: variant not initialized", ErrUnknownKind)
	}
	s, err := lookupScheme(v.kind)
	if err != nil {
		return nil, err
	}
	msg, err := SignedMessage(v.kind, chainID, digest, v.counter)
	if err != nil {
		return nil, err
	}

	hash := crypto.Hash(msg)
	sig, err := key.Sign(hash[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSign, s.name, err)
	}
	if len(sig) != crypto.SignatureSize {
		return nil, fmt.Errorf("%w: %s: signature is %d bytes, want %d", ErrSign, s.name, len(sig), crypto.SignatureSize)
	}

	w := &Witness{
		Kind:      v.kind,
		ChainID:   chainID,
		Counter:   v.counter,
		Signature: sig,
	}
	if s.embedsKey {
		w.PublicKey = key.PublicKey()
		if len(w.PublicKey) != crypto.PublicKeySize {
			return nil, fmt.Errorf("%w: %s: public key is %d bytes, want %d", ErrSign, s.name, len(w.PublicKey), crypto.PublicKeySize)
		}
	}
	return w, nil
}

// Verify checks w against digest using w's own message construction.
// pubKey may be nil for kinds that carry their key; if both are present
// they must match.
func Verify(w *Witness, digest types.Hash, pubKey []byte) error {
	s, err := lookupScheme(w.Kind)
	if err != nil {
		return err
	}
	if s.embedsKey {
		if pubKey != nil && !bytes.Equal(pubKey, w.PublicKey) {
			return fmt.Errorf("%w: embedded public key does not match", ErrInvalidSignature)
		}
		pubKey = w.PublicKey
	}
	if len(pubKey) == 0 {
		return fmt.Errorf("%w: no public key for %s witness", ErrInvalidSignature, s.name)
	}

	msg, err := SignedMessage(w.Kind, w.ChainID, digest, w.Counter)
	if err != nil {
		return err
	}
	hash := crypto.Hash(msg)
	if !crypto.VerifySignature(hash[:], w.Signature, pubKey) {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, s.name)
	}
	return nil
}
