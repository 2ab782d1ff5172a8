// Package tx defines the staged transaction, its fee schedule and the
// balancing step that settles fee and change before witnesses are made.
package tx

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/klingnet-tx/pkg/crypto"
	"github.com/Klingon-tech/klingnet-tx/pkg/types"
)

// ErrValueOverflow is returned when summing input or output values wraps uint64.
var ErrValueOverflow = errors.New("value overflow")

// InputKind says what an input spends, and therefore which kind of witness
// authorizes it.
type InputKind uint8

const (
	InputUTXO    InputKind = 0x00 // Unspent output, referenced by outpoint.
	InputAccount InputKind = 0x01 // Account balance, referenced by address.
)

// String returns the staging-file name of the input kind.
func (k InputKind) String() string {
	switch k {
	case InputUTXO:
		return "utxo"
	case InputAccount:
		return "account"
	default:
		return fmt.Sprintf("InputKind(%d)", uint8(k))
	}
}

// MarshalJSON encodes the kind by name.
func (k InputKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name.
func (k *InputKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "utxo":
		*k = InputUTXO
	case "account":
		*k = InputAccount
	default:
		return fmt.Errorf("unknown input kind %q", s)
	}
	return nil
}

// Transaction is a transaction being staged. Inputs and outputs keep their
// order; balancing may append a single change output.
type Transaction struct {
	Inputs      []Input      `json:"inputs"`
	Outputs     []Output     `json:"outputs"`
	Certificate *Certificate `json:"certificate,omitempty"`
}

// Input is a value being spent.
type Input struct {
	Kind    InputKind      `json:"kind"`
	PrevOut types.Outpoint `json:"prevout"`
	Account types.Address  `json:"account"`
	Value   uint64         `json:"value"`
}

// Output pays Value to Address.
type Output struct {
	Address types.Address `json:"address"`
	Value   uint64        `json:"value"`
}

// TotalInputValue returns the sum of all input values.
func (tx *Transaction) TotalInputValue() (uint64, error) {
	var total uint64
	for i, in := range tx.Inputs {
		if total > math.MaxUint64-in.Value {
			return 0, fmt.Errorf("%w: input %d", ErrValueOverflow, i)
		}
		total += in.Value
	}
	return total, nil
}

// TotalOutputValue returns the sum of all output values.
func (tx *Transaction) TotalOutputValue() (uint64, error) {
	var total uint64
	for i, out := range tx.Outputs {
		if total > math.MaxUint64-out.Value {
			return 0, fmt.Errorf("%w: output %d", ErrValueOverflow, i)
		}
		total += out.Value
	}
	return total, nil
}

// SigningBytes returns the canonical byte representation witnesses commit to.
//
//	input_count(4) | [kind(1) | txid(32) index(4) | account(20) | value(8)]...
//	output_count(4) | [address(20) value(8)]...
//	has_cert(1) | [cert_kind(1) payload_len(4) payload]
//
// Integers are little-endian.
func (tx *Transaction) SigningBytes() []byte {
	var buf []byte

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = append(buf, byte(in.Kind))
		switch in.Kind {
		case InputAccount:
			buf = append(buf, in.Account[:]...)
		default:
			buf = append(buf, in.PrevOut.TxID[:]...)
			buf = binary.LittleEndian.AppendUint32(buf, in.PrevOut.Index)
		}
		buf = binary.LittleEndian.AppendUint64(buf, in.Value)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = append(buf, out.Address[:]...)
		buf = binary.LittleEndian.AppendUint64(buf, out.Value)
	}

	if tx.Certificate == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1, byte(tx.Certificate.Kind))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Certificate.Payload)))
	return append(buf, tx.Certificate.Payload...)
}

// SignDataHash is the digest every witness of this transaction signs.
func (tx *Transaction) SignDataHash() types.Hash {
	return crypto.Hash(tx.SigningBytes())
}

// Clone returns a deep copy of the transaction.
func (tx *Transaction) Clone() *Transaction {
	c := &Transaction{
		Inputs:  append([]Input(nil), tx.Inputs...),
		Outputs: append([]Output(nil), tx.Outputs...),
	}
	if tx.Certificate != nil {
		cert := *tx.Certificate
		cert.Payload = append([]byte(nil), tx.Certificate.Payload...)
		c.Certificate = &cert
	}
	return c
}
