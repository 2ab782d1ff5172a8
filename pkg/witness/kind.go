// Package witness builds, verifies and encodes the signed authorizations
// that let a staged transaction spend its inputs.
//
// Each witness kind signs its own message, so a signature made for one
// kind never verifies as another, even under the same key and digest:
//
//	utxo         tag(0x00) | chain_id | digest
//	legacy-utxo  tag(0x01) | chain_id | digest
//	account      tag(0x02) | chain_id | digest | spending_counter (u32 BE)
//
// The signer signs the BLAKE3 hash of the message.
package witness

import (
	"errors"
	"fmt"
)

// Variant errors.
var (
	ErrUnknownKind               = errors.New("unknown witness kind")
	ErrMissingSpendingCounter    = errors.New("account witness requires a spending counter")
	ErrUnexpectedSpendingCounter = errors.New("spending counter is only valid for account witnesses")
)

// Kind is the witness type tag. Its value is the first byte of both the
// signed message and the binary encoding.
type Kind uint8

const (
	KindUTXO       Kind = 0x00
	KindLegacyUTXO Kind = 0x01
	KindAccount    Kind = 0x02
)

// String returns the command-line name of the kind.
func (k Kind) String() string {
	if int(k) < len(schemes) {
		return schemes[k].name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind maps "utxo", "legacy-utxo" or "account" to a Kind.
func ParseKind(s string) (Kind, error) {
	for k := range schemes {
		if schemes[k].name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w %q, expected utxo, legacy-utxo or account", ErrUnknownKind, s)
}

// Variant is a witness kind together with the data its message needs.
// The zero Variant is invalid; use UTXO, LegacyUTXO, Account or NewVariant.
type Variant struct {
	kind    Kind
	counter uint32
	valid   bool
}

// UTXO is the variant for spending an unspent output.
func UTXO() Variant { return Variant{kind: KindUTXO, valid: true} }

// LegacyUTXO is the variant for unspent outputs of the legacy address format.
func LegacyUTXO() Variant { return Variant{kind: KindLegacyUTXO, valid: true} }

// Account is the variant for spending from an account at the given
// spending counter.
func Account(counter uint32) Variant {
	return Variant{kind: KindAccount, counter: counter, valid: true}
}

// NewVariant builds a variant from a kind and an optional counter, as they
// arrive from the command line. Account requires the counter; the other
// kinds refuse one.
func NewVariant(kind Kind, counter *uint32) (Variant, error) {
	switch kind {
	case KindUTXO, KindLegacyUTXO:
		if counter != nil {
			return Variant{}, fmt.Errorf("%s witness: %w", kind, ErrUnexpectedSpendingCounter)
		}
		return Variant{kind: kind, valid: true}, nil
	case KindAccount:
		if counter == nil {
			return Variant{}, ErrMissingSpendingCounter
		}
		return Account(*counter), nil
	default:
		return Variant{}, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}
}

// Kind returns the variant's kind.
func (v Variant) Kind() Kind { return v.kind }

// Counter returns the spending counter of an account variant.
func (v Variant) Counter() (uint32, bool) {
	return v.counter, v.valid && v.kind == KindAccount
}

// String describes the variant for logs.
func (v Variant) String() string {
	if !v.valid {
		return "invalid"
	}
	if v.kind == KindAccount {
		return fmt.Sprintf("account(counter=%d)", v.counter)
	}
	return v.kind.String()
}
