package tx

import "github.com/Klingon-tech/klingnet-tx/pkg/types"

// Builder assembles a Transaction. Staged files are normally produced by
// other tooling; the builder serves programmatic callers and tests.
type Builder struct {
	tx *Transaction
}

// NewBuilder creates a new transaction builder.
func NewBuilder() *Builder {
	return &Builder{tx: &Transaction{}}
}

// AddUTXOInput spends an unspent output worth value.
func (b *Builder) AddUTXOInput(prevOut types.Outpoint, value uint64) *Builder {
	b.tx.Inputs = append(b.tx.Inputs, Input{Kind: InputUTXO, PrevOut: prevOut, Value: value})
	return b
}

// AddAccountInput spends value from an account.
func (b *Builder) AddAccountInput(account types.Address, value uint64) *Builder {
	b.tx.Inputs = append(b.tx.Inputs, Input{Kind: InputAccount, Account: account, Value: value})
	return b
}

// AddOutput pays value to addr.
func (b *Builder) AddOutput(addr types.Address, value uint64) *Builder {
	b.tx.Outputs = append(b.tx.Outputs, Output{Address: addr, Value: value})
	return b
}

// SetCertificate attaches a certificate, replacing any previous one.
func (b *Builder) SetCertificate(kind CertificateKind, payload []byte) *Builder {
	b.tx.Certificate = &Certificate{Kind: kind, Payload: payload}
	return b
}

// Build returns the constructed transaction.
// Does NOT validate; call tx.Validate() separately.
func (b *Builder) Build() *Transaction {
	return b.tx
}
