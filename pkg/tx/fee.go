package tx

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrFeeOverflow is returned when a fee does not fit in a uint64.
var ErrFeeOverflow = errors.New("fee overflow")

// LinearFee is the fee schedule:
//
//	constant + coefficient*(inputs+outputs) + certificate fee
//
// where the certificate fee is the per-kind override when one is set and
// non-zero, the default certificate fee otherwise, and zero without a
// certificate. A LinearFee is not modified after construction.
type LinearFee struct {
	constant       uint64
	coefficient    uint64
	certificate    uint64
	perCertificate map[CertificateKind]uint64
}

// NewLinearFee builds a fee schedule. Zero overrides and overrides for
// kinds that are not Overridable are dropped; the map is copied.
func NewLinearFee(constant, coefficient, certificate uint64, overrides map[CertificateKind]uint64) *LinearFee {
	f := &LinearFee{
		constant:       constant,
		coefficient:    coefficient,
		certificate:    certificate,
		perCertificate: make(map[CertificateKind]uint64, len(overrides)),
	}
	for kind, fee := range overrides {
		if fee != 0 && kind.Overridable() {
			f.perCertificate[kind] = fee
		}
	}
	return f
}

// Constant returns the flat per-transaction fee.
func (f *LinearFee) Constant() uint64 { return f.constant }

// Coefficient returns the fee per input and per output.
func (f *LinearFee) Coefficient() uint64 { return f.coefficient }

// CertificateFee returns what a certificate of the given kind costs.
func (f *LinearFee) CertificateFee(kind CertificateKind) uint64 {
	if fee, ok := f.perCertificate[kind]; ok {
		return fee
	}
	return f.certificate
}

// Calculate returns the fee owed by a transaction of the given shape.
func (f *LinearFee) Calculate(cert *Certificate, inputs, outputs int) (uint64, error) {
	if inputs < 0 || outputs < 0 {
		return 0, fmt.Errorf("negative input/output count")
	}
	hi, perIO := bits.Mul64(f.coefficient, uint64(inputs)+uint64(outputs))
	if hi != 0 {
		return 0, fmt.Errorf("%w: coefficient %d * %d inputs/outputs", ErrFeeOverflow, f.coefficient, inputs+outputs)
	}
	total, carry := bits.Add64(f.constant, perIO, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: constant %d + %d", ErrFeeOverflow, f.constant, perIO)
	}
	if cert == nil {
		return total, nil
	}
	certFee := f.CertificateFee(cert.Kind)
	total, carry = bits.Add64(total, certFee, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: %s certificate fee %d", ErrFeeOverflow, cert.Kind, certFee)
	}
	return total, nil
}

// TotalFee returns the fee owed by the transaction as it currently stands.
func (f *LinearFee) TotalFee(t *Transaction) (uint64, error) {
	return f.Calculate(t.Certificate, len(t.Inputs), len(t.Outputs))
}
