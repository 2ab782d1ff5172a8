package tx

import (
	"errors"
	"math"
	"testing"
)

func TestLinearFee_Calculate(t *testing.T) {
	overrides := map[CertificateKind]uint64{
		CertPoolRegistration: 500,
		CertVoteCast:         7,
		CertStakeDelegation:  0, // zero falls back to the default
	}
	fees := NewLinearFee(10, 2, 100, overrides)

	tests := []struct {
		name    string
		cert    *Certificate
		inputs  int
		outputs int
		want    uint64
	}{
		{"no certificate", nil, 2, 3, 10 + 2*5},
		{"empty transaction", nil, 0, 0, 10},
		{"override", &Certificate{Kind: CertPoolRegistration}, 1, 1, 10 + 4 + 500},
		{"small override", &Certificate{Kind: CertVoteCast}, 1, 1, 10 + 4 + 7},
		{"zero override uses default", &Certificate{Kind: CertStakeDelegation}, 1, 1, 10 + 4 + 100},
		{"no override configured", &Certificate{Kind: CertVotePlan}, 1, 1, 10 + 4 + 100},
		{"non-overridable kind", &Certificate{Kind: CertPoolRetirement}, 1, 0, 10 + 2 + 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fees.Calculate(tt.cert, tt.inputs, tt.outputs)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Calculate = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewLinearFee_IgnoresNonOverridableKinds(t *testing.T) {
	fees := NewLinearFee(0, 0, 9, map[CertificateKind]uint64{CertPoolUpdate: 1})
	if got := fees.CertificateFee(CertPoolUpdate); got != 9 {
		t.Errorf("CertificateFee(pool-update) = %d, want default 9", got)
	}
}

func TestNewLinearFee_CopiesOverrides(t *testing.T) {
	overrides := map[CertificateKind]uint64{CertVotePlan: 3}
	fees := NewLinearFee(0, 0, 1, overrides)
	overrides[CertVotePlan] = 1000
	if got := fees.CertificateFee(CertVotePlan); got != 3 {
		t.Errorf("schedule changed with caller's map: got %d, want 3", got)
	}
}

func TestLinearFee_Overflow(t *testing.T) {
	tests := []struct {
		name string
		fees *LinearFee
		cert *Certificate
	}{
		{"coefficient product", NewLinearFee(0, math.MaxUint64/2, 0, nil), nil},
		{"constant sum", NewLinearFee(math.MaxUint64, 1, 0, nil), nil},
		{"certificate sum", NewLinearFee(math.MaxUint64-10, 0, 11, nil), &Certificate{Kind: CertVoteCast}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fees.Calculate(tt.cert, 2, 2)
			if !errors.Is(err, ErrFeeOverflow) {
				t.Errorf("expected ErrFeeOverflow, got %v", err)
			}
		})
	}
}

func TestLinearFee_TotalFee(t *testing.T) {
	tx := NewBuilder().
		AddUTXOInput(testOutpoint(1), 10).
		AddAccountInput(testAddress(2), 10).
		AddOutput(testAddress(3), 5).
		SetCertificate(CertOwnerStakeDelegation, []byte{0x01}).
		Build()

	fees := NewLinearFee(1, 3, 20, map[CertificateKind]uint64{CertOwnerStakeDelegation: 4})
	got, err := fees.TotalFee(tx)
	if err != nil {
		t.Fatalf("TotalFee: %v", err)
	}
	if want := uint64(1 + 3*3 + 4); got != want {
		t.Errorf("TotalFee = %d, want %d", got, want)
	}
}
