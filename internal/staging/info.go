package staging

import (
	"github.com/Klingon-tech/klingnet-tx/pkg/tx"
	"github.com/Klingon-tech/klingnet-tx/pkg/types"
)

// Info summarizes a staged transaction.
type Info struct {
	ID        types.Hash `json:"id"`
	State     State      `json:"state"`
	Inputs    int        `json:"inputs"`
	Outputs   int        `json:"outputs"`
	Witnesses int        `json:"witnesses"`
	TotalIn   uint64     `json:"total_in"`
	TotalOut  uint64     `json:"total_out"`
	// Fee is what the transaction currently pays, zero while outputs
	// exceed inputs.
	Fee uint64 `json:"fee"`
	// RequiredFee is what fees demands for the current shape.
	RequiredFee uint64 `json:"required_fee"`
}

// Info computes the summary of s under fees.
func (s *Staging) Info(fees *tx.LinearFee) (*Info, error) {
	t := s.Transaction
	in, err := t.TotalInputValue()
	if err != nil {
		return nil, err
	}
	out, err := t.TotalOutputValue()
	if err != nil {
		return nil, err
	}
	required, err := fees.TotalFee(t)
	if err != nil {
		return nil, err
	}

	info := &Info{
		ID:          t.SignDataHash(),
		State:       s.State,
		Inputs:      len(t.Inputs),
		Outputs:     len(t.Outputs),
		Witnesses:   len(s.Witnesses),
		TotalIn:     in,
		TotalOut:    out,
		RequiredFee: required,
	}
	if in > out {
		info.Fee = in - out
	}
	return info, nil
}
