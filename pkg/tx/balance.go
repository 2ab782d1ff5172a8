package tx

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-tx/pkg/types"
)

// ErrInsufficientFunds is returned when inputs cannot cover outputs plus fee.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ChangePolicy decides what happens to value left over after the fee.
// The zero value discards it.
type ChangePolicy struct {
	change *types.Address
}

// Discard leaves any surplus unclaimed; it is paid as fee.
func Discard() ChangePolicy {
	return ChangePolicy{}
}

// ReturnTo sends the surplus to addr in a new output.
func ReturnTo(addr types.Address) ChangePolicy {
	return ChangePolicy{change: &addr}
}

// ChangeAddress returns the change address, if the policy has one.
func (p ChangePolicy) ChangeAddress() (types.Address, bool) {
	if p.change == nil {
		return types.Address{}, false
	}
	return *p.change, true
}

// String describes the policy for logs.
func (p ChangePolicy) String() string {
	if p.change == nil {
		return "discard"
	}
	return "return-to " + p.change.String()
}

// BalanceReport describes a balanced transaction.
type BalanceReport struct {
	TotalIn  uint64  `json:"total_in"`
	TotalOut uint64  `json:"total_out"` // Includes the change output.
	Fee      uint64  `json:"fee"`       // What is actually paid: TotalIn - TotalOut.
	Change   *Output `json:"change,omitempty"`
}

// PlanBalance works out fee and change for t without modifying it.
//
// The fee is first computed for the transaction as it stands. When the
// policy returns change and there is a surplus, the fee is recomputed with
// the change output counted. If the surplus still exceeds that fee the
// change output carries the difference; otherwise it could not pay for
// itself and the whole surplus goes to the fee.
func PlanBalance(t *Transaction, fees *LinearFee, policy ChangePolicy) (*BalanceReport, error) {
	in, err := t.TotalInputValue()
	if err != nil {
		return nil, err
	}
	out, err := t.TotalOutputValue()
	if err != nil {
		return nil, err
	}
	fee, err := fees.TotalFee(t)
	if err != nil {
		return nil, err
	}
	if in < out || in-out < fee {
		return nil, fmt.Errorf("%w: inputs %d, outputs %d, fee %d", ErrInsufficientFunds, in, out, fee)
	}

	report := &BalanceReport{TotalIn: in, TotalOut: out, Fee: in - out}
	addr, ok := policy.ChangeAddress()
	if !ok || in-out == fee {
		return report, nil
	}

	feeWithChange, err := fees.Calculate(t.Certificate, len(t.Inputs), len(t.Outputs)+1)
	if err != nil {
		return nil, err
	}
	if in-out <= feeWithChange {
		return report, nil
	}
	change := in - out - feeWithChange
	report.Change = &Output{Address: addr, Value: change}
	report.TotalOut = out + change
	report.Fee = feeWithChange
	return report, nil
}

// Balance settles fee and change for t in place. On success t gains at
// most one output, appended after the existing ones. On error t is left
// exactly as it was.
func Balance(t *Transaction, fees *LinearFee, policy ChangePolicy) (*BalanceReport, error) {
	report, err := PlanBalance(t, fees, policy)
	if err != nil {
		return nil, err
	}
	if report.Change != nil {
		t.Outputs = append(t.Outputs, *report.Change)
	}
	return report, nil
}
