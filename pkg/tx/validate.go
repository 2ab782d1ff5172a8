package tx

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-tx/pkg/types"
)

// Limits on transaction shape.
const (
	MaxInputs  = 255
	MaxOutputs = 255
)

// Validation errors.
var (
	ErrNoInputs         = errors.New("transaction has no inputs")
	ErrTooManyInputs    = errors.New("too many inputs")
	ErrTooManyOutputs   = errors.New("too many outputs")
	ErrDuplicateInput   = errors.New("duplicate input")
	ErrZeroOutput       = errors.New("output value is zero")
	ErrUnknownInputKind = errors.New("unknown input kind")
	ErrMissingAccount   = errors.New("account input has no account")
)

// Validate checks the structural rules a transaction must meet before it
// can be balanced. Values are not checked against any ledger.
func (tx *Transaction) Validate() error {
	if len(tx.Inputs) == 0 {
		return ErrNoInputs
	}
	if len(tx.Inputs) > MaxInputs {
		return fmt.Errorf("%w: %d inputs, max %d", ErrTooManyInputs, len(tx.Inputs), MaxInputs)
	}
	// Balancing may add one output, so leave room for it.
	if len(tx.Outputs) >= MaxOutputs {
		return fmt.Errorf("%w: %d outputs, max %d", ErrTooManyOutputs, len(tx.Outputs), MaxOutputs-1)
	}

	seenUTXO := make(map[types.Outpoint]bool, len(tx.Inputs))
	seenAccount := make(map[types.Address]bool)
	for i, in := range tx.Inputs {
		switch in.Kind {
		case InputUTXO:
			if seenUTXO[in.PrevOut] {
				return fmt.Errorf("input %d (%s): %w", i, in.PrevOut, ErrDuplicateInput)
			}
			seenUTXO[in.PrevOut] = true
		case InputAccount:
			if in.Account.IsZero() {
				return fmt.Errorf("input %d: %w", i, ErrMissingAccount)
			}
			if seenAccount[in.Account] {
				return fmt.Errorf("input %d (%s): %w", i, in.Account, ErrDuplicateInput)
			}
			seenAccount[in.Account] = true
		default:
			return fmt.Errorf("input %d: %w: %d", i, ErrUnknownInputKind, in.Kind)
		}
	}

	for i, out := range tx.Outputs {
		if out.Value == 0 {
			return fmt.Errorf("output %d: %w", i, ErrZeroOutput)
		}
	}
	return nil
}
