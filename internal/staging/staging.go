// Package staging stores a transaction between the offline steps that
// finalize, witness and seal it.
//
// A staged transaction moves through three states:
//
//	balancing --Finalize--> finalizing --Seal--> sealed
//
// Inputs and outputs can only change while balancing; witnesses are only
// accepted while finalizing, in input order.
package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Klingon-tech/klingnet-tx/internal/log"
	"github.com/Klingon-tech/klingnet-tx/internal/output"
	"github.com/Klingon-tech/klingnet-tx/pkg/tx"
	"github.com/Klingon-tech/klingnet-tx/pkg/types"
	"github.com/Klingon-tech/klingnet-tx/pkg/witness"
)

// Version is the staging file format version.
const Version = 1

// State is the position of a staged transaction in its lifecycle.
type State string

const (
	StateBalancing  State = "balancing"
	StateFinalizing State = "finalizing"
	StateSealed     State = "sealed"
)

// Staging errors.
var (
	ErrMalformed        = errors.New("malformed staging file")
	ErrWrongState       = errors.New("operation not allowed in this staging state")
	ErrTooManyWitnesses = errors.New("more witnesses than inputs")
	ErrMissingWitnesses = errors.New("missing witnesses")
	ErrChainMismatch    = errors.New("witness is for another chain")
)

// Staging is a transaction under construction plus the witnesses
// collected for it.
type Staging struct {
	Version     int             `json:"version"`
	State       State           `json:"state"`
	Transaction *tx.Transaction `json:"transaction"`
	// Witnesses holds bech32 encoded witnesses; entry i authorizes input i.
	Witnesses []string `json:"witnesses"`
}

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

// New stages t in the balancing state.
func New(t *tx.Transaction) *Staging {
	if t == nil {
		t = &tx.Transaction{}
	}
	return &Staging{
		Version:     Version,
		State:       StateBalancing,
		Transaction: t,
		Witnesses:   []string{},
	}
}

// Load reads a staged transaction from path, or from standard input when
// path is empty.
func Load(path string) (*Staging, error) {
	var r io.Reader = stdin
	name := "<stdin>"
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("read staging: %w", err)
		}
		defer f.Close()
		r, name = f, path
	}

	var s Staging
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	log.Staging.Debug().
		Str("source", name).
		Str("state", string(s.State)).
		Int("inputs", len(s.Transaction.Inputs)).
		Int("witnesses", len(s.Witnesses)).
		Msg("Staging loaded")
	return &s, nil
}

func (s *Staging) check() error {
	if s.Version != Version {
		return fmt.Errorf("unsupported version %d", s.Version)
	}
	switch s.State {
	case StateBalancing, StateFinalizing, StateSealed:
	default:
		return fmt.Errorf("unknown state %q", s.State)
	}
	if s.Transaction == nil {
		return fmt.Errorf("no transaction")
	}
	if len(s.Witnesses) > len(s.Transaction.Inputs) {
		return ErrTooManyWitnesses
	}
	if s.Witnesses == nil {
		s.Witnesses = []string{}
	}
	return nil
}

// Store writes the staged transaction to path, or to standard output when
// path is empty.
func (s *Staging) Store(path string) error {
	return output.Write(path, 0644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	})
}

func (s *Staging) requireState(want State, op string) error {
	if s.State != want {
		return fmt.Errorf("%w: %s needs %s, transaction is %s", ErrWrongState, op, want, s.State)
	}
	return nil
}

// SignDataHash returns the digest witnesses must sign.
func (s *Staging) SignDataHash() types.Hash {
	return s.Transaction.SignDataHash()
}

// Finalize balances the transaction against fees, adding change according
// to policy, and moves it to the finalizing state. Nothing changes on
// error.
func (s *Staging) Finalize(fees *tx.LinearFee, policy tx.ChangePolicy) (*tx.BalanceReport, error) {
	if err := s.requireState(StateBalancing, "finalize"); err != nil {
		return nil, err
	}
	if err := s.Transaction.Validate(); err != nil {
		return nil, err
	}
	report, err := tx.Balance(s.Transaction, fees, policy)
	if err != nil {
		return nil, err
	}
	s.State = StateFinalizing

	ev := log.Staging.Info().
		Uint64("total_in", report.TotalIn).
		Uint64("total_out", report.TotalOut).
		Uint64("fee", report.Fee).
		Str("policy", policy.String())
	if report.Change != nil {
		ev = ev.Uint64("change", report.Change.Value)
	}
	ev.Msg("Transaction finalized")
	return report, nil
}

// AddWitness decodes text and records it as the witness of the next
// unwitnessed input.
func (s *Staging) AddWitness(text string) (*witness.Witness, error) {
	if err := s.requireState(StateFinalizing, "add-witness"); err != nil {
		return nil, err
	}
	if len(s.Witnesses) >= len(s.Transaction.Inputs) {
		return nil, fmt.Errorf("%w: transaction has %d inputs", ErrTooManyWitnesses, len(s.Transaction.Inputs))
	}
	w, err := witness.Decode(text)
	if err != nil {
		return nil, err
	}
	if len(s.Witnesses) > 0 {
		first, err := witness.Decode(s.Witnesses[0])
		if err != nil {
			return nil, fmt.Errorf("%w: witness 0: %v", ErrMalformed, err)
		}
		if first.ChainID != w.ChainID {
			return nil, fmt.Errorf("%w: %s, expected %s", ErrChainMismatch, w.ChainID, first.ChainID)
		}
	}

	encoded, err := witness.Encode(w)
	if err != nil {
		return nil, err
	}
	s.Witnesses = append(s.Witnesses, encoded)
	log.Staging.Info().
		Int("input", len(s.Witnesses)-1).
		Str("kind", w.Kind.String()).
		Msg("Witness added")
	return w, nil
}

// Seal locks the transaction once every input has a witness.
func (s *Staging) Seal() error {
	if err := s.requireState(StateFinalizing, "seal"); err != nil {
		return err
	}
	if n, want := len(s.Witnesses), len(s.Transaction.Inputs); n != want {
		return fmt.Errorf("%w: have %d of %d", ErrMissingWitnesses, n, want)
	}
	s.State = StateSealed
	log.Staging.Info().Str("id", s.SignDataHash().String()).Msg("Transaction sealed")
	return nil
}
