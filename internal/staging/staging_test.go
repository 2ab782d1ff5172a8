package staging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Klingon-tech/klingnet-tx/pkg/crypto"
	"github.com/Klingon-tech/klingnet-tx/pkg/tx"
	"github.com/Klingon-tech/klingnet-tx/pkg/types"
	"github.com/Klingon-tech/klingnet-tx/pkg/witness"
)

var testChain = types.ChainID{0xc4}

// twoInputs stages 1000 in, 500 out.
func twoInputs() *Staging {
	return New(tx.NewBuilder().
		AddUTXOInput(types.Outpoint{TxID: types.Hash{1}}, 600).
		AddAccountInput(types.Address{2}, 400).
		AddOutput(types.Address{9}, 500).
		Build())
}

func signWitness(t *testing.T, s *Staging, chain types.ChainID) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	w, err := witness.Build(witness.UTXO(), chain, s.SignDataHash(), key)
	if err != nil {
		t.Fatal(err)
	}
	text, err := witness.Encode(w)
	if err != nil {
		t.Fatal(err)
	}
	return text
}

func TestLifecycle(t *testing.T) {
	s := twoInputs()
	report, err := s.Finalize(tx.NewLinearFee(2, 1, 0, nil), tx.ReturnTo(types.Address{7}))
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	// fee with change = 2 + 1*(2+2) = 6
	if report.Fee != 6 || report.Change == nil || report.Change.Value != 494 {
		t.Fatalf("report = %+v", report)
	}
	if s.State != StateFinalizing {
		t.Fatalf("state = %s", s.State)
	}

	if err := s.Seal(); !errors.Is(err, ErrMissingWitnesses) {
		t.Fatalf("Seal without witnesses: err = %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.AddWitness(signWitness(t, s, testChain)); err != nil {
			t.Fatalf("AddWitness %d: %v", i, err)
		}
	}
	if _, err := s.AddWitness(signWitness(t, s, testChain)); !errors.Is(err, ErrTooManyWitnesses) {
		t.Fatalf("third witness: err = %v", err)
	}
	if err := s.Seal(); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if s.State != StateSealed {
		t.Errorf("state = %s", s.State)
	}
}

func TestWrongState(t *testing.T) {
	s := twoInputs()
	if _, err := s.AddWitness(signWitness(t, s, testChain)); !errors.Is(err, ErrWrongState) {
		t.Errorf("AddWitness while balancing: err = %v", err)
	}
	if err := s.Seal(); !errors.Is(err, ErrWrongState) {
		t.Errorf("Seal while balancing: err = %v", err)
	}

	fees := tx.NewLinearFee(0, 0, 0, nil)
	if _, err := s.Finalize(fees, tx.Discard()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Finalize(fees, tx.Discard()); !errors.Is(err, ErrWrongState) {
		t.Errorf("second Finalize: err = %v", err)
	}
}

func TestFinalize_InsufficientFundsLeavesStaging(t *testing.T) {
	s := twoInputs()
	_, err := s.Finalize(tx.NewLinearFee(501, 0, 0, nil), tx.ReturnTo(types.Address{7}))
	if !errors.Is(err, tx.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if s.State != StateBalancing || len(s.Transaction.Outputs) != 1 {
		t.Errorf("staging modified: state %s, %d outputs", s.State, len(s.Transaction.Outputs))
	}
}

func TestFinalize_InvalidTransaction(t *testing.T) {
	s := New(nil)
	if _, err := s.Finalize(tx.NewLinearFee(0, 0, 0, nil), tx.Discard()); !errors.Is(err, tx.ErrNoInputs) {
		t.Errorf("err = %v, want ErrNoInputs", err)
	}
}

func TestAddWitness_Rejects(t *testing.T) {
	s := twoInputs()
	if _, err := s.Finalize(tx.NewLinearFee(0, 0, 0, nil), tx.Discard()); err != nil {
		t.Fatal(err)
	}

	if _, err := s.AddWitness("witness1notvalid"); !errors.Is(err, witness.ErrDecode) {
		t.Errorf("garbage witness: err = %v", err)
	}
	if _, err := s.AddWitness(signWitness(t, s, testChain)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddWitness(signWitness(t, s, types.ChainID{0xee})); !errors.Is(err, ErrChainMismatch) {
		t.Errorf("other chain: err = %v", err)
	}
	if len(s.Witnesses) != 1 {
		t.Errorf("rejected witnesses were recorded: %d", len(s.Witnesses))
	}
}

func TestStoreLoad_File(t *testing.T) {
	s := twoInputs()
	if _, err := s.Finalize(tx.NewLinearFee(0, 1, 0, nil), tx.ReturnTo(types.Address{7})); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddWitness(signWitness(t, s, testChain)); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "staging.json")
	if err := s.Store(path); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.State != StateFinalizing || len(got.Witnesses) != 1 {
		t.Errorf("loaded state %s with %d witnesses", got.State, len(got.Witnesses))
	}
	if got.SignDataHash() != s.SignDataHash() {
		t.Error("digest changed across store/load")
	}
}

func TestLoad_Stdin(t *testing.T) {
	prev := stdin
	defer func() { stdin = prev }()
	stdin = strings.NewReader(`{"version":1,"state":"balancing","transaction":{"inputs":[],"outputs":[]}}`)

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.State != StateBalancing || s.Witnesses == nil {
		t.Errorf("staging = %+v", s)
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := map[string]string{
		"not json":      "nope",
		"wrong version": `{"version":2,"state":"balancing","transaction":{}}`,
		"bad state":     `{"version":1,"state":"signed","transaction":{}}`,
		"no tx":         `{"version":1,"state":"balancing"}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "staging.json")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	s := twoInputs()
	info, err := s.Info(tx.NewLinearFee(10, 1, 0, nil))
	if err != nil {
		t.Fatal(err)
	}
	if info.TotalIn != 1000 || info.TotalOut != 500 || info.Fee != 500 {
		t.Errorf("info = %+v", info)
	}
	if info.RequiredFee != 13 {
		t.Errorf("required fee = %d, want 13", info.RequiredFee)
	}
	if info.ID != s.SignDataHash() {
		t.Error("info id is not the sign-data hash")
	}
}
