package keyfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Klingon-tech/klingnet-tx/pkg/crypto"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func writeKey(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func password(p string) func() ([]byte, error) {
	return func() ([]byte, error) { return []byte(p), nil }
}

func TestLoad_Formats(t *testing.T) {
	key := newKey(t)
	bech, err := EncodeBech32(key)
	if err != nil {
		t.Fatal(err)
	}
	keystore, err := EncryptKey(key, []byte("pw"), fastParams())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		content string
		opts    Options
	}{
		{"hex", EncodeHex(key), Options{}},
		{"hex with newline", EncodeHex(key) + "\n", Options{}},
		{"upper hex", strings.ToUpper(EncodeHex(key)), Options{}},
		{"bech32", bech, Options{}},
		{"keystore", string(keystore), Options{Password: password("pw")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeKey(t, tt.content), tt.opts)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !bytes.Equal(got.PublicKey(), key.PublicKey()) {
				t.Error("loaded a different key")
			}
		})
	}
}

func TestLoad_Stdin(t *testing.T) {
	key := newKey(t)
	prev := stdin
	stdin = strings.NewReader(EncodeHex(key) + "\n")
	defer func() { stdin = prev }()

	got, err := Load("", Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got.PublicKey(), key.PublicKey()) {
		t.Error("loaded a different key")
	}
}

func TestLoad_Mnemonic(t *testing.T) {
	path := writeKey(t, testMnemonic+"\n")

	first, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want, err := DeriveKey(testMnemonic, "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.PublicKey(), want.PublicKey()) {
		t.Error("mnemonic file and DeriveKey disagree")
	}

	second, err := Load(path, Options{Index: 1})
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(first.PublicKey(), second.PublicKey()) {
		t.Error("index 0 and 1 derived the same key")
	}
}

func TestLoad_Errors(t *testing.T) {
	key := newKey(t)
	keystore, err := EncryptKey(key, []byte("pw"), fastParams())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		content string
		opts    Options
	}{
		{"empty", "  \n", Options{}},
		{"garbage", "not a key", Options{}},
		{"short hex", strings.Repeat("ab", 31), Options{}},
		{"zero scalar", strings.Repeat("00", 32), Options{}},
		{"bad bech32 checksum", "kgxsk1qqqqqqqq", Options{}},
		{"keystore without password", string(keystore), Options{}},
		{"keystore wrong password", string(keystore), Options{Password: password("nope")}},
		{"invalid mnemonic", strings.Repeat("abandon ", 12), Options{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeKey(t, tt.content)
			_, err := Load(path, tt.opts)
			if !errors.Is(err, ErrKeySource) {
				t.Fatalf("err = %v, want ErrKeySource", err)
			}
			if !strings.Contains(err.Error(), path) {
				t.Errorf("error %q does not name %s", err, path)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing")
	if _, err := Load(path, Options{}); !errors.Is(err, ErrKeySource) {
		t.Fatalf("err = %v, want ErrKeySource", err)
	}
}

func TestLoad_PasswordError(t *testing.T) {
	key := newKey(t)
	keystore, err := EncryptKey(key, []byte("pw"), fastParams())
	if err != nil {
		t.Fatal(err)
	}
	fail := func() ([]byte, error) { return nil, errors.New("no tty") }
	_, err = Load(writeKey(t, string(keystore)), Options{Password: fail})
	if !errors.Is(err, ErrKeySource) || !strings.Contains(err.Error(), "no tty") {
		t.Errorf("err = %v", err)
	}
}

func TestDeriveKey_AccountsDiffer(t *testing.T) {
	a, err := DeriveKey(testMnemonic, "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := DeriveKey(testMnemonic, "", 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	c, err := DeriveKey(testMnemonic, "TREZOR", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a.PublicKey(), b.PublicKey()) || bytes.Equal(a.PublicKey(), c.PublicKey()) {
		t.Error("account or passphrase did not change the derived key")
	}
}

func TestGenerateMnemonic(t *testing.T) {
	m, err := GenerateMnemonic()
	if err != nil {
		t.Fatal(err)
	}
	if n := len(strings.Fields(m)); n != 24 {
		t.Errorf("mnemonic has %d words, want 24", n)
	}
	if _, err := DeriveKey(m, "", 0, 0); err != nil {
		t.Errorf("generated mnemonic does not derive: %v", err)
	}
}
