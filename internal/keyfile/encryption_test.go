package keyfile

import (
	"bytes"
	"testing"
)

// fastParams returns low-cost Argon2 params for fast tests.
func fastParams() EncryptionParams {
	return EncryptionParams{
		Memory:      64, // 64 KiB (minimal)
		Iterations:  1,
		Parallelism: 1,
	}
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	plaintext := []byte("secret key material")
	password := []byte("strong-password-123")

	encrypted, err := encrypt(plaintext, password, fastParams())
	if err != nil {
		t.Fatalf("encrypt() error: %v", err)
	}
	decrypted, err := decrypt(encrypted, password)
	if err != nil {
		t.Fatalf("decrypt() error: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("decrypted = %q, want %q", decrypted, plaintext)
	}
}

func TestDecrypt_WrongPassword(t *testing.T) {
	encrypted, err := encrypt([]byte("data"), []byte("right"), fastParams())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := decrypt(encrypted, []byte("wrong")); err == nil {
		t.Error("decrypt with wrong password should fail")
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	encrypted, err := encrypt([]byte("data"), []byte("pass"), fastParams())
	if err != nil {
		t.Fatal(err)
	}
	encrypted[len(encrypted)-1] ^= 0xff
	if _, err := decrypt(encrypted, []byte("pass")); err == nil {
		t.Error("decrypt of tampered ciphertext should fail")
	}
}

func TestDecrypt_TooShort(t *testing.T) {
	if _, err := decrypt(make([]byte, headerSize), []byte("pass")); err == nil {
		t.Error("decrypt of short data should fail")
	}
}

func TestEncrypt_RandomSalt(t *testing.T) {
	a, err := encrypt([]byte("same"), []byte("pass"), fastParams())
	if err != nil {
		t.Fatal(err)
	}
	b, err := encrypt([]byte("same"), []byte("pass"), fastParams())
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same data should differ")
	}
}
