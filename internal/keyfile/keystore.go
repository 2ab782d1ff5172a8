package keyfile

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Klingon-tech/klingnet-tx/pkg/crypto"
)

const keystoreVersion = 1

// keystoreFile is the on-disk JSON format of an encrypted signing key.
type keystoreFile struct {
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	Address      string    `json:"address"`
	EncryptedKey []byte    `json:"encrypted_key"`
}

// EncryptKey returns the encrypted keystore document for key.
func EncryptKey(key *crypto.PrivateKey, password []byte, params EncryptionParams) ([]byte, error) {
	raw := key.Serialize()
	defer zero(raw)

	encrypted, err := encrypt(raw, password, params)
	if err != nil {
		return nil, fmt.Errorf("encrypt key: %w", err)
	}
	kf := keystoreFile{
		Version:      keystoreVersion,
		CreatedAt:    time.Now().UTC(),
		Address:      crypto.AddressFromPubKey(key.PublicKey()).String(),
		EncryptedKey: encrypted,
	}
	return json.MarshalIndent(&kf, "", "  ")
}

func decryptKeystore(data []byte, password []byte) (*crypto.PrivateKey, error) {
	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse keystore: %w", err)
	}
	if kf.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", kf.Version)
	}

	raw, err := decrypt(kf.EncryptedKey, password)
	if err != nil {
		return nil, err
	}
	defer zero(raw)
	return crypto.PrivateKeyFromBytes(raw)
}
