package tx

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CertificateKind identifies the certificate attached to a transaction.
type CertificateKind uint8

const (
	CertPoolRegistration     CertificateKind = 0x01
	CertPoolRetirement       CertificateKind = 0x02
	CertPoolUpdate           CertificateKind = 0x03
	CertStakeDelegation      CertificateKind = 0x04
	CertOwnerStakeDelegation CertificateKind = 0x05
	CertVotePlan             CertificateKind = 0x06
	CertVoteCast             CertificateKind = 0x07
)

var certificateNames = map[CertificateKind]string{
	CertPoolRegistration:     "pool-registration",
	CertPoolRetirement:       "pool-retirement",
	CertPoolUpdate:           "pool-update",
	CertStakeDelegation:      "stake-delegation",
	CertOwnerStakeDelegation: "owner-stake-delegation",
	CertVotePlan:             "vote-plan",
	CertVoteCast:             "vote-cast",
}

// OverridableCertificates lists the kinds whose fee may differ from the
// default certificate fee.
var OverridableCertificates = []CertificateKind{
	CertPoolRegistration,
	CertStakeDelegation,
	CertOwnerStakeDelegation,
	CertVotePlan,
	CertVoteCast,
}

// String returns the kebab-case name of the kind.
func (k CertificateKind) String() string {
	if name, ok := certificateNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CertificateKind(%d)", uint8(k))
}

// Overridable reports whether the fee schedule may price this kind on its own.
func (k CertificateKind) Overridable() bool {
	for _, o := range OverridableCertificates {
		if o == k {
			return true
		}
	}
	return false
}

// ParseCertificateKind maps a kebab-case name back to its kind.
func ParseCertificateKind(s string) (CertificateKind, error) {
	for k, name := range certificateNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown certificate kind %q", s)
}

// MarshalJSON encodes the kind by name.
func (k CertificateKind) MarshalJSON() ([]byte, error) {
	if _, ok := certificateNames[k]; !ok {
		return nil, fmt.Errorf("unknown certificate kind %d", uint8(k))
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name.
func (k *CertificateKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCertificateKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Certificate is an opaque ledger certificate. Only its kind matters here;
// the payload is committed to by the signing bytes.
type Certificate struct {
	Kind    CertificateKind
	Payload []byte
}

type certificateJSON struct {
	Kind    CertificateKind `json:"kind"`
	Payload string          `json:"payload"`
}

// MarshalJSON encodes the certificate with a hex payload.
func (c Certificate) MarshalJSON() ([]byte, error) {
	return json.Marshal(certificateJSON{Kind: c.Kind, Payload: hex.EncodeToString(c.Payload)})
}

// UnmarshalJSON decodes a certificate with a hex payload.
func (c *Certificate) UnmarshalJSON(data []byte) error {
	var j certificateJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	payload, err := hex.DecodeString(j.Payload)
	if err != nil {
		return fmt.Errorf("certificate payload: %w", err)
	}
	c.Kind = j.Kind
	c.Payload = payload
	return nil
}
