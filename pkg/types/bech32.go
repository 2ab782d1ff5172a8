package types

import (
	"errors"
	"fmt"
	"strings"
)

// Bech32 errors.
var (
	ErrBech32Checksum = errors.New("bech32: invalid checksum")
	ErrBech32HRP      = errors.New("bech32: unexpected human-readable part")
	ErrBech32Format   = errors.New("bech32: malformed string")
)

// bech32Alphabet is the BIP-173 character set; index = 5-bit value.
const bech32Alphabet = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

const bech32ChecksumLen = 6

// bech32Values maps an ASCII character to its 5-bit value, or -1.
var bech32Values = func() (t [128]int8) {
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(bech32Alphabet); i++ {
		t[bech32Alphabet[i]] = int8(i)
	}
	return t
}()

// Bech32Encode encodes data under the given human-readable part.
// There is no upper bound on the payload length: witnesses do not fit
// in the 90 characters BIP-173 allows for addresses.
func Bech32Encode(hrp string, data []byte) (string, error) {
	if err := checkHRP(hrp); err != nil {
		return "", err
	}

	groups, err := regroupBits(data, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("bech32: regroup: %w", err)
	}
	sum := bech32Checksum(hrp, groups)

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(groups) + len(sum))
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, g := range append(groups, sum...) {
		sb.WriteByte(bech32Alphabet[g])
	}
	return sb.String(), nil
}

// Bech32Decode splits s into its human-readable part and payload bytes,
// verifying the checksum.
func Bech32Decode(s string) (string, []byte, error) {
	if s == "" {
		return "", nil, fmt.Errorf("%w: empty string", ErrBech32Format)
	}
	if strings.ToLower(s) != s && strings.ToUpper(s) != s {
		return "", nil, fmt.Errorf("%w: mixed case", ErrBech32Format)
	}
	s = strings.ToLower(s)

	sep := strings.LastIndexByte(s, '1')
	if sep < 1 {
		return "", nil, fmt.Errorf("%w: missing separator", ErrBech32Format)
	}
	if len(s)-sep-1 < bech32ChecksumLen {
		return "", nil, fmt.Errorf("%w: too short", ErrBech32Format)
	}
	hrp := s[:sep]
	if err := checkHRP(hrp); err != nil {
		return "", nil, err
	}

	body := s[sep+1:]
	groups := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c >= 128 || bech32Values[c] < 0 {
			return "", nil, fmt.Errorf("%w: invalid character %q", ErrBech32Format, c)
		}
		groups[i] = byte(bech32Values[c])
	}

	if bech32Polymod(append(expandHRP(hrp), groups...)) != 1 {
		return "", nil, ErrBech32Checksum
	}

	data, err := regroupBits(groups[:len(groups)-bech32ChecksumLen], 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBech32Format, err)
	}
	return hrp, data, nil
}

// Bech32DecodeHRP decodes s and requires its human-readable part to be hrp.
func Bech32DecodeHRP(hrp, s string) ([]byte, error) {
	got, data, err := Bech32Decode(s)
	if err != nil {
		return nil, err
	}
	if got != hrp {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrBech32HRP, got, hrp)
	}
	return data, nil
}

func checkHRP(hrp string) error {
	if hrp == "" {
		return fmt.Errorf("%w: empty human-readable part", ErrBech32Format)
	}
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return fmt.Errorf("%w: invalid human-readable character %q", ErrBech32Format, hrp[i])
		}
	}
	return nil
}

func bech32Polymod(values []byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i, g := range gen {
			if (top>>uint(i))&1 == 1 {
				chk ^= g
			}
		}
	}
	return chk
}

func expandHRP(hrp string) []byte {
	out := make([]byte, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out[i] = hrp[i] >> 5
		out[len(hrp)+1+i] = hrp[i] & 31
	}
	return out
}

func bech32Checksum(hrp string, groups []byte) []byte {
	values := append(expandHRP(hrp), groups...)
	values = append(values, make([]byte, bech32ChecksumLen)...)
	mod := bech32Polymod(values) ^ 1
	sum := make([]byte, bech32ChecksumLen)
	for i := range sum {
		sum[i] = byte(mod>>uint(5*(5-i))) & 31
	}
	return sum
}

// regroupBits repacks data from groups of from bits into groups of to bits.
// With pad set, a trailing partial group is zero-filled; otherwise any
// leftover bits must be zero padding shorter than one input group.
func regroupBits(data []byte, from, to uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	mask := uint32(1)<<to - 1
	out := make([]byte, 0, (uint(len(data))*from+to-1)/to)

	for _, b := range data {
		if uint32(b)>>from != 0 {
			return nil, fmt.Errorf("value %d exceeds %d bits", b, from)
		}
		acc = acc<<from | uint32(b)
		bits += from
		for bits >= to {
			bits -= to
			out = append(out, byte(acc>>bits&mask))
		}
	}

	switch {
	case pad && bits > 0:
		out = append(out, byte(acc<<(to-bits)&mask))
	case !pad && (bits >= from || acc<<(to-bits)&mask != 0):
		return nil, fmt.Errorf("non-zero padding")
	}
	return out, nil
}
