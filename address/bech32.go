package address

import (
	"errors"
	"fmt"
	"strings"
)

// BIP-173 bech32.
const (
	bech32Charset     = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
	bech32MaxLen      = 90
	bech32ChecksumLen = 6
)

var bech32Gen = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

// bech32Encode encodes data (5-bit groups) with the given human-readable part.
func bech32Encode(hrp string, data []byte) (string, error) {
	if err := checkHRP(hrp); err != nil {
		return "", err
	}
	n := len(hrp) + 1 + len(data) + bech32ChecksumLen
	if n > bech32MaxLen {
		return "", fmt.Errorf("%w: %d characters exceeds %d", ErrInvalidAddress, n, bech32MaxLen)
	}

	var b strings.Builder
	b.Grow(n)
	b.WriteString(hrp)
	b.WriteByte('1')
	for _, v := range data {
		if v >= 32 {
			return "", fmt.Errorf("address: bech32: invalid data byte %d", v)
		}
		b.WriteByte(bech32Charset[v])
	}
	sum := bech32Checksum(hrp, data)
	for _, v := range sum {
		b.WriteByte(bech32Charset[v])
	}
	return b.String(), nil
}

// bech32Decode splits s into its human-readable part and 5-bit data,
// verifying length, case and checksum.
func bech32Decode(s string) (string, []byte, error) {
	if len(s) > bech32MaxLen {
		return "", nil, fmt.Errorf("%w: %d characters exceeds %d", ErrInvalidAddress, len(s), bech32MaxLen)
	}
	if strings.ToLower(s) != s && strings.ToUpper(s) != s {
		return "", nil, fmt.Errorf("%w: mixed case", ErrInvalidAddress)
	}
	s = strings.ToLower(s)

	sep := strings.LastIndexByte(s, '1')
	if sep < 1 || sep+1+bech32ChecksumLen > len(s) {
		return "", nil, fmt.Errorf("%w: missing separator or checksum", ErrInvalidAddress)
	}
	hrp := s[:sep]
	if err := checkHRP(hrp); err != nil {
		return "", nil, err
	}

	data := make([]byte, len(s)-sep-1)
	for i := range data {
		c := s[sep+1+i]
		v := strings.IndexByte(bech32Charset, c)
		if v < 0 {
			return "", nil, fmt.Errorf("%w: invalid character %q", ErrInvalidAddress, c)
		}
		data[i] = byte(v)
	}

	if bech32Polymod(hrp, data) != 1 {
		return "", nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
	}
	return hrp, data[:len(data)-bech32ChecksumLen], nil
}

func checkHRP(hrp string) error {
	if hrp == "" {
		return fmt.Errorf("%w: empty prefix", ErrInvalidAddress)
	}
	for i := 0; i < len(hrp); i++ {
		if c := hrp[i]; c < 33 || c > 126 {
			return fmt.Errorf("%w: invalid prefix character %q", ErrInvalidAddress, c)
		}
	}
	return nil
}

// bech32Polymod runs the BCH checksum over the expanded prefix followed
// by every group in turn.
func bech32Polymod(hrp string, groups ...[]byte) uint32 {
	chk := uint32(1)
	step := func(v byte) {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i, g := range bech32Gen {
			if top>>i&1 == 1 {
				chk ^= g
			}
		}
	}

	for i := 0; i < len(hrp); i++ {
		step(hrp[i] >> 5)
	}
	step(0)
	for i := 0; i < len(hrp); i++ {
		step(hrp[i] & 31)
	}
	for _, g := range groups {
		for _, v := range g {
			step(v)
		}
	}
	return chk
}

func bech32Checksum(hrp string, data []byte) [bech32ChecksumLen]byte {
	mod := bech32Polymod(hrp, data, make([]byte, bech32ChecksumLen)) ^ 1
	var sum [bech32ChecksumLen]byte
	for i := range sum {
		sum[i] = byte(mod>>(5*(bech32ChecksumLen-1-i))) & 31
	}
	return sum
}

var errPadding = errors.New("address: bech32: invalid padding")

// convertBits regroups data from fromBits-wide to toBits-wide values.
// Without pad, leftover bits must be fewer than fromBits and all zero.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var (
		acc  uint32
		bits uint
		mask = uint32(1)<<toBits - 1
		out  = make([]byte, 0, (uint(len(data))*fromBits+toBits-1)/toBits)
	)
	for _, b := range data {
		if uint32(b)>>fromBits != 0 {
			return nil, fmt.Errorf("address: bech32: invalid data byte %d", b)
		}
		acc = acc<<fromBits | uint32(b)
		bits += fromBits
		for ; bits >= toBits; bits -= toBits {
			out = append(out, byte(acc>>(bits-toBits)&mask))
		}
	}

	switch {
	case pad && bits > 0:
		out = append(out, byte(acc<<(toBits-bits)&mask))
	case !pad && (bits >= fromBits || acc<<(toBits-bits)&mask != 0):
		return nil, errPadding
	}
	return out, nil
}
