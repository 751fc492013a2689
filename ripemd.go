// Package ripemd implements the RIPEMD-160 message digest.
//
// A State absorbs data incrementally through Write and can produce the
// digest of everything written so far at any time without disturbing the
// stream, so callers may keep writing after reading a digest. States are
// plain values: Clone is a deep copy and clones evolve independently.
//
// A single State is not safe for concurrent writes; distinct States are
// independent and may be used from different goroutines.
package ripemd

import (
	"crypto"
	"encoding/binary"
	"hash"
)

func init() {
	crypto.RegisterHash(crypto.RIPEMD160, func() hash.Hash { return New() })
}

const (
	// Size is the size of a RIPEMD-160 digest in bytes.
	Size = 20

	// BlockSize is the block size consumed by the compression function.
	BlockSize = 64

	// OID is the registered ASN.1 object identifier of RIPEMD-160.
	OID = "1.3.36.3.2.1"
)

// Initial chaining value.
const (
	init0 = 0x67452301
	init1 = 0xefcdab89
	init2 = 0x98badcfe
	init3 = 0x10325476
	init4 = 0xc3d2e1f0
)

// State is the running RIPEMD-160 computation.
type State struct {
	h   [5]uint32       // chaining value
	x   [BlockSize]byte // pending bytes of an incomplete block
	nx  int             // number of pending bytes in x
	len uint64          // total bytes written
}

var _ hash.Hash = (*State)(nil)

// New returns a State holding the initial chaining value.
func New() *State {
	s := new(State)
	s.Reset()
	return s
}

// Reset returns the state to its initial value.
func (s *State) Reset() {
	s.h = [5]uint32{init0, init1, init2, init3, init4}
	s.nx = 0
	s.len = 0
}

// Size returns the digest size in bytes.
func (s *State) Size() int { return Size }

// BlockSize returns the block size in bytes.
func (s *State) BlockSize() int { return BlockSize }

// Len returns the number of bytes written since the last Reset.
func (s *State) Len() uint64 { return s.len }

// Write absorbs p into the state. It never returns an error.
func (s *State) Write(p []byte) (int, error) {
	nn := len(p)
	s.len += uint64(nn)

	if s.nx > 0 {
		n := copy(s.x[s.nx:], p)
		s.nx += n
		if s.nx == BlockSize {
			block(&s.h, s.x[:])
			s.nx = 0
		}
		p = p[n:]
	}
	if len(p) >= BlockSize {
		n := len(p) &^ (BlockSize - 1)
		block(&s.h, p[:n])
		p = p[n:]
	}
	if len(p) > 0 {
		s.nx = copy(s.x[:], p)
	}
	return nn, nil
}

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	c := *s
	return &c
}

// Sum appends the digest of the data written so far to b. The state is
// left untouched.
func (s *State) Sum(b []byte) []byte {
	d := s.Checksum()
	return append(b, d[:]...)
}

// Checksum returns the digest of the data written so far. The state is
// left untouched.
func (s *State) Checksum() [Size]byte {
	d := *s

	// 0x80, zero fill to 56 mod 64, then the bit length.
	var tmp [BlockSize + 8]byte
	tmp[0] = 0x80
	var padLen uint64
	if r := d.len % BlockSize; r < 56 {
		padLen = 56 - r
	} else {
		padLen = BlockSize + 56 - r
	}
	binary.LittleEndian.PutUint64(tmp[padLen:], d.len<<3)
	d.Write(tmp[:padLen+8])

	var out [Size]byte
	for i, v := range d.h {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// Sum160 returns the RIPEMD-160 digest of data.
func Sum160(data []byte) [Size]byte {
	var s State
	s.Reset()
	s.Write(data)
	return s.Checksum()
}
