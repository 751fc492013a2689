package ripemd

import (
	"encoding"
	"encoding/binary"
)

const (
	magic         = "rmd\x03"
	marshaledSize = len(magic) + 5*4 + BlockSize + 8
)

var (
	_ encoding.BinaryMarshaler   = (*State)(nil)
	_ encoding.BinaryUnmarshaler = (*State)(nil)
)

// MarshalBinary encodes the state so that a computation can be resumed
// later, possibly in another process.
func (s *State) MarshalBinary() ([]byte, error) {
	return s.AppendBinary(make([]byte, 0, marshaledSize))
}

// AppendBinary appends the encoded state to b.
func (s *State) AppendBinary(b []byte) ([]byte, error) {
	b = append(b, magic...)
	for _, v := range s.h {
		b = binary.BigEndian.AppendUint32(b, v)
	}
	b = append(b, s.x[:s.nx]...)
	b = append(b, make([]byte, len(s.x)-s.nx)...)
	b = binary.BigEndian.AppendUint64(b, s.len)
	return b, nil
}

// UnmarshalBinary restores a state produced by MarshalBinary.
func (s *State) UnmarshalBinary(b []byte) error {
	if len(b) < len(magic) || string(b[:len(magic)]) != magic {
		return ErrInvalidStateIdentifier
	}
	if len(b) != marshaledSize {
		return ErrInvalidStateSize
	}
	b = b[len(magic):]
	for i := range s.h {
		s.h[i] = binary.BigEndian.Uint32(b)
		b = b[4:]
	}
	copy(s.x[:], b[:BlockSize])
	b = b[BlockSize:]
	s.len = binary.BigEndian.Uint64(b)
	s.nx = int(s.len % BlockSize)
	return nil
}
