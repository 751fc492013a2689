package ripemd

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTables(t *testing.T) {
	for name, l := range map[string]*line{"left": &left, "right": &right} {
		for round := 0; round < 5; round++ {
			var seen [16]bool
			for _, w := range l.r[round*16 : round*16+16] {
				require.Less(t, int(w), 16, "%s round %d", name, round)
				seen[w] = true
			}
			for w, ok := range seen {
				assert.True(t, ok, "%s round %d does not select word %d", name, round, w)
			}
			for _, s := range l.s[round*16 : round*16+16] {
				assert.True(t, s >= 5 && s <= 15, "%s round %d shift %d", name, round, s)
			}
		}
	}

	assert.Zero(t, left.k[0])
	assert.Zero(t, right.k[4])
}

func TestRightLineMirrorsFunctions(t *testing.T) {
	samples := [][3]uint32{
		{0, 0, 0},
		{0xffffffff, 0, 0xffffffff},
		{0x01234567, 0x89abcdef, 0xfedcba98},
		{0xdeadbeef, 0x0badf00d, 0xc0ffee00},
	}
	for i := 0; i < 5; i++ {
		for _, s := range samples {
			assert.Equal(t, left.f[i](s[0], s[1], s[2]), right.f[4-i](s[0], s[1], s[2]), "sub-round %d", i)
		}
	}
}

// The empty message pads to a single block: 0x80 followed by zeros.
func TestBlockEmptyMessage(t *testing.T) {
	var p [BlockSize]byte
	p[0] = 0x80

	h := [5]uint32{init0, init1, init2, init3, init4}
	block(&h, p[:])

	var out [Size]byte
	for i, v := range h {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	assert.Equal(t, "9c1185a5c5e9fc54612808977ee8f548b2258d31", hex.EncodeToString(out[:]))
}

func TestBlockIgnoresTrailingPartialBlock(t *testing.T) {
	p := make([]byte, 2*BlockSize+10)
	for i := range p {
		p[i] = byte(i)
	}

	a := [5]uint32{init0, init1, init2, init3, init4}
	b := a
	block(&a, p)
	block(&b, p[:2*BlockSize])
	assert.Equal(t, a, b)
}

func TestWriteKeepsBufferInvariant(t *testing.T) {
	s := New()
	total := 0
	for _, n := range []int{0, 1, 62, 1, 64, 63, 200, 3} {
		s.Write(make([]byte, n))
		total += n
		assert.Less(t, s.nx, BlockSize)
		assert.Equal(t, uint64(total), s.len)
		assert.Equal(t, total%BlockSize, s.nx)
	}
}
