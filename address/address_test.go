package address

import (
	"encoding/hex"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Private key 1: the public key is the generator point.
const keyOne = "0000000000000000000000000000000000000000000000000000000000000001"

// Use a known valid 32-byte hex key for the remaining tests.
const validKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// --- bech32 tests ---

func TestConvertBits_RoundTrip(t *testing.T) {
	in := []byte{0x00, 0x01, 0xff, 0x80, 0x7f}
	five, err := convertBits(in, 8, 5, true)
	require.NoError(t, err)
	for _, v := range five {
		assert.Less(t, v, byte(32))
	}

	// 40 bits fit exactly, so no padding is involved.
	back, err := convertBits(five, 5, 8, false)
	require.NoError(t, err)
	assert.Equal(t, in, back)
}

func TestConvertBits_InvalidInput(t *testing.T) {
	_, err := convertBits([]byte{32}, 5, 8, false)
	assert.Error(t, err)

	_, err = convertBits([]byte{1}, 5, 8, false)
	assert.Error(t, err, "non-zero padding")
}

func TestBech32Encode_ZeroHash(t *testing.T) {
	addr, err := Encode("gonka", [20]byte{})
	require.NoError(t, err)
	assert.Equal(t, "gonka1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqrk8pql", addr)
}

func TestBech32Decode_Errors(t *testing.T) {
	good, err := Encode("cosmos", Hash160([]byte("x")))
	require.NoError(t, err)

	tests := map[string]string{
		"mixed case":     strings.ToUpper(good[:3]) + good[3:],
		"no separator":   "cosmosqqqqqq",
		"short checksum": "cosmos1qqqq",
		"bad character":  good[:len(good)-1] + "b",
		"bad checksum":   good[:len(good)-1] + flip(good[len(good)-1]),
		"empty prefix":   "1" + good[len("cosmos1"):],
	}
	for name, addr := range tests {
		_, _, err := Decode(addr)
		assert.ErrorIs(t, err, ErrInvalidAddress, name)
	}
}

func TestBech32_LengthLimit(t *testing.T) {
	hash := Hash160([]byte("x"))

	// 51 + 1 + 32 + 6 = 90 characters: the longest valid address.
	longest, err := Encode(strings.Repeat("a", 51), hash)
	require.NoError(t, err)
	assert.Len(t, longest, 90)
	_, got, err := Decode(longest)
	require.NoError(t, err)
	assert.Equal(t, hash, got)

	_, err = Encode(strings.Repeat("a", 52), hash)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	// Build a 91-character string with a valid checksum by hand.
	hrp := strings.Repeat("a", 52)
	five, err := convertBits(hash[:], 8, 5, true)
	require.NoError(t, err)
	var b strings.Builder
	b.WriteString(hrp + "1")
	sum := bech32Checksum(hrp, five)
	for _, v := range append(five, sum[:]...) {
		b.WriteByte(bech32Charset[v])
	}
	require.Len(t, b.String(), 91)
	require.Equal(t, uint32(1), bech32Polymod(hrp, append(five, sum[:]...)))

	_, _, err = Decode(b.String())
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.ErrorContains(t, err, "exceeds 90")
}

func flip(c byte) string {
	if c == 'q' {
		return "p"
	}
	return "q"
}

func TestDecode_UpperCase(t *testing.T) {
	hrp, hash, err := Decode(strings.ToUpper("cosmos1w508d6qejxtdg4y5r3zarvary0c5xw7k6ah60c"))
	require.NoError(t, err)
	assert.Equal(t, "cosmos", hrp)
	assert.Equal(t, "751e76e8199196d454941c45d1b3a323f1433bd6", hex.EncodeToString(hash[:]))
}

func TestDecode_WrongPayloadLength(t *testing.T) {
	five, err := convertBits(make([]byte, 32), 8, 5, true)
	require.NoError(t, err)
	addr, err := bech32Encode("cosmos", five)
	require.NoError(t, err)

	_, _, err = Decode(addr)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

// --- key tests ---

func TestParsePrivateKey_Valid(t *testing.T) {
	key, err := ParsePrivateKey(validKeyHex)
	require.NoError(t, err)
	assert.NotNil(t, key)
}

func TestParsePrivateKey_With0xPrefix(t *testing.T) {
	key, err := ParsePrivateKey("0x" + validKeyHex)
	require.NoError(t, err)
	assert.NotNil(t, key)
}

func TestParsePrivateKey_InvalidHex(t *testing.T) {
	_, err := ParsePrivateKey("not-hex-at-all")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Contains(t, err.Error(), "invalid hex")
}

func TestParsePrivateKey_WrongLength(t *testing.T) {
	_, err := ParsePrivateKey("0123456789abcdef") // 8 bytes
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Contains(t, err.Error(), "must be 32 bytes")
}

func TestParsePrivateKey_Zero(t *testing.T) {
	_, err := ParsePrivateKey(strings.Repeat("00", 32))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

// --- address tests ---

func TestHash160_GeneratorPoint(t *testing.T) {
	pub, err := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	require.NoError(t, err)
	h := Hash160(pub)
	assert.Equal(t, "751e76e8199196d454941c45d1b3a323f1433bd6", hex.EncodeToString(h[:]))
}

func TestFromPrivateKeyHex_KnownKey(t *testing.T) {
	addr, err := FromPrivateKeyHex("cosmos", keyOne)
	require.NoError(t, err)
	assert.Equal(t, "cosmos1w508d6qejxtdg4y5r3zarvary0c5xw7k6ah60c", addr)
}

func TestAddressRoundTrip(t *testing.T) {
	key, err := ParsePrivateKey(validKeyHex)
	require.NoError(t, err)

	addr, err := FromPubKey("gonka", key.PubKey())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr, "gonka1"), "address should start with gonka1, got %s", addr)

	hrp, hash, err := Decode(addr)
	require.NoError(t, err)
	assert.Equal(t, "gonka", hrp)
	assert.Equal(t, Hash160(key.PubKey().SerializeCompressed()), hash)
}

func TestKeyCache(t *testing.T) {
	c := NewKeyCache("cosmos")

	var wg sync.WaitGroup
	infos := make([]*KeyInfo, 16)
	for i := range infos {
		wg.Add(1)
		go func() {
			defer wg.Done()
			infos[i], _ = c.Get(keyOne)
		}()
	}
	wg.Wait()

	for _, ki := range infos {
		require.NotNil(t, ki)
		assert.Same(t, infos[0], ki)
		assert.Equal(t, "cosmos1w508d6qejxtdg4y5r3zarvary0c5xw7k6ah60c", ki.Address)
	}
	assert.Equal(t, 1, c.Len())

	_, err := c.Get("zz")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Equal(t, 1, c.Len())
}
