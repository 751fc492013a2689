// Package address derives bech32 account addresses from secp256k1 keys.
//
// An address is bech32(hrp, RIPEMD160(SHA256(compressed public key))),
// the scheme used by Cosmos SDK chains.
package address

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/ineyio/ripemd"
)

// Sentinel errors.
var (
	ErrInvalidKey     = errors.New("address: invalid private key")
	ErrInvalidAddress = errors.New("address: invalid address")
)

// Hash160 returns RIPEMD160(SHA256(data)).
func Hash160(data []byte) [ripemd.Size]byte {
	sha := sha256.Sum256(data)
	return ripemd.Sum160(sha[:])
}

// Encode returns the bech32 address of hash under the prefix hrp.
func Encode(hrp string, hash [ripemd.Size]byte) (string, error) {
	bits5, err := convertBits(hash[:], 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("address: convert bits: %w", err)
	}
	return bech32Encode(hrp, bits5)
}

// Decode parses a bech32 address into its prefix and 20-byte hash.
func Decode(addr string) (string, [ripemd.Size]byte, error) {
	var hash [ripemd.Size]byte

	hrp, bits5, err := bech32Decode(addr)
	if err != nil {
		return "", hash, err
	}
	data, err := convertBits(bits5, 5, 8, false)
	if err != nil {
		return "", hash, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(data) != ripemd.Size {
		return "", hash, fmt.Errorf("%w: payload is %d bytes, want %d", ErrInvalidAddress, len(data), ripemd.Size)
	}
	copy(hash[:], data)
	return hrp, hash, nil
}

// FromPubKey computes the address of a public key.
// Pipeline: compressed pubkey → SHA256 → RIPEMD160 → bech32(hrp).
func FromPubKey(hrp string, pub *secp256k1.PublicKey) (string, error) {
	return Encode(hrp, Hash160(pub.SerializeCompressed()))
}

// FromPrivateKeyHex parses a hex private key and computes its address.
func FromPrivateKeyHex(hrp, hexKey string) (string, error) {
	privKey, err := ParsePrivateKey(hexKey)
	if err != nil {
		return "", err
	}
	return FromPubKey(hrp, privKey.PubKey())
}

// ParsePrivateKey decodes a hex string into a secp256k1 private key.
// A 0x prefix is accepted.
func ParsePrivateKey(hexKey string) (*secp256k1.PrivateKey, error) {
	hexKey = strings.TrimPrefix(hexKey, "0x")
	hexKey = strings.TrimPrefix(hexKey, "0X")

	keyBytes, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex: %v", ErrInvalidKey, err)
	}
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("%w: must be 32 bytes, got %d", ErrInvalidKey, len(keyBytes))
	}

	privKey := secp256k1.PrivKeyFromBytes(keyBytes)
	if privKey.Key.IsZero() {
		return nil, fmt.Errorf("%w: key is zero", ErrInvalidKey)
	}

	return privKey, nil
}

// KeyInfo holds a parsed private key and its derived address.
type KeyInfo struct {
	PrivKey *secp256k1.PrivateKey
	Address string
}

// KeyCache is a thread-safe cache of parsed keys for one prefix.
type KeyCache struct {
	hrp   string
	mu    sync.RWMutex
	cache map[string]*KeyInfo
}

// NewKeyCache creates an empty cache deriving addresses under hrp.
func NewKeyCache(hrp string) *KeyCache {
	return &KeyCache{hrp: hrp, cache: make(map[string]*KeyInfo)}
}

// Get retrieves or creates the KeyInfo for the given hex-encoded private key.
func (c *KeyCache) Get(hexKey string) (*KeyInfo, error) {
	c.mu.RLock()
	ki, ok := c.cache[hexKey]
	c.mu.RUnlock()
	if ok {
		return ki, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after write lock.
	if ki, ok := c.cache[hexKey]; ok {
		return ki, nil
	}

	privKey, err := ParsePrivateKey(hexKey)
	if err != nil {
		return nil, err
	}

	addr, err := FromPubKey(c.hrp, privKey.PubKey())
	if err != nil {
		return nil, err
	}

	ki = &KeyInfo{PrivKey: privKey, Address: addr}
	c.cache[hexKey] = ki
	return ki, nil
}

// Len returns the number of cached keys.
func (c *KeyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
