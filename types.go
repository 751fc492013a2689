package ripemd

import (
	"encoding/base64"
	"encoding/hex"
	"time"
)

// Encoding selects the text form of a digest.
type Encoding string

const (
	EncodingHex    Encoding = "hex"
	EncodingBase64 Encoding = "base64"
)

// Format returns d in the encoding. Unknown encodings fall back to hex.
func (e Encoding) Format(d [Size]byte) string {
	if e == EncodingBase64 {
		return base64.StdEncoding.EncodeToString(d[:])
	}
	return hex.EncodeToString(d[:])
}

// Result describes one completed digest computation.
type Result struct {
	RunID    string
	Name     string
	Digest   [Size]byte
	Bytes    uint64
	Duration time.Duration
	Resumed  bool
}

// String returns the digest in the given encoding followed by the name,
// in the layout of the coreutils *sum tools.
func (r Result) String(enc Encoding) string {
	return enc.Format(r.Digest) + "  " + r.Name
}
