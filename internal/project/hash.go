package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a fixed 256-bit content hash.
type Digest [32]byte

// Sum hashes b.
func Sum(b []byte) Digest {
	return Digest(sha256.Sum256(b))
}

// Combine builds a composite key: H( content || dep1 || dep2 ... ).
// The caller keeps deps in a deterministic order.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
