package kv

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest fingerprints a stored value for CompareAndSwap and HTTP ETags.
func Digest(value string) string {
	sum := blake2b.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// DigestOf returns Digest(value) for a present value and "" for an absent one,
// matching the oldDigest convention of CompareAndSwap.
func DigestOf(value string, ok bool) string {
	if !ok {
		return ""
	}
	return Digest(value)
}
