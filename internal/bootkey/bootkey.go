// Package bootkey composes the ADLDS Boot Key from two in-database
// fragments stored on the root and schema anchor objects (spec.md §4.1
// "Boot-Key Composer"). It generalizes the teacher's auth.CaHash fixed-
// size hash type (pkg/auth/hash.go) — constant-time equality over a hash
// of combined inputs — to a variable-length wrapping key.
package bootkey

import (
	"crypto/sha256"
	"crypto/subtle"
)

// Compose derives a Boot Key of the given length by hashing the root and
// schema fragments together and stretching the digest to fill it.
func Compose(rootFragment, schemaFragment []byte, length int) []byte {
	h := sha256.New()
	h.Write(rootFragment)
	h.Write(schemaFragment)
	sum := h.Sum(nil)

	key := make([]byte, length)
	for i := range key {
		key[i] = sum[i%len(sum)]
	}
	return key
}

// Equal does a constant-time comparison of two boot keys.
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
