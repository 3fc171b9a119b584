// Package secretdecryptor implements the Secret Decryptor component
// (spec.md §4.1): wrapping/unwrapping the PEK list against a Boot Key,
// and decrypting per-record secret blobs against a resolved PEK list. It
// also ships DefaultCryptoPrimitives, a real, non-placeholder
// implementation of the pkg/interfaces.CryptoPrimitives collaborator —
// spec.md explicitly keeps "the decryptor's cryptographic primitives"
// external, the same way the teacher separates its EncryptionService
// interface (pkg/encryption) from a concrete implementation
// (internal/encryption), so this package owns the boundary and a stdlib
// crypto/aes + crypto/rc4 implementation of it (SPEC_FULL.md §3).
package secretdecryptor

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rc4"
	"errors"
	"io"

	"github.com/noahhai/DSInternals/pkg/interfaces"
)

// DefaultCryptoPrimitives wraps PEK list material with AES-GCM and
// decrypts per-object secret blobs with RC4 keyed directly off the PEK,
// mirroring the two cipher families DSInternals-shaped secret stores
// actually carry on disk.
type DefaultCryptoPrimitives struct{}

// NewDefaultCryptoPrimitives builds the default primitives.
func NewDefaultCryptoPrimitives() *DefaultCryptoPrimitives {
	return &DefaultCryptoPrimitives{}
}

var _ interfaces.CryptoPrimitives = (*DefaultCryptoPrimitives)(nil)

func (DefaultCryptoPrimitives) WrapKey(wrappingKey, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(normalizeAESKey(wrappingKey))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (DefaultCryptoPrimitives) UnwrapKey(wrappingKey, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(normalizeAESKey(wrappingKey))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("secretdecryptor: wrapped PEK list ciphertext too short")
	}
	nonce, rest := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, rest, nil)
}

func (DefaultCryptoPrimitives) DecryptSecret(pek, blob []byte) ([]byte, error) {
	if len(pek) == 0 {
		return nil, errors.New("secretdecryptor: empty PEK")
	}
	c, err := rc4.NewCipher(pek)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(blob))
	c.XORKeyStream(out, blob)
	return out, nil
}

// normalizeAESKey coerces key material to a valid AES key size (16, 24,
// or 32 bytes), since Boot Keys and PEKs in this core are not guaranteed
// to already be one of those lengths.
func normalizeAESKey(key []byte) []byte {
	switch {
	case len(key) >= 32:
		return key[:32]
	case len(key) >= 24:
		return key[:24]
	default:
		k := make([]byte, 16)
		copy(k, key)
		return k
	}
}
