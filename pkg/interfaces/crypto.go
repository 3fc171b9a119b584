package interfaces

// CryptoPrimitives is the decryptor's cryptographic-primitives
// collaborator, kept external per spec.md §1 the same way the teacher
// separates its EncryptionService interface from a concrete
// implementation. The Secret Decryptor component (internal/secretdecryptor)
// calls through this interface; it never hard-codes an algorithm.
type CryptoPrimitives interface {
	// WrapKey encrypts plaintext key material under wrappingKey.
	WrapKey(wrappingKey, plaintext []byte) ([]byte, error)
	// UnwrapKey decrypts ciphertext key material under wrappingKey.
	UnwrapKey(wrappingKey, ciphertext []byte) ([]byte, error)
	// DecryptSecret decrypts a per-object secret blob using the given PEK.
	DecryptSecret(pek, blob []byte) ([]byte, error)
}
