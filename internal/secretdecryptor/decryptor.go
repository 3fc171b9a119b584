package secretdecryptor

import (
	"encoding/binary"
	"errors"

	"github.com/noahhai/DSInternals/pkg/interfaces"
)

var (
	errSecretBlobTooShort = errors.New("secretdecryptor: secret blob too short to carry a PEK id")
	errUnknownPEK         = errors.New("secretdecryptor: secret blob references an unknown PEK id")
)

// Decryptor wraps a resolved PEK list and decrypts per-object secret
// blobs against it (spec.md §4.1 "Secret Decryptor"). It is acquired
// once per read call and threaded into projections (spec.md §2).
type Decryptor struct {
	primitives interfaces.CryptoPrimitives
	list       PEKList
}

// New builds a Decryptor bound to an already-unwrapped PEK list.
func New(primitives interfaces.CryptoPrimitives, list PEKList) *Decryptor {
	return &Decryptor{primitives: primitives, list: list}
}

// DecryptBlob decrypts a per-object secret blob. The blob's first four
// bytes (big-endian) select which PEK in the list encrypted it.
func (d *Decryptor) DecryptBlob(blob []byte) ([]byte, error) {
	if len(blob) < 4 {
		return nil, errSecretBlobTooShort
	}
	id := int32(binary.BigEndian.Uint32(blob[:4]))
	pek, ok := d.list.ByID(id)
	if !ok {
		return nil, errUnknownPEK
	}
	return d.primitives.DecryptSecret(pek.Key, blob[4:])
}
