package secretdecryptor

import (
	"encoding/binary"
	"testing"
)

func TestDecryptorDecryptBlobRoundTrips(t *testing.T) {
	t.Parallel()

	primitives := NewDefaultCryptoPrimitives()
	list := PEKList{Keys: []PEK{{KeyID: 7, Key: []byte("per-object-pek-material")}}}
	dec := New(primitives, list)

	plaintext := []byte("s3cr3t-hash-bytes")
	ciphertext, err := primitives.DecryptSecret(list.Keys[0].Key, plaintext)
	if err != nil {
		t.Fatalf("DecryptSecret (as encrypt, RC4 is symmetric): %v", err)
	}

	blob := make([]byte, 4+len(ciphertext))
	binary.BigEndian.PutUint32(blob[:4], uint32(7))
	copy(blob[4:], ciphertext)

	got, err := dec.DecryptBlob(blob)
	if err != nil {
		t.Fatalf("DecryptBlob: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Fatalf("DecryptBlob() = %q, want %q", got, plaintext)
	}
}

func TestDecryptorDecryptBlobUnknownPEK(t *testing.T) {
	t.Parallel()

	dec := New(NewDefaultCryptoPrimitives(), PEKList{})
	blob := make([]byte, 8)
	binary.BigEndian.PutUint32(blob[:4], 99)

	if _, err := dec.DecryptBlob(blob); err == nil {
		t.Fatal("expected error for unknown PEK id")
	}
}

func TestDecryptorDecryptBlobTooShort(t *testing.T) {
	t.Parallel()

	dec := New(NewDefaultCryptoPrimitives(), PEKList{})
	if _, err := dec.DecryptBlob([]byte{1, 2}); err == nil {
		t.Fatal("expected error for short blob")
	}
}
