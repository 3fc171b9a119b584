package projections

import (
	"github.com/noahhai/DSInternals/internal/secretdecryptor"
	"github.com/noahhai/DSInternals/pkg/interfaces"
)

// BackupKey is an Object View of class Secret plus a Decryptor
// (spec.md §4.3 "DPAPI Backup Key").
type BackupKey struct {
	view      interfaces.ObjectView
	decryptor *secretdecryptor.Decryptor
}

// NewBackupKey builds a BackupKey projection over view. decryptor may be
// nil, in which case KeyMaterial reports absent.
func NewBackupKey(view interfaces.ObjectView, decryptor *secretdecryptor.Decryptor) *BackupKey {
	return &BackupKey{view: view, decryptor: decryptor}
}

// DNT returns the backup key object's primary key.
func (b *BackupKey) DNT() int32 { return b.view.DNT() }

// KeyMaterial lazily decrypts the DPAPI master key material.
func (b *BackupKey) KeyMaterial() ([]byte, bool, error) {
	if b.decryptor == nil {
		return nil, false, nil
	}
	blob, ok, err := b.view.ReadBytes(interfaces.AttrSecretData)
	if err != nil || !ok {
		return nil, false, err
	}
	plain, err := b.decryptor.DecryptBlob(blob)
	if err != nil {
		return nil, false, err
	}
	return plain, true, nil
}
