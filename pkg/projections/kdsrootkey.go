package projections

import "github.com/noahhai/DSInternals/pkg/interfaces"

// KdsRootKey is an Object View of class msKds-ProvRootKey; no decryptor
// needed (spec.md §4.3 "KDS Root Key").
type KdsRootKey struct {
	view interfaces.ObjectView
}

// NewKdsRootKey builds a KdsRootKey projection over view.
func NewKdsRootKey(view interfaces.ObjectView) *KdsRootKey {
	return &KdsRootKey{view: view}
}

// DNT returns the KDS root key object's primary key.
func (k *KdsRootKey) DNT() int32 { return k.view.DNT() }

// KeyMaterial reads the root key's key material directly.
func (k *KdsRootKey) KeyMaterial() ([]byte, bool, error) {
	return k.view.ReadBytes(interfaces.AttrKeyMaterial)
}
