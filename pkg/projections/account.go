// Package projections holds the typed views spec.md §4.3 builds over an
// Object View plus a Decryptor: Account, DPAPI backup key, and KDS root
// key. Each lazily decrypts its secret fields on access rather than
// eagerly on construction, so callers who only read plain attributes
// never pay decryption cost.
package projections

import (
	"github.com/noahhai/DSInternals/internal/secretdecryptor"
	"github.com/noahhai/DSInternals/pkg/interfaces"
)

// Account is an Object View plus a Decryptor (spec.md §4.3).
type Account struct {
	view      interfaces.ObjectView
	decryptor *secretdecryptor.Decryptor
}

// NewAccount builds an Account projection over view. decryptor may be
// nil — per spec.md §8, a null decryptor makes every secret field read
// back absent rather than erroring.
func NewAccount(view interfaces.ObjectView, decryptor *secretdecryptor.Decryptor) *Account {
	return &Account{view: view, decryptor: decryptor}
}

// DNT returns the account object's primary key.
func (a *Account) DNT() int32 { return a.view.DNT() }

func (a *Account) SamAccountName() (string, bool, error) {
	return a.view.ReadString(interfaces.AttrSAMAccountName)
}

func (a *Account) Sid() ([]byte, bool, error) {
	return a.view.ReadBytes(interfaces.AttrObjectSid)
}

func (a *Account) Guid() ([]byte, bool, error) {
	return a.view.ReadBytes(interfaces.AttrObjectGUID)
}

func (a *Account) UserAccountControl() (int32, bool, error) {
	return a.view.ReadInt32(interfaces.AttrUserAccountControl)
}

func (a *Account) PrimaryGroupID() (int32, bool, error) {
	return a.view.ReadInt32(interfaces.AttrPrimaryGroupID)
}

func (a *Account) SIDHistory() ([]string, bool, error) {
	return a.view.ReadStrings(interfaces.AttrSIDHistory)
}

// NTHash lazily decrypts the account's password hash blob. It reports
// absent (false, nil error) both when the account carries no secret
// attribute and when no decryptor was ever acquired for this read.
func (a *Account) NTHash() ([]byte, bool, error) {
	return a.decryptAttribute(interfaces.AttrSecretData)
}

// SupplementalCredentials lazily decrypts the account's supplemental
// credentials blob, with the same absence rules as NTHash.
func (a *Account) SupplementalCredentials() ([]byte, bool, error) {
	return a.decryptAttribute(interfaces.AttrSupplementalCredentials)
}

func (a *Account) decryptAttribute(attr interfaces.AttributeID) ([]byte, bool, error) {
	if a.decryptor == nil {
		return nil, false, nil
	}
	blob, ok, err := a.view.ReadBytes(attr)
	if err != nil || !ok {
		return nil, false, err
	}
	plain, err := a.decryptor.DecryptBlob(blob)
	if err != nil {
		return nil, false, err
	}
	return plain, true, nil
}
