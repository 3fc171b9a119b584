package dsinternals

import (
	"encoding/binary"

	"github.com/noahhai/DSInternals/internal/secretdecryptor"
	"github.com/noahhai/DSInternals/pkg/dcerrors"
	"github.com/noahhai/DSInternals/pkg/interfaces"
	"github.com/noahhai/DSInternals/pkg/projections"
)

func encodeClassID(id int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(id))
	return b
}

// ObjectIterator is a finite, single-pass, non-restartable pull iterator
// over Object Views sharing the Agent's cursor (spec.md §4.1.2, §5). Its
// Next method returns (nil, nil) once exhausted.
type ObjectIterator struct {
	agent          *Agent
	started        bool
	exhausted      bool
	includeDeleted bool
}

// Next advances the iterator and returns the next qualifying view, or
// (nil, nil) once the scan is exhausted.
func (it *ObjectIterator) Next() (interfaces.ObjectView, error) {
	for {
		if it.exhausted {
			return nil, nil
		}

		var ok bool
		var err error
		if !it.started {
			it.started = true
			ok = true
		} else {
			ok, err = it.agent.cur.MoveNext()
			if err != nil {
				it.exhausted = true
				return nil, dcerrors.WrapStorage(err)
			}
		}
		if !ok {
			it.exhausted = true
			return nil, nil
		}

		view, err := it.agent.ctx.View(it.agent.cur)
		if err != nil {
			it.exhausted = true
			return nil, err
		}
		if !it.includeDeleted && view.IsDeleted() {
			continue
		}
		return view, nil
	}
}

// FindObjectsByCategory implements find_objects_by_category (spec.md
// §4.1.2): resolve class_name to a class id, switch to the
// objectCategory index, seek equal, and return a lazy sequence of
// matching views.
func (a *Agent) FindObjectsByCategory(className string, includeDeleted bool) (*ObjectIterator, error) {
	classID, err := a.ctx.Schema().FindClassID(className)
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	indexName, err := a.ctx.Schema().FindIndexName(interfaces.AttrObjectCategory)
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	if err := a.cur.SetCurrentIndex(indexName); err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	ok, err := a.cur.FindRecords(interfaces.MatchEqual, encodeClassID(classID))
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	return &ObjectIterator{agent: a, includeDeleted: includeDeleted, exhausted: !ok}, nil
}

// AccountIterator is the lazy sequence get_accounts returns (spec.md
// §4.1.3). A single decryptor is acquired once and shared across every
// element.
type AccountIterator struct {
	inner     *ObjectIterator
	decryptor *secretdecryptor.Decryptor
}

// Next returns the next account, or (nil, nil) once exhausted.
func (it *AccountIterator) Next() (*projections.Account, error) {
	for {
		view, err := it.inner.Next()
		if err != nil {
			return nil, err
		}
		if view == nil {
			return nil, nil
		}
		if !view.IsAccount() || !view.IsWritable() {
			continue
		}
		return projections.NewAccount(view, it.decryptor), nil
	}
}

// GetAccounts implements get_accounts (spec.md §4.1.3): acquire a
// decryptor once, switch to the sAMAccountType index, and scan the whole
// index for writable, non-deleted account records.
func (a *Agent) GetAccounts(bootKey []byte) (*AccountIterator, error) {
	dec, err := a.getSecretDecryptor(bootKey)
	if err != nil {
		return nil, err
	}
	indexName, err := a.ctx.Schema().FindIndexName(interfaces.AttrSAMAccountType)
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	if err := a.cur.SetCurrentIndex(indexName); err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	ok, err := a.cur.FindRecords(interfaces.MatchEqual, nil)
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	inner := &ObjectIterator{agent: a, exhausted: !ok}
	return &AccountIterator{inner: inner, decryptor: dec}, nil
}

// BackupKeyIterator is the lazy sequence get_dpapi_backup_keys returns.
type BackupKeyIterator struct {
	inner     *ObjectIterator
	decryptor *secretdecryptor.Decryptor
}

// Next returns the next backup key, or (nil, nil) once exhausted.
func (it *BackupKeyIterator) Next() (*projections.BackupKey, error) {
	view, err := it.inner.Next()
	if err != nil || view == nil {
		return nil, err
	}
	return projections.NewBackupKey(view, it.decryptor), nil
}

// GetDpapiBackupKeys implements get_dpapi_backup_keys (spec.md §4.2).
func (a *Agent) GetDpapiBackupKeys(bootKey []byte) (*BackupKeyIterator, error) {
	dec, err := a.getSecretDecryptor(bootKey)
	if err != nil {
		return nil, err
	}
	inner, err := a.FindObjectsByCategory("secret", false)
	if err != nil {
		return nil, err
	}
	return &BackupKeyIterator{inner: inner, decryptor: dec}, nil
}

// KdsRootKeyIterator is the lazy sequence get_kds_root_keys returns.
type KdsRootKeyIterator struct {
	inner *ObjectIterator
}

// Next returns the next KDS root key, or (nil, nil) once exhausted.
func (it *KdsRootKeyIterator) Next() (*projections.KdsRootKey, error) {
	view, err := it.inner.Next()
	if err != nil || view == nil {
		return nil, err
	}
	return projections.NewKdsRootKey(view), nil
}

// GetKdsRootKeys implements get_kds_root_keys (spec.md §4.2): no
// decryptor needed.
func (a *Agent) GetKdsRootKeys() (*KdsRootKeyIterator, error) {
	inner, err := a.FindObjectsByCategory("msKds-ProvRootKey", false)
	if err != nil {
		return nil, err
	}
	return &KdsRootKeyIterator{inner: inner}, nil
}
