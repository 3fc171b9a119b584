package objectstore

import (
	"encoding/binary"

	"github.com/dgraph-io/badger/v4"

	"github.com/noahhai/DSInternals/pkg/dcerrors"
	"github.com/noahhai/DSInternals/pkg/dsid"
)

// dnResolver resolves a distinguished name to its DNT via the store's
// "n:" key space. Resolution failure surfaces as ObjectNotFound per
// spec.md §6.
type dnResolver struct {
	store *Store
}

// NewDnResolver builds the reference DnResolver collaborator backed by store.
func NewDnResolver(store *Store) *dnResolver {
	return &dnResolver{store: store}
}

func (r *dnResolver) Resolve(dn string) (dsid.DNT, error) {
	var dnt int32
	err := r.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dnKey(dn))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return dcerrors.NewObjectNotFound(dn)
			}
			return dcerrors.WrapStorage(err)
		}
		return item.Value(func(val []byte) error {
			dnt = int32(binary.BigEndian.Uint32(val))
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return dsid.DNT(dnt), nil
}
