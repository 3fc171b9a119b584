package objectstore

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"

	"github.com/noahhai/DSInternals/pkg/dsid"
	"github.com/noahhai/DSInternals/pkg/interfaces"
)

var headerStoreKey = []byte("h:header")

// headerWire is the on-disk shape of interfaces.DCHeader, JSON-encoded
// the same way every other record in this store is (record.go).
type headerWire struct {
	Epoch               int32
	HighestCommittedUSN int64
	Variant             int
	State               int
	DomainNCDNT         *int32
	ConfigurationNCDNT  int32
	SchemaNCDNT         int32
}

func toWire(h *interfaces.DCHeader) headerWire {
	w := headerWire{
		Epoch:               h.Epoch,
		HighestCommittedUSN: h.HighestCommittedUSN,
		Variant:             int(h.Variant),
		State:               int(h.State),
		ConfigurationNCDNT:  int32(h.ConfigurationNCDNT),
		SchemaNCDNT:         int32(h.SchemaNCDNT),
	}
	if h.DomainNCDNT != nil {
		v := int32(*h.DomainNCDNT)
		w.DomainNCDNT = &v
	}
	return w
}

func fromWire(w headerWire) *interfaces.DCHeader {
	h := &interfaces.DCHeader{
		Epoch:               w.Epoch,
		HighestCommittedUSN: w.HighestCommittedUSN,
		Variant:             interfaces.Variant(w.Variant),
		State:               interfaces.State(w.State),
		ConfigurationNCDNT:  dsid.DNT(w.ConfigurationNCDNT),
		SchemaNCDNT:         dsid.DNT(w.SchemaNCDNT),
	}
	if w.DomainNCDNT != nil {
		v := dsid.DNT(*w.DomainNCDNT)
		h.DomainNCDNT = &v
	}
	return h
}

// loadHeader reads the persisted DCHeader, if one exists yet.
func loadHeader(db *badger.DB) (*interfaces.DCHeader, bool, error) {
	var h *interfaces.DCHeader
	found := false
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(headerStoreKey)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			var w headerWire
			if err := json.Unmarshal(val, &w); err != nil {
				return err
			}
			h = fromWire(w)
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return h, found, nil
}

// persistHeader writes h into txn's enclosing transaction. Callers
// commit separately (spec.md §4.1.9: set_epoch/set_usn commit directly;
// commit_attribute_update persists it as part of the same transaction
// that also writes the mutated attribute).
func persistHeader(txn *badger.Txn, h *interfaces.DCHeader) error {
	data, err := json.Marshal(toWire(h))
	if err != nil {
		return err
	}
	return txn.Set(headerStoreKey, data)
}
