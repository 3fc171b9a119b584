// Package objectstore is the one concrete, exercised implementation of
// the external-collaborator contracts spec.md §1 keeps out of scope: the
// indexed-storage engine, the schema catalogue, and the DN resolver. It
// is built directly on github.com/dgraph-io/badger/v4, the same engine
// the teacher repo wraps in internal/keyValStore, grounded on that
// package's Open/Write/Read/GetItemsWithPrefix patterns.
package objectstore

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/noahhai/DSInternals/internal/diskcheck"
	"github.com/noahhai/DSInternals/pkg/interfaces"
)

// StoreConfig configures a Store, grounded on
// internal/keyValStore.StoreConfig.
type StoreConfig struct {
	Path             string
	MinimumFreeSpace int
	Logger           *logrus.Logger
	SkipDiskCheck    bool // set by in-memory test fixtures
}

// Store is the badger-backed object table plus its secondary indexes.
type Store struct {
	config StoreConfig
	db     *badger.DB
	log    *logrus.Logger
}

// Open opens (creating if necessary) the badger database at cfg.Path,
// after verifying free disk space the way
// internal/keyValStore.NewKeyValStore does via checkConfig before
// badger.Open.
func Open(cfg StoreConfig) (*Store, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if !cfg.SkipDiskCheck {
		if err := diskcheck.Ensure(cfg.Logger, cfg.Path, cfg.MinimumFreeSpace); err != nil {
			return nil, fmt.Errorf("objectstore: disk check failed: %w", err)
		}
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("objectstore: open badger: %w", err)
	}

	return &Store{config: cfg, db: db, log: cfg.Logger}, nil
}

// Close flushes and closes the underlying badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getRecord(txn *badger.Txn, dnt int32) (*record, error) {
	item, err := txn.Get(objKey(dnt))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}
	var rec record
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) putRecord(txn *badger.Txn, rec *record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set(objKey(rec.DNT), data)
}

// indexedKeyBytes returns the binary key this store indexes attr's value
// under, or (nil, false) if attr isn't indexed on this record at all.
func indexedKeyBytes(rec *record, attr interfaces.AttributeID) ([]byte, bool) {
	switch attr {
	case interfaces.AttrSAMAccountName:
		v, ok := rec.Strings[attr]
		if !ok {
			return nil, false
		}
		return []byte(v), true
	case interfaces.AttrSAMAccountType:
		v, ok := rec.Int32s[attr]
		if !ok {
			return nil, false
		}
		return be32(v), true
	case interfaces.AttrObjectSid, interfaces.AttrObjectGUID:
		v, ok := rec.Bytes[attr]
		if !ok {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

// syncIndexes removes old's secondary-index entries and writes new's,
// for every indexed attribute whose value changed between the two
// record snapshots (or that only exists in one of them).
func (s *Store) syncIndexes(txn *badger.Txn, schema interfaces.Schema, old, new *record) error {
	attrs := []interfaces.AttributeID{
		interfaces.AttrSAMAccountName,
		interfaces.AttrSAMAccountType,
		interfaces.AttrObjectSid,
		interfaces.AttrObjectGUID,
	}
	for _, attr := range attrs {
		indexName, err := schema.FindIndexName(attr)
		if err != nil {
			continue
		}

		var oldKey, newKey []byte
		var oldOK, newOK bool
		if old != nil {
			oldKey, oldOK = indexedKeyBytes(old, attr)
		}
		if new != nil {
			newKey, newOK = indexedKeyBytes(new, attr)
		}

		if oldOK && (!newOK || string(oldKey) != string(newKey)) {
			if err := s.deleteIndexEntry(txn, attr, indexName, oldKey, old.DNT); err != nil {
				return err
			}
		}
		if newOK && (!oldOK || string(oldKey) != string(newKey)) {
			if err := s.writeIndexEntry(txn, attr, indexName, newKey, new.DNT); err != nil {
				return err
			}
		}
	}

	// objectCategory is indexed by class id, which never changes once an
	// object is created, so only creation needs to write it; nothing to
	// resync here.
	return nil
}

func isUniqueIndex(attr interfaces.AttributeID) bool {
	switch attr {
	case interfaces.AttrObjectSid, interfaces.AttrObjectGUID:
		return true
	default:
		return false
	}
}

func (s *Store) writeIndexEntry(txn *badger.Txn, attr interfaces.AttributeID, indexName string, keyBytes []byte, dnt int32) error {
	if isUniqueIndex(attr) {
		return txn.Set(uniqueIndexKey(indexName, keyBytes), be32(dnt))
	}
	return txn.Set(nonUniqueIndexKey(indexName, keyBytes, dnt), []byte{})
}

func (s *Store) deleteIndexEntry(txn *badger.Txn, attr interfaces.AttributeID, indexName string, keyBytes []byte, dnt int32) error {
	if isUniqueIndex(attr) {
		return txn.Delete(uniqueIndexKey(indexName, keyBytes))
	}
	return txn.Delete(nonUniqueIndexKey(indexName, keyBytes, dnt))
}

// SeedObject creates a new object at a fresh DNT with the given
// attribute values already set. It is test/fixture infrastructure:
// object creation is not part of the Directory Agent's protocol
// (spec.md's scope begins once accounts already exist), but a reference
// store needs some way to populate one. Any of the attribute maps may be
// nil.
func (s *Store) SeedObject(
	schema interfaces.Schema,
	dnt int32,
	classID int32,
	dn string,
	strings map[interfaces.AttributeID]string,
	int32s map[interfaces.AttributeID]int32,
	bytesAttrs map[interfaces.AttributeID][]byte,
	stringSets map[interfaces.AttributeID][]string,
) error {
	return s.db.Update(func(txn *badger.Txn) error {
		rec := newRecord(dnt, classID)
		for k, v := range strings {
			rec.Strings[k] = v
		}
		for k, v := range int32s {
			rec.Int32s[k] = v
		}
		for k, v := range bytesAttrs {
			rec.Bytes[k] = v
		}
		for k, v := range stringSets {
			rec.StringSets[k] = v
		}
		if err := s.putRecord(txn, rec); err != nil {
			return err
		}
		if dn != "" {
			if err := txn.Set(dnKey(dn), be32(dnt)); err != nil {
				return err
			}
		}
		if err := txn.Set(nonUniqueIndexKey(IndexObjectCategory, be32(classID), dnt), []byte{}); err != nil {
			return err
		}
		return s.syncIndexes(txn, schema, nil, rec)
	})
}
