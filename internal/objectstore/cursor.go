package objectstore

import (
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/noahhai/DSInternals/pkg/dcerrors"
	"github.com/noahhai/DSInternals/pkg/dsid"
	"github.com/noahhai/DSInternals/pkg/interfaces"
)

// dntPseudoIndex is what CurrentIndex reports after a GotoDNT: DNT is
// the object table's primary key, not a secondary index, so it has no
// real index name (spec.md §3).
const dntPseudoIndex = "<dnt>"

type scanMode int

const (
	scanNone scanMode = iota
	scanGoto
	scanIter
)

// cursor is the one shared, mutable table cursor every Directory Agent
// operation moves (spec.md §4.1.5, §5). It is the concrete
// implementation of interfaces.Cursor for the badger-backed object
// store.
type cursor struct {
	store  *Store
	schema interfaces.Schema

	indexName string
	mode      scanMode

	viewTxn  *badger.Txn
	writeTxn *badger.Txn

	iter       *badger.Iterator
	iterPrefix []byte

	hasCurrent bool
	currentDNT int32

	lastGotoKey []byte

	editing        bool
	editRecord     *record
	editOrigRecord *record

	disposed bool
}

func newCursor(store *Store, schema interfaces.Schema) *cursor {
	return &cursor{store: store, schema: schema}
}

func (c *cursor) txn() *badger.Txn {
	if c.writeTxn != nil {
		return c.writeTxn
	}
	if c.viewTxn == nil {
		c.viewTxn = c.store.db.NewTransaction(false)
	}
	return c.viewTxn
}

func (c *cursor) bindWriteTxn(txn *badger.Txn) { c.writeTxn = txn }

// unbindWriteTxn detaches the cursor from a committed/aborted write
// transaction. It also discards the cached read-only viewTxn: that
// snapshot was taken before the write landed, so keeping it around would
// make every subsequent read through this cursor blind to the write that
// just committed. The next call to txn() opens a fresh snapshot. Any
// scan iterator still open on the old snapshot is closed first, so a
// scan in progress cannot be advanced with MoveNext afterwards.
func (c *cursor) unbindWriteTxn() {
	c.writeTxn = nil
	if c.viewTxn != nil {
		c.closeIter()
		c.viewTxn.Discard()
		c.viewTxn = nil
	}
}

func (c *cursor) closeIter() {
	if c.iter != nil {
		c.iter.Close()
		c.iter = nil
	}
	c.iterPrefix = nil
}

func (c *cursor) CurrentIndex() string { return c.indexName }

func (c *cursor) SetCurrentIndex(indexName string) error {
	c.closeIter()
	c.indexName = indexName
	c.mode = scanNone
	c.hasCurrent = false
	c.currentDNT = 0
	c.lastGotoKey = nil
	return nil
}

func (c *cursor) GotoDNT(dnt dsid.DNT) (bool, error) {
	c.closeIter()
	c.indexName = dntPseudoIndex
	c.mode = scanGoto
	c.lastGotoKey = be32(int32(dnt))

	rec, err := c.store.getRecord(c.txn(), int32(dnt))
	if err != nil {
		return false, dcerrors.WrapStorage(err)
	}
	if rec == nil {
		c.hasCurrent = false
		return false, nil
	}
	c.hasCurrent = true
	c.currentDNT = int32(dnt)
	return true, nil
}

func (c *cursor) GotoKey(key []byte) (bool, error) {
	c.closeIter()
	c.mode = scanGoto
	c.lastGotoKey = append([]byte(nil), key...)

	item, err := c.txn().Get(uniqueIndexKey(c.indexName, key))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			c.hasCurrent = false
			return false, nil
		}
		return false, dcerrors.WrapStorage(err)
	}
	var dnt int32
	err = item.Value(func(val []byte) error {
		dnt = decodeBE32(val)
		return nil
	})
	if err != nil {
		return false, dcerrors.WrapStorage(err)
	}
	c.hasCurrent = true
	c.currentDNT = dnt
	return true, nil
}

// FindRecords positions the cursor at the first record on the current
// (non-unique) index matching key, or — when key is nil — at the first
// record anywhere on that index. A nil key is how get_accounts
// (spec.md §4.1.3) scans an entire index rather than one key's bucket;
// match is otherwise always MatchEqual in this store.
func (c *cursor) FindRecords(match interfaces.MatchKind, key []byte) (bool, error) {
	c.closeIter()
	c.mode = scanIter
	c.lastGotoKey = nil

	var prefix []byte
	if key == nil {
		prefix = indexAllPrefix(c.indexName)
	} else {
		prefix = nonUniqueIndexPrefix(c.indexName, key)
	}
	c.iterPrefix = prefix

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := c.txn().NewIterator(opts)
	iter.Seek(prefix)
	c.iter = iter

	if !iter.ValidForPrefix(prefix) {
		c.hasCurrent = false
		return false, nil
	}
	dnt, err := dntFromIndexKey(iter.Item().KeyCopy(nil))
	if err != nil {
		return false, dcerrors.WrapStorage(err)
	}
	c.hasCurrent = true
	c.currentDNT = dnt
	return true, nil
}

func (c *cursor) MoveNext() (bool, error) {
	if c.iter == nil {
		return false, errors.New("objectstore: cursor has no active scan to advance")
	}
	c.iter.Next()
	if !c.iter.ValidForPrefix(c.iterPrefix) {
		c.hasCurrent = false
		return false, nil
	}
	dnt, err := dntFromIndexKey(c.iter.Item().KeyCopy(nil))
	if err != nil {
		return false, dcerrors.WrapStorage(err)
	}
	c.hasCurrent = true
	c.currentDNT = dnt
	return true, nil
}

func (c *cursor) CurrentDNT() (dsid.DNT, error) {
	if !c.hasCurrent {
		return 0, dcerrors.NewObjectNotFound("cursor has no current record")
	}
	return dsid.DNT(c.currentDNT), nil
}

// cursorLocation is the opaque interfaces.Location this cursor produces.
// It is enough to replay the key-goto sequences get_secret_decryptor
// wraps (spec.md §4.1.5); iterator-based scan positions are not
// restorable mid-scan, since public enumerators never save/restore.
type cursorLocation struct {
	indexName  string
	mode       scanMode
	hasCurrent bool
	gotoKey    []byte
}

func (c *cursor) SaveLocation() (interfaces.Location, error) {
	return &cursorLocation{
		indexName:  c.indexName,
		mode:       c.mode,
		hasCurrent: c.hasCurrent,
		gotoKey:    append([]byte(nil), c.lastGotoKey...),
	}, nil
}

func (c *cursor) RestoreLocation(loc interfaces.Location) error {
	saved, ok := loc.(*cursorLocation)
	if !ok {
		return errors.New("objectstore: location came from a different cursor implementation")
	}
	if saved.mode == scanGoto && saved.indexName == dntPseudoIndex && saved.gotoKey != nil {
		_, err := c.GotoDNT(dsid.DNT(decodeBE32(saved.gotoKey)))
		return err
	}
	if err := c.SetCurrentIndex(saved.indexName); err != nil {
		return err
	}
	if saved.mode == scanGoto && saved.gotoKey != nil {
		_, err := c.GotoKey(saved.gotoKey)
		return err
	}
	return nil
}

func (c *cursor) BeginEditForUpdate() error {
	if !c.hasCurrent {
		return dcerrors.NewObjectNotFound("cursor has no current record to edit")
	}
	rec, err := c.store.getRecord(c.txn(), c.currentDNT)
	if err != nil {
		return dcerrors.WrapStorage(err)
	}
	if rec == nil {
		return dcerrors.NewObjectNotFound("cursor's current record no longer exists")
	}
	c.editOrigRecord = cloneRecord(rec)
	c.editRecord = cloneRecord(rec)
	c.editing = true
	return nil
}

func (c *cursor) AcceptChanges() error {
	if !c.editing {
		return errors.New("objectstore: no pending edit to accept")
	}
	if c.writeTxn == nil {
		return errors.New("objectstore: accepting changes requires an active transaction")
	}
	if err := c.store.putRecord(c.writeTxn, c.editRecord); err != nil {
		return dcerrors.WrapStorage(err)
	}
	if err := c.store.syncIndexes(c.writeTxn, c.schema, c.editOrigRecord, c.editRecord); err != nil {
		return dcerrors.WrapStorage(err)
	}
	c.editing = false
	c.editRecord = nil
	c.editOrigRecord = nil
	return nil
}

func (c *cursor) RejectChanges() error {
	c.editing = false
	c.editRecord = nil
	c.editOrigRecord = nil
	return nil
}

func (c *cursor) Dispose() error {
	if c.disposed {
		return nil
	}
	c.closeIter()
	if c.viewTxn != nil {
		c.viewTxn.Discard()
		c.viewTxn = nil
	}
	c.disposed = true
	return nil
}
