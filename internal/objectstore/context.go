package objectstore

import (
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/noahhai/DSInternals/pkg/dcerrors"
	"github.com/noahhai/DSInternals/pkg/interfaces"
)

// ctx is the concrete implementation of interfaces.Context: it owns the
// database session — a transaction factory, the one shared Cursor, the
// Schema lookup, the DN resolver, and the mutable DCHeader (spec.md §3,
// §5).
type ctx struct {
	store      *Store
	cur        *cursor
	header     *interfaces.DCHeader
	schema     interfaces.Schema
	dnResolver interfaces.DnResolver
}

// NewContext opens the shared Cursor against store and either loads a
// previously persisted DCHeader or, on first boot, persists the seed
// header the caller supplied.
func NewContext(store *Store, schema interfaces.Schema, dnResolver interfaces.DnResolver, seedHeader *interfaces.DCHeader) (interfaces.Context, error) {
	loaded, found, err := loadHeader(store.db)
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}

	header := seedHeader
	if found {
		header = loaded
	} else {
		txn := store.db.NewTransaction(true)
		if err := persistHeader(txn, header); err != nil {
			txn.Discard()
			return nil, dcerrors.WrapStorage(err)
		}
		if err := txn.Commit(); err != nil {
			return nil, dcerrors.WrapStorage(err)
		}
	}

	return &ctx{
		store:      store,
		cur:        newCursor(store, schema),
		header:     header,
		schema:     schema,
		dnResolver: dnResolver,
	}, nil
}

// transaction is the concrete implementation of interfaces.Transaction.
// Committing or aborting it also unbinds it from the shared cursor, so
// the cursor falls back to its own read-only view for whatever comes
// next.
type transaction struct {
	txn *badger.Txn
	cur *cursor
}

func (t *transaction) Commit() error {
	err := t.txn.Commit()
	t.cur.unbindWriteTxn()
	return err
}

func (t *transaction) Abort() error {
	t.txn.Discard()
	t.cur.unbindWriteTxn()
	return nil
}

func (c *ctx) BeginTransaction() (interfaces.Transaction, error) {
	txn := c.store.db.NewTransaction(true)
	c.cur.bindWriteTxn(txn)
	return &transaction{txn: txn, cur: c.cur}, nil
}

func (c *ctx) OpenDataTable() (interfaces.Cursor, error) {
	return c.cur, nil
}

func (c *ctx) DCHeader() *interfaces.DCHeader { return c.header }

func (c *ctx) PersistDCHeader(txn interfaces.Transaction) error {
	t, ok := txn.(*transaction)
	if !ok {
		return errors.New("objectstore: transaction came from a different Context implementation")
	}
	return persistHeader(t.txn, c.header)
}

func (c *ctx) Schema() interfaces.Schema        { return c.schema }
func (c *ctx) DnResolver() interfaces.DnResolver { return c.dnResolver }

// View opens a fresh ObjectView bound to the record cur is currently
// positioned on. While an edit is in progress (BeginEditForUpdate), the
// returned view shares the cursor's mutable edit buffer so that
// AcceptChanges persists exactly what the caller wrote through it.
func (c *ctx) View(cur interfaces.Cursor) (interfaces.ObjectView, error) {
	cc, ok := cur.(*cursor)
	if !ok {
		return nil, errors.New("objectstore: cursor came from a different Context implementation")
	}
	if !cc.hasCurrent {
		return nil, dcerrors.NewObjectNotFound("cursor has no current record")
	}
	if cc.editing {
		return &objectView{rec: cc.editRecord}, nil
	}
	rec, err := c.store.getRecord(cc.txn(), cc.currentDNT)
	if err != nil {
		return nil, dcerrors.WrapStorage(err)
	}
	if rec == nil {
		return nil, dcerrors.NewObjectNotFound("cursor's current record no longer exists")
	}
	return &objectView{rec: rec}, nil
}

func (c *ctx) Dispose() error {
	return c.cur.Dispose()
}
