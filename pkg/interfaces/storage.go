package interfaces

import "github.com/noahhai/DSInternals/pkg/dsid"

// MatchKind selects how Cursor.FindRecords positions itself relative to a
// composed key.
type MatchKind int

const (
	MatchEqual MatchKind = iota
)

// Location is an opaque save/restore token for the Cursor's position.
// Callers must treat it as opaque; only SaveLocation/RestoreLocation
// produce and consume it.
type Location interface{}

// Transaction is the handle returned by Context.BeginTransaction. Exactly
// one of Commit or Abort is called per transaction: by
// commit_attribute_update (spec.md §4.1.8), by a DC-header write
// (spec.md §4.1.9), by remove_object, or by a mutator's error path
// before its attribute write is made.
type Transaction interface {
	Commit() error
	Abort() error
}

// Cursor is the shared, mutable table cursor every Directory Agent
// operation moves. Exactly one Cursor exists per Context; every caller
// that switches indexes or seeks keys from inside a public enumeration
// must save and restore the cursor's position (spec.md §4.1.5, §5).
type Cursor interface {
	// CurrentIndex reports the name of the index the cursor is currently
	// positioned against.
	CurrentIndex() string

	// SetCurrentIndex switches the cursor to the named index. Switching
	// indexes invalidates the cursor's current record.
	SetCurrentIndex(indexName string) error

	// GotoKey positions the cursor at the unique record matching key on
	// the current index. ok is false if no such record exists.
	GotoKey(key []byte) (ok bool, err error)

	// GotoDNT positions the cursor directly at the record with the given
	// primary key, bypassing any secondary index. DNT is the object
	// table's own key, not an indexed attribute, so it has no associated
	// index name (spec.md §3).
	GotoDNT(dnt dsid.DNT) (ok bool, err error)

	// FindRecords positions the cursor at the first record matching key
	// under match on the current (non-unique) index. ok is false if no
	// such record exists; callers then MoveNext to scan forward.
	FindRecords(match MatchKind, key []byte) (ok bool, err error)

	// MoveNext advances the cursor to the next record on the current
	// index. ok is false once the scan is exhausted.
	MoveNext() (ok bool, err error)

	// CurrentDNT returns the DNT of the record the cursor is currently
	// positioned on.
	CurrentDNT() (dsid.DNT, error)

	// SaveLocation captures the cursor's current index and key so it can
	// be restored after an internal helper repositions it.
	SaveLocation() (Location, error)

	// RestoreLocation repositions the cursor per a prior SaveLocation
	// result. Must be called on every exit path of a helper that moved
	// the cursor internally, success or error.
	RestoreLocation(loc Location) error

	// BeginEditForUpdate opens the current record for in-place editing.
	BeginEditForUpdate() error

	// AcceptChanges commits the pending edit started by
	// BeginEditForUpdate into the enclosing transaction.
	AcceptChanges() error

	// RejectChanges discards the pending edit started by
	// BeginEditForUpdate.
	RejectChanges() error

	// Dispose releases the cursor. Double-dispose is a no-op.
	Dispose() error
}

// Schema resolves attribute and class names to the ids and index names
// the storage engine uses internally. Schema modification is out of
// scope; this contract is read-only.
type Schema interface {
	FindIndexName(attr AttributeID) (string, error)
	FindClassID(className string) (int32, error)
}

// DnResolver resolves a distinguished name to its DNT. Implementations
// report resolution failure as ObjectNotFound; the Agent returns that
// error to its caller unchanged.
type DnResolver interface {
	Resolve(dn string) (dsid.DNT, error)
}
