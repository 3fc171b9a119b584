package interfaces

// Context owns the database session: a transaction factory, the one
// shared Cursor, the Schema lookup, the DN resolver, and the mutable
// DCHeader. Agents may optionally own their Context and dispose it on
// release (spec.md §3, §5).
type Context interface {
	BeginTransaction() (Transaction, error)
	OpenDataTable() (Cursor, error)

	DCHeader() *DCHeader
	PersistDCHeader(txn Transaction) error

	Schema() Schema
	DnResolver() DnResolver

	// View opens a fresh ObjectView bound to the record the cursor is
	// currently positioned on.
	View(cur Cursor) (ObjectView, error)

	Dispose() error
}
