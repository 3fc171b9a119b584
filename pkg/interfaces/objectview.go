package interfaces

// ObjectView is the thin, cursor-bound record view contract from spec.md
// §4.2. A View becomes invalid as soon as the cursor that produced it
// moves; callers must read what they need before stepping.
type ObjectView interface {
	DNT() int32

	ReadString(attr AttributeID) (string, bool, error)
	ReadInt64(attr AttributeID) (int64, bool, error)
	ReadInt32(attr AttributeID) (int32, bool, error)
	ReadBytes(attr AttributeID) ([]byte, bool, error)
	ReadStrings(attr AttributeID) ([]string, bool, error)

	// SetString/SetInt32/SetBytes write a scalar attribute and report
	// whether the stored value actually changed.
	SetString(attr AttributeID, value string) (changed bool, err error)
	SetInt32(attr AttributeID, value int32) (changed bool, err error)
	SetBytes(attr AttributeID, value []byte) (changed bool, err error)

	// AddStrings merge-appends into a multi-valued attribute and reports
	// whether the set actually grew.
	AddStrings(attr AttributeID, values []string) (changed bool, err error)

	// UpdateAttributeMeta writes the per-attribute metadata tuple. Purely
	// metadata: it never itself counts as a "changed" write.
	UpdateAttributeMeta(attr AttributeID, meta AttributeMeta) error

	// Delete marks the row deleted.
	Delete() error

	IsDeleted() bool
	IsWritable() bool
	IsAccount() bool
	IsSecurityPrincipal() bool
}
