// Package interfaces holds the external-collaborator contracts the
// Directory Agent is built against: the shared Cursor, the Schema
// catalogue, the DN resolver, the per-database Context, and the
// decryptor's cryptographic primitives. Per spec.md §1 these are
// specified as contracts, not implementations; internal/objectstore and
// internal/secretdecryptor provide the adapted, exercised implementations
// this repository ships.
package interfaces

// AttributeID is a closed enumeration of the attributes this core reads or
// writes: the attributes spec.md §3 names, plus the four supplemented
// attributes listed below.
type AttributeID int

const (
	AttrPEKList AttributeID = iota
	AttrSAMAccountType
	AttrSAMAccountName
	AttrObjectSid
	AttrObjectGUID
	AttrObjectCategory
	AttrUserAccountControl
	AttrSIDHistory
	AttrPrimaryGroupID

	// AttrSecretData, AttrSupplementalCredentials, AttrKeyMaterial, and
	// AttrBootKeyFragment supplement spec.md's named attribute set
	// (SPEC_FULL.md §4): the spec treats the decryptor's cryptographic
	// primitives and the exact secret-attribute shapes as out of scope,
	// but a record projection (Account, DPAPI backup key, KDS root key)
	// needs somewhere to read its ciphertext or key material from.
	AttrSecretData
	AttrSupplementalCredentials
	AttrKeyMaterial
	AttrBootKeyFragment
)

func (a AttributeID) String() string {
	switch a {
	case AttrPEKList:
		return "pekList"
	case AttrSAMAccountType:
		return "sAMAccountType"
	case AttrSAMAccountName:
		return "sAMAccountName"
	case AttrObjectSid:
		return "objectSid"
	case AttrObjectGUID:
		return "objectGUID"
	case AttrObjectCategory:
		return "objectCategory"
	case AttrUserAccountControl:
		return "userAccountControl"
	case AttrSIDHistory:
		return "sIDHistory"
	case AttrPrimaryGroupID:
		return "primaryGroupID"
	case AttrSecretData:
		return "secretData"
	case AttrSupplementalCredentials:
		return "supplementalCredentials"
	case AttrKeyMaterial:
		return "keyMaterial"
	case AttrBootKeyFragment:
		return "bootKeyFragment"
	default:
		return "unknown"
	}
}

// AttributeMeta is the per-attribute replication metadata tuple spec.md §3
// names as "(local_usn, timestamp, originating_*)". The originating fields
// are supplemented per SPEC_FULL.md §4: a real metadata vector needs the
// originating DSA's identity, its USN at origination, and the originating
// change time, not just "local".
type AttributeMeta struct {
	LocalUSN              int64
	Timestamp             int64 // unix seconds
	OriginatingDSA        string
	OriginatingUSN        int64
	OriginatingChangeTime int64 // unix seconds
}
