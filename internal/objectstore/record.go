package objectstore

import "github.com/noahhai/DSInternals/pkg/interfaces"

// record is the on-disk shape of one object-table row, JSON-encoded the
// way the teacher's internal/storage package JSON-encodes its own event
// records for persistence (see jsonConverter.go).
type record struct {
	DNT        int32                                    `json:"dnt"`
	ClassID    int32                                     `json:"classId"`
	Deleted    bool                                      `json:"deleted"`
	Writable   bool                                      `json:"writable"`
	Strings    map[interfaces.AttributeID]string          `json:"strings"`
	Int64s     map[interfaces.AttributeID]int64           `json:"int64s"`
	Int32s     map[interfaces.AttributeID]int32           `json:"int32s"`
	Bytes      map[interfaces.AttributeID][]byte          `json:"bytes"`
	StringSets map[interfaces.AttributeID][]string        `json:"stringSets"`
	Meta       map[interfaces.AttributeID]interfaces.AttributeMeta `json:"meta"`
}

func newRecord(dnt int32, classID int32) *record {
	return &record{
		DNT:        dnt,
		ClassID:    classID,
		Writable:   true,
		Strings:    map[interfaces.AttributeID]string{},
		Int64s:     map[interfaces.AttributeID]int64{},
		Int32s:     map[interfaces.AttributeID]int32{},
		Bytes:      map[interfaces.AttributeID][]byte{},
		StringSets: map[interfaces.AttributeID][]string{},
		Meta:       map[interfaces.AttributeID]interfaces.AttributeMeta{},
	}
}

// isAccount mirrors the sAMAccountType-derived predicate from spec.md §3:
// a narrow, documented set of account-role account-type values.
func (r *record) isAccount() bool {
	t, ok := r.Int32s[interfaces.AttrSAMAccountType]
	if !ok {
		return false
	}
	switch t {
	case SamAccountTypeNormalUser, SamAccountTypeWorkstationTrust, SamAccountTypeServerTrust:
		return true
	default:
		return false
	}
}

// isSecurityPrincipal is broader than isAccount: it also covers groups.
func (r *record) isSecurityPrincipal() bool {
	if r.isAccount() {
		return true
	}
	t, ok := r.Int32s[interfaces.AttrSAMAccountType]
	if !ok {
		return false
	}
	switch t {
	case SamAccountTypeSecurityGroup, SamAccountTypeDistributionGroup:
		return true
	default:
		return false
	}
}

// cloneRecord deep-copies rec so an edit buffer and its pre-edit
// snapshot (used by syncIndexes to diff old vs. new) never alias the
// same backing maps or slices.
func cloneRecord(r *record) *record {
	c := &record{
		DNT:        r.DNT,
		ClassID:    r.ClassID,
		Deleted:    r.Deleted,
		Writable:   r.Writable,
		Strings:    make(map[interfaces.AttributeID]string, len(r.Strings)),
		Int64s:     make(map[interfaces.AttributeID]int64, len(r.Int64s)),
		Int32s:     make(map[interfaces.AttributeID]int32, len(r.Int32s)),
		Bytes:      make(map[interfaces.AttributeID][]byte, len(r.Bytes)),
		StringSets: make(map[interfaces.AttributeID][]string, len(r.StringSets)),
		Meta:       make(map[interfaces.AttributeID]interfaces.AttributeMeta, len(r.Meta)),
	}
	for k, v := range r.Strings {
		c.Strings[k] = v
	}
	for k, v := range r.Int64s {
		c.Int64s[k] = v
	}
	for k, v := range r.Int32s {
		c.Int32s[k] = v
	}
	for k, v := range r.Bytes {
		b := make([]byte, len(v))
		copy(b, v)
		c.Bytes[k] = b
	}
	for k, v := range r.StringSets {
		s := make([]string, len(v))
		copy(s, v)
		c.StringSets[k] = s
	}
	for k, v := range r.Meta {
		c.Meta[k] = v
	}
	return c
}

// sAMAccountType values this core recognizes, matching the well-known
// Active Directory constants.
const (
	SamAccountTypeNormalUser        int32 = 0x30000000
	SamAccountTypeWorkstationTrust  int32 = 0x30000001
	SamAccountTypeServerTrust       int32 = 0x30000002
	SamAccountTypeSecurityGroup     int32 = 0x10000000
	SamAccountTypeDistributionGroup int32 = 0x20000000
)
