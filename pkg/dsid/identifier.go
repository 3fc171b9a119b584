// Package dsid holds the identifier types the Directory Agent dispatches
// lookups on: the distinguished-name tag primary key, and the tagged union
// that replaces the four find_object/get_account/set_* overloads from the
// source protocol (spec.md §9, "four-way overload on identifier → sum
// type").
package dsid

import "fmt"

// DNT is the 32-bit primary key of the object table.
type DNT int32

// Kind distinguishes which field of an Identifier is populated.
type Kind int

const (
	KindSam Kind = iota
	KindSid
	KindDn
	KindGuid
	KindDnt
)

func (k Kind) String() string {
	switch k {
	case KindSam:
		return "SamAccountName"
	case KindSid:
		return "ObjectSid"
	case KindDn:
		return "DistinguishedName"
	case KindGuid:
		return "ObjectGuid"
	case KindDnt:
		return "DnTag"
	default:
		return "unknown"
	}
}

// Identifier is the single tagged identifier the Agent dispatches on,
// replacing the four per-kind overloads named in spec.md §4.1.1.
type Identifier struct {
	kind Kind
	sam  string
	sid  []byte
	dn   string
	guid [16]byte
	dnt  DNT
}

// Sam builds a SamAccountName identifier.
func Sam(name string) Identifier { return Identifier{kind: KindSam, sam: name} }

// Sid builds an ObjectSid identifier from its big-endian-ready binary SID.
func Sid(sid []byte) Identifier {
	cp := make([]byte, len(sid))
	copy(cp, sid)
	return Identifier{kind: KindSid, sid: cp}
}

// Dn builds a DistinguishedName identifier.
func Dn(dn string) Identifier { return Identifier{kind: KindDn, dn: dn} }

// Guid builds an ObjectGuid identifier from its 16-byte form.
func Guid(guid [16]byte) Identifier { return Identifier{kind: KindGuid, guid: guid} }

// Dnt builds a DnTag identifier.
func Dnt(dnt DNT) Identifier { return Identifier{kind: KindDnt, dnt: dnt} }

// Kind reports which variant this identifier holds.
func (id Identifier) Kind() Kind { return id.kind }

// SamValue returns the SAM account name. Only meaningful when Kind() == KindSam.
func (id Identifier) SamValue() string { return id.sam }

// SidValue returns the binary SID. Only meaningful when Kind() == KindSid.
func (id Identifier) SidValue() []byte { return id.sid }

// DnValue returns the distinguished name. Only meaningful when Kind() == KindDn.
func (id Identifier) DnValue() string { return id.dn }

// GuidValue returns the 16-byte GUID. Only meaningful when Kind() == KindGuid.
func (id Identifier) GuidValue() [16]byte { return id.guid }

// DntValue returns the DNT. Only meaningful when Kind() == KindDnt.
func (id Identifier) DntValue() DNT { return id.dnt }

// String renders a human-readable form suitable for error messages
// (ObjectNotFound(identifier), etc.) without leaking raw secret material —
// none of these identifiers are secret, so this is a plain description.
func (id Identifier) String() string {
	switch id.kind {
	case KindSam:
		return fmt.Sprintf("sam:%s", id.sam)
	case KindSid:
		return fmt.Sprintf("sid:%x", id.sid)
	case KindDn:
		return fmt.Sprintf("dn:%s", id.dn)
	case KindGuid:
		return fmt.Sprintf("guid:%x", id.guid)
	case KindDnt:
		return fmt.Sprintf("dnt:%d", id.dnt)
	default:
		return "unknown-identifier"
	}
}
