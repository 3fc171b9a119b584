package objectstore

import (
	"bytes"

	"github.com/noahhai/DSInternals/pkg/interfaces"
)

// objectView is the concrete implementation of interfaces.ObjectView:
// a thin, cursor-bound record view (spec.md §4.2). It becomes invalid as
// soon as the cursor that produced it moves.
type objectView struct {
	rec *record
}

func (v *objectView) DNT() int32 { return v.rec.DNT }

func (v *objectView) ReadString(attr interfaces.AttributeID) (string, bool, error) {
	s, ok := v.rec.Strings[attr]
	return s, ok, nil
}

func (v *objectView) ReadInt64(attr interfaces.AttributeID) (int64, bool, error) {
	n, ok := v.rec.Int64s[attr]
	return n, ok, nil
}

func (v *objectView) ReadInt32(attr interfaces.AttributeID) (int32, bool, error) {
	n, ok := v.rec.Int32s[attr]
	return n, ok, nil
}

func (v *objectView) ReadBytes(attr interfaces.AttributeID) ([]byte, bool, error) {
	b, ok := v.rec.Bytes[attr]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, true, nil
}

func (v *objectView) ReadStrings(attr interfaces.AttributeID) ([]string, bool, error) {
	s, ok := v.rec.StringSets[attr]
	if !ok {
		return nil, false, nil
	}
	cp := make([]string, len(s))
	copy(cp, s)
	return cp, true, nil
}

func (v *objectView) SetString(attr interfaces.AttributeID, value string) (bool, error) {
	if old, ok := v.rec.Strings[attr]; ok && old == value {
		return false, nil
	}
	v.rec.Strings[attr] = value
	return true, nil
}

func (v *objectView) SetInt32(attr interfaces.AttributeID, value int32) (bool, error) {
	if old, ok := v.rec.Int32s[attr]; ok && old == value {
		return false, nil
	}
	v.rec.Int32s[attr] = value
	return true, nil
}

func (v *objectView) SetBytes(attr interfaces.AttributeID, value []byte) (bool, error) {
	if old, ok := v.rec.Bytes[attr]; ok && bytes.Equal(old, value) {
		return false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	v.rec.Bytes[attr] = cp
	return true, nil
}

// AddStrings merge-appends into a multi-valued attribute. The caller
// (Directory Agent) decides no-op-ness of the overall commit from the
// returned bool; this method only reports whether the set itself grew.
func (v *objectView) AddStrings(attr interfaces.AttributeID, values []string) (bool, error) {
	existing := v.rec.StringSets[attr]
	present := make(map[string]bool, len(existing))
	for _, e := range existing {
		present[e] = true
	}
	merged := existing
	grew := false
	for _, val := range values {
		if present[val] {
			continue
		}
		merged = append(merged, val)
		present[val] = true
		grew = true
	}
	if grew {
		v.rec.StringSets[attr] = merged
	}
	return grew, nil
}

func (v *objectView) UpdateAttributeMeta(attr interfaces.AttributeID, meta interfaces.AttributeMeta) error {
	v.rec.Meta[attr] = meta
	return nil
}

func (v *objectView) Delete() error {
	v.rec.Deleted = true
	return nil
}

func (v *objectView) IsDeleted() bool           { return v.rec.Deleted }
func (v *objectView) IsWritable() bool          { return v.rec.Writable && !v.rec.Deleted }
func (v *objectView) IsAccount() bool           { return v.rec.isAccount() }
func (v *objectView) IsSecurityPrincipal() bool { return v.rec.isSecurityPrincipal() }
