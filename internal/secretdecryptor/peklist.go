package secretdecryptor

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/noahhai/DSInternals/pkg/interfaces"
)

// BootKeyLength is the fixed length every Boot Key must have. spec.md §3
// requires this be validated on input before any DB work.
const BootKeyLength = 16

const pekListVersion = 1

// markerPlain/markerWrapped distinguish a boot-key-wrapped PEK list blob
// from the plain (unwrapped) encoding used when the boot key is
// empty/zero — spec.md §4.1.6 step 3's "documented feature used for DB
// migration".
const (
	markerPlain   byte = 0x00
	markerWrapped byte = 0x01
)

// PEK is one entry of a PEK List.
type PEK struct {
	KeyID int32
	Key   []byte
}

// PEKList is the versioned array of symmetric keys spec.md §3 describes.
// The wire encoding is this package's own choice (spec.md describes the
// list as "a versioned array" without specifying a format; see
// DESIGN.md).
type PEKList struct {
	Version int32
	Keys    []PEK
}

// ByID returns the PEK with the given id.
func (l PEKList) ByID(id int32) (PEK, bool) {
	for _, k := range l.Keys {
		if k.KeyID == id {
			return k, true
		}
	}
	return PEK{}, false
}

func encodePlain(l PEKList) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(byte(pekListVersion))
	var countBytes [2]byte
	binary.BigEndian.PutUint16(countBytes[:], uint16(len(l.Keys)))
	buf.Write(countBytes[:])
	for _, k := range l.Keys {
		var idBytes [4]byte
		binary.BigEndian.PutUint32(idBytes[:], uint32(k.KeyID))
		buf.Write(idBytes[:])
		var lenBytes [2]byte
		binary.BigEndian.PutUint16(lenBytes[:], uint16(len(k.Key)))
		buf.Write(lenBytes[:])
		buf.Write(k.Key)
	}
	return buf.Bytes()
}

func decodePlain(data []byte) (PEKList, error) {
	if len(data) < 3 {
		return PEKList{}, errors.New("secretdecryptor: PEK list truncated")
	}
	version := int32(data[0])
	count := binary.BigEndian.Uint16(data[1:3])
	pos := 3
	keys := make([]PEK, 0, count)
	for i := 0; i < int(count); i++ {
		if pos+6 > len(data) {
			return PEKList{}, errors.New("secretdecryptor: PEK list truncated")
		}
		id := int32(binary.BigEndian.Uint32(data[pos : pos+4]))
		klen := int(binary.BigEndian.Uint16(data[pos+4 : pos+6]))
		pos += 6
		if pos+klen > len(data) {
			return PEKList{}, errors.New("secretdecryptor: PEK list truncated")
		}
		key := make([]byte, klen)
		copy(key, data[pos:pos+klen])
		pos += klen
		keys = append(keys, PEK{KeyID: id, Key: key})
	}
	return PEKList{Version: version, Keys: keys}, nil
}

// isZero reports whether bootKey is empty or all-zero, the condition
// spec.md §3 treats as "plain encoding".
func isZero(bootKey []byte) bool {
	if len(bootKey) == 0 {
		return true
	}
	for _, b := range bootKey {
		if b != 0 {
			return false
		}
	}
	return true
}

// WrapPEKList encodes list and, unless bootKey is empty/zero, wraps it
// under bootKey via primitives (spec.md §4.1.6 step 3).
func WrapPEKList(primitives interfaces.CryptoPrimitives, bootKey []byte, list PEKList) ([]byte, error) {
	plaintext := encodePlain(list)
	if isZero(bootKey) {
		return append([]byte{markerPlain}, plaintext...), nil
	}
	ciphertext, err := primitives.WrapKey(bootKey, plaintext)
	if err != nil {
		return nil, err
	}
	return append([]byte{markerWrapped}, ciphertext...), nil
}

// UnwrapPEKList reverses WrapPEKList. If blob is plain-encoded, bootKey
// is ignored (spec.md §3: "when the Boot Key is empty/zero the encoding
// is plain").
func UnwrapPEKList(primitives interfaces.CryptoPrimitives, bootKey []byte, blob []byte) (PEKList, error) {
	if len(blob) == 0 {
		return PEKList{}, errors.New("secretdecryptor: empty PEK list blob")
	}
	marker, rest := blob[0], blob[1:]
	switch marker {
	case markerPlain:
		return decodePlain(rest)
	case markerWrapped:
		plaintext, err := primitives.UnwrapKey(bootKey, rest)
		if err != nil {
			return PEKList{}, err
		}
		return decodePlain(plaintext)
	default:
		return PEKList{}, errors.New("secretdecryptor: unrecognized PEK list marker byte")
	}
}
