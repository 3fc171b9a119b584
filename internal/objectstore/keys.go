package objectstore

import (
	"encoding/binary"
	"errors"
)

var errShortIndexKey = errors.New("objectstore: index key too short to contain a DNT suffix")

// Key Compose (spec.md §6): encodes scalars into the index-native binary
// keys the storage engine uses. This is the one place that owns the
// object table's on-disk key layout.

func be32(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func objKey(dnt int32) []byte {
	k := make([]byte, 0, 6)
	k = append(k, 'o', ':')
	return append(k, be32(dnt)...)
}

func dnKey(dn string) []byte {
	k := make([]byte, 0, len(dn)+2)
	k = append(k, 'n', ':')
	return append(k, []byte(dn)...)
}

func uniqueIndexKey(indexName string, keyBytes []byte) []byte {
	k := make([]byte, 0, len(indexName)+len(keyBytes)+3)
	k = append(k, 'u', ':')
	k = append(k, []byte(indexName)...)
	k = append(k, ':')
	return append(k, keyBytes...)
}

// nonUniqueIndexPrefix length-prefixes keyBytes with its own byte count
// rather than terminating it with a bare ':' separator: a colon
// terminator can't distinguish a seek for "alice" from a stored value
// "alice:bob", since "alice:" is itself a byte-prefix of "alice:bob:".
// Encoding the length first means two different keyBytes values only
// share a prefix when their lengths (and then their bytes) are equal.
func nonUniqueIndexPrefix(indexName string, keyBytes []byte) []byte {
	k := make([]byte, 0, len(indexName)+len(keyBytes)+8)
	k = append(k, 'i', ':')
	k = append(k, []byte(indexName)...)
	k = append(k, ':')
	k = append(k, be32(int32(len(keyBytes)))...)
	return append(k, keyBytes...)
}

func nonUniqueIndexKey(indexName string, keyBytes []byte, dnt int32) []byte {
	prefix := nonUniqueIndexPrefix(indexName, keyBytes)
	return append(prefix, be32(dnt)...)
}

// indexAllPrefix is the prefix common to every entry on indexName
// regardless of the indexed key value. get_accounts (spec.md §4.1.3)
// scans a whole index this way rather than seeking one specific key.
func indexAllPrefix(indexName string) []byte {
	k := make([]byte, 0, len(indexName)+2)
	k = append(k, 'i', ':')
	k = append(k, []byte(indexName)...)
	return append(k, ':')
}

func decodeBE32(b []byte) int32 {
	return int32(binary.BigEndian.Uint32(b))
}

// dntFromIndexKey extracts the trailing DNT suffix written by
// nonUniqueIndexKey.
func dntFromIndexKey(key []byte) (int32, error) {
	if len(key) < 4 {
		return 0, errShortIndexKey
	}
	return decodeBE32(key[len(key)-4:]), nil
}
