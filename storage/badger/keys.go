package badger

import (
	"encoding/binary"

	"github.com/poiesic/logscope/core"
)

// Key prefixes for different data types
const (
	docPrefix    = "logdoc:"
	vectorPrefix = "logvec:"
)

// makeDocKey generates a key for a document body by ID.
// Format: prefix + big-endian ID so iteration follows ID order.
func makeDocKey(id core.ID) []byte {
	return makeIDKey(docPrefix, id)
}

// makeVectorKey generates a key for a document embedding by ID.
func makeVectorKey(id core.ID) []byte {
	return makeIDKey(vectorPrefix, id)
}

func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// idFromKey extracts the document ID from a prefixed key.
func idFromKey(prefix string, key []byte) (core.ID, bool) {
	if len(key) != len(prefix)+8 {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[len(prefix):])), true
}
