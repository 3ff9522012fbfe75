package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey derives a cache key from a key type and the values that determine
// an extraction: "<prefix>:<hex sha256 of the JSON-encoded parts>".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash is the content identity of a serialized e-graph: the hex SHA-256 of
// its bytes. Byte-identical inputs share cached selections; any edit to the
// file, including reordering nodes, produces a new identity.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
