package optimizer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HashParts derives a deterministic digest of its ordered arguments. Strings
// are hashed as-is; anything else is serialized as canonical JSON (Go sorts
// map keys during marshaling, so key order in the source data is irrelevant).
// A NUL separator between parts avoids ambiguous concatenation, and the
// namespace prefix keeps keys from colliding with other cache users.
func HashParts(parts ...any) string {
	h := sha256.New()
	h.Write([]byte(HashNamespace))
	for _, part := range parts {
		h.Write([]byte{0})
		switch v := part.(type) {
		case string:
			h.Write([]byte(v))
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				// Unserializable parts still need a stable representation.
				encoded = []byte(fmt.Sprintf("%+v", v))
			}
			h.Write(encoded)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
