// Package hash derives short, stable document IDs.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// IDLength is the number of hex characters in a truncated ID.
// 16 hex chars = 64 bits, enough for a few thousand reviews per source.
const IDLength = 16

// TruncatedSHA256 returns the first IDLength hex characters of the SHA256 of
// the joined parts. Parts are separated by "/" so ("a", "b/c") and
// ("a/b", "c") collide; callers pass slugs, which never contain "/".
func TruncatedSHA256(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{'/'})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))[:IDLength]
}
