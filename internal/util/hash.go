// Package util holds small helpers shared across polysum packages.
package util

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// GenerateHash derives a 16 hex character id from content and a timestamp
// in nanoseconds.
func GenerateHash(content string, timestamp int64) string {
	hasher := sha256.New()
	hasher.Write([]byte(content))
	hasher.Write([]byte(time.Unix(0, timestamp).UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}
