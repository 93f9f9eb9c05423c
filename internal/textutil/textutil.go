package textutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxRunes runes, appending "..." if
// truncated. Counting runes keeps multi-byte game text intact.
func Truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
