package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HolderID computes a deterministic holder id from a display name using SHA256.
// The name is normalized first: surrounding space trimmed, inner runs of space collapsed,
// case folded. Returns hex-encoded hash (64 characters).
func HolderID(name string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(name), " "))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}
