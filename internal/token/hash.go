package token

import (
	"crypto/sha256"
	"encoding/base64"
)

// Hash derives the storage key for a raw refresh token. Unsalted SHA-256 is
// enough here: the input is a random, single-use credential, and the store
// needs the same input to map to the same key.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.StdEncoding.EncodeToString(sum[:])
}
