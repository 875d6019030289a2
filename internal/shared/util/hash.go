package util

import (
	"crypto/sha256"
	"encoding/hex"
)

const ownerKeyLen = 24

// OwnerKey returns a short, path-safe namespace for a user or guest ID.
func OwnerKey(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:])[:ownerKeyLen]
}
