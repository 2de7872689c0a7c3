package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for TTL caching of small lookup results.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a stable cache key from a caller-supplied identity string.
func Key(identity string) string {
	hash := sha256.Sum256([]byte(identity))
	return "riskscan:v1:" + hex.EncodeToString(hash[:])
}
