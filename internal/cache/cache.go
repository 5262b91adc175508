// Package cache defines the key/value store used to memoize dispatch
// results, together with the key derivation shared by every backend.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Cache stores JSON-encoded values by key. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the value stored under key. ok is false on a miss.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Key derives the cache key of a call: the hex SHA-256 of the JSON array
// [ref, args].
func Key(ref string, args []any) (string, error) {
	if args == nil {
		args = []any{}
	}
	data, err := json.Marshal([]any{ref, args})
	if err != nil {
		return "", fmt.Errorf("cache key for %s: %w", ref, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
