package ports

import (
	"context"
)

// KeyValueStore defines durable storage for string values outside process memory.
type KeyValueStore interface {
	// Get retrieves the value stored under key.
	// Returns domain.ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set persists value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists the keys currently held by the store.
	Keys(ctx context.Context) ([]string, error)
}
