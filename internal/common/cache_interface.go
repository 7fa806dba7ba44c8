package common

import "time"

// CacheInterface is the contract shared by the in-memory and Redis
// cache implementations.
type CacheInterface interface {
	// Set stores a value under key for the given duration
	Set(key string, value interface{}, duration time.Duration)

	// Get retrieves a value by key, reporting whether it was found
	Get(key string) (interface{}, bool)

	// Delete removes a key
	Delete(key string)

	// GetOrSet returns the cached value or loads and stores it
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	// Close releases any underlying connections
	Close() error
}
