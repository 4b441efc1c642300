package redis

import "github.com/redis/rueidis"

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client, scanListing bool) *Store {
	return &Store{client: c, scanListing: scanListing}
}
