package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	JSONStore
	IndexManager
	Lister
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONSetItem holds a single JSON.SET for a pipelined write.
// A positive TTL expires the key after the write.
type JSONSetItem struct {
	Key  string
	Path string
	Data []byte
	TTL  time.Duration
}

// JSONStore provides pipelined JSON document operations.
type JSONStore interface {
	// JSONGetMulti returns one reply per key, nil where the key does not exist.
	JSONGetMulti(ctx context.Context, keys []string, paths ...string) ([][]byte, error)
	JSONSetMulti(ctx context.Context, items []JSONSetItem) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// KeyPage is one page of document keys matched by a listing.
type KeyPage struct {
	Total int
	Keys  []string
}

// Lister pages through the keys of an FT index.
type Lister interface {
	ListKeys(ctx context.Context, index, query string, offset, limit int) (*KeyPage, error)
}
