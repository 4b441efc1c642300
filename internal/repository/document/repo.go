package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/searchinto/internal/db"
)

// store is the consumer interface for documents (ISP).
type store interface {
	ListKeys(ctx context.Context, index, query string, offset, limit int) (*db.KeyPage, error)
	JSONGetMulti(ctx context.Context, keys []string, paths ...string) ([][]byte, error)
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo reads source hits and writes assembled documents. A document of index
// "people" with id "42" lives at "<prefix>people:42" as
// {"_type", "_version", "_timestamp", "_source"}.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository for keys under prefix.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// EnsureIndex creates the FT index over an index's documents if it is missing.
func (r *Repo) EnsureIndex(ctx context.Context, index string) error {
	name := r.indexName(index)
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(name).
		Prefix(r.keyPrefix(index)).
		Tag("$._type", "_type").
		Numeric("$._version", "_version").
		Build()
	if err != nil {
		return fmt.Errorf("build index %s: %w", name, err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

func (r *Repo) keyPrefix(index string) string {
	return r.prefix + index + ":"
}

func (r *Repo) docKey(index, id string) string {
	return r.keyPrefix(index) + id
}

func (r *Repo) indexName(index string) string {
	return r.prefix + index + ":idx"
}

func (r *Repo) docID(index, key string) string {
	return strings.TrimPrefix(key, r.keyPrefix(index))
}
