package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/searchinto/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	listKeysFn     func(ctx context.Context, index, query string, offset, limit int) (*db.KeyPage, error)
	jsonGetMultiFn func(ctx context.Context, keys []string, paths ...string) ([][]byte, error)
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
}

func (m *mockStore) ListKeys(ctx context.Context, index, query string, offset, limit int) (*db.KeyPage, error) {
	if m.listKeysFn != nil {
		return m.listKeysFn(ctx, index, query, offset, limit)
	}
	return &db.KeyPage{}, nil
}

func (m *mockStore) JSONGetMulti(ctx context.Context, keys []string, paths ...string) ([][]byte, error) {
	if m.jsonGetMultiFn != nil {
		return m.jsonGetMultiFn(ctx, keys, paths...)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "si:"), ms
}
