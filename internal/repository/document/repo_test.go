package document

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/searchinto/internal/db"
)

func TestEnsureIndex_Exists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		if name != "si:archive:idx" {
			t.Errorf("unexpected index: %s", name)
		}
		return true, nil
	}
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		t.Fatal("CreateIndex should not be called")
		return nil
	}
	if err := repo.EnsureIndex(context.Background(), "archive"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIndex_Creates(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(context.Context, string) (bool, error) { return false, nil }

	var created *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		created = def
		return nil
	}
	if err := repo.EnsureIndex(context.Background(), "archive"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected CreateIndex call")
	}
	want := "FT.CREATE si:archive:idx ON JSON PREFIX si:archive: SCHEMA $._type AS _type TAG $._version AS _version NUMERIC"
	if created.String() != want {
		t.Errorf("index = %q, want %q", created.String(), want)
	}
}

func TestEnsureIndex_RaceIsTolerated(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(context.Context, string) (bool, error) { return false, nil }
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists }

	if err := repo.EnsureIndex(context.Background(), "archive"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIndex_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	boom := errors.New("connection reset")
	ms.indexExistsFn = func(context.Context, string) (bool, error) { return false, boom }

	if err := repo.EnsureIndex(context.Background(), "archive"); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
}
