package storage

import (
	"testing"

	apperrors "github.com/diffdeck/diffdeck/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveComment_FillsDefaults(t *testing.T) {
	store := newTestStore(t)

	c := &Comment{File: "main.go", Line: 42, Body: "why not a pointer?"}
	if err := store.SaveComment(c); err != nil {
		t.Fatalf("save: %v", err)
	}

	if c.ID == "" {
		t.Error("expected a generated ID")
	}
	if c.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := store.GetComment(c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.File != "main.go" || got.Line != 42 || got.Body != "why not a pointer?" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Resolved {
		t.Error("new comment should not be resolved")
	}
}

func TestListComments_FilterByFile(t *testing.T) {
	store := newTestStore(t)

	for _, c := range []*Comment{
		{File: "a.go", Line: 1, Body: "first"},
		{File: "a.go", Line: 9, Body: "second"},
		{File: "b.go", Line: 3, Body: "other file"},
	} {
		if err := store.SaveComment(c); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	all, err := store.ListComments("")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 comments, got %d", len(all))
	}

	onlyA, err := store.ListComments("a.go")
	if err != nil {
		t.Fatalf("list a.go: %v", err)
	}
	if len(onlyA) != 2 {
		t.Errorf("expected 2 comments for a.go, got %d", len(onlyA))
	}
	for _, c := range onlyA {
		if c.File != "a.go" {
			t.Errorf("filter leaked comment for %s", c.File)
		}
	}
}

func TestDeleteComment(t *testing.T) {
	store := newTestStore(t)

	c := &Comment{File: "x.go", Line: 7, Body: "drop me"}
	if err := store.SaveComment(c); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.DeleteComment(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.GetComment(c.ID); !apperrors.HasCode(err, apperrors.CodeStorageNotFound) {
		t.Errorf("expected %s after delete, got %v", apperrors.CodeStorageNotFound, err)
	}

	if err := store.DeleteComment("no-such-id"); !apperrors.HasCode(err, apperrors.CodeStorageNotFound) {
		t.Errorf("expected %s for unknown id, got %v", apperrors.CodeStorageNotFound, err)
	}
}

func TestSetResolved(t *testing.T) {
	store := newTestStore(t)

	c := &Comment{File: "x.go", Line: 7, Body: "fixed in next push"}
	if err := store.SaveComment(c); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.SetResolved(c.ID, true); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	got, err := store.GetComment(c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Resolved {
		t.Error("expected comment to be resolved")
	}

	if err := store.SetResolved("missing", true); !apperrors.HasCode(err, apperrors.CodeStorageNotFound) {
		t.Errorf("expected %s for unknown id, got %v", apperrors.CodeStorageNotFound, err)
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := t.TempDir() + "/comments.db"

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.SaveComment(&Comment{File: "keep.go", Line: 1, Body: "persisted"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	store.Close()

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	comments, err := reopened.ListComments("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 1 || comments[0].Body != "persisted" {
		t.Errorf("expected the saved comment to survive reopen, got %+v", comments)
	}
}
