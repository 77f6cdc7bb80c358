package diff

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/diffdeck/diffdeck/internal/errors"
)

func TestGeneratedByPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"package-lock.json", true},
		{"frontend/package-lock.json", true},
		{"yarn.lock", true},
		{"Cargo.lock", true},
		{"deps.lock", true},
		{"bundle.min.js", true},
		{"styles.min.css", true},
		{"app.js.map", true},
		{"main.go", false},
		{"locker.go", false},
		{"minjs.txt", false},
	}

	for _, tt := range tests {
		if got := generatedByPath(tt.path); got != tt.want {
			t.Errorf("generatedByPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestGeneratedStatus_PathBasedSkipsBlobRead(t *testing.T) {
	ex := &fakeExec{}
	p := NewParser(ex)

	status := p.GeneratedStatus(context.Background(), "package-lock.json", "HEAD")
	if !status.IsGenerated || status.Source != SourcePath {
		t.Errorf("unexpected status: %+v", status)
	}
	// Path detection must never invoke blob retrieval.
	for _, call := range ex.calls {
		if strings.HasPrefix(call, "show") {
			t.Errorf("unexpected blob read: %q", call)
		}
	}
}

func TestGeneratedStatus_ContentMarker(t *testing.T) {
	ex := &fakeExec{responses: map[string]string{
		"show": "// @generated by protoc\npackage pb\n",
	}}
	p := NewParser(ex)

	status := p.GeneratedStatus(context.Background(), "api.pb.go", "HEAD")
	if !status.IsGenerated || status.Source != SourceContent {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestGeneratedStatus_BlobReadFailsOpen(t *testing.T) {
	ex := &fakeExec{errors: map[string]error{
		"show": apperrors.New(apperrors.CodeGitFailed, "path does not exist at ref"),
	}}
	p := NewParser(ex)

	status := p.GeneratedStatus(context.Background(), "src/new_file.go", "HEAD")
	if status.IsGenerated {
		t.Error("blob read failure must yield not-generated")
	}
	if status.Source != SourcePath {
		t.Errorf("fail-open result reports source=path, got %s", status.Source)
	}
}

func TestGeneratedStatus_CachedPerRefAndPath(t *testing.T) {
	ex := &fakeExec{responses: map[string]string{"show": "plain content"}}
	p := NewParser(ex)

	p.GeneratedStatus(context.Background(), "a.go", "HEAD")
	p.GeneratedStatus(context.Background(), "a.go", "HEAD")
	if len(ex.calls) != 1 {
		t.Errorf("expected a single blob read thanks to the cache, got %d", len(ex.calls))
	}

	// A different ref is a different cache key.
	p.GeneratedStatus(context.Background(), "a.go", "HEAD~1")
	if len(ex.calls) != 2 {
		t.Errorf("expected a second blob read for a new ref, got %d", len(ex.calls))
	}

	// Invalidation clears the cache wholesale.
	p.InvalidateCache()
	p.GeneratedStatus(context.Background(), "a.go", "HEAD")
	if len(ex.calls) != 3 {
		t.Errorf("expected a blob read after invalidation, got %d", len(ex.calls))
	}
}

func TestGeneratedStatus_EmptyRefDefaultsToHead(t *testing.T) {
	ex := &fakeExec{responses: map[string]string{"show": "content"}}
	p := NewParser(ex)

	p.GeneratedStatus(context.Background(), "a.go", "")
	if len(ex.calls) != 1 || !strings.Contains(ex.calls[0], "HEAD:a.go") {
		t.Errorf("expected show HEAD:a.go, got %v", ex.calls)
	}
}
