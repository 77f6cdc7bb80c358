package diff

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/diffdeck/diffdeck/internal/errors"
	"github.com/diffdeck/diffdeck/internal/git"
)

// fakeExec returns canned output per leading git argument.
type fakeExec struct {
	responses map[string]string
	errors    map[string]error
	calls     []string
}

func (f *fakeExec) Run(_ context.Context, args ...string) (string, error) {
	f.calls = append(f.calls, strings.Join(args, " "))
	if f.errors != nil {
		if err, ok := f.errors[args[0]]; ok {
			return "", err
		}
	}
	if f.responses != nil {
		if out, ok := f.responses[args[0]]; ok {
			return out, nil
		}
	}
	return "", nil
}

const modifiedFixture = "diff --git a/t.txt b/t.txt\n" +
	"index 1..2 100644\n" +
	"--- a/t.txt\n" +
	"+++ b/t.txt\n" +
	"@@ -1,3 +1,3 @@\n" +
	" line1\n" +
	"-line2\n" +
	"+line2 modified\n" +
	" line3"

func TestParsePatch_ModifiedFile(t *testing.T) {
	p := NewParser(&fakeExec{})

	resp, err := p.ParsePatch(modifiedFixture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.IsEmpty {
		t.Error("expected non-empty response")
	}
	if len(resp.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(resp.Files))
	}

	file := resp.Files[0]
	if file.Path != "t.txt" {
		t.Errorf("expected path t.txt, got %q", file.Path)
	}
	if file.Status != StatusModified {
		t.Errorf("expected modified, got %s", file.Status)
	}
	if file.Additions != 1 || file.Deletions != 1 {
		t.Errorf("expected 1/1 counts, got %d/%d", file.Additions, file.Deletions)
	}
	if len(file.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(file.Chunks))
	}

	lines := file.Chunks[0].Lines
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	wantTypes := []LineType{LineNormal, LineDelete, LineAdd, LineNormal}
	for i, want := range wantTypes {
		if lines[i].Type != want {
			t.Errorf("line %d: expected %s, got %s", i, want, lines[i].Type)
		}
	}
}

func TestParsePatch_AddedFileIgnoresSummaryRename(t *testing.T) {
	// A new-file block must classify as added even if an old-path source
	// exists elsewhere; mode and /dev/null checks outrank rename inference.
	raw := "diff --git a/x b/x\n" +
		"new file mode 100644\n" +
		"--- /dev/null\n" +
		"+++ b/x\n" +
		"@@ -0,0 +1,1 @@\n" +
		"+hello"

	summaries := []git.SummaryEntry{{Path: "x", OldPath: "old-x", Insertions: 1}}

	p := NewParser(&fakeExec{})
	resp, err := p.assemble("test", raw, summaries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file := resp.Files[0]
	if file.Status != StatusAdded {
		t.Errorf("expected added, got %s", file.Status)
	}
	if file.OldPath != "" {
		t.Errorf("expected no oldPath for added file, got %q", file.OldPath)
	}
}

func TestParsePatch_RenameWithoutContent(t *testing.T) {
	raw := "diff --git a/old.txt b/new.txt\n" +
		"similarity index 100%\n" +
		"rename from old.txt\n" +
		"rename to new.txt"

	p := NewParser(&fakeExec{})
	resp, err := p.ParsePatch(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file := resp.Files[0]
	if file.Status != StatusRenamed {
		t.Errorf("expected renamed, got %s", file.Status)
	}
	if file.Path != "new.txt" || file.OldPath != "old.txt" {
		t.Errorf("unexpected paths: %q <- %q", file.Path, file.OldPath)
	}
	if file.Additions != 0 || file.Deletions != 0 {
		t.Errorf("expected zero counts, got %d/%d", file.Additions, file.Deletions)
	}
}

func TestParsePatch_DeletedFile(t *testing.T) {
	raw := "diff --git a/gone.txt b/gone.txt\n" +
		"deleted file mode 100644\n" +
		"--- a/gone.txt\n" +
		"+++ /dev/null\n" +
		"@@ -1,1 +0,0 @@\n" +
		"-bye"

	p := NewParser(&fakeExec{})
	resp, err := p.ParsePatch(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file := resp.Files[0]
	if file.Status != StatusDeleted {
		t.Errorf("expected deleted, got %s", file.Status)
	}
	if file.Path != "gone.txt" {
		t.Errorf("unexpected path %q", file.Path)
	}
	if file.Deletions != 1 {
		t.Errorf("expected 1 deletion, got %d", file.Deletions)
	}
}

func TestParsePatch_BinaryFile(t *testing.T) {
	raw := "diff --git a/logo.png b/logo.png\n" +
		"index 1..2 100644\n" +
		"Binary files a/logo.png and b/logo.png differ"

	p := NewParser(&fakeExec{})
	resp, err := p.ParsePatch(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file := resp.Files[0]
	if len(file.Chunks) != 0 {
		t.Errorf("expected no chunks for binary, got %d", len(file.Chunks))
	}
	if file.Additions != 0 || file.Deletions != 0 {
		t.Errorf("expected zero counts for binary, got %d/%d", file.Additions, file.Deletions)
	}
}

func TestAssemble_BinarySummaryOverridesCounts(t *testing.T) {
	raw := "diff --git a/data.bin b/data.bin\n" +
		"index 1..2 100644\n" +
		"--- a/data.bin\n" +
		"+++ b/data.bin"

	summaries := []git.SummaryEntry{{Path: "data.bin", Binary: true}}

	p := NewParser(&fakeExec{})
	resp, err := p.assemble("test", raw, summaries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file := resp.Files[0]
	if file.Additions != 0 || file.Deletions != 0 || len(file.Chunks) != 0 {
		t.Errorf("binary summary must force empty chunks and zero counts: %+v", file)
	}
}

func TestParsePatch_QuotedPathWithSpaces(t *testing.T) {
	raw := "diff --git \"a/test file.py\" \"b/test file.py\"\n" +
		"index 1..2 100644\n" +
		"--- \"a/test file.py\"\n" +
		"+++ \"b/test file.py\"\n" +
		"@@ -1,1 +1,1 @@\n" +
		"-a\n" +
		"+b"

	p := NewParser(&fakeExec{})
	resp, err := p.ParsePatch(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Files[0].Path != "test file.py" {
		t.Errorf("unexpected path %q", resp.Files[0].Path)
	}
}

func TestParsePatch_SummaryLessCountsFromLines(t *testing.T) {
	raw := "diff --git a/m.go b/m.go\n" +
		"--- a/m.go\n" +
		"+++ b/m.go\n" +
		"@@ -1,4 +1,5 @@\n" +
		" ctx\n" +
		"-one\n" +
		"-two\n" +
		"+uno\n" +
		"+dos\n" +
		"+tres\n" +
		" ctx"

	p := NewParser(&fakeExec{})
	resp, err := p.ParsePatch(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	file := resp.Files[0]
	if file.Additions != 3 || file.Deletions != 2 {
		t.Errorf("expected 3/2 from counted lines, got %d/%d", file.Additions, file.Deletions)
	}
}

func TestParsePatch_UnresolvableBlockLenient(t *testing.T) {
	raw := "diff --git a/ b/\nindex 1..2 100644\n" + modifiedFixture

	p := NewParser(&fakeExec{})
	resp, err := p.ParsePatch(raw)
	if err != nil {
		t.Fatalf("unexpected error in lenient mode: %v", err)
	}
	if len(resp.Files) != 1 || resp.Files[0].Path != "t.txt" {
		t.Errorf("expected unresolved block to be dropped, got %+v", resp.Files)
	}
}

func TestParsePatch_UnresolvableBlockStrict(t *testing.T) {
	p := NewParser(&fakeExec{})
	p.Strict = true

	_, err := p.ParsePatch("diff --git a/ b/\nindex 1..2 100644")
	if err == nil {
		t.Fatal("expected error in strict mode")
	}
	if !apperrors.HasCode(err, apperrors.CodeDiffBlockUnresolved) {
		t.Errorf("expected code %s, got %s", apperrors.CodeDiffBlockUnresolved, apperrors.GetCode(err))
	}
}

func TestParseDiff_ErrorNamesBothSpecs(t *testing.T) {
	ex := &fakeExec{errors: map[string]error{
		"diff": apperrors.New(apperrors.CodeGitFailed, "bad revision"),
	}}
	p := NewParser(ex)

	_, err := p.ParseDiff(context.Background(), "feature-branch", "main", false)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "feature-branch") || !strings.Contains(msg, "main") {
		t.Errorf("error must name both revision specs, got %q", msg)
	}
}

func TestParseDiff_PairsSummaryWithBlocks(t *testing.T) {
	ex := &fakeExec{responses: map[string]string{
		"diff": modifiedFixture,
	}}
	// Both the text and numstat calls start with "diff", so the fake
	// returns the fixture for both; the numstat parser finds no NUL
	// records in it and the counts fall back to line counting.
	p := NewParser(ex)

	resp, err := p.ParseDiff(context.Background(), "HEAD~1", "HEAD", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(resp.Files))
	}
	if len(ex.calls) != 2 {
		t.Fatalf("expected text + summary git calls, got %v", ex.calls)
	}
	if !strings.Contains(ex.calls[1], "--numstat") {
		t.Errorf("second call should be the numstat summary, got %q", ex.calls[1])
	}
}

func TestBuildDiffArgs(t *testing.T) {
	tests := []struct {
		target, base string
		ignoreWS     bool
		wantArgs     string
	}{
		{TargetWorking, "", false, "diff"},
		{TargetStaged, "", false, "diff --cached"},
		{TargetDot, "", false, "diff HEAD"},
		{"abc123", "main", false, "diff main abc123"},
		{"abc123", "", false, "diff abc123^ abc123"},
		{TargetStaged, "", true, "diff -w --cached"},
	}

	for _, tt := range tests {
		args, _ := buildDiffArgs(tt.target, tt.base, tt.ignoreWS)
		if got := strings.Join(args, " "); got != tt.wantArgs {
			t.Errorf("buildDiffArgs(%q, %q, %v) = %q, want %q", tt.target, tt.base, tt.ignoreWS, got, tt.wantArgs)
		}
	}
}
