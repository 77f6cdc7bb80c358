package diff

import (
	"context"
	"path"
	"strings"

	"github.com/diffdeck/diffdeck/internal/git"
)

// generatedBasenames are well-known lockfile and build-artifact names
// flagged as generated without reading any content.
var generatedBasenames = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"bun.lockb":         true,
	"Cargo.lock":        true,
	"Gemfile.lock":      true,
	"composer.lock":     true,
	"poetry.lock":       true,
	"uv.lock":           true,
	"go.sum":            true,
}

// generatedSuffixes are path suffixes that indicate generated output.
var generatedSuffixes = []string{
	".lock",
	".min.js",
	".min.css",
	".map",
}

// generatedMarker is the annotation tools place in generated file content.
const generatedMarker = "@generated"

// generatedByPath reports whether the path alone marks a file as
// generated. Cheap and safe to run during the bulk parse.
func generatedByPath(filePath string) bool {
	base := path.Base(filePath)
	if generatedBasenames[base] {
		return true
	}
	for _, suffix := range generatedSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// generatedByContent reads the file's blob at ref and scans for a
// generator marker. Only called on an explicit query, never during the
// bulk diff parse, so blob content is not fetched for every file.
// A failed read yields "not generated" (fails open, not closed).
func generatedByContent(ctx context.Context, ex git.Executor, ref, filePath string) bool {
	content, err := git.ShowBlob(ctx, ex, ref, filePath)
	if err != nil {
		return false
	}
	return strings.Contains(content, generatedMarker)
}
