// Package diff converts raw git diff text plus git's summary metadata into
// a validated, line-addressed file/chunk/line tree for the browser UI.
// It also owns the short-TTL generated-file status cache.
package diff

// LineType classifies a single diff line.
type LineType string

const (
	// LineAdd is a line present only in the new version.
	LineAdd LineType = "add"

	// LineDelete is a line present only in the old version.
	LineDelete LineType = "delete"

	// LineNormal is an unchanged context line.
	LineNormal LineType = "normal"
)

// FileStatus classifies a file's change in the diff.
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusDeleted  FileStatus = "deleted"
	StatusModified FileStatus = "modified"
	StatusRenamed  FileStatus = "renamed"
)

// DiffLine is one line of a chunk with per-side line numbers.
// OldLineNumber is 0 (absent) for added lines; NewLineNumber is 0 (absent)
// for deleted lines. Line numbers start at 1.
type DiffLine struct {
	Type          LineType `json:"type"`
	Content       string   `json:"content"`
	OldLineNumber int      `json:"oldLineNumber,omitempty"`
	NewLineNumber int      `json:"newLineNumber,omitempty"`
}

// DiffChunk is one @@-delimited hunk of contiguous changed/context lines.
// Line numbers in Lines are monotonically non-decreasing per side and
// start at OldStart/NewStart.
type DiffChunk struct {
	Header   string     `json:"header"`
	OldStart int        `json:"oldStart"`
	OldLines int        `json:"oldLines"`
	NewStart int        `json:"newStart"`
	NewLines int        `json:"newLines"`
	Lines    []DiffLine `json:"lines"`
}

// DiffFile is one file's change set.
// OldPath is set only when Status is renamed and the two paths differ.
// Binary files always have empty Chunks and zero counts.
type DiffFile struct {
	Path        string      `json:"path"`
	OldPath     string      `json:"oldPath,omitempty"`
	Status      FileStatus  `json:"status"`
	Additions   int         `json:"additions"`
	Deletions   int         `json:"deletions"`
	Chunks      []DiffChunk `json:"chunks"`
	IsGenerated bool        `json:"isGenerated"`
}

// DiffResponse is the parsed model served to the UI.
// Produced fresh on each parse; never mutated in place.
type DiffResponse struct {
	// Commit is a human-readable label for the compared range.
	Commit string `json:"commit"`

	Files   []DiffFile `json:"files"`
	IsEmpty bool       `json:"isEmpty"`
}

// GeneratedSource says which signal flagged a file as generated.
type GeneratedSource string

const (
	// SourcePath means a well-known lockfile/artifact path pattern matched.
	SourcePath GeneratedSource = "path"

	// SourceContent means a generator marker was found in the blob content.
	SourceContent GeneratedSource = "content"
)

// GeneratedStatus is the result of generated-file detection for one
// (ref, path) pair. Cached independently of DiffResponse lifetime.
type GeneratedStatus struct {
	IsGenerated bool            `json:"isGenerated"`
	Source      GeneratedSource `json:"source"`
}
