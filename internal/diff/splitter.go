package diff

import (
	"strings"

	"github.com/diffdeck/diffdeck/internal/git"
)

// fileBlock is one file's section of raw diff text, from its
// "diff --git" line up to the next one.
type fileBlock struct {
	header string   // the "diff --git ..." line
	lines  []string // remaining lines of the block
}

// splitBlocks splits raw diff text into one block per file, in encounter
// order. Block i pairs with summary record i when a summary is present.
func splitBlocks(raw string) []fileBlock {
	var blocks []fileBlock
	var current *fileBlock

	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			if current != nil {
				blocks = append(blocks, *current)
			}
			current = &fileBlock{header: line}
			continue
		}
		if current != nil {
			current.lines = append(current.lines, line)
		}
	}
	if current != nil {
		blocks = append(blocks, *current)
	}

	// Drop the trailing empty line the final newline split produces, so
	// the chunk fold never sees a phantom context line.
	for i := range blocks {
		lines := blocks[i].lines
		if n := len(lines); n > 0 && lines[n-1] == "" {
			blocks[i].lines = lines[:n-1]
		}
	}

	return blocks
}

// blockInfo is everything extracted from one block before path/status
// resolution.
type blockInfo struct {
	headerOld   string
	headerNew   string
	minusPath   string // from "--- ", empty when /dev/null or absent
	minusIsNull bool
	plusPath    string // from "+++ ", empty when /dev/null or absent
	plusIsNull  bool
	renameFrom  string
	renameTo    string
	newFileMode bool
	deletedMode bool
	binaryBody  bool
	chunkLines  []string
}

// scanBlock extracts header paths, ---/+++ paths, rename lines, mode
// markers and the binary marker from a block.
func scanBlock(b fileBlock) blockInfo {
	info := blockInfo{}
	info.headerOld, info.headerNew = tokenizeHeaderPaths(b.header)

	for _, line := range b.lines {
		// Metadata only appears before the first hunk. Stopping there keeps
		// chunk content like a deleted "-- foo" line from being mistaken
		// for a "--- " marker.
		if strings.HasPrefix(line, "@@") {
			break
		}
		switch {
		case strings.HasPrefix(line, "--- "):
			path, ok := DecodePath(line[4:])
			if ok {
				info.minusPath = StripDiffPrefix(path)
			} else {
				info.minusIsNull = true
			}
		case strings.HasPrefix(line, "+++ "):
			path, ok := DecodePath(line[4:])
			if ok {
				info.plusPath = StripDiffPrefix(path)
			} else {
				info.plusIsNull = true
			}
		case strings.HasPrefix(line, "rename from "):
			if path, ok := DecodePath(line[len("rename from "):]); ok {
				info.renameFrom = StripDiffPrefix(path)
			}
		case strings.HasPrefix(line, "rename to "):
			if path, ok := DecodePath(line[len("rename to "):]); ok {
				info.renameTo = StripDiffPrefix(path)
			}
		case strings.HasPrefix(line, "new file mode"):
			info.newFileMode = true
		case strings.HasPrefix(line, "deleted file mode"):
			info.deletedMode = true
		case strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ"):
			info.binaryBody = true
		}
	}

	info.chunkLines = b.lines
	return info
}

// tokenizeHeaderPaths splits the two paths out of a "diff --git A B"
// header line. Quoted paths may themselves contain spaces, so this is a
// quote-aware scan, not a whitespace split. For unquoted paths with spaces
// the header is inherently ambiguous; the fallback splits at the last
// " <prefix>/" boundary, which the ---/+++ lines correct anyway via the
// path resolution priority.
func tokenizeHeaderPaths(header string) (oldPath, newPath string) {
	rest := strings.TrimPrefix(header, "diff --git ")

	tokens := scanQuoteAware(rest)
	if len(tokens) == 2 {
		oldPath = decodeHeaderToken(tokens[0])
		newPath = decodeHeaderToken(tokens[1])
		return oldPath, newPath
	}

	// Unquoted paths containing spaces: look for the start of the second
	// path by its diff prefix, scanning from the right.
	for _, prefix := range diffPrefixes {
		marker := " " + prefix
		if i := strings.LastIndex(rest, marker); i > 0 {
			oldPath = decodeHeaderToken(rest[:i])
			newPath = decodeHeaderToken(rest[i+1:])
			return oldPath, newPath
		}
	}

	return "", ""
}

// scanQuoteAware splits a string on spaces, keeping quoted runs (with
// backslash escapes) as single tokens.
func scanQuoteAware(s string) []string {
	var tokens []string
	i := 0
	for i < len(s) {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			break
		}

		start := i
		if s[i] == '"' {
			i++
			for i < len(s) {
				if s[i] == '\\' && i+1 < len(s) {
					i += 2
					continue
				}
				if s[i] == '"' {
					i++
					break
				}
				i++
			}
		} else {
			for i < len(s) && s[i] != ' ' {
				i++
			}
		}
		tokens = append(tokens, s[start:i])
	}
	return tokens
}

// decodeHeaderToken decodes one header path token and strips its diff
// prefix. Returns "" for /dev/null.
func decodeHeaderToken(tok string) string {
	path, ok := DecodePath(tok)
	if !ok {
		return ""
	}
	return StripDiffPrefix(path)
}

// resolveFile turns a scanned block plus its optional summary record into
// a DiffFile. Returns ok=false when no new path can be resolved.
//
// Path resolution priority (highest first): rename-to/rename-from lines,
// +++/--- lines, header paths, summary-provided path. The ---/+++ lines
// are the most diff-format-canonical source but are absent for renames
// with no content change.
//
// Status resolution: mode markers and /dev/null sides take precedence over
// path-based rename inference, so an added file whose summary happens to
// carry an old path is never misreported as renamed.
func resolveFile(info blockInfo, summary *git.SummaryEntry) (DiffFile, bool) {
	newPath := firstNonEmpty(info.renameTo, info.plusPath, info.headerNew)
	oldPath := firstNonEmpty(info.renameFrom, info.minusPath, info.headerOld)
	if newPath == "" && summary != nil {
		newPath = summary.Path
	}
	if oldPath == "" && summary != nil {
		oldPath = summary.OldPath
	}

	// A deleted file has no new-side path; the old path names it.
	if newPath == "" && (info.deletedMode || info.plusIsNull) {
		newPath = oldPath
	}
	if newPath == "" {
		return DiffFile{}, false
	}

	var status FileStatus
	switch {
	case info.newFileMode || info.minusIsNull:
		status = StatusAdded
	case info.deletedMode || info.plusIsNull:
		status = StatusDeleted
	case oldPath != "" && oldPath != newPath:
		status = StatusRenamed
	default:
		status = StatusModified
	}

	file := DiffFile{
		Path:   newPath,
		Status: status,
		Chunks: []DiffChunk{},
	}
	if status == StatusRenamed {
		file.OldPath = oldPath
	}

	binary := info.binaryBody || (summary != nil && summary.Binary)
	if binary {
		// Binary files get empty chunks and zero counts regardless of
		// the summary's numbers.
		return file, true
	}

	file.Chunks = parseChunks(info.chunkLines)
	if summary != nil {
		file.Additions = summary.Insertions
		file.Deletions = summary.Deletions
	} else {
		file.Additions, file.Deletions = countChunkLines(file.Chunks)
	}

	return file, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
