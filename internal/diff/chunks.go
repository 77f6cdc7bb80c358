package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// chunkHeaderRegex matches git diff chunk headers like:
// @@ -1,5 +1,7 @@
// @@ -0,0 +1,10 @@ (new file)
// @@ -1 +1 @@ (run lengths omitted)
var chunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// chunkAccumulator carries the fold state while scanning a file block.
// Line-number counters are fold fields, not parser fields, so the walk
// stays a pure function of the input lines.
type chunkAccumulator struct {
	chunks  []DiffChunk
	current *DiffChunk
	oldLine int
	newLine int
}

// parseChunks folds a file block's lines into an ordered chunk list.
//
// A line matching the hunk header pattern flushes the in-progress chunk and
// starts a new one at its old/new start positions (run lengths default to 1
// when omitted). A header-looking line that fails the pattern is skipped:
// no chunk is emitted for that hunk, but the parse continues.
//
// Bookkeeping per content line: the old line number increments on every
// line except adds; the new line number increments on every line except
// deletes.
func parseChunks(lines []string) []DiffChunk {
	acc := chunkAccumulator{}

	for _, line := range lines {
		if strings.HasPrefix(line, "@@") {
			acc.flush()
			m := chunkHeaderRegex.FindStringSubmatch(line)
			if m == nil {
				// Malformed hunk header: skip the hunk, not the parse.
				continue
			}
			acc.current = &DiffChunk{
				Header:   line,
				OldStart: atoiDefault(m[1], 0),
				OldLines: atoiDefault(m[2], 1),
				NewStart: atoiDefault(m[3], 0),
				NewLines: atoiDefault(m[4], 1),
			}
			acc.oldLine = acc.current.OldStart
			acc.newLine = acc.current.NewStart
			continue
		}

		if acc.current == nil {
			continue
		}

		// "\ No newline at end of file" is metadata, not content.
		if strings.HasPrefix(line, "\\") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+"):
			acc.append(DiffLine{
				Type:          LineAdd,
				Content:       line[1:],
				NewLineNumber: acc.newLine,
			})
			acc.newLine++
		case strings.HasPrefix(line, "-"):
			acc.append(DiffLine{
				Type:          LineDelete,
				Content:       line[1:],
				OldLineNumber: acc.oldLine,
			})
			acc.oldLine++
		default:
			content := line
			if strings.HasPrefix(line, " ") {
				content = line[1:]
			}
			acc.append(DiffLine{
				Type:          LineNormal,
				Content:       content,
				OldLineNumber: acc.oldLine,
				NewLineNumber: acc.newLine,
			})
			acc.oldLine++
			acc.newLine++
		}
	}

	acc.flush()
	return acc.chunks
}

func (a *chunkAccumulator) append(line DiffLine) {
	a.current.Lines = append(a.current.Lines, line)
}

func (a *chunkAccumulator) flush() {
	if a.current != nil {
		a.chunks = append(a.chunks, *a.current)
		a.current = nil
	}
}

// countChunkLines tallies add/delete lines across chunks. This is the only
// source of truth for additions/deletions when no summary is available
// (stdin-supplied patches).
func countChunkLines(chunks []DiffChunk) (additions, deletions int) {
	for _, chunk := range chunks {
		for _, line := range chunk.Lines {
			switch line.Type {
			case LineAdd:
				additions++
			case LineDelete:
				deletions++
			}
		}
	}
	return additions, deletions
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
