package git

import (
	"strconv"
	"strings"
)

// SummaryEntry is one file's record from git diff --numstat -z output.
// It pairs positionally with the file blocks of the corresponding
// git diff text output.
type SummaryEntry struct {
	// Path is the (new) path of the file.
	Path string

	// OldPath is the pre-rename path. Empty unless the entry is a rename.
	OldPath string

	// Insertions and Deletions are git's line counts. Zero for binary files.
	Insertions int
	Deletions  int

	// Binary is true when git reported "-" counts for the file.
	Binary bool
}

// ParseNumstatZ parses `git diff --numstat -z` output.
//
// Each record is "INS\tDEL\tPATH\0". Rename records leave PATH empty and
// append the old and new paths as two extra NUL-terminated fields:
// "INS\tDEL\t\0OLD\0NEW\0". Binary files report "-" for both counts.
//
// Malformed records are skipped rather than failing the whole summary:
// the diff text remains the source of truth when pairing falls short.
func ParseNumstatZ(out string) []SummaryEntry {
	if out == "" {
		return nil
	}

	tokens := strings.Split(out, "\x00")
	var entries []SummaryEntry

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "" {
			continue
		}

		parts := strings.SplitN(tok, "\t", 3)
		if len(parts) != 3 {
			continue
		}

		entry := SummaryEntry{}
		if parts[0] == "-" || parts[1] == "-" {
			entry.Binary = true
		} else {
			entry.Insertions, _ = strconv.Atoi(parts[0])
			entry.Deletions, _ = strconv.Atoi(parts[1])
		}

		if parts[2] != "" {
			entry.Path = parts[2]
			entries = append(entries, entry)
			continue
		}

		// Rename record: the next two tokens are the old and new paths.
		if i+2 >= len(tokens) {
			break
		}
		entry.OldPath = tokens[i+1]
		entry.Path = tokens[i+2]
		i += 2
		entries = append(entries, entry)
	}

	return entries
}
