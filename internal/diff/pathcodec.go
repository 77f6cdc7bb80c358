package diff

import "strings"

// devNull is git's placeholder path for the missing side of an add/delete.
const devNull = "/dev/null"

// diffPrefixes are the 2-character prefixes git puts on header paths.
// a/ and b/ are the defaults; c/, i/ and w/ appear with
// diff.mnemonicPrefix (commit, index, worktree).
var diffPrefixes = []string{"a/", "b/", "c/", "i/", "w/"}

// escapeBytes maps C-style escape characters to their byte values.
var escapeBytes = map[byte]byte{
	't':  '\t',
	'n':  '\n',
	'r':  '\r',
	'b':  '\b',
	'f':  '\f',
	'v':  '\v',
	'a':  '\a',
	'\\': '\\',
	'"':  '"',
	' ':  ' ',
}

// DecodePath decodes a raw path token as it appears in a diff header,
// ---/+++ line, or rename from/to line.
//
// It strips a trailing tab and anything after it (git appends \t for
// ambiguous paths), removes surrounding double quotes, and decodes
// backslash escapes byte-by-byte: named escapes map to fixed bytes and a
// backslash followed by 1-3 octal digits decodes as a single byte. The
// accumulated bytes are interpreted as UTF-8.
//
// Returns ok=false for /dev/null, which signals "no path on this side"
// (an add or a delete).
func DecodePath(raw string) (string, bool) {
	// Git appends a tab before trailing metadata on ambiguous paths.
	if i := strings.IndexByte(raw, '\t'); i >= 0 {
		raw = raw[:i]
	}

	quoted := len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"'
	if quoted {
		raw = raw[1 : len(raw)-1]
		raw = decodeEscapes(raw)
	}

	if raw == devNull || raw == "" {
		return "", false
	}
	return raw, true
}

// StripDiffPrefix removes a recognized diff prefix from the start of a
// decoded path. The match is anchored at position 0, never a search, so a
// path containing a literal "b/" substring (e.g. "dir b/sub/file") is
// never mis-split.
func StripDiffPrefix(path string) string {
	for _, prefix := range diffPrefixes {
		if strings.HasPrefix(path, prefix) {
			return path[len(prefix):]
		}
	}
	return path
}

// decodeEscapes decodes backslash escapes in a quoted git path.
// Bytes accumulate and are finally interpreted as UTF-8, which is how git
// encodes non-ASCII filenames (each byte octal-escaped separately).
func decodeEscapes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			out = append(out, c)
			continue
		}

		next := s[i+1]

		// Octal escape: 1-3 digits, one byte.
		if next >= '0' && next <= '7' {
			val := 0
			digits := 0
			for digits < 3 && i+1+digits < len(s) {
				d := s[i+1+digits]
				if d < '0' || d > '7' {
					break
				}
				val = val*8 + int(d-'0')
				digits++
			}
			out = append(out, byte(val))
			i += digits
			continue
		}

		if b, ok := escapeBytes[next]; ok {
			out = append(out, b)
			i++
			continue
		}

		// Unrecognized escape: keep the backslash literally.
		out = append(out, c)
	}
	return string(out)
}
