// Package watch subscribes to filesystem notifications for a repository,
// filters noise (ignore globs, gitignored paths, irrelevant git-internal
// files), and debounces bursts into a single cache invalidation plus
// client notification.
package watch

import "strings"

// rule is one compiled ignore pattern.
type rule struct {
	segments []string
	negate   bool
}

// IgnoreSet is an ordered list of compiled glob patterns.
//
// Syntax: "**" matches any sequence of path segments, "*" matches within a
// single segment, and a leading "!" negates the pattern. This is a small
// segment-aware matcher, not a full gitignore engine and not a regex
// translation, so adversarial filenames cannot trigger pathological
// matching.
type IgnoreSet struct {
	rules []rule
}

// CompileIgnoreSet compiles glob patterns into an IgnoreSet.
// Empty patterns are skipped.
func CompileIgnoreSet(patterns []string) *IgnoreSet {
	set := &IgnoreSet{}
	for _, pattern := range patterns {
		negate := false
		if strings.HasPrefix(pattern, "!") {
			negate = true
			pattern = pattern[1:]
		}
		pattern = strings.Trim(pattern, "/")
		if pattern == "" {
			continue
		}
		set.rules = append(set.rules, rule{
			segments: strings.Split(pattern, "/"),
			negate:   negate,
		})
	}
	return set
}

// Ignored reports whether a slash-separated relative path matches the set.
// Patterns apply in order; the last matching pattern wins, so a negated
// pattern can carve an exception out of an earlier match.
func (s *IgnoreSet) Ignored(path string) bool {
	if s == nil || len(s.rules) == 0 {
		return false
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")

	ignored := false
	for _, r := range s.rules {
		if matchSegments(r.segments, segments) {
			ignored = !r.negate
		}
	}
	return ignored
}

// matchSegments matches pattern segments against path segments.
// "**" consumes zero or more path segments.
func matchSegments(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}

	if pattern[0] == "**" {
		// Try consuming zero segments, then one, then more.
		for skip := 0; skip <= len(path); skip++ {
			if matchSegments(pattern[1:], path[skip:]) {
				return true
			}
		}
		return false
	}

	if len(path) == 0 {
		return false
	}
	if !matchSegment(pattern[0], path[0]) {
		return false
	}
	return matchSegments(pattern[1:], path[1:])
}

// matchSegment matches a single pattern segment against a single path
// segment. "*" matches any run of characters within the segment.
// Classic two-pointer wildcard matching, linear in the segment length.
func matchSegment(pattern, segment string) bool {
	pi, si := 0, 0
	star, starSi := -1, 0

	for si < len(segment) {
		switch {
		case pi < len(pattern) && (pattern[pi] == segment[si] || pattern[pi] == '?'):
			pi++
			si++
		case pi < len(pattern) && pattern[pi] == '*':
			star = pi
			starSi = si
			pi++
		case star >= 0:
			pi = star + 1
			starSi++
			si = starSi
		default:
			return false
		}
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
