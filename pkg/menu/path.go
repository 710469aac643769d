package menu

import "strings"

// PathSeparator delimits folder segments in a stored path.
const PathSeparator = "/"

// Segments is a parsed folder path. The zero value is the top level.
type Segments []string

// ParsePath splits a stored path into segments. Empty segments, including
// leading and trailing separators, are dropped.
func ParsePath(p string) Segments {
	if p == "" {
		return nil
	}
	parts := strings.Split(p, PathSeparator)
	out := make(Segments, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// String joins the segments back into the stored form.
func (s Segments) String() string {
	return strings.Join(s, PathSeparator)
}

// Equal compares segment by segment.
func (s Segments) Equal(o Segments) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a whole-segment prefix of s.
// "Tools2" does not have the prefix "Tools".
func (s Segments) HasPrefix(prefix Segments) bool {
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)].Equal(prefix)
}

// Child returns a new path with name appended.
func (s Segments) Child(name string) Segments {
	out := make(Segments, len(s), len(s)+1)
	copy(out, s)
	return append(out, name)
}

// Parent returns the path without its last segment.
func (s Segments) Parent() Segments {
	if len(s) <= 1 {
		return nil
	}
	out := make(Segments, len(s)-1)
	copy(out, s)
	return out
}

// Base returns the last segment, or "" for the top level.
func (s Segments) Base() string {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}

// Key returns the cache key of the path.
func (s Segments) Key() string {
	return s.String()
}
