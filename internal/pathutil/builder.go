package pathutil

import (
	"strconv"
	"strings"
)

// PathBuilder builds a dotted tree location such as "$.schemas[0].json"
// incrementally while a traversal descends and returns.
//
// Each segment is stored with its separator, so Pop never has to work out
// whether a dot precedes the segment being removed.
type PathBuilder struct {
	segments []string
}

// Push adds a plain name segment. The first segment is the root and is
// written without a separator.
func (p *PathBuilder) Push(name string) {
	if len(p.segments) == 0 {
		p.segments = append(p.segments, name)
		return
	}
	p.segments = append(p.segments, "."+name)
}

// PushKey adds a mapping key, switching to bracket notation when the key
// contains characters that are ambiguous in a dotted path.
func (p *PathBuilder) PushKey(key string) {
	if !NeedsBracketNotation(key) {
		p.Push(key)
		return
	}
	p.segments = append(p.segments, "['"+strings.ReplaceAll(key, "'", `\'`)+"']")
}

// PushIndex adds a sequence index segment: "[0]", "[1]", etc.
func (p *PathBuilder) PushIndex(i int) {
	p.segments = append(p.segments, "["+strconv.Itoa(i)+"]")
}

// Pop removes the last segment.
func (p *PathBuilder) Pop() {
	if len(p.segments) > 0 {
		p.segments = p.segments[:len(p.segments)-1]
	}
}

// Reset clears the builder for reuse.
func (p *PathBuilder) Reset() {
	p.segments = p.segments[:0]
}

// Depth returns the number of segments, root included.
func (p *PathBuilder) Depth() int {
	return len(p.segments)
}

// String materializes the path. It allocates, so callers only use it when
// the location is reported.
func (p *PathBuilder) String() string {
	return strings.Join(p.segments, "")
}

// NeedsBracketNotation reports whether key must be written as ['key'].
// RAML resource keys ("/users") and media types ("application/json") are
// the common cases.
func NeedsBracketNotation(key string) bool {
	if key == "" {
		return true
	}
	if key[0] >= '0' && key[0] <= '9' {
		return true
	}
	return strings.ContainsAny(key, ".[]'\" \t\r\n/")
}
