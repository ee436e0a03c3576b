package seek

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MatchOptions controls how entry names are compared against the pattern.
// The zero value is plain byte containment with no normalization.
type MatchOptions struct {
	IgnoreCase bool // Unicode case folding on both sides
	Normalize  bool // NFC normalization on both sides
}

// matcher tests entry names against a prepared pattern.
type matcher struct {
	pattern string
	opts    MatchOptions
}

func newMatcher(pattern string, opts MatchOptions) matcher {
	m := matcher{opts: opts}
	m.pattern = m.prepare(pattern)
	return m
}

// prepare applies the configured normalization to s.
func (m matcher) prepare(s string) string {
	if m.opts.Normalize {
		s = norm.NFC.String(s)
	}
	if m.opts.IgnoreCase {
		// A Caser keeps state, so one is built per call.
		s = cases.Fold().String(s)
	}
	return s
}

// Match reports whether name contains the pattern.
// An empty pattern matches every name.
func (m matcher) Match(name string) bool {
	if m.pattern == "" {
		return true
	}
	return strings.Contains(m.prepare(name), m.pattern)
}
