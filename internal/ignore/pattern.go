// Package ignore implements gitignore-grammar path exclusion, merging a
// compiled-in universal default set with an optional global and an optional
// project ignore file.
package ignore

import (
	"strings"

	"github.com/gobwas/glob"
)

// pattern is one compiled gitignore line plus enough of its original shape
// to report a human-readable match reason and to resolve precedence.
type pattern struct {
	raw       string
	negate    bool
	dirOnly   bool
	anchored  bool
	g         glob.Glob
	source    string
}

// compilePattern turns a single non-empty, non-comment gitignore line into a
// matcher. It returns ok=false for lines that reduce to nothing (e.g. a bare
// "!" or "/").
func compilePattern(line, source string) (pattern, bool) {
	p := pattern{raw: line, source: source}

	if strings.HasPrefix(line, "\\#") {
		line = line[1:]
	} else if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = strings.TrimPrefix(line, "/")
	}

	if line == "" {
		return pattern{}, false
	}

	globPattern := line
	if !p.anchored && !strings.Contains(line, "/") {
		// An unanchored pattern with no slash matches the basename at any
		// depth, exactly like gitignore's "match any directory level" rule.
		globPattern = "**/" + line
	}

	compiled, err := glob.Compile(globPattern, '/')
	if err != nil {
		return pattern{}, false
	}
	p.g = compiled
	return p, true
}

// matches reports whether relPath (forward-slash, project-relative, no
// leading slash) matches this pattern. isDir tells us whether relPath itself
// names a directory, since dirOnly patterns only ever match directories.
func (p pattern) matches(relPath string, isDir bool) bool {
	if p.dirOnly && !isDir {
		// A directory-anchored pattern like "build/" also excludes
		// everything beneath it; the caller handles that by testing each
		// ancestor directory of relPath, not just relPath itself.
		return false
	}
	candidate := relPath
	if p.anchored {
		return p.g.Match(candidate)
	}
	// The "**/" prefix only matches after a '/', so a leading slash lets
	// root-level names match too.
	return p.g.Match(candidate) || p.g.Match("/"+candidate)
}
