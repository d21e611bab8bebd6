package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// UniversalExcludes is the compiled-in pattern set applied to every project
// regardless of ignore files: VCS metadata, language build caches and
// virtualenvs, common binaries/archives, OS artifacts, lockfiles, and logs.
var UniversalExcludes = []string{
	".git/",
	".svn/",
	".hg/",
	".claude-indexer/",
	".index_cache/",

	"__pycache__/",
	"*.pyc",
	"*.pyo",
	".venv/",
	"venv/",
	".tox/",
	".mypy_cache/",
	".pytest_cache/",
	".ruff_cache/",

	"node_modules/",
	".next/",
	".nuxt/",

	"target/",
	"dist/",
	"build/",
	"bin/",
	"obj/",
	"out/",
	".gradle/",
	".cargo/",

	"*.exe",
	"*.dll",
	"*.so",
	"*.dylib",
	"*.o",
	"*.a",
	"*.class",

	"*.zip",
	"*.tar",
	"*.tar.gz",
	"*.tgz",
	"*.rar",
	"*.7z",

	"*.png",
	"*.jpg",
	"*.jpeg",
	"*.gif",
	"*.bmp",
	"*.ico",
	"*.mp4",
	"*.mp3",
	"*.pdf",

	".DS_Store",
	"Thumbs.db",

	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"poetry.lock",
	"Cargo.lock",
	"Gemfile.lock",

	"*.log",
	"logs/",
}

// GlobalIgnoreFile returns the per-user global ignore file path, or "" if
// the home directory cannot be determined.
func GlobalIgnoreFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude-indexer", ".claudeignore")
}

// Resolver merges universal, global, and project ignore patterns into a
// single precedence-ordered matcher. It is read-only after Load and safe
// for concurrent reads without external locking.
type Resolver struct {
	mu       sync.RWMutex
	patterns []pattern
	root     string
}

// NewResolver constructs a Resolver rooted at projectRoot. Call Load before
// querying it.
func NewResolver(projectRoot string) *Resolver {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	return &Resolver{root: filepath.ToSlash(abs)}
}

// Load reads the universal defaults, the global ignore file (if present),
// and the project's .claudeignore (if present), in that precedence order.
// Load may be called again to pick up ignore file edits.
func (r *Resolver) Load() error {
	var patterns []pattern
	patterns = appendPatternLines(patterns, UniversalExcludes, "universal")

	if global := GlobalIgnoreFile(); global != "" {
		lines, err := readIgnoreFile(global)
		if err == nil {
			patterns = appendPatternLines(patterns, lines, "global")
		}
	}

	projectFile := filepath.Join(r.root, ".claudeignore")
	lines, err := readIgnoreFile(projectFile)
	if err == nil {
		patterns = appendPatternLines(patterns, lines, "project")
	}

	r.mu.Lock()
	r.patterns = patterns
	r.mu.Unlock()
	return nil
}

func appendPatternLines(dst []pattern, lines []string, source string) []pattern {
	for _, line := range lines {
		if p, ok := compilePattern(line, source); ok {
			dst = append(dst, p)
		}
	}
	return dst
}

func readIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, trimmed)
	}
	return lines, scanner.Err()
}

// relativize converts an absolute or project-relative path into a
// forward-slash, project-relative path. The second return is false if path
// falls outside the project root and therefore cannot match.
func (r *Resolver) relativize(path string) (string, bool) {
	clean := filepath.ToSlash(path)
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(r.root, filepath.ToSlash(path))
		if err != nil {
			return "", false
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, "..") {
			return "", false
		}
		return rel, true
	}
	clean = strings.TrimPrefix(clean, "./")
	if strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

// IsIgnored reports whether path should be excluded from indexing.
func (r *Resolver) IsIgnored(path string) bool {
	ignored, _ := r.evaluate(path)
	return ignored
}

// Reason returns a human-readable description of the pattern that decided
// path's ignore status, or "" if path is not ignored.
func (r *Resolver) Reason(path string) string {
	ignored, p := r.evaluate(path)
	if !ignored || p == nil {
		return ""
	}
	return fmt.Sprintf("matched %q pattern %q", p.source, p.raw)
}

// Filter returns the subset of paths that are not ignored.
func (r *Resolver) Filter(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !r.IsIgnored(p) {
			out = append(out, p)
		}
	}
	return out
}

// evaluate applies last-match-wins precedence across every ancestor
// directory of rel, then rel itself. An ancestor directory matched by a
// non-negated pattern ignores the whole subtree beneath it, mirroring
// gitignore's per-directory cascade.
func (r *Resolver) evaluate(path string) (bool, *pattern) {
	rel, ok := r.relativize(path)
	if !ok || rel == "" || rel == "." {
		return false, nil
	}

	r.mu.RLock()
	patterns := r.patterns
	r.mu.RUnlock()

	segments := strings.Split(rel, "/")
	for i := 1; i < len(segments); i++ {
		prefix := strings.Join(segments[:i], "/")
		if ignored, p := lastMatch(patterns, prefix, true); ignored {
			return true, p
		}
	}

	return lastMatch(patterns, rel, false)
}

func lastMatch(patterns []pattern, candidate string, isDir bool) (bool, *pattern) {
	var decided bool
	var winner *pattern
	for i := range patterns {
		p := &patterns[i]
		if p.matches(candidate, isDir) {
			decided = !p.negate
			winner = p
		}
	}
	if !decided {
		return false, nil
	}
	return true, winner
}
