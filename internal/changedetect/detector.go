package changedetect

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rlefko/semindex/internal/hashcache"
)

// skipDirs mirrors the walk-mode skip-list used when a project has no git
// repository to consult for file discovery.
var skipDirs = map[string]struct{}{
	".git":         {},
	".svn":         {},
	".hg":          {},
	"__pycache__":  {},
	"node_modules": {},
	".venv":        {},
	"venv":         {},
	".index_cache": {},
}

// Detector detects changed files for a project, preferring the git CLI and
// falling back to content-hash comparison for non-git projects.
type Detector struct {
	projectPath string
	runner      gitRunner

	mu        sync.Mutex
	isGitRepo *bool
}

// New constructs a Detector rooted at projectPath.
func New(projectPath string) *Detector {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		abs = projectPath
	}
	return &Detector{projectPath: abs, runner: newGitRunner()}
}

// IsGitRepo reports whether the project is inside a git worktree. The
// result is cached for the life of the Detector.
func (d *Detector) IsGitRepo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isGitRepo != nil {
		return *d.isGitRepo
	}
	v := d.runner.IsGitRepo(d.projectPath)
	d.isGitRepo = &v
	return v
}

// DetectChanges compares against sinceCommit via git when the project is a
// git repo and a ref is given, otherwise falls back to hash comparison
// against previousState (relative path -> last known content hash).
func (d *Detector) DetectChanges(sinceCommit string, previousState map[string]string) ChangeSet {
	if d.IsGitRepo() && sinceCommit != "" {
		return d.detectViaGit(sinceCommit)
	}
	return d.detectViaHash(previousState)
}

// GetStagedFiles returns the index's staged changes against HEAD.
func (d *Detector) GetStagedFiles() ChangeSet {
	if !d.IsGitRepo() {
		return ChangeSet{IsGitRepo: false}
	}
	return d.detectViaGitArgs("--cached", "HEAD")
}

// GetBranchDiff compares the current branch against baseBranch via their
// merge-base, for PR-style incremental indexing.
func (d *Detector) GetBranchDiff(baseBranch string) ChangeSet {
	if !d.IsGitRepo() {
		return ChangeSet{IsGitRepo: false}
	}
	base, ok := d.runner.MergeBase(d.projectPath, baseBranch)
	if !ok {
		return ChangeSet{IsGitRepo: true, BaseCommit: baseBranch}
	}
	return d.detectViaGitArgs(base + "..HEAD")
}

// GetCommitRange compares fromRef..toRef (default toRef "HEAD").
func (d *Detector) GetCommitRange(fromRef, toRef string) ChangeSet {
	if !d.IsGitRepo() {
		return ChangeSet{IsGitRepo: false}
	}
	if toRef == "" {
		toRef = "HEAD"
	}
	return d.detectViaGitArgs(fromRef + ".." + toRef)
}

// GetUncommittedChanges returns all staged and unstaged changes relative to HEAD.
func (d *Detector) GetUncommittedChanges() ChangeSet {
	if !d.IsGitRepo() {
		return ChangeSet{IsGitRepo: false}
	}
	return d.detectViaGitArgs("HEAD")
}

func (d *Detector) detectViaGit(sinceCommit string) ChangeSet {
	return d.detectViaGitArgs(sinceCommit)
}

func (d *Detector) detectViaGitArgs(args ...string) ChangeSet {
	out, err := d.runner.Diff(d.projectPath, args...)
	if err != nil {
		return ChangeSet{IsGitRepo: true}
	}
	cs := d.parseGitStatus(out)
	if commit, ok := d.runner.CurrentCommit(d.projectPath); ok {
		cs.BaseCommit = commit
	}
	return cs
}

// parseGitStatus parses `git diff --name-status -M` output into a ChangeSet.
func (d *Detector) parseGitStatus(output string) ChangeSet {
	var cs ChangeSet
	cs.IsGitRepo = true

	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		status := parts[0]
		filePath := parts[len(parts)-1]

		switch {
		case status == "A" || status == "C" || strings.HasPrefix(status, "C"):
			full := filepath.Join(d.projectPath, filePath)
			if fileExists(full) {
				cs.Added = append(cs.Added, filePath)
			}
		case status == "M":
			full := filepath.Join(d.projectPath, filePath)
			if fileExists(full) {
				cs.Modified = append(cs.Modified, filePath)
			}
		case status == "D":
			cs.Deleted = append(cs.Deleted, filePath)
		case strings.HasPrefix(status, "R"):
			if len(parts) >= 3 {
				oldPath, newPath := parts[1], parts[2]
				cs.Renamed = append(cs.Renamed, RenamedFile{OldPath: oldPath, NewPath: newPath})
				full := filepath.Join(d.projectPath, newPath)
				if fileExists(full) {
					cs.Modified = append(cs.Modified, newPath)
				}
			}
		default:
			full := filepath.Join(d.projectPath, filePath)
			if fileExists(full) {
				cs.Modified = append(cs.Modified, filePath)
			}
		}
	}
	return cs
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// detectViaHash compares the project's current files against previousState
// (relative path -> content hash), used when there is no git repository to
// consult.
func (d *Detector) detectViaHash(previousState map[string]string) ChangeSet {
	cs := ChangeSet{IsGitRepo: false}

	currentFiles := d.findAllFiles()
	currentPaths := make(map[string]struct{}, len(currentFiles))

	for _, rel := range currentFiles {
		currentPaths[rel] = struct{}{}
		prevHash, known := previousState[rel]
		if !known {
			cs.Added = append(cs.Added, rel)
			continue
		}
		currentHash := hashcache.ComputeHash(filepath.Join(d.projectPath, rel))
		if currentHash != prevHash {
			cs.Modified = append(cs.Modified, rel)
		}
	}

	for rel := range previousState {
		if strings.HasPrefix(rel, "_") {
			continue
		}
		if _, ok := currentPaths[rel]; !ok {
			cs.Deleted = append(cs.Deleted, rel)
		}
	}

	return cs
}

// findAllFiles enumerates project files via `git ls-files` when possible,
// falling back to a directory walk that skips common non-indexable dirs.
func (d *Detector) findAllFiles() []string {
	if d.IsGitRepo() {
		if files, err := d.runner.LsFiles(d.projectPath); err == nil {
			var out []string
			for _, f := range files {
				full := filepath.Join(d.projectPath, f)
				if fileExists(full) {
					out = append(out, f)
				}
			}
			return out
		}
	}

	var out []string
	filepath.WalkDir(d.projectPath, func(path string, de os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if de.IsDir() {
			if _, skip := skipDirs[de.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		rel, rerr := filepath.Rel(d.projectPath, path)
		if rerr != nil {
			return nil
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out
}
