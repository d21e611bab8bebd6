package changedetect

import (
	"github.com/go-git/go-git/v5"
)

// CacheKeyInfo is the branch/worktree identity used to namespace cache
// entries so that switching branches does not serve stale parse results.
type CacheKeyInfo struct {
	Branch       string
	WorktreeRoot string
}

// CacheKey derives CacheKeyInfo for projectPath using go-git, a pure-Go
// git implementation. This is deliberately separate from the git-CLI-based
// diff contract used by DetectChanges: cache-key derivation only needs
// read-only metadata and should not require a `git` binary on PATH, whereas
// ChangeDetector's diff algorithm must match `git diff --name-status -M`
// exactly and stays on the CLI.
func CacheKey(projectPath string) CacheKeyInfo {
	repo, err := git.PlainOpenWithOptions(projectPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return CacheKeyInfo{Branch: "unknown", WorktreeRoot: projectPath}
	}

	wt, err := repo.Worktree()
	root := projectPath
	if err == nil && wt != nil {
		root = wt.Filesystem.Root()
	}

	head, err := repo.Head()
	if err != nil {
		return CacheKeyInfo{Branch: "detached", WorktreeRoot: root}
	}
	if head.Name().IsBranch() {
		return CacheKeyInfo{Branch: head.Name().Short(), WorktreeRoot: root}
	}
	return CacheKeyInfo{Branch: "detached-" + head.Hash().String()[:7], WorktreeRoot: root}
}
