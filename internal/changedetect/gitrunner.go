package changedetect

import (
	"os/exec"
	"strings"
)

// gitRunner is the narrow subprocess surface ChangeDetector needs. It
// mirrors the shape of the teacher's git.Operations interface: a small set
// of methods backed by os/exec, swappable in tests for a mock.
type gitRunner interface {
	IsGitRepo(projectPath string) bool
	CurrentCommit(projectPath string) (string, bool)
	MergeBase(projectPath, branch string) (string, bool)
	Diff(projectPath string, args ...string) (string, error)
	LsFiles(projectPath string) ([]string, error)
}

type execGitRunner struct{}

// newGitRunner returns the real subprocess-backed implementation.
func newGitRunner() gitRunner { return execGitRunner{} }

func (execGitRunner) IsGitRepo(projectPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = projectPath
	return cmd.Run() == nil
}

func (execGitRunner) CurrentCommit(projectPath string) (string, bool) {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	cmd.Dir = projectPath
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

func (execGitRunner) MergeBase(projectPath, branch string) (string, bool) {
	cmd := exec.Command("git", "merge-base", branch, "HEAD")
	cmd.Dir = projectPath
	out, err := cmd.Output()
	if err != nil || len(strings.TrimSpace(string(out))) == 0 {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

func (execGitRunner) Diff(projectPath string, args ...string) (string, error) {
	full := append([]string{"diff", "--name-status", "-M"}, args...)
	cmd := exec.Command("git", full...)
	cmd.Dir = projectPath
	out, err := cmd.Output()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return "", err
		}
		return "", err
	}
	return string(out), nil
}

func (execGitRunner) LsFiles(projectPath string) ([]string, error) {
	cmd := exec.Command("git", "ls-files")
	cmd.Dir = projectPath
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	var files []string
	for _, l := range lines {
		if l != "" {
			files = append(files, l)
		}
	}
	return files, nil
}
