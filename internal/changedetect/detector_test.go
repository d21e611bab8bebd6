package changedetect

import (
	"os"
	"path/filepath"
	"testing"
)

type mockRunner struct {
	isGit      bool
	currentSHA string
	mergeBases map[string]string
	diffOutput string
	diffErr    error
	lsFiles    []string
}

func (m *mockRunner) IsGitRepo(string) bool { return m.isGit }
func (m *mockRunner) CurrentCommit(string) (string, bool) {
	if m.currentSHA == "" {
		return "", false
	}
	return m.currentSHA, true
}
func (m *mockRunner) MergeBase(_ string, branch string) (string, bool) {
	v, ok := m.mergeBases[branch]
	return v, ok
}
func (m *mockRunner) Diff(string, ...string) (string, error) { return m.diffOutput, m.diffErr }
func (m *mockRunner) LsFiles(string) ([]string, error)       { return m.lsFiles, nil }

func newTestDetector(t *testing.T, r gitRunner) (*Detector, string) {
	t.Helper()
	dir := t.TempDir()
	d := New(dir)
	d.runner = r
	return d, dir
}

func TestParseGitStatusBasic(t *testing.T) {
	r := &mockRunner{isGit: true, currentSHA: "abc1234"}
	d, dir := newTestDetector(t, r)

	os.WriteFile(filepath.Join(dir, "new.go"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "mod.go"), []byte("x"), 0o644)

	r.diffOutput = "A\tnew.go\nM\tmod.go\nD\tgone.go\n"
	cs := d.GetUncommittedChanges()

	if len(cs.Added) != 1 || cs.Added[0] != "new.go" {
		t.Errorf("expected new.go added, got %v", cs.Added)
	}
	if len(cs.Modified) != 1 || cs.Modified[0] != "mod.go" {
		t.Errorf("expected mod.go modified, got %v", cs.Modified)
	}
	if len(cs.Deleted) != 1 || cs.Deleted[0] != "gone.go" {
		t.Errorf("expected gone.go deleted, got %v", cs.Deleted)
	}
	if cs.BaseCommit != "abc1234" {
		t.Errorf("expected base commit abc1234, got %q", cs.BaseCommit)
	}
}

func TestParseGitStatusRename(t *testing.T) {
	r := &mockRunner{isGit: true}
	d, dir := newTestDetector(t, r)
	os.WriteFile(filepath.Join(dir, "new_name.go"), []byte("x"), 0o644)

	r.diffOutput = "R100\told_name.go\tnew_name.go\n"
	cs := d.GetUncommittedChanges()

	if len(cs.Renamed) != 1 || cs.Renamed[0].OldPath != "old_name.go" || cs.Renamed[0].NewPath != "new_name.go" {
		t.Fatalf("expected rename pair, got %v", cs.Renamed)
	}
	if len(cs.Modified) != 1 || cs.Modified[0] != "new_name.go" {
		t.Errorf("expected renamed target also added to modified, got %v", cs.Modified)
	}
}

func TestNonGitRepoReportsIsGitRepoFalse(t *testing.T) {
	r := &mockRunner{isGit: false}
	d, _ := newTestDetector(t, r)

	cs := d.GetUncommittedChanges()
	if cs.IsGitRepo {
		t.Error("expected IsGitRepo false for a non-git project")
	}
}

func TestHashFallbackDetectsAddedAndDeleted(t *testing.T) {
	r := &mockRunner{isGit: false}
	d, dir := newTestDetector(t, r)

	os.WriteFile(filepath.Join(dir, "a.go"), []byte("content-a"), 0o644)
	os.WriteFile(filepath.Join(dir, "b.go"), []byte("content-b"), 0o644)

	cs := d.DetectChanges("", map[string]string{
		"a.go":   "stale-hash",
		"old.go": "whatever",
	})

	foundAdded := false
	for _, f := range cs.Added {
		if f == "b.go" {
			foundAdded = true
		}
	}
	if !foundAdded {
		t.Errorf("expected b.go to be reported added, got %v", cs.Added)
	}

	foundDeleted := false
	for _, f := range cs.Deleted {
		if f == "old.go" {
			foundDeleted = true
		}
	}
	if !foundDeleted {
		t.Errorf("expected old.go to be reported deleted, got %v", cs.Deleted)
	}
}

func TestGetBranchDiffNoMergeBase(t *testing.T) {
	r := &mockRunner{isGit: true, mergeBases: map[string]string{}}
	d, _ := newTestDetector(t, r)

	cs := d.GetBranchDiff("main")
	if cs.BaseCommit != "main" {
		t.Errorf("expected base commit fallback to branch name, got %q", cs.BaseCommit)
	}
}

func TestChangeSetFilesToIndex(t *testing.T) {
	cs := ChangeSet{Added: []string{"a"}, Modified: []string{"b"}}
	got := cs.FilesToIndex()
	if len(got) != 2 {
		t.Fatalf("expected 2 files to index, got %v", got)
	}
}
