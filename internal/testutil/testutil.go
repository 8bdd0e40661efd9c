// Package testutil provides git repository fixtures for wok tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Identity used for every commit created in tests.
const (
	AuthorName  = "Wok Test"
	AuthorEmail = "test@wok.dev"
)

// IsolateGit points git at an empty home directory, disables the system
// config and fixes the commit identity for the rest of the test. Tests
// calling it must not run in parallel.
func IsolateGit(t *testing.T) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", AuthorName)
	t.Setenv("GIT_AUTHOR_EMAIL", AuthorEmail)
	t.Setenv("GIT_COMMITTER_NAME", AuthorName)
	t.Setenv("GIT_COMMITTER_EMAIL", AuthorEmail)
	t.Setenv("SSH_AUTH_SOCK", "")
}

// InitRepo initializes an empty repository in dir with HEAD on master.
func InitRepo(t *testing.T, dir string) {
	t.Helper()

	RunGit(t, dir, "init", "--quiet")
	RunGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/master")
	RunGit(t, dir, "config", "user.email", AuthorEmail)
	RunGit(t, dir, "config", "user.name", AuthorName)
}

// SetupEmptyRepo creates a repository with an unborn master branch.
func SetupEmptyRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	InitRepo(t, dir)
	return dir
}

// SetupTestRepo creates a temporary git repository on master with one
// commit, "Initial commit", adding README.md. The repository is
// automatically cleaned up when the test completes.
func SetupTestRepo(t *testing.T) string {
	t.Helper()

	dir := SetupEmptyRepo(t)
	CommitFile(t, dir, "README.md", "# Test Repository\n", "Initial commit")
	return dir
}

// SetupBareRemote creates an empty bare repository to act as a remote.
func SetupBareRemote(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	RunGit(t, dir, "init", "--quiet", "--bare")
	RunGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/master")
	return dir
}

// SetupTestRepoWithRemote creates a test repository whose master branch is
// pushed to, and tracks, a bare origin.
func SetupTestRepoWithRemote(t *testing.T) (repoDir, remoteDir string) {
	t.Helper()

	remoteDir = SetupBareRemote(t)
	repoDir = SetupTestRepo(t)

	RunGit(t, repoDir, "remote", "add", "origin", remoteDir)
	RunGit(t, repoDir, "push", "--quiet", "-u", "origin", "master")

	return repoDir, remoteDir
}

// SeedRemote creates a bare remote holding one commit on master and
// returns its path. It is the usual source for cloned satellites.
func SeedRemote(t *testing.T) string {
	t.Helper()

	_, remote := SetupTestRepoWithRemote(t)
	return remote
}

// CloneRepo clones url into dir.
func CloneRepo(t *testing.T, url, dir string) {
	t.Helper()

	RunGit(t, filepath.Dir(dir), "clone", "--quiet", url, dir)
	RunGit(t, dir, "config", "user.email", AuthorEmail)
	RunGit(t, dir, "config", "user.name", AuthorName)
}

// WriteFile creates or replaces a file under the repository without
// staging it.
func WriteFile(t *testing.T, repoDir, path, content string) {
	t.Helper()

	fullPath := filepath.Join(repoDir, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

// CommitFile creates or updates a file and commits it.
func CommitFile(t *testing.T, repoDir, path, content, message string) {
	t.Helper()

	WriteFile(t, repoDir, path, content)
	RunGit(t, repoDir, "add", "--", path)
	RunGit(t, repoDir, "commit", "--quiet", "--no-gpg-sign", "-m", message)
}

// CreateBranch creates a new branch in the repository.
func CreateBranch(t *testing.T, repoDir, branch string) {
	t.Helper()
	RunGit(t, repoDir, "branch", branch)
}

// CheckoutBranch switches to a branch.
func CheckoutBranch(t *testing.T, repoDir, branch string) {
	t.Helper()
	RunGit(t, repoDir, "checkout", "--quiet", branch)
}

// GetCurrentBranch returns the branch HEAD points at.
func GetCurrentBranch(t *testing.T, repoDir string) string {
	t.Helper()
	return RunGit(t, repoDir, "symbolic-ref", "--short", "HEAD")
}

// RevParse resolves rev to an object id.
func RevParse(t *testing.T, repoDir, rev string) string {
	t.Helper()
	return RunGit(t, repoDir, "rev-parse", "--verify", rev)
}

// RefExists reports whether the full ref name exists.
func RefExists(t *testing.T, repoDir, ref string) bool {
	t.Helper()

	cmd := exec.Command("git", "show-ref", "--verify", "--quiet", ref)
	cmd.Dir = repoDir
	return cmd.Run() == nil
}

// GetCommitCount returns the number of commits reachable from HEAD.
func GetCommitCount(t *testing.T, repoDir string) int {
	t.Helper()

	out := RunGit(t, repoDir, "rev-list", "--count", "HEAD")
	count, err := strconv.Atoi(out)
	if err != nil {
		t.Fatalf("failed to parse commit count %q: %v", out, err)
	}
	return count
}

// Subjects returns first-parent commit subjects of rev, newest first.
func Subjects(t *testing.T, repoDir, rev string) []string {
	t.Helper()

	out := RunGit(t, repoDir, "log", "--first-parent", "--format=%s", rev, "--")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// ParentCount returns the number of parents of rev.
func ParentCount(t *testing.T, repoDir, rev string) int {
	t.Helper()

	out := RunGit(t, repoDir, "rev-list", "--parents", "-n", "1", rev)
	return len(strings.Fields(out)) - 1
}

// HasUncommittedChanges returns true if tracked files are modified or
// staged.
func HasUncommittedChanges(t *testing.T, repoDir string) bool {
	t.Helper()
	return RunGit(t, repoDir, "status", "--porcelain", "--untracked-files=no") != ""
}

// StashCount returns the number of stash entries.
func StashCount(t *testing.T, repoDir string) int {
	t.Helper()

	out := RunGit(t, repoDir, "stash", "list")
	if out == "" {
		return 0
	}
	return len(strings.Split(out, "\n"))
}

// SkipIfNoGit skips the test if git is not installed.
func SkipIfNoGit(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH, skipping test")
	}
}

// RunGit runs git in dir, failing the test on error, and returns trimmed
// stdout.
func RunGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME="+AuthorName,
		"GIT_AUTHOR_EMAIL="+AuthorEmail,
		"GIT_COMMITTER_NAME="+AuthorName,
		"GIT_COMMITTER_EMAIL="+AuthorEmail,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimRight(string(out), "\n")
}
