package git

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wokspace/wok/internal/credential"
	"github.com/wokspace/wok/internal/errors"
)

// -----------------------------------------------------------------------------
// Mock Command Executor for Unit Tests
// -----------------------------------------------------------------------------

// mockCall records a single command invocation
type mockCall struct {
	dir  string
	env  []string
	args []string
}

type mockResponse struct {
	stdout string
	stderr string
	err    error
}

// mockExecutor is a test double for CommandExecutor. Responses are keyed
// by the first git argument and consumed in order.
type mockExecutor struct {
	calls     []mockCall
	responses map[string][]mockResponse
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{responses: make(map[string][]mockResponse)}
}

func (m *mockExecutor) on(subcommand, stdout, stderr string, err error) {
	m.responses[subcommand] = append(m.responses[subcommand], mockResponse{stdout, stderr, err})
}

func (m *mockExecutor) Run(_ context.Context, dir string, env []string, _ string, args ...string) ([]byte, []byte, error) {
	m.calls = append(m.calls, mockCall{dir: dir, env: env, args: args})
	queue := m.responses[args[0]]
	if len(queue) == 0 {
		return nil, nil, nil
	}
	resp := queue[0]
	m.responses[args[0]] = queue[1:]
	return []byte(resp.stdout), []byte(resp.stderr), resp.err
}

func (m *mockExecutor) commands() []string {
	var out []string
	for _, c := range m.calls {
		out = append(out, strings.Join(c.args, " "))
	}
	return out
}

// exitStatus mimics *exec.ExitError.
type exitStatus int

func (e exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitStatus) ExitCode() int { return int(e) }

type staticPrompter struct{ password string }

func (p staticPrompter) Prompt(string) (string, error)       { return "prompted", nil }
func (p staticPrompter) PromptSecret(string) (string, error) { return p.password, nil }

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func TestParsePorcelainZ(t *testing.T) {
	out := " M a.txt\x00A  b.txt\x00R  new.txt\x00old.txt\x00D  c.txt\x00"
	want := []StatusEntry{
		{Index: ' ', Worktree: 'M', Path: "a.txt"},
		{Index: 'A', Worktree: ' ', Path: "b.txt"},
		{Index: 'R', Worktree: ' ', Path: "new.txt"},
		{Index: 'D', Worktree: ' ', Path: "c.txt"},
	}
	if diff := cmp.Diff(want, parsePorcelainZ(out)); diff != "" {
		t.Errorf("parsePorcelainZ() mismatch (-want +got):\n%s", diff)
	}
	if got := parsePorcelainZ(""); len(got) != 0 {
		t.Errorf("parsePorcelainZ(\"\") = %v, want empty", got)
	}
}

func TestShortRef(t *testing.T) {
	tests := map[string]string{
		"refs/heads/master":         "master",
		"refs/remotes/origin/topic": "origin/topic",
		"refs/tags/v1":              "v1",
		"HEAD":                      "HEAD",
	}
	for in, want := range tests {
		if got := shortRef(in); got != want {
			t.Errorf("shortRef(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAnalysis_String(t *testing.T) {
	if AnalysisUpToDate.String() != "up-to-date" || AnalysisFastForward.String() != "fast-forward" || AnalysisNormal.String() != "normal" {
		t.Error("unexpected Analysis names")
	}
}

func TestCurrentBranch_Detached(t *testing.T) {
	mock := newMockExecutor()
	mock.on("symbolic-ref", "", "", exitStatus(1))
	r := newRepository("/w", []Option{WithExecutor(mock)})

	_, err := r.CurrentBranch(context.Background())
	if !errors.Is(err, errors.ErrPrecondition) || !errors.Is(err, errors.ErrNotCheckedOut) {
		t.Errorf("CurrentBranch() error = %v, want not-checked-out precondition", err)
	}
}

func TestRevParse_NotFound(t *testing.T) {
	mock := newMockExecutor()
	mock.on("rev-parse", "", "", exitStatus(1))
	r := newRepository("/w", []Option{WithExecutor(mock)})

	_, err := r.RevParse(context.Background(), "nope")
	if !errors.Is(err, errors.ErrNotFound) || !errors.Is(err, errors.ErrRefNotFound) {
		t.Errorf("RevParse() error = %v, want ref not found", err)
	}
}

func TestRefExists_DWIM(t *testing.T) {
	refs := "refs/heads/master\nrefs/tags/v1\nrefs/remotes/origin/topic\nrefs/remotes/upstream/HEAD\n"

	tests := []struct {
		name string
		want bool
	}{
		{"master", true},
		{"v1", true},
		{"origin/topic", true},
		{"upstream", true},
		{"heads/master", true},
		{"refs/tags/v1", true},
		{"HEAD", true},
		{"topic", false},
		{"v2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockExecutor()
			mock.on("for-each-ref", refs, "", nil)
			r := newRepository("/w", []Option{WithExecutor(mock)})

			got, err := r.RefExists(context.Background(), tt.name)
			if err != nil {
				t.Fatalf("RefExists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RefExists(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestPush_NotCheckedOut(t *testing.T) {
	mock := newMockExecutor()
	mock.on("symbolic-ref", "master\n", "", nil)
	r := newRepository("/w", []Option{WithExecutor(mock)})

	err := r.Push(context.Background(), "feature")
	if !errors.Is(err, errors.ErrNotCheckedOut) {
		t.Fatalf("Push() error = %v, want ErrNotCheckedOut", err)
	}
	if len(mock.calls) != 1 {
		t.Errorf("Push() ran %v, want only the branch check", mock.commands())
	}
}

func TestPush_NoRemote(t *testing.T) {
	mock := newMockExecutor()
	mock.on("symbolic-ref", "feature\n", "", nil)
	mock.on("remote", "upstream\n", "", nil)
	r := newRepository("/w", []Option{WithExecutor(mock)})

	if err := r.Push(context.Background(), "feature"); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	want := []string{"symbolic-ref --quiet --short HEAD", "remote"}
	if diff := cmp.Diff(want, mock.commands()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestPush_SetsUpstream(t *testing.T) {
	mock := newMockExecutor()
	mock.on("symbolic-ref", "feature\n", "", nil)
	mock.on("remote", "origin\n", "", nil)
	mock.on("remote", "https://host/repo.git\n", "", nil)
	r := newRepository("/w", []Option{WithExecutor(mock)})

	if err := r.Push(context.Background(), "feature"); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	want := []string{
		"symbolic-ref --quiet --short HEAD",
		"remote",
		"remote get-url origin",
		"push --quiet origin refs/heads/feature:refs/heads/feature",
		"show-ref --verify --quiet refs/remotes/origin/feature",
		"branch --quiet --set-upstream-to=origin/feature feature",
	}
	if diff := cmp.Diff(want, mock.commands()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(noPromptEnv, mock.calls[3].env); diff != "" {
		t.Errorf("push env mismatch (-want +got):\n%s", diff)
	}
}

func TestPush_RejectedNamesBranch(t *testing.T) {
	mock := newMockExecutor()
	mock.on("symbolic-ref", "feature\n", "", nil)
	mock.on("remote", "origin\n", "", nil)
	mock.on("remote", "https://host/repo.git\n", "", nil)
	mock.on("push", "", "! [rejected] feature -> feature (non-fast-forward)", exitStatus(1))
	r := newRepository("/w", []Option{WithExecutor(mock)})

	err := r.Push(context.Background(), "feature")
	var gitErr *errors.GitError
	if !errors.As(err, &gitErr) {
		t.Fatalf("Push() error = %v, want GitError", err)
	}
	if gitErr.Branch != "feature" {
		t.Errorf("Branch = %q, want feature", gitErr.Branch)
	}
	if !strings.Contains(err.Error(), "branch=feature") {
		t.Errorf("Error() = %q, want the branch named", err.Error())
	}
}

func TestRunRemote_RetriesWithCredentials(t *testing.T) {
	mock := newMockExecutor()
	mock.on("fetch", "", "fatal: could not read Username for 'https://host': terminal prompts disabled", exitStatus(128))
	mock.on("fetch", "", "", nil)
	selector := &credential.Selector{Prompter: staticPrompter{password: "s3cret"}}
	r := newRepository("/w", []Option{WithExecutor(mock), WithCredentials(selector)})

	if _, err := r.runRemote(context.Background(), "https://alice@host/repo.git", "fetch", "origin"); err != nil {
		t.Fatalf("runRemote() error = %v", err)
	}
	if len(mock.calls) != 2 {
		t.Fatalf("runRemote() ran %d commands, want 2", len(mock.calls))
	}
	env := strings.Join(mock.calls[1].env, "\n")
	for _, want := range []string{"GIT_TERMINAL_PROMPT=0", "WOK_GIT_USERNAME=alice", "WOK_GIT_PASSWORD=s3cret"} {
		if !strings.Contains(env, want) {
			t.Errorf("retry env missing %q:\n%s", want, env)
		}
	}
}

func TestRunRemote_RejectedTwice(t *testing.T) {
	authFailure := "remote: Invalid username or password.\nfatal: Authentication failed for 'https://host/repo.git/'"
	mock := newMockExecutor()
	mock.on("fetch", "", authFailure, exitStatus(128))
	mock.on("fetch", "", authFailure, exitStatus(128))
	selector := &credential.Selector{Prompter: staticPrompter{password: "wrong"}}
	r := newRepository("/w", []Option{WithExecutor(mock), WithCredentials(selector)})

	_, err := r.runRemote(context.Background(), "https://host/repo.git", "fetch", "origin")
	if !errors.Is(err, errors.ErrAuthentication) {
		t.Fatalf("runRemote() error = %v, want ErrAuthentication", err)
	}
	if len(mock.calls) != 2 {
		t.Errorf("runRemote() ran %d commands, want exactly one retry", len(mock.calls))
	}
}

func TestRunRemote_NonAuthFailureIsNotRetried(t *testing.T) {
	mock := newMockExecutor()
	mock.on("fetch", "", "fatal: repository 'https://host/x.git/' not found", exitStatus(128))
	selector := &credential.Selector{Prompter: staticPrompter{}}
	r := newRepository("/w", []Option{WithExecutor(mock), WithCredentials(selector)})

	_, err := r.runRemote(context.Background(), "https://host/x.git", "fetch", "origin")
	var gitErr *errors.GitError
	if !errors.As(err, &gitErr) {
		t.Fatalf("runRemote() error = %v, want GitError", err)
	}
	if !strings.Contains(gitErr.GitOutput, "not found") {
		t.Errorf("GitOutput = %q, want the git message", gitErr.GitOutput)
	}
	if len(mock.calls) != 1 {
		t.Errorf("runRemote() ran %d commands, want 1", len(mock.calls))
	}
}

func TestRelativePathspecs(t *testing.T) {
	r := newRepository("/w/root", nil)

	got, err := r.relativePathspecs([]string{"/w/root/wok.yml", "sub/file", "/w/root/a/b"})
	if err != nil {
		t.Fatalf("relativePathspecs() error = %v", err)
	}
	if diff := cmp.Diff([]string{"wok.yml", "sub/file", "a/b"}, got); diff != "" {
		t.Errorf("relativePathspecs() mismatch (-want +got):\n%s", diff)
	}

	if _, err := r.relativePathspecs([]string{"/elsewhere/x"}); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("relativePathspecs(outside) error = %v, want validation error", err)
	}
}
