package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wokspace/wok/internal/credential"
	"github.com/wokspace/wok/internal/errors"
)

// noPromptEnv stops git from prompting on its own so that credential
// negotiation stays under wok's control.
var noPromptEnv = []string{"GIT_TERMINAL_PROMPT=0"}

// runRemote runs a network command against url. When the remote rejects
// the attempt for lack of credentials, one credential is selected from the
// methods it asked for and the command is retried once.
func (r *Repository) runRemote(ctx context.Context, url string, args ...string) (string, error) {
	out, err := r.runEnv(ctx, noPromptEnv, args...)
	if err == nil || r.creds == nil {
		return out, err
	}

	var gitErr *errors.GitError
	if !errors.As(err, &gitErr) {
		return out, err
	}
	methods := credential.DetectMethods(url, gitErr.GitOutput)
	if methods == 0 {
		return out, err
	}

	r.logger.Info("remote requested authentication", "url", url, "methods", methods.String())
	cred, selErr := r.creds.Select(methods, credential.UsernameFromURL(url))
	if selErr != nil {
		return out, errors.NewGitError("authentication failed", errors.Join(selErr, err)).
			WithRepository(r.dir).
			WithCommand(args)
	}

	env := append(append([]string{}, noPromptEnv...), cred.Env()...)
	out, err = r.runEnv(ctx, env, args...)
	if err != nil && errors.As(err, &gitErr) && credential.DetectMethods(url, gitErr.GitOutput) != 0 {
		return out, errors.NewGitError("authentication failed", errors.Join(errors.ErrAuthentication, err)).
			WithRepository(r.dir).
			WithCommand(args)
	}
	return out, err
}

// requireCheckedOut fails unless branch is the current branch.
func (r *Repository) requireCheckedOut(ctx context.Context, op, branch string) error {
	current, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if current != branch {
		return errors.NewPreconditionError(op, fmt.Sprintf("branch '%s' is not checked out (on '%s')", branch, current)).
			WithRepository(r.dir).
			WithCause(errors.ErrNotCheckedOut)
	}
	return nil
}

// Fetch downloads objects and refs from the configured remote.
func (r *Repository) Fetch(ctx context.Context) error {
	url, err := r.RemoteURL(ctx, r.remote)
	if err != nil {
		return err
	}
	_, err = r.runRemote(ctx, url, "fetch", "--quiet", r.remote)
	return err
}

// Upstream returns the remote-tracking ref branch follows, or "" when it
// has none or the tracking ref does not exist locally.
func (r *Repository) Upstream(ctx context.Context, branch string) (string, error) {
	out, err := r.run(ctx, "for-each-ref", "--format=%(upstream)", "refs/heads/"+branch)
	if err != nil {
		return "", err
	}
	upstream := strings.TrimSpace(out)
	if upstream == "" {
		return "", nil
	}
	exists, err := r.test(ctx, "show-ref", "--verify", "--quiet", upstream)
	if err != nil || !exists {
		return "", err
	}
	return upstream, nil
}

// SetUpstream makes branch track upstream (e.g. "origin/feature").
func (r *Repository) SetUpstream(ctx context.Context, branch, upstream string) error {
	_, err := r.run(ctx, "branch", "--quiet", "--set-upstream-to="+upstream, branch)
	return err
}

// Push publishes branch to the configured remote and sets it as the
// branch's upstream. It is a no-op when the remote is not configured.
func (r *Repository) Push(ctx context.Context, branch string) error {
	if err := r.requireCheckedOut(ctx, "push", branch); err != nil {
		return err
	}

	hasRemote, err := r.HasRemote(ctx, r.remote)
	if err != nil {
		return err
	}
	if !hasRemote {
		r.logger.Debug("no remote, skipping push", "dir", r.dir, "remote", r.remote)
		return nil
	}

	url, err := r.RemoteURL(ctx, r.remote)
	if err != nil {
		return err
	}
	refspec := fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)
	if _, err := r.runRemote(ctx, url, "push", "--quiet", r.remote, refspec); err != nil {
		return withBranch(err, branch)
	}

	tracking := fmt.Sprintf("refs/remotes/%s/%s", r.remote, branch)
	visible, err := r.test(ctx, "show-ref", "--verify", "--quiet", tracking)
	if err != nil {
		return err
	}
	if visible {
		return r.SetUpstream(ctx, branch, r.remote+"/"+branch)
	}
	return nil
}

// Sync fast-forwards branch to its upstream. Nothing happens when the
// remote or the upstream is missing, or when branch is up to date.
// Diverged histories are a conflict and are never merged.
func (r *Repository) Sync(ctx context.Context, branch string) error {
	if err := r.requireCheckedOut(ctx, "sync", branch); err != nil {
		return err
	}

	hasRemote, err := r.HasRemote(ctx, r.remote)
	if err != nil {
		return err
	}
	if !hasRemote {
		r.logger.Debug("no remote, skipping sync", "dir", r.dir, "remote", r.remote)
		return nil
	}

	if err := r.Fetch(ctx); err != nil {
		return withBranch(err, branch)
	}

	upstream, err := r.Upstream(ctx, branch)
	if err != nil {
		return err
	}
	if upstream == "" {
		r.logger.Debug("no upstream, skipping sync", "dir", r.dir, "branch", branch)
		return nil
	}

	analysis, err := r.MergeAnalysis(ctx, "refs/heads/"+branch, upstream)
	if err != nil {
		return err
	}
	switch analysis {
	case AnalysisUpToDate:
		return nil
	case AnalysisFastForward:
		_, err := r.run(ctx, "reset", "--hard", "--quiet", upstream)
		return err
	default:
		return errors.NewDivergedError(branch, shortRef(upstream)).WithRepository(r.dir)
	}
}

// Clone clones url into path and opens the result. Credentials are
// negotiated as for Push and Sync.
func Clone(ctx context.Context, url, path string, opts ...Option) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	parent := filepath.Dir(abs)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", parent, err)
	}

	r := newRepository(parent, opts)
	if _, err := r.runRemote(ctx, url, "clone", "--quiet", "--", url, abs); err != nil {
		return nil, err
	}
	return Open(ctx, abs, opts...)
}

// withBranch names branch on a git failure.
func withBranch(err error, branch string) error {
	var gitErr *errors.GitError
	if errors.As(err, &gitErr) {
		gitErr.WithBranch(branch)
	}
	return err
}

func shortRef(ref string) string {
	for _, prefix := range []string{"refs/heads/", "refs/remotes/", "refs/tags/"} {
		if strings.HasPrefix(ref, prefix) {
			return strings.TrimPrefix(ref, prefix)
		}
	}
	return ref
}
