package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wokspace/wok/internal/credential"
	"github.com/wokspace/wok/internal/errors"
	"github.com/wokspace/wok/internal/logging"
)

// Defaults used when no Option overrides them.
const (
	DefaultBinary = "git"
	DefaultRemote = "origin"
	DefaultTrunk  = "master"
)

// Repository is a working copy addressed by the root of its working tree.
// It holds no state beyond its configuration; every query goes to git.
type Repository struct {
	dir      string
	binary   string
	remote   string
	trunk    string
	executor CommandExecutor
	creds    *credential.Selector
	logger   *logging.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithBinary sets the git executable.
func WithBinary(binary string) Option {
	return func(r *Repository) { r.binary = binary }
}

// WithRemote sets the remote used by Push and Sync.
func WithRemote(remote string) Option {
	return func(r *Repository) { r.remote = remote }
}

// WithTrunk sets the branch that receives the first commit of an unborn
// repository.
func WithTrunk(trunk string) Option {
	return func(r *Repository) { r.trunk = trunk }
}

// WithExecutor replaces the command executor.
func WithExecutor(e CommandExecutor) Option {
	return func(r *Repository) { r.executor = e }
}

// WithCredentials enables credential negotiation for network operations.
func WithCredentials(s *credential.Selector) Option {
	return func(r *Repository) { r.creds = s }
}

// WithLogger sets the logger for command tracing.
func WithLogger(l *logging.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

func newRepository(dir string, opts []Option) *Repository {
	r := &Repository{
		dir:      dir,
		binary:   DefaultBinary,
		remote:   DefaultRemote,
		trunk:    DefaultTrunk,
		executor: NewCLICommandExecutor(),
		logger:   logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Discover returns the repository whose working tree contains startDir.
func Discover(ctx context.Context, startDir string, opts ...Option) (*Repository, error) {
	probe := newRepository(startDir, opts)
	top, err := probe.toplevel(ctx)
	if err != nil {
		return nil, err
	}
	probe.dir = top
	return probe, nil
}

// Open returns the repository whose working tree root is exactly dir.
func Open(ctx context.Context, dir string, opts ...Option) (*Repository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, errors.NewNotFoundError("repository", abs).WithCause(errors.ErrNotGitRepository)
	}

	r := newRepository(abs, opts)
	top, err := r.toplevel(ctx)
	if err != nil {
		return nil, err
	}
	if !samePath(top, abs) {
		// dir is a plain directory inside some other repository.
		return nil, errors.NewNotFoundError("repository", abs).WithCause(errors.ErrNotGitRepository)
	}
	return r, nil
}

func (r *Repository) toplevel(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.NewNotFoundError("repository", r.dir).WithCause(errors.ErrNotGitRepository)
	}
	return filepath.FromSlash(out), nil
}

func samePath(a, b string) bool {
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return ra == rb
}

// Dir returns the root of the working tree.
func (r *Repository) Dir() string { return r.dir }

// Remote returns the remote name used by Push and Sync.
func (r *Repository) Remote() string { return r.remote }

// Trunk returns the configured trunk branch.
func (r *Repository) Trunk() string { return r.trunk }

// run executes git in the working tree and returns trimmed stdout.
func (r *Repository) run(ctx context.Context, args ...string) (string, error) {
	return r.runEnv(ctx, nil, args...)
}

func (r *Repository) runEnv(ctx context.Context, env []string, args ...string) (string, error) {
	r.logger.Debug("running git", "dir", r.dir, "args", args)

	stdout, stderr, err := r.executor.Run(ctx, r.dir, env, r.binary, args...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return strings.TrimRight(string(stdout), "\n"), r.commandError(err, args, stderr, stdout)
	}
	return strings.TrimRight(string(stdout), "\n"), nil
}

// test runs a git command whose exit status 1 means "false".
func (r *Repository) test(ctx context.Context, args ...string) (bool, error) {
	_, err := r.run(ctx, args...)
	if err == nil {
		return true, nil
	}
	if code, ok := exitCode(err); ok && code == 1 {
		return false, nil
	}
	return false, err
}

func (r *Repository) commandError(err error, args []string, stderr, stdout []byte) *errors.GitError {
	output := strings.TrimSpace(string(stderr))
	if output == "" {
		output = strings.TrimSpace(string(stdout))
	}
	name := "git"
	if len(args) > 0 {
		name = "git " + args[0]
	}
	return errors.NewGitError(name+" failed", err).
		WithRepository(r.dir).
		WithCommand(args).
		WithGitOutput(output)
}

// CurrentBranch returns the branch HEAD points at. An unborn HEAD still
// names its branch. A detached HEAD is a precondition error.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		if code, ok := exitCode(err); ok && code == 1 {
			return "", errors.NewPreconditionError("current branch", "HEAD is detached").
				WithRepository(r.dir).
				WithCause(errors.ErrNotCheckedOut)
		}
		return "", err
	}
	return out, nil
}

// HeadIsUnborn reports whether HEAD points at a branch with no commits.
func (r *Repository) HeadIsUnborn(ctx context.Context) (bool, error) {
	born, err := r.test(ctx, "rev-parse", "--verify", "--quiet", "HEAD^{commit}")
	if err != nil {
		return false, err
	}
	return !born, nil
}

// HasCommits reports whether HEAD resolves to a commit.
func (r *Repository) HasCommits(ctx context.Context) (bool, error) {
	unborn, err := r.HeadIsUnborn(ctx)
	return !unborn, err
}

// RevParse resolves rev to an object id.
func (r *Repository) RevParse(ctx context.Context, rev string) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--verify", "--quiet", "--end-of-options", rev)
	if err != nil {
		if code, ok := exitCode(err); ok && code == 1 {
			return "", errors.NewNotFoundError("ref", rev).
				WithRepository(r.dir).
				WithCause(errors.ErrRefNotFound)
		}
		return "", err
	}
	return out, nil
}

// refs returns every reference name in the repository.
func (r *Repository) refs(ctx context.Context) (map[string]bool, error) {
	out, err := r.run(ctx, "for-each-ref", "--format=%(refname)")
	if err != nil {
		return nil, err
	}
	refs := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		if line != "" {
			refs[line] = true
		}
	}
	return refs, nil
}

// RefExists reports whether name resolves to a reference under git's
// DWIM rules: the name itself, then refs/, refs/tags/, refs/heads/,
// refs/remotes/ and refs/remotes/<name>/HEAD.
func (r *Repository) RefExists(ctx context.Context, name string) (bool, error) {
	if name == "HEAD" {
		return true, nil
	}
	refs, err := r.refs(ctx)
	if err != nil {
		return false, err
	}
	for _, candidate := range []string{
		name,
		"refs/" + name,
		"refs/tags/" + name,
		"refs/heads/" + name,
		"refs/remotes/" + name,
		"refs/remotes/" + name + "/HEAD",
	} {
		if refs[candidate] {
			return true, nil
		}
	}
	return false, nil
}

// BranchExists reports whether the local branch exists.
func (r *Repository) BranchExists(ctx context.Context, branch string) (bool, error) {
	return r.test(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
}

// TagExists reports whether the tag exists.
func (r *Repository) TagExists(ctx context.Context, tag string) (bool, error) {
	return r.test(ctx, "show-ref", "--verify", "--quiet", "refs/tags/"+tag)
}

// CheckBranchName validates name with git's own ref-format rules.
func (r *Repository) CheckBranchName(ctx context.Context, name string) error {
	if _, err := r.run(ctx, "check-ref-format", "--branch", name); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.NewValidationError("invalid branch name").WithField("branch").WithValue(name)
	}
	return nil
}

// CreateBranch creates branch at start without switching to it.
func (r *Repository) CreateBranch(ctx context.Context, branch, start string) error {
	exists, err := r.BranchExists(ctx, branch)
	if err != nil {
		return err
	}
	if exists {
		return errors.NewConflictError("branch", branch).
			WithRepository(r.dir).
			WithCause(errors.ErrRefExists)
	}
	_, err = r.run(ctx, "branch", "--no-track", branch, start)
	return err
}

// DeleteBranch force-deletes a local branch.
func (r *Repository) DeleteBranch(ctx context.Context, branch string) error {
	_, err := r.run(ctx, "branch", "-D", branch)
	return err
}

// HasRemote reports whether the named remote is configured.
func (r *Repository) HasRemote(ctx context.Context, name string) (bool, error) {
	out, err := r.run(ctx, "remote")
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == name {
			return true, nil
		}
	}
	return false, nil
}

// RemoteURL returns the fetch URL of the named remote.
func (r *Repository) RemoteURL(ctx context.Context, name string) (string, error) {
	return r.run(ctx, "remote", "get-url", name)
}

// Subjects returns the subject lines along the first-parent history of
// rev, newest first.
func (r *Repository) Subjects(ctx context.Context, rev string) ([]string, error) {
	out, err := r.run(ctx, "log", "--first-parent", "--format=%s", rev, "--")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return []string{}, nil
	}
	return strings.Split(out, "\n"), nil
}
