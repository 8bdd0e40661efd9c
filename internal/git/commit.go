package git

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/wokspace/wok/internal/errors"
)

// Commit stages pathspecs (every change when none are given), writes the
// index as a tree and records a commit with the repository's default
// identity. It returns the new commit id.
//
// On an unborn HEAD the commit has no parent and is written to the trunk
// branch, which HEAD is then pointed at. Otherwise HEAD is the only
// parent. A commit is created even when the tree is unchanged.
func (r *Repository) Commit(ctx context.Context, message string, pathspecs ...string) (string, error) {
	specs, err := r.relativePathspecs(pathspecs)
	if err != nil {
		return "", err
	}

	addArgs := []string{"add", "-A"}
	if len(specs) > 0 {
		addArgs = append(addArgs, "--")
		addArgs = append(addArgs, specs...)
	}
	if _, err := r.run(ctx, addArgs...); err != nil {
		return "", err
	}

	tree, err := r.run(ctx, "write-tree")
	if err != nil {
		return "", err
	}

	unborn, err := r.HeadIsUnborn(ctx)
	if err != nil {
		return "", err
	}

	if unborn {
		commit, err := r.run(ctx, "commit-tree", "-m", message, tree)
		if err != nil {
			return "", err
		}
		ref := "refs/heads/" + r.trunk
		if _, err := r.run(ctx, "update-ref", "-m", "commit (initial): "+message, ref, commit); err != nil {
			return "", err
		}
		if _, err := r.run(ctx, "symbolic-ref", "HEAD", ref); err != nil {
			return "", err
		}
		return commit, nil
	}

	parent, err := r.RevParse(ctx, "HEAD")
	if err != nil {
		return "", err
	}
	commit, err := r.run(ctx, "commit-tree", "-p", parent, "-m", message, tree)
	if err != nil {
		return "", err
	}

	// A detached HEAD is advanced directly.
	ref := "HEAD"
	if head, err := r.run(ctx, "symbolic-ref", "--quiet", "HEAD"); err == nil {
		ref = head
	}
	if _, err := r.run(ctx, "update-ref", "-m", "commit: "+message, ref, commit, parent); err != nil {
		return "", err
	}
	return commit, nil
}

// relativePathspecs rewrites absolute pathspecs relative to the working
// tree root.
func (r *Repository) relativePathspecs(pathspecs []string) ([]string, error) {
	specs := make([]string, 0, len(pathspecs))
	for _, p := range pathspecs {
		if filepath.IsAbs(p) {
			rel, err := filepath.Rel(r.dir, p)
			if err == nil && (rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
				err = errors.New("path escapes " + r.dir)
			}
			if err != nil {
				return nil, errors.NewValidationError("pathspec is outside the working tree").
					WithField("pathspec").
					WithValue(p).
					WithCause(err)
			}
			p = rel
		}
		specs = append(specs, filepath.ToSlash(p))
	}
	return specs, nil
}
