package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CarryPaths records a commit on branch whose tree is the tip of branch
// with paths replaced by their versions in the commit from. The working
// tree and index are not touched, so branch need not be checked out. It
// returns the new tip of branch, which is unchanged when the paths
// already match.
func (r *Repository) CarryPaths(ctx context.Context, branch, from, message string, paths ...string) (string, error) {
	return r.carry(ctx, branch, from, message, false, paths)
}

// carry implements CarryPaths. With allowEmpty the commit is recorded even
// when its tree equals the tree of the tip of branch.
func (r *Repository) carry(ctx context.Context, branch, from, message string, allowEmpty bool, paths []string) (string, error) {
	specs, err := r.relativePathspecs(paths)
	if err != nil {
		return "", err
	}

	ref := "refs/heads/" + branch
	parent, err := r.RevParse(ctx, ref)
	if err != nil {
		return "", err
	}
	source, err := r.RevParse(ctx, from+"^{commit}")
	if err != nil {
		return "", err
	}

	tmp, err := os.MkdirTemp("", "wok-index-")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch index: %w", err)
	}
	defer os.RemoveAll(tmp)
	env := []string{"GIT_INDEX_FILE=" + filepath.Join(tmp, "index")}

	if _, err := r.runEnv(ctx, env, "read-tree", parent); err != nil {
		return "", err
	}
	for _, p := range specs {
		entry, err := r.run(ctx, "ls-tree", "--full-tree", source, "--", p)
		if err != nil {
			return "", err
		}
		if entry == "" {
			if _, err := r.runEnv(ctx, env, "update-index", "--force-remove", "--", p); err != nil {
				return "", err
			}
			continue
		}
		// <mode> SP <type> SP <object> TAB <path>
		meta, _, _ := strings.Cut(entry, "\t")
		fields := strings.Fields(meta)
		if len(fields) != 3 || fields[1] != "blob" {
			return "", fmt.Errorf("cannot carry %s: not a file in %s", p, from)
		}
		info := fields[0] + "," + fields[2] + "," + p
		if _, err := r.runEnv(ctx, env, "update-index", "--add", "--cacheinfo", info); err != nil {
			return "", err
		}
	}

	tree, err := r.runEnv(ctx, env, "write-tree")
	if err != nil {
		return "", err
	}
	parentTree, err := r.RevParse(ctx, parent+"^{tree}")
	if err != nil {
		return "", err
	}
	if tree == parentTree && !allowEmpty {
		return parent, nil
	}

	commit, err := r.run(ctx, "commit-tree", "-p", parent, "-m", message, tree)
	if err != nil {
		return "", err
	}
	if _, err := r.run(ctx, "update-ref", "-m", "commit: "+message, ref, commit, parent); err != nil {
		return "", err
	}
	return commit, nil
}
