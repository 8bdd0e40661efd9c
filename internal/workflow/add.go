package workflow

import (
	"context"
	"os"

	"github.com/wokspace/wok/internal/errors"
	"github.com/wokspace/wok/internal/manifest"
	"github.com/wokspace/wok/internal/workspace"
)

// Add clones url to path (relative to the workspace root) and registers
// it with the branch the clone checked out.
func Add(ctx context.Context, ws *workspace.Workspace, path, url string) (*manifest.Repo, error) {
	cfg, err := ws.Config()
	if err != nil {
		return nil, err
	}
	path = manifest.NormalizePath(path)

	if err := cfg.CheckUnique(url, path); err != nil {
		return nil, err
	}
	if _, err := os.Lstat(ws.AbsPath(path)); err == nil {
		return nil, errors.NewConflictError("path", path).WithDetail("already exists on disk")
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	logger := ws.Logger.WithOperation("add").WithRepo(path)
	logger.Info("cloning", "url", url)

	repo, err := ws.Clone(ctx, url, path)
	if err != nil {
		return nil, err
	}
	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	if err := cfg.Add(manifest.Repo{URL: url, Path: path, Ref: branch}); err != nil {
		return nil, err
	}
	if err := ws.Save(); err != nil {
		return nil, err
	}

	rec, _ := cfg.RepoByPath(path)
	logger.Info("registered repo", "ref", branch)
	return rec, nil
}
