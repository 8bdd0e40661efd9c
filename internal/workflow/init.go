package workflow

import (
	"context"

	"github.com/wokspace/wok/internal/workspace"
)

// Init creates the manifest next to the root repository's working tree
// root and commits it. The workspace branch is the root's current branch,
// or the trunk when the root has no commits yet.
func Init(ctx context.Context, ws *workspace.Workspace) error {
	logger := ws.Logger.WithOperation("init")

	ref := ws.Trunk()
	unborn, err := ws.Root.HeadIsUnborn(ctx)
	if err != nil {
		return err
	}
	if !unborn {
		if ref, err = ws.Root.CurrentBranch(ctx); err != nil {
			return err
		}
	}

	if _, err := ws.CreateConfig(ref); err != nil {
		return err
	}
	if _, err := ws.Root.Commit(ctx, MessageInit, ws.ManifestPath()); err != nil {
		return err
	}

	logger.Info("initialized workspace", "manifest", ws.ManifestPath(), "ref", ref)
	return nil
}

// Commit records the current manifest in the root repository.
func Commit(ctx context.Context, ws *workspace.Workspace) error {
	if _, err := ws.Config(); err != nil {
		return err
	}
	if _, err := ws.Root.Commit(ctx, MessageUpdate, ws.ManifestPath()); err != nil {
		return err
	}
	ws.Logger.WithOperation("commit").Info("committed manifest", "manifest", ws.ManifestPath())
	return nil
}
