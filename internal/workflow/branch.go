package workflow

import (
	"context"

	"github.com/wokspace/wok/internal/errors"
	"github.com/wokspace/wok/internal/manifest"
	"github.com/wokspace/wok/internal/workspace"
)

// Start creates branch at the root's HEAD, switches the root to it and
// makes it the workspace branch. Satellites are left alone; see Join.
func Start(ctx context.Context, ws *workspace.Workspace, branch string) error {
	cfg, err := ws.Config()
	if err != nil {
		return err
	}
	if err := ws.Root.CheckBranchName(ctx, branch); err != nil {
		return err
	}
	if err := requireBorn(ctx, "start", ws); err != nil {
		return err
	}
	if err := requireNewRef(ctx, ws.Root, ws.Root.Dir(), branch); err != nil {
		return err
	}

	if err := ws.Root.CreateBranch(ctx, branch, "HEAD"); err != nil {
		return err
	}
	if err := ws.Root.Switch(ctx, branch); err != nil {
		return err
	}

	cfg.Ref = branch
	if err := ws.Save(); err != nil {
		return err
	}

	ws.Logger.WithOperation("start").Info("started branch", "branch", branch)
	return nil
}

// Join puts the satellites at paths on the workspace branch, creating it
// at each satellite's HEAD where it does not exist yet. Every path is
// resolved before any repository is touched, and the manifest is saved
// after each satellite.
func Join(ctx context.Context, ws *workspace.Workspace, paths []string) error {
	cfg, err := ws.Config()
	if err != nil {
		return err
	}

	recs := make([]*manifest.Repo, 0, len(paths))
	for _, p := range paths {
		rec, ok := cfg.RepoByPath(p)
		if !ok {
			return errors.NewNotFoundError("repo path", manifest.NormalizePath(p)).WithCause(errors.ErrUnknownRepo)
		}
		recs = append(recs, rec)
	}
	sats, err := openSatellites(ctx, ws, recs)
	if err != nil {
		return err
	}

	logger := ws.Logger.WithOperation("join")
	for _, s := range sats {
		if err := createAndSwitch(ctx, s.repo, cfg.Ref); err != nil {
			return inSatellite(s.rec, err)
		}
		s.rec.Ref = cfg.Ref
		if err := ws.Save(); err != nil {
			return err
		}
		logger.WithRepo(s.rec.Path).Info("joined", "branch", cfg.Ref)
	}
	return nil
}

// Fork starts branch in the root and in every registered satellite. The
// branch must not exist in any of them; this is checked before anything
// is changed.
func Fork(ctx context.Context, ws *workspace.Workspace, branch string) error {
	cfg, err := ws.Config()
	if err != nil {
		return err
	}
	if err := ws.Root.CheckBranchName(ctx, branch); err != nil {
		return err
	}
	if err := requireBorn(ctx, "fork", ws); err != nil {
		return err
	}

	sats, err := openSatellites(ctx, ws, allRecords(cfg))
	if err != nil {
		return err
	}
	if err := requireNewRef(ctx, ws.Root, ws.Root.Dir(), branch); err != nil {
		return err
	}
	for _, s := range sats {
		if err := requireNewRef(ctx, s.repo, s.rec.Path, branch); err != nil {
			return err
		}
	}

	logger := ws.Logger.WithOperation("fork")

	if err := ws.Root.CreateBranch(ctx, branch, "HEAD"); err != nil {
		return err
	}
	if err := ws.Root.Switch(ctx, branch); err != nil {
		return err
	}
	cfg.Ref = branch
	if err := ws.Save(); err != nil {
		return err
	}
	logger.Info("forked root", "branch", branch)

	for _, s := range sats {
		if err := createAndSwitch(ctx, s.repo, branch); err != nil {
			return inSatellite(s.rec, err)
		}
		s.rec.Ref = branch
		if err := ws.Save(); err != nil {
			return err
		}
		logger.WithRepo(s.rec.Path).Info("forked", "branch", branch)
	}
	return nil
}
