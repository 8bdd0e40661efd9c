package workflow

import (
	"context"

	"github.com/wokspace/wok/internal/workspace"
)

// Push publishes the workspace branch from every joined satellite, then
// from the root.
func Push(ctx context.Context, ws *workspace.Workspace) error {
	cfg, err := ws.Config()
	if err != nil {
		return err
	}
	sats, err := openSatellites(ctx, ws, cfg.Joined())
	if err != nil {
		return err
	}

	logger := ws.Logger.WithOperation("push")
	for _, s := range sats {
		if err := s.repo.Push(ctx, cfg.Ref); err != nil {
			return inSatellite(s.rec, err)
		}
		logger.WithRepo(s.rec.Path).Info("pushed", "branch", cfg.Ref)
	}

	if err := ws.Root.Push(ctx, cfg.Ref); err != nil {
		return err
	}
	logger.Info("pushed root", "branch", cfg.Ref)
	return nil
}

// Sync fast-forwards the root on the workspace branch and every satellite
// on its recorded branch. Every repository must be clean first.
func Sync(ctx context.Context, ws *workspace.Workspace) error {
	cfg, err := ws.Config()
	if err != nil {
		return err
	}
	sats, err := openSatellites(ctx, ws, allRecords(cfg))
	if err != nil {
		return err
	}
	if err := requireClean(ctx, "sync", ws, sats); err != nil {
		return err
	}

	logger := ws.Logger.WithOperation("sync")

	if err := ws.Root.Switch(ctx, cfg.Ref); err != nil {
		return err
	}
	if err := ws.Root.Sync(ctx, cfg.Ref); err != nil {
		return err
	}
	logger.Info("synced root", "branch", cfg.Ref)

	for _, s := range sats {
		if err := s.repo.Switch(ctx, s.rec.Ref); err != nil {
			return inSatellite(s.rec, err)
		}
		if err := s.repo.Sync(ctx, s.rec.Ref); err != nil {
			return inSatellite(s.rec, err)
		}
		logger.WithRepo(s.rec.Path).Info("synced", "branch", s.rec.Ref)
	}
	return nil
}
