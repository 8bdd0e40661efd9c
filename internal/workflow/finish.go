package workflow

import (
	"context"
	"fmt"

	"github.com/wokspace/wok/internal/errors"
	"github.com/wokspace/wok/internal/git"
	"github.com/wokspace/wok/internal/workspace"
)

// Finish squash-merges the workspace branch into the trunk in every joined
// satellite, then moves the workspace back to the trunk, commits the
// manifest and finishes the root last. The manifest commit reaches the
// root's trunk on its own, just below the squash commit.
func Finish(ctx context.Context, ws *workspace.Workspace, message string) error {
	cfg, err := ws.Config()
	if err != nil {
		return err
	}
	trunk := ws.Trunk()
	if cfg.Ref == trunk {
		return errors.NewPreconditionError("finish", fmt.Sprintf("workspace is on the trunk branch '%s'", trunk)).
			WithCause(errors.ErrFinishTrunk)
	}
	branch := cfg.Ref

	sats, err := openSatellites(ctx, ws, cfg.Joined())
	if err != nil {
		return err
	}

	logger := ws.Logger.WithOperation("finish")
	for _, s := range sats {
		if err := s.repo.Finish(ctx, branch, message, trunk); err != nil {
			return inSatellite(s.rec, err)
		}
		s.rec.Ref = trunk
		if err := ws.Save(); err != nil {
			return err
		}
		logger.WithRepo(s.rec.Path).Info("finished", "branch", branch, "into", trunk)
	}

	cfg.Ref = trunk
	if err := ws.Save(); err != nil {
		return err
	}
	if _, err := ws.Root.Commit(ctx, MessageUpdate, ws.ManifestPath()); err != nil {
		return err
	}
	carry := git.WithCarry(MessageUpdate, ws.ManifestPath())
	if err := ws.Root.Finish(ctx, branch, message, trunk, carry); err != nil {
		return err
	}

	logger.Info("finished root", "branch", branch, "into", trunk)
	return nil
}
