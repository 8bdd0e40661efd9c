package workflow

import (
	"context"

	"github.com/wokspace/wok/internal/errors"
	"github.com/wokspace/wok/internal/workspace"
)

// Tag creates the lightweight tag name at HEAD of the root and of every
// registered satellite. All repositories must be clean and none may
// already have the tag; both are checked before any tag is written.
func Tag(ctx context.Context, ws *workspace.Workspace, name string) error {
	cfg, err := ws.Config()
	if err != nil {
		return err
	}
	sats, err := openSatellites(ctx, ws, allRecords(cfg))
	if err != nil {
		return err
	}
	if err := requireClean(ctx, "tag", ws, sats); err != nil {
		return err
	}

	if exists, err := ws.Root.TagExists(ctx, name); err != nil {
		return err
	} else if exists {
		return errors.NewConflictError("tag", name).WithRepository(ws.Root.Dir()).WithCause(errors.ErrRefExists)
	}
	for _, s := range sats {
		if exists, err := s.repo.TagExists(ctx, name); err != nil {
			return inSatellite(s.rec, err)
		} else if exists {
			return errors.NewConflictError("tag", name).WithRepository(s.rec.Path).WithCause(errors.ErrRefExists)
		}
	}

	logger := ws.Logger.WithOperation("tag")
	if err := ws.Root.Tag(ctx, name); err != nil {
		return err
	}
	logger.Info("tagged root", "tag", name)

	for _, s := range sats {
		if err := s.repo.Tag(ctx, name); err != nil {
			return inSatellite(s.rec, err)
		}
		logger.WithRepo(s.rec.Path).Info("tagged", "tag", name)
	}
	return nil
}
