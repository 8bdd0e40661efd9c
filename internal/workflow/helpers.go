package workflow

import (
	"context"
	"fmt"

	"github.com/wokspace/wok/internal/errors"
	"github.com/wokspace/wok/internal/git"
	"github.com/wokspace/wok/internal/manifest"
	"github.com/wokspace/wok/internal/workspace"
)

// satellite pairs a repo record with its opened repository.
type satellite struct {
	rec  *manifest.Repo
	repo *git.Repository
}

// openSatellites opens the repositories of recs, failing on the first one
// that cannot be opened.
func openSatellites(ctx context.Context, ws *workspace.Workspace, recs []*manifest.Repo) ([]satellite, error) {
	sats := make([]satellite, 0, len(recs))
	for _, rec := range recs {
		repo, err := ws.Satellite(ctx, rec)
		if err != nil {
			return nil, err
		}
		sats = append(sats, satellite{rec: rec, repo: repo})
	}
	return sats, nil
}

// allRecords returns pointers to every record in manifest order.
func allRecords(cfg *manifest.Config) []*manifest.Repo {
	recs := make([]*manifest.Repo, len(cfg.Repos))
	for i := range cfg.Repos {
		recs[i] = &cfg.Repos[i]
	}
	return recs
}

// requireClean fails with a dirty-state error naming the first repository
// with uncommitted changes, the root first.
func requireClean(ctx context.Context, op string, ws *workspace.Workspace, sats []satellite) error {
	clean, err := ws.Root.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return errors.NewDirtyStateError(ws.Root.Dir()).WithOperation(op)
	}

	for _, s := range sats {
		clean, err := s.repo.IsClean(ctx)
		if err != nil {
			return errors.Wrapf(err, "satellite %s", s.rec.Path)
		}
		if !clean {
			return errors.NewDirtyStateError(s.rec.Path).WithOperation(op)
		}
	}
	return nil
}

// requireBorn fails when the root repository has no commits.
func requireBorn(ctx context.Context, op string, ws *workspace.Workspace) error {
	unborn, err := ws.Root.HeadIsUnborn(ctx)
	if err != nil {
		return err
	}
	if unborn {
		return errors.NewPreconditionError(op, "workspace is not initialized").
			WithRepository(ws.Root.Dir()).
			WithCause(errors.ErrNotInitialized)
	}
	return nil
}

// requireNewRef fails with a conflict when any ref named branch already
// exists in repo.
func requireNewRef(ctx context.Context, repo *git.Repository, name, branch string) error {
	exists, err := repo.RefExists(ctx, branch)
	if err != nil {
		return err
	}
	if exists {
		return errors.NewConflictError("reference", branch).
			WithRepository(name).
			WithCause(errors.ErrRefExists)
	}
	return nil
}

// createAndSwitch creates branch at HEAD unless it exists, then checks it
// out with autostash.
func createAndSwitch(ctx context.Context, repo *git.Repository, branch string) error {
	exists, err := repo.BranchExists(ctx, branch)
	if err != nil {
		return err
	}
	if !exists {
		if err := repo.CreateBranch(ctx, branch, "HEAD"); err != nil {
			return err
		}
	}
	return repo.Switch(ctx, branch)
}

func inSatellite(rec *manifest.Repo, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", rec.Path, err)
}
