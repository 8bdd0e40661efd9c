package workflow

import (
	"context"

	"github.com/wokspace/wok/internal/workspace"
)

// RepoStatus describes one repository of the workspace.
type RepoStatus struct {
	// Path is "." for the root, otherwise the manifest path.
	Path string
	URL  string
	// Recorded is the branch the manifest expects.
	Recorded string
	// Actual is the branch checked out on disk; empty when unknown.
	Actual string
	Joined bool
	Clean  bool
	// Err is set when the repository could not be inspected.
	Err error
}

// Drifted reports whether the checked-out branch differs from the
// recorded one, which is what an interrupted operation leaves behind.
func (s RepoStatus) Drifted() bool {
	return s.Err == nil && s.Actual != s.Recorded
}

// Report is the state of the whole workspace.
type Report struct {
	Ref   string
	Root  RepoStatus
	Repos []RepoStatus
}

// Drifted reports whether any repository drifted from the manifest.
func (r *Report) Drifted() bool {
	if r.Root.Drifted() {
		return true
	}
	for _, s := range r.Repos {
		if s.Drifted() {
			return true
		}
	}
	return false
}

// Status inspects the root and every satellite. Problems with a single
// satellite are recorded in its RepoStatus rather than returned.
func Status(ctx context.Context, ws *workspace.Workspace) (*Report, error) {
	cfg, err := ws.Config()
	if err != nil {
		return nil, err
	}

	report := &Report{Ref: cfg.Ref}

	root := RepoStatus{Path: ".", Recorded: cfg.Ref, Joined: true}
	if root.Actual, err = ws.Root.CurrentBranch(ctx); err != nil {
		return nil, err
	}
	if root.Clean, err = ws.Root.IsClean(ctx); err != nil {
		return nil, err
	}
	report.Root = root

	for _, rec := range allRecords(cfg) {
		st := RepoStatus{
			Path:     rec.Path,
			URL:      rec.URL,
			Recorded: rec.Ref,
			Joined:   cfg.IsJoined(rec),
		}
		repo, err := ws.Satellite(ctx, rec)
		if err != nil {
			st.Err = err
			report.Repos = append(report.Repos, st)
			continue
		}
		if st.Actual, err = repo.CurrentBranch(ctx); err != nil {
			st.Err = err
		} else if st.Clean, err = repo.IsClean(ctx); err != nil {
			st.Err = err
		}
		report.Repos = append(report.Repos, st)
	}
	return report, nil
}
