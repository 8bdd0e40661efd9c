package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/wokspace/wok/internal/errors"
)

// Analysis is the outcome of merging one commit into another.
type Analysis int

const (
	// AnalysisUpToDate means theirs is already contained in ours.
	AnalysisUpToDate Analysis = iota
	// AnalysisFastForward means ours is an ancestor of theirs.
	AnalysisFastForward
	// AnalysisNormal means the histories have diverged.
	AnalysisNormal
)

func (a Analysis) String() string {
	switch a {
	case AnalysisUpToDate:
		return "up-to-date"
	case AnalysisFastForward:
		return "fast-forward"
	default:
		return "normal"
	}
}

// MergeAnalysis classifies merging theirs into ours.
func (r *Repository) MergeAnalysis(ctx context.Context, ours, theirs string) (Analysis, error) {
	oursID, err := r.RevParse(ctx, ours+"^{commit}")
	if err != nil {
		return 0, err
	}
	theirsID, err := r.RevParse(ctx, theirs+"^{commit}")
	if err != nil {
		return 0, err
	}
	if oursID == theirsID {
		return AnalysisUpToDate, nil
	}

	contained, err := r.test(ctx, "merge-base", "--is-ancestor", theirsID, oursID)
	if err != nil {
		return 0, err
	}
	if contained {
		return AnalysisUpToDate, nil
	}

	ff, err := r.test(ctx, "merge-base", "--is-ancestor", oursID, theirsID)
	if err != nil {
		return 0, err
	}
	if ff {
		return AnalysisFastForward, nil
	}
	return AnalysisNormal, nil
}

// MergeBase returns the best common ancestor of a and b.
func (r *Repository) MergeBase(ctx context.Context, a, b string) (string, error) {
	out, err := r.run(ctx, "merge-base", a, b)
	if err != nil {
		if code, ok := exitCode(err); ok && code == 1 {
			return "", errors.NewNotFoundError("merge base", a+" "+b).
				WithRepository(r.dir).
				WithCause(errors.ErrRefNotFound)
		}
		return "", err
	}
	return out, nil
}

// MergeTrees performs a three-way merge of the trees of ours and theirs
// against base and returns the resulting tree id. Conflicts are reported,
// never written.
func (r *Repository) MergeTrees(ctx context.Context, base, ours, theirs string) (string, error) {
	baseID, err := r.RevParse(ctx, base+"^{commit}")
	if err != nil {
		return "", err
	}
	oursID, err := r.RevParse(ctx, ours+"^{commit}")
	if err != nil {
		return "", err
	}
	theirsID, err := r.RevParse(ctx, theirs+"^{commit}")
	if err != nil {
		return "", err
	}

	switch {
	case baseID == oursID:
		return r.RevParse(ctx, theirsID+"^{tree}")
	case baseID == theirsID:
		return r.RevParse(ctx, oursID+"^{tree}")
	}

	out, err := r.run(ctx, "merge-tree", "--write-tree", "--merge-base="+baseID, oursID, theirsID)
	if err != nil {
		if code, ok := exitCode(err); ok && code == 1 {
			return "", errors.NewConflictError("merge", ours+" <- "+theirs).
				WithRepository(r.dir).
				WithDetail("trees conflict").
				WithCause(err)
		}
		return "", err
	}
	tree, _, _ := strings.Cut(out, "\n")
	return tree, nil
}

// MergeSquash folds every change of branch theirs into branch ours as a
// single commit whose only parent is the tip of ours. ours must not be
// checked out, and theirs must fast-forward it.
func (r *Repository) MergeSquash(ctx context.Context, ours, theirs, message string) error {
	if current, err := r.CurrentBranch(ctx); err == nil && current == ours {
		return errors.NewPreconditionError("merge", fmt.Sprintf("cannot squash into the checked-out branch '%s'", ours)).
			WithRepository(r.dir)
	}

	analysis, err := r.squashAnalysis(ctx, ours, theirs)
	if err != nil || analysis == AnalysisUpToDate {
		return err
	}

	oursRef := "refs/heads/" + ours
	theirsRef := "refs/heads/" + theirs
	base, err := r.MergeBase(ctx, oursRef, theirsRef)
	if err != nil {
		return err
	}
	tree, err := r.MergeTrees(ctx, base, oursRef, theirsRef)
	if err != nil {
		return err
	}
	return r.commitOnto(ctx, ours, tree, message, "merge --squash "+theirs)
}

// squashAnalysis rejects diverged histories.
func (r *Repository) squashAnalysis(ctx context.Context, ours, theirs string) (Analysis, error) {
	analysis, err := r.MergeAnalysis(ctx, "refs/heads/"+ours, "refs/heads/"+theirs)
	if err != nil {
		return 0, err
	}
	if analysis == AnalysisNormal {
		return 0, errors.NewDivergedError(ours, theirs).WithRepository(r.dir)
	}
	return analysis, nil
}

// commitOnto records tree as a new commit on top of branch.
func (r *Repository) commitOnto(ctx context.Context, branch, tree, message, reflog string) error {
	ref := "refs/heads/" + branch
	parent, err := r.RevParse(ctx, ref)
	if err != nil {
		return err
	}
	commit, err := r.run(ctx, "commit-tree", "-p", parent, "-m", message, tree)
	if err != nil {
		return err
	}
	_, err = r.run(ctx, "update-ref", "-m", reflog, ref, commit, parent)
	return err
}

// FinishOption configures Finish.
type FinishOption func(*finishOptions)

type finishOptions struct {
	carryMessage string
	carryPaths   []string
}

// WithCarry makes Finish first commit the finished branch's versions of
// paths onto trunk with message, so they land as their own commit ahead
// of the squash. The commit is recorded even when trunk already holds
// those versions.
func WithCarry(message string, paths ...string) FinishOption {
	return func(o *finishOptions) {
		o.carryMessage = message
		o.carryPaths = paths
	}
}

// Finish squash-merges the checked-out branch into trunk, checks out
// trunk and deletes branch.
func (r *Repository) Finish(ctx context.Context, branch, message, trunk string, opts ...FinishOption) error {
	var o finishOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := r.requireCheckedOut(ctx, "finish", branch); err != nil {
		return err
	}
	if branch == trunk {
		return errors.NewPreconditionError("finish", fmt.Sprintf("'%s' is the trunk branch", branch)).
			WithRepository(r.dir).
			WithCause(errors.ErrFinishTrunk)
	}

	exists, err := r.BranchExists(ctx, trunk)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewNotFoundError("branch", trunk).
			WithRepository(r.dir).
			WithCause(errors.ErrRefNotFound)
	}

	if len(o.carryPaths) == 0 {
		if err := r.MergeSquash(ctx, trunk, branch, message); err != nil {
			return err
		}
	} else if err := r.finishCarrying(ctx, branch, message, trunk, o); err != nil {
		return err
	}

	if err := r.Switch(ctx, trunk); err != nil {
		return err
	}
	return r.DeleteBranch(ctx, branch)
}

func (r *Repository) finishCarrying(ctx context.Context, branch, message, trunk string, o finishOptions) error {
	analysis, err := r.squashAnalysis(ctx, trunk, branch)
	if err != nil || analysis == AnalysisUpToDate {
		return err
	}
	if _, err := r.carry(ctx, trunk, "refs/heads/"+branch, o.carryMessage, true, o.carryPaths); err != nil {
		return err
	}
	// trunk now differs from the merge base only in paths that already
	// match branch, so the merged tree is the tree of branch.
	tree, err := r.RevParse(ctx, "refs/heads/"+branch+"^{tree}")
	if err != nil {
		return err
	}
	return r.commitOnto(ctx, trunk, tree, message, "merge --squash "+branch)
}

// Tag creates a lightweight tag at HEAD.
func (r *Repository) Tag(ctx context.Context, name string) error {
	exists, err := r.TagExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return errors.NewConflictError("tag", name).
			WithRepository(r.dir).
			WithCause(errors.ErrRefExists)
	}
	_, err = r.run(ctx, "tag", name)
	return err
}
