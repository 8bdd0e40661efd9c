package git

import (
	"context"
	"fmt"

	"github.com/wokspace/wok/internal/errors"
)

// Switch checks out branch. Local changes are stashed first and restored
// afterwards, even when the checkout fails. A stash that no longer applies
// cleanly is left in the stash list and reported as a conflict.
func (r *Repository) Switch(ctx context.Context, branch string) (err error) {
	clean, err := r.IsClean(ctx)
	if err != nil {
		return err
	}

	if !clean {
		msg := fmt.Sprintf("wok: autostash before switching to %s", branch)
		if _, err := r.run(ctx, "stash", "push", "--quiet", "--message", msg); err != nil {
			return err
		}
		r.logger.Debug("stashed local changes", "dir", r.dir, "branch", branch)

		defer func() {
			// The stash must come back even if ctx was cancelled.
			if _, popErr := r.run(context.WithoutCancel(ctx), "stash", "pop", "--quiet"); popErr != nil {
				conflict := errors.NewStashConflictError(branch).
					WithRepository(r.dir).
					WithDetail("resolve the conflicts, then run 'git stash drop'").
					WithCause(popErr)
				err = errors.Join(err, conflict)
			}
		}()
	}

	_, err = r.run(ctx, "checkout", "--quiet", branch, "--")
	return err
}
