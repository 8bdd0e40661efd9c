package git

import (
	"context"
	"strings"
)

// StatusEntry is one changed path reported by git status.
type StatusEntry struct {
	// Index and Worktree are the porcelain status codes, e.g. 'M', 'A', 'D'.
	Index    byte
	Worktree byte
	Path     string
}

// Status returns the tracked paths with staged or unstaged changes.
// Untracked and ignored files are not reported.
func (r *Repository) Status(ctx context.Context) ([]StatusEntry, error) {
	out, err := r.run(ctx, "status", "--porcelain=v1", "-z", "--untracked-files=no", "--ignored=no")
	if err != nil {
		return nil, err
	}
	return parsePorcelainZ(out), nil
}

// parsePorcelainZ parses `git status --porcelain=v1 -z` output.
func parsePorcelainZ(out string) []StatusEntry {
	var entries []StatusEntry
	fields := strings.Split(out, "\x00")
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if len(f) < 4 {
			continue
		}
		e := StatusEntry{Index: f[0], Worktree: f[1], Path: f[3:]}
		entries = append(entries, e)
		// Renames and copies carry the source path in the next field.
		if e.Index == 'R' || e.Index == 'C' {
			i++
		}
	}
	return entries
}

// IsClean reports whether the repository has no modified, deleted or
// staged changes. Untracked and ignored files do not count.
func (r *Repository) IsClean(ctx context.Context) (bool, error) {
	entries, err := r.Status(ctx)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
