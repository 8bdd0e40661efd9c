package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// GitError Tests
// -----------------------------------------------------------------------------

func TestGitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *GitError
		want string
	}{
		{
			name: "message only",
			err:  NewGitError("failed to fetch", nil),
			want: "git error: failed to fetch",
		},
		{
			name: "with repository and branch",
			err:  NewGitError("failed to push", nil).WithRepository("/w/prj-1").WithBranch("feature"),
			want: "git error [branch=feature, repo=/w/prj-1]: failed to push",
		},
		{
			name: "with cause and output",
			err:  NewGitError("failed to checkout", errors.New("exit status 1")).WithGitOutput("error: pathspec 'x'\n"),
			want: "git error: failed to checkout: exit status 1\ngit output: error: pathspec 'x'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGitError_WithCommand(t *testing.T) {
	err := NewGitError("failed", nil).WithCommand([]string{"push", "origin", "main"})
	if err.Command != "push origin main" {
		t.Errorf("Command = %q, want %q", err.Command, "push origin main")
	}
}

// -----------------------------------------------------------------------------
// Taxonomy Tests
// -----------------------------------------------------------------------------

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("repo path", "unknown/path").WithCause(ErrUnknownRepo)

	if got, want := err.Error(), "repo path 'unknown/path' not found: unknown repo"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false, want true")
	}
	if !errors.Is(err, ErrUnknownRepo) {
		t.Error("errors.Is(err, ErrUnknownRepo) = false, want true")
	}
	if errors.Is(err, ErrConflict) {
		t.Error("errors.Is(err, ErrConflict) = true, want false")
	}
}

func TestConflictError(t *testing.T) {
	t.Run("existing resource", func(t *testing.T) {
		err := NewConflictError("branch", "feature").WithRepository("prj-1")
		if got, want := err.Error(), "branch 'feature' already exists [repo=prj-1]"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
		if !errors.Is(err, ErrConflict) {
			t.Error("errors.Is(err, ErrConflict) = false, want true")
		}
	})

	t.Run("with detail", func(t *testing.T) {
		err := NewConflictError("repo url", "git@x:y.git").WithDetail("registered at prj-1")
		if got, want := err.Error(), "repo url 'git@x:y.git' already exists (registered at prj-1)"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("diverged", func(t *testing.T) {
		err := NewDivergedError("master", "origin/master")
		if got, want := err.Error(), "'master' cannot be fast-forwarded to 'origin/master'"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
		if !errors.Is(err, ErrDiverged) {
			t.Error("errors.Is(err, ErrDiverged) = false, want true")
		}
	})

	t.Run("stash", func(t *testing.T) {
		err := NewStashConflictError("feature").WithRepository("prj-1").WithCause(errors.New("exit status 1"))
		want := "local changes could not be restored after switching to 'feature' [repo=prj-1]: exit status 1"
		if got := err.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
		if !errors.Is(err, ErrStashConflict) || !errors.Is(err, ErrConflict) {
			t.Error("stash conflict should match ErrStashConflict and ErrConflict")
		}
		if errors.Is(err, ErrDiverged) {
			t.Error("stash conflict should not match ErrDiverged")
		}
	})
}

func TestDirtyStateError(t *testing.T) {
	err := NewDirtyStateError("/w/prj-2").WithOperation("tag")
	if got, want := err.Error(), "tag: repository '/w/prj-2' has uncommitted changes"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrDirtyState) {
		t.Error("errors.Is(err, ErrDirtyState) = false, want true")
	}
}

func TestPreconditionError(t *testing.T) {
	err := NewPreconditionError("finish", "workspace is on the trunk branch").WithCause(ErrFinishTrunk)
	if got, want := err.Error(), "finish: workspace is on the trunk branch"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrPrecondition) {
		t.Error("errors.Is(err, ErrPrecondition) = false, want true")
	}
	if !errors.Is(err, ErrFinishTrunk) {
		t.Error("errors.Is(err, ErrFinishTrunk) = false, want true")
	}
}

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("url is required").WithField("repos[0].url")
	if got, want := err.Error(), "validation error [field=repos[0].url]: url is required"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("errors.Is(err, ErrInvalidInput) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestKindOfAndExitCode(t *testing.T) {
	gitErr := NewGitError("failed to push", errors.New("exit status 128"))

	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantCode int
	}{
		{"nil", nil, KindUnknown, 0},
		{"plain", errors.New("boom"), KindUnknown, 1},
		{"not found", NewNotFoundError("repo path", "x"), KindNotFound, 2},
		{"conflict", NewConflictError("tag", "v1"), KindConflict, 3},
		{"dirty", NewDirtyStateError("/w"), KindDirtyState, 4},
		{"precondition", NewPreconditionError("start", "no commits"), KindPrecondition, 5},
		{"validation", NewValidationError("bad"), KindValidation, 6},
		{"git", gitErr, KindGit, 1},
		{"wrapped conflict", fmt.Errorf("join prj-1: %w", NewConflictError("branch", "b")), KindConflict, 3},
		{"taxonomy wins over git cause", NewConflictError("tag", "v1").WithCause(gitErr), KindConflict, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", got, tt.wantKind)
			}
			if got := ExitCode(tt.err); got != tt.wantCode {
				t.Errorf("ExitCode() = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestGetSeverity(t *testing.T) {
	if got := GetSeverity(nil); got != SeverityDebug {
		t.Errorf("GetSeverity(nil) = %v, want %v", got, SeverityDebug)
	}
	if got := GetSeverity(errors.New("x")); got != SeverityError {
		t.Errorf("GetSeverity(plain) = %v, want %v", got, SeverityError)
	}
	if got := GetSeverity(NewNotFoundError("a", "b")); got != SeverityWarning {
		t.Errorf("GetSeverity(not found) = %v, want %v", got, SeverityWarning)
	}
	if got := GetSeverity(Wrapf(NewDivergedError("master", "feature"), "satellite %s", "a")); got != SeverityError {
		t.Errorf("GetSeverity(wrapped diverged) = %v, want %v", got, SeverityError)
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "x") != nil {
		t.Error("Wrapf(nil) should be nil")
	}
	base := NewConflictError("branch", "b")
	err := Wrapf(base, "fork %s", "b")
	if got, want := err.Error(), "fork b: branch 'b' already exists"; got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Error("errors.As should find the ConflictError")
	}
}
