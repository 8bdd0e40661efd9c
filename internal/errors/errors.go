// Package errors provides the error taxonomy shared by every wok package.
// It defines sentinel errors, typed errors carrying workspace context, and
// classification helpers used by the CLI to pick a message and exit code.
//
// # Error Types
//
// Taxonomy errors describe why a workflow operation was refused:
//   - NotFoundError: unknown repo path or URL, unresolvable reference
//   - ConflictError: duplicate registration, existing branch or tag,
//     non-fast-forward history
//   - DirtyStateError: uncommitted changes block an operation
//   - PreconditionError: the operation is invalid in the current state
//
// Supporting errors:
//   - GitError: a git command failed; carries the captured output
//   - ValidationError: a manifest or settings value is malformed
//
// # Usage
//
//	err := errors.NewConflictError("branch", "feature-x").WithRepository("prj-1")
//
//	if errors.Is(err, errors.ErrConflict) { ... }
//
//	var dirty *errors.DirtyStateError
//	if errors.As(err, &dirty) { ... }
//
//	os.Exit(errors.ExitCode(err))
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions so callers only need this package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Kind sentinels. Every typed taxonomy error matches its kind sentinel
// through errors.Is.
var (
	ErrNotFound     = New("not found")
	ErrConflict     = New("conflict")
	ErrDirtyState   = New("uncommitted changes")
	ErrPrecondition = New("precondition failed")
)

// Workspace-related sentinel errors
var (
	// ErrNoRootRepository indicates no root repository could be discovered.
	ErrNoRootRepository = New("no root repository found")
	// ErrManifestNotFound indicates the workspace manifest file is missing.
	ErrManifestNotFound = New("workspace manifest not found")
	// ErrManifestExists indicates the workspace manifest file already exists.
	ErrManifestExists = New("workspace manifest already exists")
	// ErrUnknownRepo indicates a path or URL does not match any repo record.
	ErrUnknownRepo = New("unknown repo")
	// ErrDuplicateRepo indicates a repo record with the same path or URL exists.
	ErrDuplicateRepo = New("repo already registered")
	// ErrNotInitialized indicates the root repository has no commits yet.
	ErrNotInitialized = New("workspace is not initialized")
	// ErrFinishTrunk indicates an attempt to finish the trunk branch itself.
	ErrFinishTrunk = New("cannot finish the trunk branch")
)

// Git-related sentinel errors
var (
	// ErrNotGitRepository indicates that the directory is not a git repository.
	ErrNotGitRepository = New("not a git repository")
	// ErrRefNotFound indicates that a reference could not be resolved.
	ErrRefNotFound = New("reference not found")
	// ErrRefExists indicates that a branch or tag already exists.
	ErrRefExists = New("reference already exists")
	// ErrNotCheckedOut indicates the branch is not the checked-out branch.
	ErrNotCheckedOut = New("branch is not checked out")
	// ErrDiverged indicates histories that cannot be fast-forwarded.
	ErrDiverged = New("histories have diverged")
	// ErrStashConflict indicates restoring autostashed changes conflicted.
	ErrStashConflict = New("stashed changes could not be restored")
	// ErrAuthentication indicates the remote rejected every credential.
	ErrAuthentication = New("authentication failed")
)

// ErrInvalidInput indicates that input validation failed.
var ErrInvalidInput = New("invalid input")

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// WokError is implemented by every typed error in this package.
type WokError interface {
	error
	Unwrap() error
	Is(target error) bool
	Severity() Severity
}

type baseError struct {
	message  string
	cause    error
	severity Severity
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity {
	return e.severity
}

// repoContext renders the optional repository qualifier shared by the
// taxonomy errors.
func repoContext(prefix, repo string) string {
	if repo == "" {
		return prefix
	}
	return fmt.Sprintf("%s [repo=%s]", prefix, repo)
}

// -----------------------------------------------------------------------------
// GitError
// -----------------------------------------------------------------------------

// GitError represents a failed git command.
//
// Example:
//
//	err := errors.NewGitError("failed to fetch", cause).
//		WithRepository("/work/prj-1").
//		WithGitOutput(string(output))
type GitError struct {
	baseError
	Branch     string
	Repository string
	Command    string
	GitOutput  string
}

// NewGitError creates a new GitError.
func NewGitError(message string, cause error) *GitError {
	return &GitError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
	}
}

// WithBranch adds a branch name to the error context.
func (e *GitError) WithBranch(branch string) *GitError {
	e.Branch = branch
	return e
}

// WithRepository adds a repository path to the error context.
func (e *GitError) WithRepository(path string) *GitError {
	e.Repository = path
	return e
}

// WithCommand records the git arguments that failed.
func (e *GitError) WithCommand(args []string) *GitError {
	e.Command = strings.Join(args, " ")
	return e
}

// WithGitOutput adds git command output to the error context.
func (e *GitError) WithGitOutput(output string) *GitError {
	e.GitOutput = strings.TrimSpace(output)
	return e
}

// Error returns the formatted error message.
func (e *GitError) Error() string {
	var parts []string
	if e.Branch != "" {
		parts = append(parts, fmt.Sprintf("branch=%s", e.Branch))
	}
	if e.Repository != "" {
		parts = append(parts, fmt.Sprintf("repo=%s", e.Repository))
	}

	prefix := "git error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("git error [%s]", strings.Join(parts, ", "))
	}

	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.GitOutput != "" {
		msg = fmt.Sprintf("%s\ngit output: %s", msg, e.GitOutput)
	}

	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Is checks if this error matches the target.
func (e *GitError) Is(target error) bool {
	if _, ok := target.(*GitError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Taxonomy Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("repo path", "unknown/path")
//	fmt.Println(err) // "repo path 'unknown/path' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
	Repository   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:  fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity: SeverityWarning,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// WithRepository names the repository the lookup ran against.
func (e *NotFoundError) WithRepository(repo string) *NotFoundError {
	e.Repository = repo
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	msg := repoContext(fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID), e.Repository)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if target == ErrNotFound {
		return true
	}
	return e.baseError.Is(target)
}

// ConflictError represents a resource that already exists or a state that
// cannot be reconciled without manual intervention.
//
// Example:
//
//	err := errors.NewConflictError("branch", "feature-x").WithRepository("prj-1")
//	fmt.Println(err) // "branch 'feature-x' already exists [repo=prj-1]"
type ConflictError struct {
	baseError
	ResourceType string
	ResourceID   string
	Repository   string
	Detail       string
	// reason is the sentinel a specialised conflict also matches.
	reason error
}

// NewConflictError creates a new ConflictError for an existing resource.
func NewConflictError(resourceType, resourceID string) *ConflictError {
	return &ConflictError{
		baseError: baseError{
			message:  fmt.Sprintf("%s '%s' already exists", resourceType, resourceID),
			severity: SeverityWarning,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// NewDivergedError creates a ConflictError for two histories that cannot be
// fast-forwarded onto one another.
func NewDivergedError(ours, theirs string) *ConflictError {
	return &ConflictError{
		baseError: baseError{
			message:  fmt.Sprintf("'%s' cannot be fast-forwarded to '%s'", ours, theirs),
			severity: SeverityError,
		},
		ResourceType: "branch",
		ResourceID:   ours,
		reason:       ErrDiverged,
	}
}

// NewStashConflictError creates a ConflictError for autostashed changes
// that no longer apply after switching to branch. The stash entry is kept.
func NewStashConflictError(branch string) *ConflictError {
	return &ConflictError{
		baseError: baseError{
			message:  fmt.Sprintf("local changes could not be restored after switching to '%s'", branch),
			severity: SeverityError,
		},
		ResourceType: "stash",
		ResourceID:   "stash@{0}",
		reason:       ErrStashConflict,
	}
}


// WithCause adds a cause to the error.
func (e *ConflictError) WithCause(cause error) *ConflictError {
	e.cause = cause
	return e
}

// WithRepository names the repository where the conflict was found.
func (e *ConflictError) WithRepository(repo string) *ConflictError {
	e.Repository = repo
	return e
}

// WithDetail appends a human-readable explanation.
func (e *ConflictError) WithDetail(detail string) *ConflictError {
	e.Detail = detail
	return e
}

// Error returns the formatted error message.
func (e *ConflictError) Error() string {
	msg := repoContext(e.message, e.Repository)
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Is checks if this error matches the target.
func (e *ConflictError) Is(target error) bool {
	if _, ok := target.(*ConflictError); ok {
		return true
	}
	if target == ErrConflict || (e.reason != nil && target == e.reason) {
		return true
	}
	return e.baseError.Is(target)
}

// DirtyStateError represents uncommitted changes blocking an operation.
//
// Example:
//
//	err := errors.NewDirtyStateError("/work/prj-1")
//	fmt.Println(err) // "repository '/work/prj-1' has uncommitted changes"
type DirtyStateError struct {
	baseError
	Repository string
	Operation  string
}

// NewDirtyStateError creates a new DirtyStateError.
func NewDirtyStateError(repo string) *DirtyStateError {
	return &DirtyStateError{
		baseError: baseError{
			message:  fmt.Sprintf("repository '%s' has uncommitted changes", repo),
			severity: SeverityWarning,
		},
		Repository: repo,
	}
}

// WithOperation names the operation that required a clean state.
func (e *DirtyStateError) WithOperation(op string) *DirtyStateError {
	e.Operation = op
	return e
}

// Error returns the formatted error message.
func (e *DirtyStateError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("%s: %s", e.Operation, e.message)
	}
	return e.message
}

// Is checks if this error matches the target.
func (e *DirtyStateError) Is(target error) bool {
	if _, ok := target.(*DirtyStateError); ok {
		return true
	}
	if target == ErrDirtyState {
		return true
	}
	return e.baseError.Is(target)
}

// PreconditionError represents an operation that is invalid in the current
// workspace state.
//
// Example:
//
//	err := errors.NewPreconditionError("finish", "workspace is on the trunk branch").
//		WithCause(errors.ErrFinishTrunk)
type PreconditionError struct {
	baseError
	Operation  string
	Repository string
}

// NewPreconditionError creates a new PreconditionError.
func NewPreconditionError(operation, message string) *PreconditionError {
	return &PreconditionError{
		baseError: baseError{
			message:  message,
			severity: SeverityWarning,
		},
		Operation: operation,
	}
}

// WithCause adds a cause to the error.
func (e *PreconditionError) WithCause(cause error) *PreconditionError {
	e.cause = cause
	return e
}

// WithRepository names the repository whose state was checked.
func (e *PreconditionError) WithRepository(repo string) *PreconditionError {
	e.Repository = repo
	return e
}

// Error returns the formatted error message.
func (e *PreconditionError) Error() string {
	msg := e.message
	if e.Operation != "" {
		msg = fmt.Sprintf("%s: %s", e.Operation, msg)
	}
	return repoContext(msg, e.Repository)
}

// Is checks if this error matches the target.
func (e *PreconditionError) Is(target error) bool {
	if _, ok := target.(*PreconditionError); ok {
		return true
	}
	if target == ErrPrecondition {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or a malformed document.
//
// Example:
//
//	err := errors.NewValidationError("url is required").WithField("repos[0].url")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:  message,
			severity: SeverityWarning,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// Kind classifies an error into the workflow taxonomy.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindDirtyState
	KindPrecondition
	KindValidation
	KindGit
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindConflict:
		return "conflict"
	case KindDirtyState:
		return "dirty-state"
	case KindPrecondition:
		return "precondition"
	case KindValidation:
		return "validation"
	case KindGit:
		return "git"
	default:
		return "unknown"
	}
}

// KindOf returns the taxonomy kind of err. Taxonomy kinds take priority over
// the git and validation errors they may wrap.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var notFound *NotFoundError
	var conflict *ConflictError
	var dirty *DirtyStateError
	var precondition *PreconditionError
	var validation *ValidationError
	var gitErr *GitError

	switch {
	case As(err, &notFound):
		return KindNotFound
	case As(err, &conflict):
		return KindConflict
	case As(err, &dirty):
		return KindDirtyState
	case As(err, &precondition):
		return KindPrecondition
	case As(err, &validation):
		return KindValidation
	case As(err, &gitErr):
		return KindGit
	default:
		return KindUnknown
	}
}

// ExitCode maps err to the process exit code used by the CLI.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindNotFound:
		return 2
	case KindConflict:
		return 3
	case KindDirtyState:
		return 4
	case KindPrecondition:
		return 5
	case KindValidation:
		return 6
	default:
		return 1
	}
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement WokError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var wokErr WokError
	if As(err, &wokErr) {
		return wokErr.Severity()
	}
	return SeverityError
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
