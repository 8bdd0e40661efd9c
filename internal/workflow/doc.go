// Package workflow implements the multi-repository branch lifecycle.
//
// A workspace is a root repository plus the satellite repositories listed
// in its manifest. The manifest's ref is the workspace branch; a satellite
// whose recorded ref equals it is joined. Each operation here coordinates
// the root and the satellites through internal/git and persists the
// manifest alongside every git-level change, so that a failure part way
// through leaves a manifest describing what actually happened.
//
// Operations validate everything they can before the first write. Once
// writing starts there is no rollback: work already done in earlier
// repositories stays done, and the error names the repository that failed.
package workflow

// Commit messages recorded in the root repository.
const (
	MessageInit   = "Add `wok` config"
	MessageUpdate = "Update `wok` config"
)
