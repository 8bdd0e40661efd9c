// Package manifest holds the workspace manifest: the schema version, the
// workspace-wide logical branch and the ordered list of satellite
// repositories with their recorded branches.
//
// The manifest lives in a single file at the root of the root repository's
// working tree. It is encoded as YAML or TOML depending on the file
// extension, parsed strictly (unknown fields are rejected) and written back
// with its key order preserved.
package manifest
