package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "logging.level")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// remoteNameRegex matches the remote names git accepts without quoting.
var remoteNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidManifestExtensions returns the manifest file extensions wok can encode.
func ValidManifestExtensions() []string {
	return []string{".yml", ".yaml", ".toml"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateManifest()...)
	errors = append(errors, c.validateBranches()...)
	errors = append(errors, c.validateGit()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateManifest() []ValidationError {
	var errors []ValidationError

	if c.Manifest == "" {
		return append(errors, ValidationError{
			Field:   "manifest",
			Value:   c.Manifest,
			Message: "must not be empty",
		})
	}

	// The manifest always sits at the root of the working tree.
	if filepath.Base(c.Manifest) != c.Manifest {
		errors = append(errors, ValidationError{
			Field:   "manifest",
			Value:   c.Manifest,
			Message: "must be a file name, not a path",
		})
	}

	ext := strings.ToLower(filepath.Ext(c.Manifest))
	if !slices.Contains(ValidManifestExtensions(), ext) {
		errors = append(errors, ValidationError{
			Field:   "manifest",
			Value:   c.Manifest,
			Message: fmt.Sprintf("extension must be one of: %s", strings.Join(ValidManifestExtensions(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateBranches() []ValidationError {
	var errors []ValidationError

	if msg := CheckBranchName(c.Trunk); msg != "" {
		errors = append(errors, ValidationError{
			Field:   "trunk",
			Value:   c.Trunk,
			Message: msg,
		})
	}

	if !remoteNameRegex.MatchString(c.Remote) {
		errors = append(errors, ValidationError{
			Field:   "remote",
			Value:   c.Remote,
			Message: "must start with an alphanumeric character and contain only alphanumerics, '.', '_' or '-'",
		})
	}

	return errors
}

func (c *Config) validateGit() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Git.Binary) == "" {
		errors = append(errors, ValidationError{
			Field:   "git.binary",
			Value:   c.Git.Binary,
			Message: "must not be empty",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// CheckBranchName applies the subset of git's ref-format rules that matter
// for branch names given on the command line. It returns an empty string
// for a valid name and a description of the problem otherwise.
func CheckBranchName(name string) string {
	switch {
	case name == "":
		return "must not be empty"
	case name == "@":
		return "must not be '@'"
	case strings.HasPrefix(name, "-"):
		return "must not start with '-'"
	case strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/"):
		return "must not start or end with '/'"
	case strings.HasSuffix(name, ".") || strings.HasSuffix(name, ".lock"):
		return "must not end with '.' or '.lock'"
	case strings.Contains(name, "..") || strings.Contains(name, "//") || strings.Contains(name, "@{"):
		return "must not contain '..', '//' or '@{'"
	case strings.ContainsAny(name, " ~^:?*[\\\t\n"):
		return "must not contain whitespace or any of ~^:?*[\\"
	}
	for _, component := range strings.Split(name, "/") {
		if strings.HasPrefix(component, ".") {
			return "path components must not start with '.'"
		}
	}
	return ""
}
