package manifest

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/wokspace/wok/internal/errors"
)

// SchemaVersion is the manifest schema version written by this release.
const SchemaVersion = "1.0"

// DefaultRepoRef is the branch assumed for a repo record that omits one.
const DefaultRepoRef = "master"

// Repo is a satellite repository registered in the workspace.
type Repo struct {
	// URL is the remote the repository was cloned from.
	URL string `yaml:"url" toml:"url"`
	// Path is the checkout location relative to the workspace root,
	// slash-separated.
	Path string `yaml:"path" toml:"path"`
	// Ref is the branch the workspace believes is checked out. It may lag
	// the branch actually checked out on disk after a partial failure.
	Ref string `yaml:"ref" toml:"ref"`
}

// Config is the in-memory workspace manifest.
type Config struct {
	Version string `yaml:"version" toml:"version"`
	// Ref is the workspace-wide logical branch.
	Ref   string `yaml:"ref" toml:"ref"`
	Repos []Repo `yaml:"repos" toml:"repos"`
}

// New returns an empty manifest on the given workspace branch.
func New(ref string) *Config {
	return &Config{
		Version: SchemaVersion,
		Ref:     ref,
		Repos:   []Repo{},
	}
}

// NormalizePath converts a path relative to the workspace root into the
// form stored in the manifest.
func NormalizePath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// RepoByPath returns the record registered at p.
func (c *Config) RepoByPath(p string) (*Repo, bool) {
	p = NormalizePath(p)
	for i := range c.Repos {
		if NormalizePath(c.Repos[i].Path) == p {
			return &c.Repos[i], true
		}
	}
	return nil, false
}

// RepoByURL returns the record cloned from url.
func (c *Config) RepoByURL(url string) (*Repo, bool) {
	for i := range c.Repos {
		if c.Repos[i].URL == url {
			return &c.Repos[i], true
		}
	}
	return nil, false
}

// CheckUnique fails with a conflict naming the existing record when url or
// path is already registered.
func (c *Config) CheckUnique(url, p string) error {
	if existing, ok := c.RepoByURL(url); ok {
		return errors.NewConflictError("repo url", url).
			WithDetail(fmt.Sprintf("registered at '%s'", existing.Path)).
			WithCause(errors.ErrDuplicateRepo)
	}
	if existing, ok := c.RepoByPath(p); ok {
		return errors.NewConflictError("repo path", NormalizePath(p)).
			WithDetail(fmt.Sprintf("registered for '%s'", existing.URL)).
			WithCause(errors.ErrDuplicateRepo)
	}
	return nil
}

// Add appends a record. A record sharing either the URL or the path of an
// existing one is rejected as by CheckUnique.
func (c *Config) Add(repo Repo) error {
	repo.Path = NormalizePath(repo.Path)

	if err := c.CheckUnique(repo.URL, repo.Path); err != nil {
		return err
	}

	if repo.Ref == "" {
		repo.Ref = DefaultRepoRef
	}
	c.Repos = append(c.Repos, repo)
	return nil
}

// IsJoined reports whether r is on the workspace branch.
func (c *Config) IsJoined(r *Repo) bool {
	return r.Ref == c.Ref
}

// Joined returns the records currently on the workspace branch, in
// manifest order. The returned pointers alias the manifest's records.
func (c *Config) Joined() []*Repo {
	var joined []*Repo
	for i := range c.Repos {
		if c.IsJoined(&c.Repos[i]) {
			joined = append(joined, &c.Repos[i])
		}
	}
	return joined
}

// Validate checks required fields and uniqueness, and fills the default
// ref of records that omit one.
func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.NewValidationError("version is required").WithField("version")
	}
	if c.Version != SchemaVersion {
		return errors.NewValidationError("unsupported schema version").
			WithField("version").
			WithValue(c.Version)
	}
	if c.Ref == "" {
		return errors.NewValidationError("ref is required").WithField("ref")
	}

	seenURL := make(map[string]int, len(c.Repos))
	seenPath := make(map[string]int, len(c.Repos))
	for i := range c.Repos {
		r := &c.Repos[i]
		field := fmt.Sprintf("repos[%d]", i)

		if strings.TrimSpace(r.URL) == "" {
			return errors.NewValidationError("url is required").WithField(field + ".url")
		}
		if strings.TrimSpace(r.Path) == "" {
			return errors.NewValidationError("path is required").WithField(field + ".path")
		}
		if r.Ref == "" {
			r.Ref = DefaultRepoRef
		}

		p := NormalizePath(r.Path)
		if path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") {
			return errors.NewValidationError("path must be inside the workspace").
				WithField(field + ".path").
				WithValue(r.Path)
		}
		if j, dup := seenURL[r.URL]; dup {
			return errors.NewValidationError(fmt.Sprintf("url duplicates repos[%d]", j)).
				WithField(field + ".url").
				WithValue(r.URL).
				WithCause(errors.ErrDuplicateRepo)
		}
		if j, dup := seenPath[p]; dup {
			return errors.NewValidationError(fmt.Sprintf("path duplicates repos[%d]", j)).
				WithField(field + ".path").
				WithValue(r.Path).
				WithCause(errors.ErrDuplicateRepo)
		}
		seenURL[r.URL] = i
		seenPath[p] = i
	}

	if c.Repos == nil {
		c.Repos = []Repo{}
	}
	return nil
}
