// Package workspace binds the root repository, the manifest and the tool
// settings for the duration of one operation.
package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/wokspace/wok/internal/config"
	"github.com/wokspace/wok/internal/credential"
	"github.com/wokspace/wok/internal/errors"
	"github.com/wokspace/wok/internal/git"
	"github.com/wokspace/wok/internal/logging"
	"github.com/wokspace/wok/internal/manifest"
)

// Workspace is the context every workflow operation runs in. It owns the
// in-memory manifest; the manifest file is the only durable state.
type Workspace struct {
	// Root is the root repository.
	Root *git.Repository
	// Settings are the user-level tool settings.
	Settings *config.Config
	// Logger is the operation logger.
	Logger *logging.Logger

	store    *manifest.Store
	manifest *manifest.Config
	gitOpts  []git.Option
}

// Options configures Open.
type Options struct {
	// Dir is where root discovery starts. Empty means the process working
	// directory.
	Dir string
	// Settings default to config.Default().
	Settings *config.Config
	// Logger defaults to a no-op logger.
	Logger *logging.Logger
	// Fs holds the manifest. Defaults to the OS filesystem.
	Fs afero.Fs
	// Prompter answers credential prompts. Nil disables prompting.
	Prompter credential.Prompter
	// Executor overrides how git is run.
	Executor git.CommandExecutor
}

// Open discovers the root repository from opts.Dir and loads the manifest
// next to its working tree root if one exists. It fails when no root
// repository can be found.
func Open(ctx context.Context, opts Options) (*Workspace, error) {
	settings := opts.Settings
	if settings == nil {
		settings = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	gitOpts := []git.Option{
		git.WithBinary(settings.Git.Binary),
		git.WithRemote(settings.Remote),
		git.WithTrunk(settings.Trunk),
		git.WithLogger(logger),
	}
	if opts.Executor != nil {
		gitOpts = append(gitOpts, git.WithExecutor(opts.Executor))
	}
	selector := &credential.Selector{}
	if settings.Credentials.Interactive && opts.Prompter != nil {
		selector.Prompter = opts.Prompter
	}
	gitOpts = append(gitOpts, git.WithCredentials(selector))

	root, err := git.Discover(ctx, abs, gitOpts...)
	if err != nil {
		if errors.Is(err, errors.ErrNotGitRepository) {
			return nil, errors.NewNotFoundError("root repository", abs).WithCause(errors.ErrNoRootRepository)
		}
		return nil, err
	}

	store, err := manifest.NewStore(fs, filepath.Join(root.Dir(), settings.Manifest))
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		Root:     root,
		Settings: settings,
		Logger:   logger,
		store:    store,
		gitOpts:  gitOpts,
	}

	exists, err := store.Exists()
	if err != nil {
		return nil, fmt.Errorf("failed to stat manifest: %w", err)
	}
	if exists {
		if ws.manifest, err = store.Load(); err != nil {
			return nil, err
		}
	}

	logger.Debug("opened workspace", "root", root.Dir(), "manifest", store.Path(), "initialized", exists)
	return ws, nil
}

// Config returns the loaded manifest. It fails when the workspace has not
// been initialized.
func (w *Workspace) Config() (*manifest.Config, error) {
	if w.manifest == nil {
		return nil, errors.NewNotFoundError("manifest", w.store.Path()).WithCause(errors.ErrManifestNotFound)
	}
	return w.manifest, nil
}

// HasConfig reports whether a manifest is loaded.
func (w *Workspace) HasConfig() bool {
	return w.manifest != nil
}

// ManifestPath returns the manifest file path.
func (w *Workspace) ManifestPath() string {
	return w.store.Path()
}

// CreateConfig writes a fresh manifest on branch ref and adopts it.
func (w *Workspace) CreateConfig(ref string) (*manifest.Config, error) {
	cfg, err := w.store.Create(ref)
	if err != nil {
		return nil, err
	}
	w.manifest = cfg
	return cfg, nil
}

// Save persists the in-memory manifest.
func (w *Workspace) Save() error {
	cfg, err := w.Config()
	if err != nil {
		return err
	}
	if err := w.store.Save(cfg); err != nil {
		return err
	}
	w.Logger.Debug("saved manifest", "path", w.store.Path(), "ref", cfg.Ref)
	return nil
}

// Trunk returns the configured trunk branch.
func (w *Workspace) Trunk() string {
	return w.Settings.Trunk
}

// RelPath converts a user-supplied path, absolute or relative to cwd, into
// a manifest path relative to the workspace root.
func (w *Workspace) RelPath(cwd, p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(cwd, p)
	}
	rel, err := filepath.Rel(w.resolvedRoot(), resolve(p))
	if err != nil {
		return "", errors.NewValidationError("path is not inside the workspace").WithField("path").WithValue(p)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.NewValidationError("path is not inside the workspace").WithField("path").WithValue(p)
	}
	return manifest.NormalizePath(rel), nil
}

// AbsPath returns the absolute location of a manifest path.
func (w *Workspace) AbsPath(rel string) string {
	return filepath.Join(w.Root.Dir(), filepath.FromSlash(rel))
}

// Satellite opens the repository of a repo record.
func (w *Workspace) Satellite(ctx context.Context, rec *manifest.Repo) (*git.Repository, error) {
	repo, err := git.Open(ctx, w.AbsPath(rec.Path), w.gitOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "satellite %s", rec.Path)
	}
	return repo, nil
}

// Clone clones url to the manifest path rel.
func (w *Workspace) Clone(ctx context.Context, url, rel string) (*git.Repository, error) {
	return git.Clone(ctx, url, w.AbsPath(rel), w.gitOpts...)
}

func (w *Workspace) resolvedRoot() string {
	return resolve(w.Root.Dir())
}

// resolve evaluates symlinks in the longest existing prefix of p so that
// paths that do not exist yet compare equal to the root.
func resolve(p string) string {
	p = filepath.Clean(p)
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	parent := filepath.Dir(p)
	if parent == p {
		return p
	}
	return filepath.Join(resolve(parent), filepath.Base(p))
}
