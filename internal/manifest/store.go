package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/wokspace/wok/internal/errors"
)

// Store reads and writes the manifest file.
type Store struct {
	fs     afero.Fs
	path   string
	format Format
}

// NewStore returns a Store for the manifest at path. The encoding follows
// the file extension.
func NewStore(fs afero.Fs, path string) (*Store, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	return &Store{fs: fs, path: path, format: format}, nil
}

// Path returns the manifest file path.
func (s *Store) Path() string {
	return s.path
}

// Format returns the manifest encoding.
func (s *Store) Format() Format {
	return s.format
}

// Exists reports whether the manifest file is present.
func (s *Store) Exists() (bool, error) {
	return afero.Exists(s.fs, s.path)
}

// Load reads and validates the manifest.
func (s *Store) Load() (*Config, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("manifest", s.path).WithCause(errors.ErrManifestNotFound)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	cfg, err := Decode(bytes.NewReader(data), s.format)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", s.path)
	}
	return cfg, nil
}

// Save writes cfg, replacing the file atomically.
func (s *Store) Save(cfg *Config) error {
	data, err := Encode(cfg, s.format)
	if err != nil {
		return err
	}

	tmp := filepath.Join(filepath.Dir(s.path), "."+filepath.Base(s.path)+".tmp")
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}

// Create writes a fresh manifest on branch ref. It fails with a conflict
// if the file already exists.
func (s *Store) Create(ref string) (*Config, error) {
	exists, err := s.Exists()
	if err != nil {
		return nil, fmt.Errorf("failed to stat manifest: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError("manifest", s.path).WithCause(errors.ErrManifestExists)
	}

	cfg := New(ref)
	if err := s.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
