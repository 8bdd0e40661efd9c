package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the user-level settings for wok. It is distinct from the
// per-workspace manifest, which lives in the root repository.
type Config struct {
	// Manifest is the file name of the workspace manifest at the root of the
	// root repository's working tree. The extension selects the encoding:
	// .yml/.yaml for YAML, .toml for TOML.
	Manifest string `mapstructure:"manifest"`
	// Trunk is the branch features are finished into (default: "master").
	Trunk string `mapstructure:"trunk"`
	// Remote is the remote used by push and sync (default: "origin").
	Remote      string            `mapstructure:"remote"`
	Git         GitConfig         `mapstructure:"git"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// GitConfig controls how the git engine is invoked.
type GitConfig struct {
	// Binary is the git executable name or path (default: "git").
	Binary string `mapstructure:"binary"`
}

// CredentialsConfig controls credential negotiation with remotes.
type CredentialsConfig struct {
	// Interactive allows prompting on the terminal for usernames and
	// passwords (default: true). When false, only the SSH agent and
	// credentials embedded in URLs are used.
	Interactive bool `mapstructure:"interactive"`
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "warn")
	Level string `mapstructure:"level"`
	// File is a JSON log file. Empty writes text logs to stderr.
	// Supports ~ for home directory expansion.
	File string `mapstructure:"file"`
	// MaxSizeMB is the log file size that triggers rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Manifest: "wok.yml",
		Trunk:    "master",
		Remote:   "origin",
		Git: GitConfig{
			Binary: "git",
		},
		Credentials: CredentialsConfig{
			Interactive: true,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with the global viper instance.
func SetDefaults() {
	SetDefaultsOn(viper.GetViper())
}

// SetDefaultsOn registers default values with v.
func SetDefaultsOn(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("manifest", defaults.Manifest)
	v.SetDefault("trunk", defaults.Trunk)
	v.SetDefault("remote", defaults.Remote)

	v.SetDefault("git.binary", defaults.Git.Binary)

	v.SetDefault("credentials.interactive", defaults.Credentials.Interactive)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from the global viper instance and validates it.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v and validates it.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ResolveLogFile returns the log file path with ~ expanded, or "" when
// file logging is disabled.
func (l *LoggingConfig) ResolveLogFile() string {
	path := l.File
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return path
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wok")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wok"
	}
	return filepath.Join(home, ".config", "wok")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
