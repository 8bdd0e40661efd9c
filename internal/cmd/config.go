package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wokspace/wok/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View wok configuration",
	Long: `View wok configuration.

Without arguments, displays the effective configuration.
Use 'config init' to create a config file with the defaults.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file location",
	RunE:  runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/wok/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "manifest: %s\n", cfg.Manifest)
	fmt.Fprintf(out, "trunk: %s\n", cfg.Trunk)
	fmt.Fprintf(out, "remote: %s\n", cfg.Remote)

	fmt.Fprintln(out, "git:")
	fmt.Fprintf(out, "  binary: %s\n", cfg.Git.Binary)

	fmt.Fprintln(out, "credentials:")
	fmt.Fprintf(out, "  interactive: %v\n", cfg.Credentials.Interactive)

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  file: %s\n", cfg.Logging.File)
	fmt.Fprintf(out, "  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Fprintf(out, "  max_backups: %d\n", cfg.Logging.MaxBackups)

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}
	fmt.Fprintln(out, "\nEnvironment variables: WOK_* (e.g., WOK_LOGGING_LEVEL)")
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}
	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaults := config.Default()
	content := fmt.Sprintf(`# wok configuration

# Manifest file name at the top of the root repository (.yml, .yaml or .toml)
manifest: %s

# Branch that finish squashes into
trunk: %s

# Remote used by push and sync
remote: %s

git:
  # git executable name or path
  binary: %s

credentials:
  # Prompt on the terminal for usernames and passwords
  interactive: %v

logging:
  # debug, info, warn or error
  level: %s
  # JSON log file; empty logs text to stderr. ~ is expanded.
  file: ""
  max_size_mb: %d
  max_backups: %d
`, defaults.Manifest, defaults.Trunk, defaults.Remote, defaults.Git.Binary,
		defaults.Credentials.Interactive, defaults.Logging.Level,
		defaults.Logging.MaxSizeMB, defaults.Logging.MaxBackups)

	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}
