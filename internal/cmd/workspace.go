package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wokspace/wok/internal/config"
	"github.com/wokspace/wok/internal/credential"
	"github.com/wokspace/wok/internal/logging"
	"github.com/wokspace/wok/internal/workspace"
)

// openWorkspace loads the tool settings and opens the workspace that
// contains the working directory. The returned close func flushes the
// log file.
func openWorkspace(cmd *cobra.Command) (*workspace.Workspace, func(), error) {
	settings, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewLogger(logging.Options{
		File:  settings.Logging.ResolveLogFile(),
		Level: settings.Logging.Level,
		Rotation: logging.RotationConfig{
			MaxSizeMB:  settings.Logging.MaxSizeMB,
			MaxBackups: settings.Logging.MaxBackups,
		},
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, err
	}
	closeLogger := func() { _ = logger.Close() }

	cwd, err := os.Getwd()
	if err != nil {
		closeLogger()
		return nil, nil, err
	}

	ws, err := workspace.Open(cmd.Context(), workspace.Options{
		Dir:      cwd,
		Settings: settings,
		Logger:   logger,
		Prompter: credential.NewTerminalPrompter(),
	})
	if err != nil {
		closeLogger()
		return nil, nil, err
	}
	return ws, closeLogger, nil
}

// repoPaths turns command-line paths, relative to the working directory,
// into manifest paths.
func repoPaths(ws *workspace.Workspace, args []string) ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		p, err := ws.RelPath(cwd, arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
