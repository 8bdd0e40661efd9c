package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wokspace/wok/internal/workflow"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the workspace manifest in the root repository",
	Long: `Create the workspace manifest at the top of the current git repository
and commit it. The workspace branch is the repository's current branch.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit the workspace manifest",
	Args:  cobra.NoArgs,
	RunE:  runCommit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(commitCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ws, done, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer done()

	if err := workflow.Init(cmd.Context(), ws); err != nil {
		return err
	}

	cfg, err := ws.Config()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized wok workspace in %s on branch %s\n", ws.Root.Dir(), cfg.Ref)
	return nil
}

func runCommit(cmd *cobra.Command, args []string) error {
	ws, done, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer done()

	if err := workflow.Commit(cmd.Context(), ws); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Committed %s\n", filepath.Base(ws.ManifestPath()))
	return nil
}
