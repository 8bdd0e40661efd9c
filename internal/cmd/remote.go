package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wokspace/wok/internal/workflow"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the workspace branch from joined satellites and the root",
	Args:  cobra.NoArgs,
	RunE:  runPush,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fast-forward every repository to its upstream",
	Long: `Fetch and fast-forward the root repository on the workspace branch and
every satellite on its recorded branch. All repositories must be clean.
Diverged branches are reported and left alone.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(syncCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	ws, done, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer done()

	if err := workflow.Push(cmd.Context(), ws); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Pushed")
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	ws, done, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer done()

	if err := workflow.Sync(cmd.Context(), ws); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Synced")
	return nil
}
