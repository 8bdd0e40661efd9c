package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wokspace/wok/internal/workflow"
)

var addCmd = &cobra.Command{
	Use:   "add <url> <path>",
	Short: "Clone a repository into the workspace and register it",
	Long: `Clone <url> to <path> and register it in the manifest with the branch
the clone checked out. <path> is relative to the current directory and
must be inside the root repository's working tree.`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ws, done, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer done()

	paths, err := repoPaths(ws, args[1:])
	if err != nil {
		return err
	}

	rec, err := workflow.Add(cmd.Context(), ws, paths[0], args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) on branch %s\n", rec.Path, rec.URL, rec.Ref)
	return nil
}
