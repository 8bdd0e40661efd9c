package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wokspace/wok/internal/workflow"
)

var startCmd = &cobra.Command{
	Use:   "start <branch>",
	Short: "Start a feature branch in the root repository",
	Long: `Create <branch> at the root repository's HEAD, switch to it and make it
the workspace branch. Satellites keep their branch until they are joined.`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

var joinCmd = &cobra.Command{
	Use:   "join <path>...",
	Short: "Put satellites on the workspace branch",
	Long: `Switch each satellite at <path> to the workspace branch, creating the
branch at the satellite's HEAD when it does not exist. Uncommitted changes
are carried across the switch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runJoin,
}

var forkCmd = &cobra.Command{
	Use:   "fork <branch>",
	Short: "Start a feature branch in every repository",
	Long: `Create <branch> in the root repository and in every registered satellite
and switch all of them to it. Fails before changing anything if <branch>
already exists in any of them.`,
	Args: cobra.ExactArgs(1),
	RunE: runFork,
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(forkCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	ws, done, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer done()

	if err := workflow.Start(cmd.Context(), ws, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Started %s\n", args[0])
	return nil
}

func runJoin(cmd *cobra.Command, args []string) error {
	ws, done, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer done()

	paths, err := repoPaths(ws, args)
	if err != nil {
		return err
	}
	if err := workflow.Join(cmd.Context(), ws, paths); err != nil {
		return err
	}

	cfg, err := ws.Config()
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "Joined %s to %s\n", p, cfg.Ref)
	}
	return nil
}

func runFork(cmd *cobra.Command, args []string) error {
	ws, done, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer done()

	if err := workflow.Fork(cmd.Context(), ws, args[0]); err != nil {
		return err
	}

	cfg, err := ws.Config()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Forked %s across %d repositories\n", args[0], len(cfg.Repos)+1)
	return nil
}
