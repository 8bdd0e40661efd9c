package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wokspace/wok/internal/workflow"
)

var finishCmd = &cobra.Command{
	Use:   "finish <message>",
	Short: "Squash the workspace branch into the trunk everywhere",
	Long: `Squash-merge the workspace branch into the trunk in every joined
satellite and then in the root repository, using <message> for each
squash commit. The feature branch is deleted afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runFinish,
}

var tagCmd = &cobra.Command{
	Use:   "tag <name>",
	Short: "Tag the root repository and every satellite",
	Long: `Create the lightweight tag <name> at HEAD of the root repository and of
every registered satellite. Nothing is tagged unless every repository is
clean and none has the tag yet.`,
	Args: cobra.ExactArgs(1),
	RunE: runTag,
}

func init() {
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(tagCmd)
}

func runFinish(cmd *cobra.Command, args []string) error {
	ws, done, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer done()

	if err := workflow.Finish(cmd.Context(), ws, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Finished into %s\n", ws.Trunk())
	return nil
}

func runTag(cmd *cobra.Command, args []string) error {
	ws, done, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer done()

	if err := workflow.Tag(cmd.Context(), ws, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s\n", args[0])
	return nil
}
