package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wokspace/wok/internal/util"
	"github.com/wokspace/wok/internal/workflow"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the branch and state of every repository",
	Long: `Display the workspace branch and, for the root repository and each
satellite, the branch recorded in the manifest, the branch checked out on
disk and whether the working tree is clean. Repositories whose checked-out
branch differs from the recorded one are marked as drifted.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// Column widths for the status table.
const (
	pathWidth   = 28
	branchWidth = 24
	errorWidth  = 72
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	joinedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	driftStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	dirtyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pathStyle    = lipgloss.NewStyle().Width(pathWidth)
	branchStyle  = lipgloss.NewStyle().Width(branchWidth)
	recordedCell = lipgloss.NewStyle().Width(branchWidth)
)

func runStatus(cmd *cobra.Command, args []string) error {
	ws, done, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer done()

	report, err := workflow.Status(cmd.Context(), ws)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), renderStatus(report))
	return nil
}

func renderStatus(report *workflow.Report) string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("Workspace branch: ") + joinedStyle.Render(report.Ref))
	sb.WriteString("\n\n")

	sb.WriteString(headerStyle.Render(
		pathStyle.Render("REPOSITORY") + branchStyle.Render("BRANCH") + recordedCell.Render("RECORDED") + "STATE"))
	sb.WriteString("\n")

	sb.WriteString(renderRow(report.Root))
	for _, repo := range report.Repos {
		sb.WriteString(renderRow(repo))
	}

	if report.Drifted() {
		sb.WriteString("\n")
		sb.WriteString(driftStyle.Render("Some repositories are not on their recorded branch."))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderRow(s workflow.RepoStatus) string {
	path := pathStyle.Render(util.TruncateANSI(s.Path, pathWidth-1))

	if s.Err != nil {
		return path + dirtyStyle.Render("error: "+util.TruncateString(firstLine(s.Err.Error()), errorWidth)) + "\n"
	}

	actual := util.TruncateANSI(s.Actual, branchWidth-1)
	if s.Joined {
		actual = joinedStyle.Render(actual)
	}
	recorded := mutedStyle.Render(util.TruncateANSI(s.Recorded, branchWidth-1))

	var states []string
	if s.Clean {
		states = append(states, "clean")
	} else {
		states = append(states, dirtyStyle.Render("dirty"))
	}
	if s.Drifted() {
		states = append(states, driftStyle.Render("drifted"))
	}

	return path + branchStyle.Render(actual) + recordedCell.Render(recorded) + strings.Join(states, ", ") + "\n"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
