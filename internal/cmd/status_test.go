package cmd

import (
	"strings"
	"testing"

	"github.com/wokspace/wok/internal/errors"
	"github.com/wokspace/wok/internal/workflow"
)

func TestRenderStatus(t *testing.T) {
	report := &workflow.Report{
		Ref:  "feature",
		Root: workflow.RepoStatus{Path: ".", Recorded: "feature", Actual: "feature", Joined: true, Clean: true},
		Repos: []workflow.RepoStatus{
			{Path: "libs/a", Recorded: "feature", Actual: "feature", Joined: true, Clean: false},
			{Path: "libs/b", Recorded: "master", Actual: "master", Clean: true},
		},
	}

	out := renderStatus(report)

	if !strings.Contains(out, "Workspace branch: feature") {
		t.Errorf("missing workspace branch:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// header line, blank, column headers, three rows
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[4], "libs/a") || !strings.Contains(lines[4], "dirty") {
		t.Errorf("libs/a row = %q, want dirty", lines[4])
	}
	if strings.Contains(out, "drifted") {
		t.Errorf("unexpected drift:\n%s", out)
	}
}

func TestRenderStatus_Drift(t *testing.T) {
	report := &workflow.Report{
		Ref:  "feature",
		Root: workflow.RepoStatus{Path: ".", Recorded: "feature", Actual: "feature", Joined: true, Clean: true},
		Repos: []workflow.RepoStatus{
			{Path: "libs/a", Recorded: "feature", Actual: "master", Joined: true, Clean: true},
			{Path: "libs/gone", Recorded: "master", Err: errors.NewNotFoundError("repository", "libs/gone")},
		},
	}

	out := renderStatus(report)

	if !strings.Contains(out, "drifted") {
		t.Errorf("missing drift marker:\n%s", out)
	}
	if !strings.Contains(out, "not on their recorded branch") {
		t.Errorf("missing drift summary:\n%s", out)
	}
	if !strings.Contains(out, "error: ") {
		t.Errorf("missing error row:\n%s", out)
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("one\ntwo"); got != "one" {
		t.Errorf("firstLine() = %q, want one", got)
	}
	if got := firstLine("single"); got != "single" {
		t.Errorf("firstLine() = %q, want single", got)
	}
}
