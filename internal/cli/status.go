package cli

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/ItsDalk-Lane/gitbatch/internal/porcelain"
)

// statusEntry is the structured form of one change.
type statusEntry struct {
	Path     string `json:"path" yaml:"path" toml:"path"`
	OrigPath string `json:"orig_path,omitempty" yaml:"orig_path,omitempty" toml:"orig_path,omitempty"`
	Code     string `json:"code" yaml:"code" toml:"code"`
	State    string `json:"state" yaml:"state" toml:"state"`
	Staged   bool   `json:"staged" yaml:"staged" toml:"staged"`
}

// statusReport is what `gitbatch status` encodes in structured formats.
type statusReport struct {
	Root    string        `json:"root" yaml:"root" toml:"root"`
	Changes []statusEntry `json:"changes" yaml:"changes" toml:"changes"`
}

// AddStatusCommand adds the status command to the root command.
func AddStatusCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newStatusCmd(flags))
}

func newStatusCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the changes gitbatch would commit",
		Long: `Show every staged, unstaged and untracked change in the repository after
exclude patterns are applied. Untracked directories are expanded into the
files they contain.

Examples:
  gitbatch status
  gitbatch status -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), cmd, flags)
		},
	}
}

func runStatus(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags) error {
	a, err := newApp(ctx, cmd, flags)
	if err != nil {
		return err
	}

	entries, err := a.changes(ctx)
	if err != nil {
		return err
	}

	if a.out.Format().Structured() {
		return a.out.Encode(buildStatusReport(a.repo.Root(), entries))
	}

	if len(entries) == 0 {
		a.out.Info("Nothing to commit, working tree clean")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		path := displayPath(e.Path)
		if e.OrigPath != "" {
			path = displayPath(e.OrigPath) + " -> " + path
		}
		side := "unstaged"
		if e.Staged {
			side = "staged"
		}
		rows = append(rows, []string{path, e.Label(), side})
	}
	a.out.Table([]string{"PATH", "STATE", "SIDE"}, rows)
	a.out.Info(fmt.Sprintf("%d files changed", len(porcelain.Paths(entries))))
	return nil
}

// displayPath quotes paths with control characters so they cannot break the
// table or the terminal.
func displayPath(path string) string {
	if strings.ContainsFunc(path, unicode.IsControl) {
		return porcelain.Quote(path)
	}
	return path
}

func buildStatusReport(root string, entries []porcelain.ChangeEntry) statusReport {
	report := statusReport{Root: root, Changes: make([]statusEntry, 0, len(entries))}
	for _, e := range entries {
		report.Changes = append(report.Changes, statusEntry{
			Path:     e.Path,
			OrigPath: e.OrigPath,
			Code:     e.Code(),
			State:    e.Label(),
			Staged:   e.Staged,
		})
	}
	return report
}
