package cli

import (
	"context"
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/ItsDalk-Lane/gitbatch/internal/config"
	"github.com/ItsDalk-Lane/gitbatch/internal/errors"
	"github.com/ItsDalk-Lane/gitbatch/internal/git"
	"github.com/ItsDalk-Lane/gitbatch/internal/tui"
)

// configPaths lists the files configuration is read from.
type configPaths struct {
	Global  string `json:"global" yaml:"global" toml:"global"`
	Project string `json:"project,omitempty" yaml:"project,omitempty" toml:"project,omitempty"`
	Log     string `json:"log" yaml:"log" toml:"log"`
}

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect gitbatch configuration",
	}
	cmd.AddCommand(newConfigShowCmd(flags), newConfigPathCmd(flags))
	root.AddCommand(cmd)
}

func newConfigShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration after merging defaults, ~/.gitbatch/config.yaml,
the repository's .gitbatch.yaml and GITBATCH_* environment variables.

Outside a repository only the global sources are used.

Examples:
  gitbatch config show
  gitbatch config show -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd, flags)
		},
	}
}

func newConfigPathCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show where configuration and logs are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigPath(cmd, flags)
		},
	}
}

func runConfigShow(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags) error {
	format, err := tui.ParseFormat(flags.Output)
	if err != nil {
		return err
	}

	root, err := optionalRepoRoot(flags.Repo)
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx, root)
	if err != nil {
		return err
	}
	return tui.NewOutput(cmd.OutOrStdout(), format).Encode(cfg)
}

func runConfigPath(cmd *cobra.Command, flags *GlobalFlags) error {
	format, err := tui.ParseFormat(flags.Output)
	if err != nil {
		return err
	}

	var paths configPaths
	if paths.Global, err = config.GlobalConfigPath(); err != nil {
		return err
	}
	if paths.Log, err = LogFilePath(); err != nil {
		return err
	}
	root, err := optionalRepoRoot(flags.Repo)
	if err != nil {
		return err
	}
	if root != "" {
		paths.Project = config.ProjectConfigPath(root)
	}

	out := tui.NewOutput(cmd.OutOrStdout(), format)
	if format.Structured() {
		return out.Encode(paths)
	}
	rows := [][]string{{"global", paths.Global}, {"log", paths.Log}}
	if paths.Project != "" {
		rows = append(rows, []string{"project", paths.Project})
	}
	out.Table([]string{"SOURCE", "PATH"}, rows)
	return nil
}

// optionalRepoRoot returns the repository root containing path, or "" when
// path is not inside a repository.
func optionalRepoRoot(path string) (string, error) {
	repo, err := git.OpenRepo(path)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotGitRepo) {
			return "", nil
		}
		return "", err
	}
	return repo.Root(), nil
}
