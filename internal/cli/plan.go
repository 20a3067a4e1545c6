package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ItsDalk-Lane/gitbatch/internal/batch"
	"github.com/ItsDalk-Lane/gitbatch/internal/config"
	"github.com/ItsDalk-Lane/gitbatch/internal/tui"
)

// Fixed column widths of the plan table. FIRST FILE takes the rest.
const (
	planBatchWidth   = 5
	planFilesWidth   = 6
	planSizeWidth    = 10
	planMinPathWidth = 16
)

// planOptions holds flags of the plan command.
type planOptions struct {
	limit   string
	noBatch bool
}

// AddPlanCommand adds the plan command to the root command.
func AddPlanCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newPlanCmd(flags))
}

func newPlanCmd(flags *GlobalFlags) *cobra.Command {
	opts := &planOptions{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show how the current changes would be split into batches",
		Long: `Estimate the size of every change and show the batches a commit would
produce, without staging or committing anything.

Examples:
  gitbatch plan
  gitbatch plan --limit 5MiB
  gitbatch plan -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd.Context(), cmd, flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.limit, "limit", "", "per-batch size budget, e.g. 10MiB or 500KB")
	cmd.Flags().BoolVar(&opts.noBatch, "no-batch", false, "plan a single commit regardless of size")
	return cmd
}

func runPlan(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, opts *planOptions) error {
	if err := validateLimit(opts.limit); err != nil {
		return err
	}

	a, err := newApp(ctx, cmd, flags, lookupBinding(cmd, "batch.size_limit", "limit"))
	if err != nil {
		return err
	}

	candidates, err := a.candidates(ctx)
	if err != nil {
		return err
	}

	orch := a.orchestrator(a.cfg.Batch.Enabled && !opts.noBatch)
	report, err := orch.Plan(ctx, candidates, a.cfg.Batch.SizeLimit.Int64())
	if err != nil {
		return err
	}

	if a.out.Format().Structured() {
		return a.out.Encode(report)
	}

	if len(report.Files) == 0 {
		a.out.Info("Nothing to commit, working tree clean")
		return nil
	}

	a.out.Info(planSummary(report))
	writePlanTable(cmd.OutOrStdout(), report, tui.TerminalWidth())
	return nil
}

// validateLimit rejects a malformed --limit before any repository work.
func validateLimit(limit string) error {
	if limit == "" {
		return nil
	}
	_, err := config.ParseByteSize(limit)
	return err
}

func planSummary(r *batch.PlanReport) string {
	if !r.NeedsBatching {
		return fmt.Sprintf("%d files, ~%s estimated: fits in a single commit (budget %s)",
			len(r.Files), config.ByteSize(r.TotalEstimatedSize), config.ByteSize(r.Budget))
	}
	return fmt.Sprintf("%d files, ~%s estimated: %d batches (budget %s, target %s)",
		len(r.Files), config.ByteSize(r.TotalEstimatedSize), len(r.Batches),
		config.ByteSize(r.Budget), config.ByteSize(r.EffectiveTarget))
}

func writePlanTable(w io.Writer, r *batch.PlanReport, termWidth int) {
	pathWidth := termWidth - planBatchWidth - planFilesWidth - planSizeWidth - 3
	if pathWidth < planMinPathWidth {
		pathWidth = planMinPathWidth
	}

	table := tui.NewTable(w, []tui.TableColumn{
		{Name: "BATCH", Width: planBatchWidth, Align: tui.AlignRight},
		{Name: "FILES", Width: planFilesWidth, Align: tui.AlignRight},
		{Name: "SIZE", Width: planSizeWidth, Align: tui.AlignRight},
		{Name: "FIRST FILE", Width: pathWidth},
	})
	table.WriteHeader()
	for i, b := range r.Batches {
		first := ""
		if len(b.Files) > 0 {
			first = b.Files[0].Path
		}
		table.WriteRow(strconv.Itoa(i+1), strconv.Itoa(len(b.Files)), config.ByteSize(b.EstimatedSize).String(), first)
	}
	table.WriteDimRow("", strconv.Itoa(len(r.Files)), config.ByteSize(r.TotalEstimatedSize).String(), "total")
}
