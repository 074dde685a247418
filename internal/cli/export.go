package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xiaot623/decision-timeline/internal/domain"
	"github.com/xiaot623/decision-timeline/internal/service"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Format        string
	Source        string
	MinConfidence float64
	Out           string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export decisions as CSV or JSON",
		Long: `Export decisions newest first.

CSV holds one row per decision. JSON includes input data, system state and
every trace step.

Examples:
  decision-timeline export --format csv > decisions.csv
  decision-timeline export --format json --source rule --min-confidence 0.8 --out rules.json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := service.ParseExportFormat(opts.Format)
			if err != nil {
				return err
			}

			var filter domain.DecisionFilter
			if opts.Source != "" {
				source, ok := domain.ParseSource(opts.Source)
				if !ok {
					return fmt.Errorf("invalid source %q: must be one of rule, llm, hybrid, manual", opts.Source)
				}
				filter.Source = source
			}
			if cmd.Flags().Changed("min-confidence") {
				if err := domain.ValidateConfidence("min-confidence", opts.MinConfidence); err != nil {
					return err
				}
				filter.MinConfidence = domain.Float(opts.MinConfidence)
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			svc := service.New(store, service.Options{Logger: opts.Logger})
			export, err := svc.Export(cmd.Context(), filter)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if opts.Out != "" && opts.Out != "-" {
				f, err := os.Create(opts.Out)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if err := export.Write(w, format); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			opts.Logger.Info("export written", "format", format, "decisions", len(export.Decisions))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "csv", "output format (csv|json)")
	cmd.Flags().StringVar(&opts.Source, "source", "", "only export decisions from this source")
	cmd.Flags().Float64Var(&opts.MinConfidence, "min-confidence", 0, "only export decisions at or above this confidence")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")

	return cmd
}
