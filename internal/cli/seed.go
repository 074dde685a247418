package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiaot623/decision-timeline/internal/seed"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Clear bool
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo decisions",
		Long: `Load demo decisions covering refunds, support escalation, manual review,
content moderation and loan approval, plus two days of history.

Examples:
  decision-timeline seed
  decision-timeline seed --clear`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := seed.Load(cmd.Context(), store, time.Now(), seed.Options{
				Clear:  opts.Clear,
				Logger: opts.Logger,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d demo decisions\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "delete existing decisions first")

	return cmd
}
