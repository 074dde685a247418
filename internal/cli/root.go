// Package cli implements the decision-timeline command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xiaot623/decision-timeline/internal/config"
	"github.com/xiaot623/decision-timeline/internal/repository"
)

// RootOptions holds global flags and the configuration resolved from them.
type RootOptions struct {
	DatabaseURL string
	LogLevel    string

	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "decision-timeline",
		Short: "Record, inspect and replay automated decisions",
		Long: `decision-timeline keeps an auditable log of automated decisions and the
ordered reasoning steps behind each of them.

Configuration comes from environment variables (optionally from a .env file)
and the YAML file named by CONFIG_FILE.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is fine.
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if opts.DatabaseURL != "" {
				cfg.DatabaseURL = opts.DatabaseURL
			}
			if opts.LogLevel != "" {
				cfg.LogLevel = opts.LogLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts.Config = cfg
			opts.Logger = cfg.NewLogger(cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database", "", "database URL (overrides DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

func (o *RootOptions) openStore() (*repository.SQLStore, error) {
	store, err := repository.Open(o.Config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}
