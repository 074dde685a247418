package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiaot623/decision-timeline/internal/engine"
	"github.com/xiaot623/decision-timeline/internal/metrics"
	"github.com/xiaot623/decision-timeline/internal/service"
	handler "github.com/xiaot623/decision-timeline/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the decision timeline HTTP API.

Examples:
  decision-timeline serve
  decision-timeline serve --port 9000 --database postgres://localhost/decisions`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "listen port (overrides HTTP_PORT)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg, logger := opts.Config, opts.Logger
	if opts.Port != 0 {
		cfg.HTTPPort = opts.Port
	}

	store, err := opts.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rules, err := loadRules(ctx, cfg.RulesFile)
	if err != nil {
		return err
	}

	m := metrics.New()
	svc := service.New(store, service.Options{Logger: logger, Metrics: m})
	e := handler.NewServer(cfg, svc, rules, m)

	logger.Info("starting server",
		"port", cfg.HTTPPort,
		"database", store.Dialect(),
		"rules_file", cfg.RulesFile,
	)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down server gracefully", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

// loadRules compiles the Rego module at path, or the built-in rules when path is empty.
func loadRules(ctx context.Context, path string) (*engine.RuleEngine, error) {
	module := engine.DefaultRules
	if path != "" {
		// #nosec G304 -- path is operator-provided config path.
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read rules file: %w", err)
		}
		module = string(raw)
	}
	rules, err := engine.NewRuleEngine(ctx, module)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rule engine: %w", err)
	}
	return rules, nil
}
