// Package cli wires configuration, storage and transports into the dragon
// command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pabloleguizamon/dragon-challenge/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	Verbose bool

	// Out receives log output. Defaults to stderr.
	Out io.Writer
}

// NewRootCommand creates the root command. Without a subcommand it serves.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Out: os.Stderr}

	cmd := &cobra.Command{
		Use:   "dragon",
		Short: "Dragon storefront backend",
		Long:  "GraphQL and REST backend for the Dragon storefront: accounts, catalog and orders.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.EnvFile == "" {
				return nil
			}
			if err := godotenv.Load(opts.EnvFile); err != nil {
				return fmt.Errorf("load env file %q: %w", opts.EnvFile, err)
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "load environment variables from this file first")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging regardless of LOG_LEVEL")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// loadConfig reads and validates the environment.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger: JSON in production, text elsewhere.
func newLogger(cfg *config.Config, opts *RootOptions) *slog.Logger {
	level := cfg.LogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(out, hopts)
	if !cfg.IsDevelopment() {
		handler = slog.NewJSONHandler(out, hopts)
	}
	return slog.New(handler).With("env", cfg.App.Env)
}
