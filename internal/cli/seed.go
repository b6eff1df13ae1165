package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pabloleguizamon/dragon-challenge/internal/db"
	"github.com/pabloleguizamon/dragon-challenge/internal/seed"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	User    bool
	Catalog bool
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin and demo catalog, then exit",
		Long: `Create the default admin account and the demo catalog in the configured
store. Both steps skip what already exists.

Example:
  dragon seed
  dragon seed --catalog=false`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.User, "user", true, "create the default admin account")
	cmd.Flags().BoolVar(&opts.Catalog, "catalog", true, "create the demo catalog")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *SeedOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg, opts.RootOptions)
	ctx := cmd.Context()

	stores, err := db.Open(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer stores.Close()

	svc, err := buildServices(cfg, stores, log)
	if err != nil {
		return err
	}

	if opts.User {
		if err := seed.DefaultUser(ctx, svc.Auth, cfg.Seed, log); err != nil {
			return err
		}
	}
	if !opts.Catalog {
		return nil
	}
	entries, err := seed.DefaultCatalog()
	if err != nil {
		return err
	}
	n, err := seed.Catalog(ctx, svc.Products, entries)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", n)
	return nil
}
