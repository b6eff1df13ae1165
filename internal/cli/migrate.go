package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pabloleguizamon/dragon-challenge/internal/db"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date and exit",
		Long: `Apply the schema for the configured driver and exit.

On postgres with MIGRATIONS=true the embedded SQL migrations run through
golang-migrate; otherwise the models are synchronized with GORM AutoMigrate.
The memory driver has no schema.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg, rootOpts)
			if cfg.Database.Driver == "memory" {
				log.Info("memory driver has no schema to migrate")
				return nil
			}
			gdb, err := db.Connect(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := gdb.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()
			if err := db.Migrate(gdb, cfg.Database, log); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			return nil
		},
	}
}
