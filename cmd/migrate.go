package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/flight-deals/internal/config"
	"github.com/example/flight-deals/internal/db"
	"github.com/example/flight-deals/internal/migrate"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (postgres store)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Store != config.StorePostgres {
				return errors.New("migrate only applies to DESTINATION_STORE=postgres; the sqlite store migrates itself on open")
			}
			ctx := commandContext(cmd)
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}
			applied, err := migrate.Up(ctx, d)
			if err != nil {
				return err
			}
			log.Info("migrations applied", "count", len(applied), "files", applied)
			return nil
		},
	}
}
