package cmd

import (
	"context"
	"fmt"

	"github.com/example/flight-deals/internal/config"
	"github.com/example/flight-deals/internal/db"
	"github.com/example/flight-deals/internal/destinations"
	"github.com/example/flight-deals/internal/destinations/sqlite"
	"github.com/example/flight-deals/internal/migrate"
	"github.com/example/flight-deals/internal/sheet"
)

// openStore opens the destination store selected by DESTINATION_STORE. The
// postgres store is migrated when migrateUp is set.
func openStore(ctx context.Context, cfg config.Config, migrateUp bool) (destinations.Store, error) {
	switch cfg.Store {
	case config.StoreSheet:
		c, err := sheet.New(cfg.SheetURL, cfg.SheetAuth)
		if err != nil {
			return nil, err
		}
		return destinations.NewSheetStore(c, cfg.SheetName), nil

	case config.StorePostgres:
		d, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := d.Ping(ctx); err != nil {
			d.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if migrateUp {
			if _, err := migrate.Up(ctx, d); err != nil {
				d.Close()
				return nil, err
			}
		}
		return destinations.NewRepo(d), nil

	case config.StoreSQLite:
		return sqlite.New(cfg.SQLitePath)
	}
	return nil, fmt.Errorf("unknown destination store %q", cfg.Store)
}
