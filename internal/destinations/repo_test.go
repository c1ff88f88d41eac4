package destinations_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/example/flight-deals/internal/db"
	"github.com/example/flight-deals/internal/destinations"
	"github.com/example/flight-deals/internal/migrate"
)

func TestRepo(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	d, err := db.Open(ctx, url)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := migrate.Up(ctx, d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := d.Exec(ctx, `TRUNCATE destinations RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	repo := destinations.NewRepo(d)
	t.Cleanup(func() { _ = repo.Close() })

	id, err := repo.Add(ctx, destinations.Destination{City: "Paris", LowestPrice: 54})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repo.Update(ctx, destinations.Destination{ID: id, City: "Paris", IATACode: "PAR", LowestPrice: 54}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rows, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].IATACode != "PAR" {
		t.Fatalf("unexpected rows %+v", rows)
	}

	err = repo.Update(ctx, destinations.Destination{ID: id + 100, City: "X", LowestPrice: 1})
	if !errors.Is(err, destinations.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
