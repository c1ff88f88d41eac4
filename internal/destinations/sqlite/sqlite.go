// Package sqlite is a single-file destination store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/flight-deals/internal/destinations"
)

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) List(ctx context.Context) ([]destinations.Destination, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, city, iata_code, lowest_price
		FROM destinations
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []destinations.Destination
	for rows.Next() {
		var d destinations.Destination
		if err := rows.Scan(&d.ID, &d.City, &d.IATACode, &d.LowestPrice); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) Add(ctx context.Context, d destinations.Destination) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO destinations (city, iata_code, lowest_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, d.City, d.IATACode, d.LowestPrice, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) Update(ctx context.Context, d destinations.Destination) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE destinations
		SET city = ?, iata_code = ?, lowest_price = ?, updated_at = ?
		WHERE id = ?
	`, d.City, d.IATACode, d.LowestPrice, time.Now().UTC().Format(time.RFC3339), d.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", destinations.ErrNotFound, d.ID)
	}
	return nil
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS destinations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			city TEXT NOT NULL,
			iata_code TEXT NOT NULL DEFAULT '',
			lowest_price INTEGER NOT NULL CHECK (lowest_price > 0),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS destinations_city_idx ON destinations (city COLLATE NOCASE);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}
	return nil
}
