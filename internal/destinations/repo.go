package destinations

import (
	"context"
	"fmt"

	"github.com/example/flight-deals/internal/db"
)

// Repo is the postgres-backed Store. The schema lives in internal/migrate.
type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

func (r *Repo) List(ctx context.Context) ([]Destination, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, city, iata_code, lowest_price
FROM destinations
ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Destination
	for rows.Next() {
		var d Destination
		if err := rows.Scan(&d.ID, &d.City, &d.IATACode, &d.LowestPrice); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) Add(ctx context.Context, d Destination) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO destinations(city, iata_code, lowest_price)
VALUES ($1, $2, $3)
RETURNING id`, d.City, d.IATACode, d.LowestPrice).Scan(&id)
	return id, db.WrapNotFound(err)
}

func (r *Repo) Update(ctx context.Context, d Destination) error {
	var id int64
	err := r.db.QueryRow(ctx, `
UPDATE destinations
SET city=$2, iata_code=$3, lowest_price=$4, updated_at=now()
WHERE id=$1
RETURNING id`, d.ID, d.City, d.IATACode, d.LowestPrice).Scan(&id)
	if db.IsNotFound(err) {
		return fmt.Errorf("%w: id %d", ErrNotFound, d.ID)
	}
	return db.WrapNotFound(err)
}

func (r *Repo) Close() error {
	r.db.Close()
	return nil
}
