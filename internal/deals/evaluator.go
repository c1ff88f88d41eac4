// Package deals decides which destinations currently have an itinerary under
// their price ceiling.
package deals

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/example/flight-deals/internal/destinations"
	"github.com/example/flight-deals/internal/flightsearch"
	"github.com/example/flight-deals/internal/itinerary"
)

type Resolver interface {
	Resolve(ctx context.Context, city string) (string, error)
}

type Searcher interface {
	Search(ctx context.Context, p flightsearch.Params) ([]json.RawMessage, error)
}

// Evaluator runs one pass over the destination store. Base carries the search
// parameters shared by every destination; FlyTo and PriceTo are filled per
// row.
type Evaluator struct {
	Store    destinations.Store
	Resolver Resolver
	Searcher Searcher
	Base     flightsearch.Params
	Log      *slog.Logger
}

func (e *Evaluator) log() *slog.Logger {
	if e.Log == nil {
		return slog.Default()
	}
	return e.Log
}

// Run loads the destinations, fills in missing codes and returns the cheapest
// itinerary of every destination that has one under its ceiling.
func (e *Evaluator) Run(ctx context.Context) ([]itinerary.Itinerary, error) {
	rows, err := e.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	e.log().Info("destinations loaded", "count", len(rows))

	rows, err = e.UpdateCodes(ctx, rows)
	if err != nil {
		return nil, err
	}
	return e.FindCheapFlights(ctx, rows)
}

// UpdateCodes resolves the IATA code of every row that lacks one and writes
// the resolved rows back. When anything was written the rows are reloaded from
// the store so the caller sees what was persisted.
func (e *Evaluator) UpdateCodes(ctx context.Context, rows []destinations.Destination) ([]destinations.Destination, error) {
	written := 0
	for _, row := range rows {
		if row.HasCode() {
			continue
		}
		code, err := e.Resolver.Resolve(ctx, row.City)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", row.City, err)
		}
		if code == "" {
			e.log().Warn("city not resolved", "city", row.City, "id", row.ID)
			continue
		}
		row.IATACode = code
		if err := e.Store.Update(ctx, row); err != nil {
			return nil, fmt.Errorf("update destination %d: %w", row.ID, err)
		}
		e.log().Info("city resolved", "city", row.City, "iata_code", code)
		written++
	}
	if written == 0 {
		return rows, nil
	}

	rows, err := e.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload destinations: %w", err)
	}
	return rows, nil
}

// FindCheapFlights searches every coded row and parses the first record of
// each non-empty result. The output follows row order.
func (e *Evaluator) FindCheapFlights(ctx context.Context, rows []destinations.Destination) ([]itinerary.Itinerary, error) {
	var out []itinerary.Itinerary
	for _, row := range rows {
		if !row.HasCode() {
			continue
		}
		p := e.Base
		p.FlyTo = row.IATACode
		p.PriceTo = row.LowestPrice

		records, err := e.Searcher.Search(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", row.IATACode, err)
		}
		if len(records) == 0 {
			e.log().Info("no itineraries", "city", row.City, "iata_code", row.IATACode, "price_to", row.LowestPrice)
			continue
		}

		it, err := itinerary.Parse(records[0])
		if err != nil {
			return nil, fmt.Errorf("parse itinerary for %s: %w", row.IATACode, err)
		}
		e.log().Info("deal found",
			"city", row.City,
			"iata_code", row.IATACode,
			"price", it.Price.StringFixedBank(2),
			"currency", it.Currency(),
			"price_to", row.LowestPrice,
		)
		out = append(out, it)
	}
	return out, nil
}
