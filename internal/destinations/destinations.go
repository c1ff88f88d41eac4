// Package destinations holds the watched destination rows and the stores
// that persist them.
package destinations

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("destination not found")

// Destination is one watched city with the price ceiling for alerts. An empty
// IATACode means the city has not been resolved yet.
type Destination struct {
	ID          int64
	City        string
	IATACode    string
	LowestPrice int
}

func (d Destination) HasCode() bool { return d.IATACode != "" }

func (d Destination) Validate() error {
	if strings.TrimSpace(d.City) == "" {
		return fmt.Errorf("city is required")
	}
	if d.LowestPrice <= 0 {
		return fmt.Errorf("lowest price must be positive")
	}
	return nil
}

// Store loads and updates destination rows. List returns rows in a stable
// order.
type Store interface {
	List(ctx context.Context) ([]Destination, error)
	Update(ctx context.Context, d Destination) error
	Close() error
}

// Adder is implemented by stores that can create rows.
type Adder interface {
	Add(ctx context.Context, d Destination) (int64, error)
}
