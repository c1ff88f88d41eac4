package destinations

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/example/flight-deals/internal/sheet"
)

// SheetStore keeps destinations in a spreadsheet sheet with the columns
// city, iataCode, lowestPrice and id.
type SheetStore struct {
	client *sheet.Client
	name   string
}

func NewSheetStore(c *sheet.Client, name string) *SheetStore {
	return &SheetStore{client: c, name: name}
}

func (s *SheetStore) List(ctx context.Context) ([]Destination, error) {
	rows, err := s.client.ListRows(ctx, s.name)
	if err != nil {
		return nil, err
	}
	out := make([]Destination, 0, len(rows))
	for i, r := range rows {
		d, err := fromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.name, i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *SheetStore) Update(ctx context.Context, d Destination) error {
	_, err := s.client.UpdateRow(ctx, s.name, d.ID, toRecord(d))
	return err
}

func (s *SheetStore) Close() error { return nil }

func toRecord(d Destination) sheet.Record {
	return sheet.Record{
		"city":        d.City,
		"iataCode":    d.IATACode,
		"lowestPrice": d.LowestPrice,
		"id":          d.ID,
	}
}

func fromRecord(r sheet.Record) (Destination, error) {
	var d Destination
	var err error
	if d.City, err = stringField(r, "city"); err != nil {
		return Destination{}, err
	}
	if d.IATACode, err = stringField(r, "iataCode"); err != nil {
		return Destination{}, err
	}
	id, err := intField(r, "id")
	if err != nil {
		return Destination{}, err
	}
	d.ID = id
	price, err := intField(r, "lowestPrice")
	if err != nil {
		return Destination{}, err
	}
	d.LowestPrice = int(price)
	return d, nil
}

func stringField(r sheet.Record, key string) (string, error) {
	switch v := r[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%s: unexpected value %v", key, v)
	}
}

// intField accepts numbers and numeric strings; spreadsheets return either
// depending on cell formatting.
func intField(r sheet.Record, key string) (int64, error) {
	var s string
	switch v := r[key].(type) {
	case nil:
		return 0, fmt.Errorf("%s: missing", key)
	case json.Number:
		s = v.String()
	case string:
		s = v
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%s: unexpected value %v", key, v)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, s)
	}
	return int64(f), nil
}
