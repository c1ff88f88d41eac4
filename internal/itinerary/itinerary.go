// Package itinerary holds the typed form of a priced round-trip offer returned
// by the flight-search provider, and its text rendering used as the alert body.
package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Leg is one direct flight segment.
type Leg struct {
	FlyFrom      string
	CityFrom     string
	CityCodeFrom string
	FlyTo        string
	CityTo       string
	CityCodeTo   string

	LocalDeparture time.Time
	LocalArrival   time.Time

	Return bool
}

// Itinerary is one priced round-trip offer. Route holds the outbound legs
// followed by the return legs.
type Itinerary struct {
	CityFrom     string
	CityCodeFrom string
	CityTo       string
	CityCodeTo   string

	Price        decimal.Decimal
	Conversion   Conversion
	NightsInDest int

	Route []Leg
}

const minRouteLegs = 2

type legPayload struct {
	FlyFrom        *string         `json:"flyFrom"`
	FlyTo          *string         `json:"flyTo"`
	CityFrom       *string         `json:"cityFrom"`
	CityCodeFrom   *string         `json:"cityCodeFrom"`
	CityTo         *string         `json:"cityTo"`
	CityCodeTo     *string         `json:"cityCodeTo"`
	LocalDeparture *string         `json:"local_departure"`
	LocalArrival   *string         `json:"local_arrival"`
	Return         json.RawMessage `json:"return"`
}

type itineraryPayload struct {
	CityFrom     *string            `json:"cityFrom"`
	CityCodeFrom *string            `json:"cityCodeFrom"`
	CityTo       *string            `json:"cityTo"`
	CityCodeTo   *string            `json:"cityCodeTo"`
	Price        *decimal.Decimal   `json:"price"`
	Conversion   *Conversion        `json:"conversion"`
	NightsInDest *int               `json:"nightsInDest"`
	Route        *[]json.RawMessage `json:"route"`
}

// ParseLeg parses one route record.
func ParseLeg(raw []byte) (Leg, error) {
	var p legPayload
	if err := decode(raw, &p); err != nil {
		return Leg{}, err
	}

	var l Leg
	fields := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"flyFrom", p.FlyFrom, &l.FlyFrom},
		{"flyTo", p.FlyTo, &l.FlyTo},
		{"cityFrom", p.CityFrom, &l.CityFrom},
		{"cityCodeFrom", p.CityCodeFrom, &l.CityCodeFrom},
		{"cityTo", p.CityTo, &l.CityTo},
		{"cityCodeTo", p.CityCodeTo, &l.CityCodeTo},
	}
	for _, f := range fields {
		if f.src == nil {
			return Leg{}, Invalid(f.name, "field required")
		}
		*f.dst = *f.src
	}

	var err error
	if l.LocalDeparture, err = parseTimestamp("local_departure", p.LocalDeparture); err != nil {
		return Leg{}, err
	}
	if l.LocalArrival, err = parseTimestamp("local_arrival", p.LocalArrival); err != nil {
		return Leg{}, err
	}
	if l.Return, err = parseFlag("return", p.Return); err != nil {
		return Leg{}, err
	}
	return l, nil
}

// Parse parses one search result record into an Itinerary.
func Parse(raw []byte) (Itinerary, error) {
	var p itineraryPayload
	if err := decode(raw, &p); err != nil {
		return Itinerary{}, err
	}

	var it Itinerary
	fields := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"cityFrom", p.CityFrom, &it.CityFrom},
		{"cityCodeFrom", p.CityCodeFrom, &it.CityCodeFrom},
		{"cityTo", p.CityTo, &it.CityTo},
		{"cityCodeTo", p.CityCodeTo, &it.CityCodeTo},
	}
	for _, f := range fields {
		if f.src == nil {
			return Itinerary{}, Invalid(f.name, "field required")
		}
		*f.dst = *f.src
	}

	if p.Price == nil {
		return Itinerary{}, Invalid("price", "field required")
	}
	it.Price = *p.Price

	if p.Conversion == nil {
		return Itinerary{}, Invalid("conversion", "field required")
	}
	if p.Conversion.Len() == 0 {
		return Itinerary{}, Invalid("conversion", "must contain at least one currency")
	}
	it.Conversion = *p.Conversion

	if p.NightsInDest == nil {
		return Itinerary{}, Invalid("nightsInDest", "field required")
	}
	if *p.NightsInDest < 0 {
		return Itinerary{}, Invalid("nightsInDest", "must not be negative, got %d", *p.NightsInDest)
	}
	it.NightsInDest = *p.NightsInDest

	if p.Route == nil {
		return Itinerary{}, Invalid("route", "field required")
	}
	if len(*p.Route) < minRouteLegs {
		return Itinerary{}, Invalid("route", "ensure this value has at least %d items, got %d", minRouteLegs, len(*p.Route))
	}
	it.Route = make([]Leg, 0, len(*p.Route))
	for i, rawLeg := range *p.Route {
		leg, err := ParseLeg(rawLeg)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return Itinerary{}, Invalid(fmt.Sprintf("route[%d].%s", i, ve.Field), "%s", ve.Reason)
			}
			return Itinerary{}, fmt.Errorf("route[%d]: %w", i, err)
		}
		it.Route = append(it.Route, leg)
	}
	return it, nil
}

// Currency is the first code of the conversion mapping, in payload order.
func (it Itinerary) Currency() string {
	return it.Conversion.First()
}

// DepartingRoute returns a copy of the legs before the first return leg.
func (it Itinerary) DepartingRoute() []Leg {
	return append([]Leg(nil), it.Route[:firstReturn(it.Route)]...)
}

// ReturnRoute returns a copy of the legs from the first return leg to the
// end. The provider lists outbound legs before return legs, so the route is
// split rather than filtered.
func (it Itinerary) ReturnRoute() []Leg {
	return append([]Leg(nil), it.Route[firstReturn(it.Route):]...)
}

func firstReturn(route []Leg) int {
	for i, l := range route {
		if l.Return {
			return i
		}
	}
	return len(route)
}

func decode(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Invalid("", "empty payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) {
			return Invalid(ute.Field, "expected %s, got %s", ute.Type, ute.Value)
		}
		return Invalid("", "%v", err)
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(field string, v *string) (time.Time, error) {
	if v == nil {
		return time.Time{}, Invalid(field, "field required")
	}
	s := strings.TrimSpace(*v)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Invalid(field, "invalid datetime format %q", *v)
}

// parseFlag accepts JSON booleans and the 0/1 integers the provider uses.
func parseFlag(field string, raw json.RawMessage) (bool, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	switch strings.ToLower(s) {
	case "", "null":
		return false, Invalid(field, "field required")
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, Invalid(field, "value could not be parsed to a boolean: %s", string(raw))
}
