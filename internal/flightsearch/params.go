package flightsearch

import (
	"net/url"
	"strconv"
	"time"

	"github.com/example/flight-deals/internal/itinerary"
)

const (
	DefaultNightsFrom = 7
	DefaultNightsTo   = 14
	DefaultFlightType = "round"
	DefaultLimit      = 100

	// DateLayout is the provider's DD/MM/YYYY date format.
	DateLayout = "02/01/2006"
)

// Params is one itinerary search. PriceFrom is optional; zero means unset.
type Params struct {
	FlyFrom      string
	FlyTo        string
	DateFrom     string
	DateTo       string
	Currency     string
	NightsFrom   int
	NightsTo     int
	FlightType   string
	PriceFrom    int
	PriceTo      int
	MaxStopovers int
	Limit        int
}

func (p Params) WithDefaults() Params {
	if p.NightsFrom == 0 {
		p.NightsFrom = DefaultNightsFrom
	}
	if p.NightsTo == 0 {
		p.NightsTo = DefaultNightsTo
	}
	if p.FlightType == "" {
		p.FlightType = DefaultFlightType
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	return p
}

func (p Params) Validate() error {
	for _, f := range []struct{ name, v string }{
		{"fly_from", p.FlyFrom},
		{"fly_to", p.FlyTo},
		{"curr", p.Currency},
		{"flight_type", p.FlightType},
	} {
		if f.v == "" {
			return itinerary.Invalid(f.name, "field required")
		}
	}
	from, err := time.Parse(DateLayout, p.DateFrom)
	if err != nil {
		return itinerary.Invalid("date_from", "expected DD/MM/YYYY, got %q", p.DateFrom)
	}
	to, err := time.Parse(DateLayout, p.DateTo)
	if err != nil {
		return itinerary.Invalid("date_to", "expected DD/MM/YYYY, got %q", p.DateTo)
	}
	if to.Before(from) {
		return itinerary.Invalid("date_to", "must not be before date_from")
	}
	if p.PriceFrom < 0 {
		return itinerary.Invalid("price_from", "must be positive, got %d", p.PriceFrom)
	}
	if p.PriceTo <= 0 {
		return itinerary.Invalid("price_to", "must be positive, got %d", p.PriceTo)
	}
	if p.NightsFrom <= 0 || p.NightsTo <= 0 {
		return itinerary.Invalid("nights_in_dst_from", "nights must be positive")
	}
	if p.NightsFrom > p.NightsTo {
		return itinerary.Invalid("nights_in_dst_to", "must not be below nights_in_dst_from")
	}
	if p.MaxStopovers < 0 {
		return itinerary.Invalid("max_stopovers", "must not be negative, got %d", p.MaxStopovers)
	}
	if p.Limit <= 0 {
		return itinerary.Invalid("limit", "must be positive, got %d", p.Limit)
	}
	return nil
}

// Query encodes p with the provider's parameter names.
func (p Params) Query() url.Values {
	q := url.Values{}
	q.Set("fly_from", p.FlyFrom)
	q.Set("fly_to", p.FlyTo)
	q.Set("date_from", p.DateFrom)
	q.Set("date_to", p.DateTo)
	q.Set("nights_in_dst_from", strconv.Itoa(p.NightsFrom))
	q.Set("nights_in_dst_to", strconv.Itoa(p.NightsTo))
	q.Set("flight_type", p.FlightType)
	q.Set("curr", p.Currency)
	if p.PriceFrom > 0 {
		q.Set("price_from", strconv.Itoa(p.PriceFrom))
	}
	q.Set("price_to", strconv.Itoa(p.PriceTo))
	q.Set("max_stopovers", strconv.Itoa(p.MaxStopovers))
	q.Set("limit", strconv.Itoa(p.Limit))
	return q
}

// DateWindow returns the search window from startDays to endDays after now,
// formatted DD/MM/YYYY.
func DateWindow(now time.Time, startDays, endDays int) (from, to string) {
	return now.AddDate(0, 0, startDays).Format(DateLayout), now.AddDate(0, 0, endDays).Format(DateLayout)
}
