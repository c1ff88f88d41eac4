package deals_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/flight-deals/internal/deals"
	"github.com/example/flight-deals/internal/destinations"
	"github.com/example/flight-deals/internal/flightsearch"
	"github.com/example/flight-deals/internal/itinerary"
)

type fakeStore struct {
	rows    []destinations.Destination
	updates []destinations.Destination
	lists   int
	listErr error
}

func (s *fakeStore) List(context.Context) ([]destinations.Destination, error) {
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]destinations.Destination(nil), s.rows...), nil
}

func (s *fakeStore) Update(_ context.Context, d destinations.Destination) error {
	s.updates = append(s.updates, d)
	for i := range s.rows {
		if s.rows[i].ID == d.ID {
			s.rows[i] = d
		}
	}
	return nil
}

func (s *fakeStore) Close() error { return nil }

type fakeResolver struct {
	codes map[string]string
	calls []string
	err   error
}

func (r *fakeResolver) Resolve(_ context.Context, city string) (string, error) {
	r.calls = append(r.calls, city)
	return r.codes[city], r.err
}

type fakeSearcher struct {
	results map[string][]json.RawMessage
	calls   []flightsearch.Params
	err     error
}

func (s *fakeSearcher) Search(_ context.Context, p flightsearch.Params) ([]json.RawMessage, error) {
	s.calls = append(s.calls, p)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[p.FlyTo], nil
}

const legTmpl = `{"flyFrom":%[2]q,"flyTo":%[4]q,"cityFrom":%[1]q,"cityCodeFrom":%[2]q,` +
	`"cityTo":%[3]q,"cityCodeTo":%[4]q,"return":%[5]d,` +
	`"local_departure":"2026-11-02T10:00:00.000Z","local_arrival":"2026-11-02T22:00:00.000Z"}`

func record(cityTo, codeTo string, price int) json.RawMessage {
	out := fmt.Sprintf(legTmpl, "Salvador", "SSA", cityTo, codeTo, 0)
	back := fmt.Sprintf(legTmpl, cityTo, codeTo, "Salvador", "SSA", 1)
	return json.RawMessage(fmt.Sprintf(`{"cityFrom":"Salvador","cityCodeFrom":"SSA","cityTo":%q,"cityCodeTo":%q,`+
		`"price":%d,"conversion":{"BRL":%d},"nightsInDest":7,"route":[%s,%s]}`,
		cityTo, codeTo, price, price, out, back))
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newEvaluator(store *fakeStore, r *fakeResolver, s *fakeSearcher) *deals.Evaluator {
	return &deals.Evaluator{
		Store:    store,
		Resolver: r,
		Searcher: s,
		Base: flightsearch.Params{
			FlyFrom:      "SSA",
			DateFrom:     "18/10/2026",
			DateTo:       "15/04/2027",
			Currency:     "BRL",
			MaxStopovers: 2,
		}.WithDefaults(),
		Log: quietLogger(),
	}
}

func TestUpdateCodesWritesAndReloads(t *testing.T) {
	store := &fakeStore{rows: []destinations.Destination{
		{ID: 2, City: "Paris", LowestPrice: 54},
		{ID: 3, City: "Atlantis", LowestPrice: 10},
		{ID: 4, City: "Tokyo", IATACode: "TYO", LowestPrice: 485},
	}}
	resolver := &fakeResolver{codes: map[string]string{"Paris": "PAR"}}
	e := newEvaluator(store, resolver, &fakeSearcher{})

	rows, _ := store.List(context.Background())
	got, err := e.UpdateCodes(context.Background(), rows)
	if err != nil {
		t.Fatalf("update codes: %v", err)
	}
	if strings.Join(resolver.calls, ",") != "Paris,Atlantis" {
		t.Fatalf("resolver called for %v", resolver.calls)
	}
	if len(store.updates) != 1 || store.updates[0].IATACode != "PAR" {
		t.Fatalf("unexpected updates %+v", store.updates)
	}
	if store.lists != 2 {
		t.Fatalf("expected a reload after writing, lists=%d", store.lists)
	}
	if got[0].IATACode != "PAR" || got[1].IATACode != "" || got[2].IATACode != "TYO" {
		t.Fatalf("unexpected rows %+v", got)
	}
}

func TestUpdateCodesNothingToWrite(t *testing.T) {
	store := &fakeStore{rows: []destinations.Destination{{ID: 3, City: "Atlantis", LowestPrice: 10}}}
	e := newEvaluator(store, &fakeResolver{}, &fakeSearcher{})
	got, err := e.UpdateCodes(context.Background(), store.rows)
	if err != nil {
		t.Fatalf("update codes: %v", err)
	}
	if store.lists != 0 || len(store.updates) != 0 {
		t.Fatalf("expected no writes and no reload, lists=%d updates=%d", store.lists, len(store.updates))
	}
	if len(got) != 1 || got[0].HasCode() {
		t.Fatalf("unexpected rows %+v", got)
	}
}

func TestUpdateCodesResolverFailureAborts(t *testing.T) {
	boom := errors.New("boom")
	store := &fakeStore{rows: []destinations.Destination{{ID: 2, City: "Paris", LowestPrice: 54}}}
	e := newEvaluator(store, &fakeResolver{err: boom}, &fakeSearcher{})
	if _, err := e.UpdateCodes(context.Background(), store.rows); !errors.Is(err, boom) {
		t.Fatalf("expected resolver error, got %v", err)
	}
	if len(store.updates) != 0 {
		t.Fatal("nothing should be written after a resolver failure")
	}
}

func TestFindCheapFlights(t *testing.T) {
	rows := []destinations.Destination{
		{ID: 1, City: "Paris", IATACode: "PAR", LowestPrice: 5400},
		{ID: 2, City: "Atlantis", LowestPrice: 10},
		{ID: 3, City: "Berlin", IATACode: "BER", LowestPrice: 4200},
		{ID: 4, City: "Tokyo", IATACode: "TYO", LowestPrice: 4850},
	}
	searcher := &fakeSearcher{results: map[string][]json.RawMessage{
		"PAR": {record("Paris", "PAR", 4000), json.RawMessage(`{"broken":true}`)},
		"BER": {},
		"TYO": {record("Tokyo", "TYO", 4700)},
	}}
	e := newEvaluator(&fakeStore{}, &fakeResolver{}, searcher)

	got, err := e.FindCheapFlights(context.Background(), rows)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(searcher.calls) != 3 {
		t.Fatalf("expected 3 searches (uncoded row skipped), got %d", len(searcher.calls))
	}
	for i, want := range []struct {
		to    string
		price int
	}{{"PAR", 5400}, {"BER", 4200}, {"TYO", 4850}} {
		p := searcher.calls[i]
		if p.FlyTo != want.to || p.PriceTo != want.price || p.FlyFrom != "SSA" || p.Currency != "BRL" {
			t.Errorf("call %d: unexpected params %+v", i, p)
		}
	}
	if len(got) != 2 || got[0].CityTo != "Paris" || got[1].CityTo != "Tokyo" {
		t.Fatalf("unexpected itineraries %+v", got)
	}
	if got[0].Price.StringFixedBank(2) != "4000.00" {
		t.Fatalf("unexpected price %s", got[0].Price)
	}
}

func TestFindCheapFlightsDoesNotLeakParams(t *testing.T) {
	searcher := &fakeSearcher{}
	e := newEvaluator(&fakeStore{}, &fakeResolver{}, searcher)
	rows := []destinations.Destination{{ID: 1, City: "Paris", IATACode: "PAR", LowestPrice: 5400}}
	if _, err := e.FindCheapFlights(context.Background(), rows); err != nil {
		t.Fatalf("find: %v", err)
	}
	if e.Base.FlyTo != "" || e.Base.PriceTo != 0 {
		t.Fatalf("base params mutated: %+v", e.Base)
	}
}

func TestFindCheapFlightsParseFailure(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]json.RawMessage{"PAR": {json.RawMessage(`{"price":1}`)}}}
	e := newEvaluator(&fakeStore{}, &fakeResolver{}, searcher)
	_, err := e.FindCheapFlights(context.Background(), []destinations.Destination{{ID: 1, City: "Paris", IATACode: "PAR", LowestPrice: 5}})
	var ve *itinerary.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRun(t *testing.T) {
	store := &fakeStore{rows: []destinations.Destination{
		{ID: 2, City: "Paris", LowestPrice: 5400},
		{ID: 3, City: "Atlantis", LowestPrice: 10},
	}}
	searcher := &fakeSearcher{results: map[string][]json.RawMessage{"PAR": {record("Paris", "PAR", 4000)}}}
	var logs bytes.Buffer
	e := newEvaluator(store, &fakeResolver{codes: map[string]string{"Paris": "PAR"}}, searcher)
	e.Log = slog.New(slog.NewTextHandler(&logs, nil))

	got, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != 1 || got[0].CityCodeTo != "PAR" {
		t.Fatalf("unexpected result %+v", got)
	}
	if len(searcher.calls) != 1 {
		t.Fatalf("expected one search, got %d", len(searcher.calls))
	}
	for _, msg := range []string{"city resolved", "city not resolved", "deal found"} {
		if !strings.Contains(logs.String(), msg) {
			t.Errorf("missing log %q", msg)
		}
	}
}

func TestRunListFailure(t *testing.T) {
	boom := errors.New("sheet down")
	e := newEvaluator(&fakeStore{listErr: boom}, &fakeResolver{}, &fakeSearcher{})
	if _, err := e.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestRunSearchFailureAborts(t *testing.T) {
	boom := errors.New("provider down")
	store := &fakeStore{rows: []destinations.Destination{
		{ID: 1, City: "Paris", IATACode: "PAR", LowestPrice: 5400},
		{ID: 2, City: "Tokyo", IATACode: "TYO", LowestPrice: 4850},
	}}
	searcher := &fakeSearcher{err: boom}
	e := newEvaluator(store, &fakeResolver{}, searcher)
	if _, err := e.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected search error, got %v", err)
	}
	if len(searcher.calls) != 1 {
		t.Fatalf("pass should stop at the first failure, calls=%d", len(searcher.calls))
	}
}
