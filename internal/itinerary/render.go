package itinerary

import (
	"fmt"
	"strings"
)

const timestampLayout = "02/01/2006 15:04:05"

func (l Leg) Title() string {
	return fmt.Sprintf("%s (%s) ==> %s (%s)", l.CityFrom, l.CityCodeFrom, l.CityTo, l.CityCodeTo)
}

func (l Leg) String() string {
	return strings.Join([]string{
		l.Title(),
		"Departure on: " + l.LocalDeparture.Format(timestampLayout),
		"Arrival on: " + l.LocalArrival.Format(timestampLayout),
	}, "\n")
}

func (it Itinerary) Title() string {
	return fmt.Sprintf("%s (%s) ==> %s (%s)", it.CityFrom, it.CityCodeFrom, it.CityTo, it.CityCodeTo)
}

// String renders the alert body. The layout is consumed verbatim by mail
// readers and filters, keep it byte-stable.
func (it Itinerary) String() string {
	var b strings.Builder
	b.WriteString(it.Title())
	fmt.Fprintf(&b, "\nPrice: %s %s", it.Price.StringFixedBank(2), it.Currency())
	fmt.Fprintf(&b, "\nStay: %d days", it.NightsInDest)

	blocks := []struct {
		title string
		legs  []Leg
	}{
		{">>> Departing", it.DepartingRoute()},
		{"<<< Returning", it.ReturnRoute()},
	}
	for _, block := range blocks {
		b.WriteString("\n\n" + block.title + ":")
		for _, l := range block.legs {
			b.WriteString("\n\n" + l.String())
		}
	}
	return b.String()
}
